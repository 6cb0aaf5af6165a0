package lessons

import (
	"context"
	"log"
	"maps"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/tutor/internal/clock"
	"github.com/abhisek/tutor/internal/store"
)

// Storage keys of the two persisted records.
const (
	ProgressKey = "tutor_lesson_progress"
	LessonsKey  = "tutor_lessons"
)

// Tracker owns all lessons and the per-topic progress index. Every
// mutating call recomputes derived fields and persists both records
// before returning. Callers address lessons by id; a Tracker has no
// notion of a current lesson.
type Tracker struct {
	mu       sync.Mutex
	lessons  map[string]*Lesson
	progress map[string]*TopicProgress

	kv     store.KV
	clock  clock.Clock
	grader Grader
	cfg    Config
	logger *log.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithGrader replaces the default answer grader.
func WithGrader(g Grader) Option {
	return func(t *Tracker) { t.grader = g }
}

// WithConfig overrides the grading and analytics thresholds.
func WithConfig(cfg Config) Option {
	return func(t *Tracker) { t.cfg = cfg }
}

// WithLogger sets where persistence warnings are written.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a Tracker and loads any persisted state from kv.
// Load failures are logged and the tracker starts empty.
func NewTracker(ctx context.Context, kv store.KV, opts ...Option) *Tracker {
	t := &Tracker{
		lessons:  make(map[string]*Lesson),
		progress: make(map[string]*TopicProgress),
		kv:       kv,
		clock:    clock.System,
		grader:   DefaultGrader{},
		cfg:      DefaultConfig(),
		logger:   log.New(os.Stderr, "tutor: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.load(ctx)
	return t
}

func (t *Tracker) load(ctx context.Context) {
	if t.kv == nil {
		return
	}
	progress := make(map[string]*TopicProgress)
	if _, err := store.LoadJSON(ctx, t.kv, ProgressKey, &progress); err != nil {
		t.logger.Printf("warning: load lesson progress: %v", err)
	} else if progress != nil {
		maps.DeleteFunc(progress, func(_ string, tp *TopicProgress) bool { return tp == nil })
		t.progress = progress
	}

	lessons := make(map[string]*Lesson)
	if _, err := store.LoadJSON(ctx, t.kv, LessonsKey, &lessons); err != nil {
		t.logger.Printf("warning: load lessons: %v", err)
	} else if lessons != nil {
		maps.DeleteFunc(lessons, func(_ string, l *Lesson) bool { return l == nil })
		t.lessons = lessons
	}
}

// save persists both records. Failures are logged; in-memory state stays
// authoritative.
func (t *Tracker) save(ctx context.Context) {
	if t.kv == nil {
		return
	}
	if err := store.SaveJSON(ctx, t.kv, ProgressKey, t.progress); err != nil {
		t.logger.Printf("warning: save lesson progress: %v", err)
	}
	if err := store.SaveJSON(ctx, t.kv, LessonsKey, t.lessons); err != nil {
		t.logger.Printf("warning: save lessons: %v", err)
	}
}

// touch recomputes l's progress and its topic's overall progress, then
// persists. Callers hold t.mu.
func (t *Tracker) touch(ctx context.Context, l *Lesson) {
	refresh(l, t.clock.Now())
	t.updateTopic(l.Topic)
	t.save(ctx)
}

func (t *Tracker) updateTopic(topic string) {
	tp := t.progress[topic]
	if tp == nil {
		return
	}
	sum, n := 0, 0
	for _, id := range tp.Lessons {
		if l := t.lessons[id]; l != nil {
			sum += l.Progress.Percentage
			n++
		}
	}
	if n == 0 {
		tp.OverallProgress = 0
		return
	}
	tp.OverallProgress = int(math.Round(float64(sum) / float64(n)))
}

// CreateLesson allocates an empty lesson for topic and registers it in the
// topic's progress record. An empty difficulty defaults to intermediate.
func (t *Tracker) CreateLesson(ctx context.Context, topic, difficulty string) *Lesson {
	t.mu.Lock()
	defer t.mu.Unlock()

	if difficulty == "" {
		difficulty = DefaultDifficulty
	}
	now := t.clock.Now()
	l := &Lesson{
		ID:         "lesson_" + uuid.NewString(),
		Topic:      topic,
		Difficulty: difficulty,
		CreatedAt:  now,
		Concepts:   []*Concept{},
		Practice:   Practice{Exercises: []*Exercise{}},
		Quiz:       Quiz{Questions: []*QuizQuestion{}},
		Analytics: Analytics{
			Strengths:       []string{},
			Weaknesses:      []string{},
			EngagementLevel: EngagementLow,
		},
	}
	t.lessons[l.ID] = l

	tp := t.progress[topic]
	if tp == nil {
		tp = &TopicProgress{Lessons: []string{}}
		t.progress[topic] = tp
	}
	tp.Lessons = append(tp.Lessons, l.ID)

	t.touch(ctx, l)
	return l.clone()
}

// AddConcept appends a concept to the lesson. Returns nil if the lesson
// does not exist.
func (t *Tracker) AddConcept(ctx context.Context, lessonID string, in ConceptInput) *Concept {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return nil
	}
	c := &Concept{
		ID:             "concept_" + uuid.NewString(),
		Title:          in.Title,
		Explanation:    in.Explanation,
		Examples:       nonNil(in.Examples),
		CheckQuestions: nonNil(in.CheckQuestions),
	}
	l.Concepts = append(l.Concepts, c)

	t.touch(ctx, l)
	return c.clone()
}

// AddExercise appends a practice exercise to the lesson. Returns nil if the
// lesson does not exist.
func (t *Tracker) AddExercise(ctx context.Context, lessonID string, in ExerciseInput) *Exercise {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return nil
	}
	e := &Exercise{
		ID:            "exercise_" + uuid.NewString(),
		Question:      in.Question,
		Type:          in.Type,
		Options:       cloneOptions(in.Options),
		CorrectAnswer: in.CorrectAnswer,
		Hints:         nonNil(in.Hints),
	}
	l.Practice.Exercises = append(l.Practice.Exercises, e)

	t.touch(ctx, l)
	return e.clone()
}

// CompleteConcept marks a concept of the lesson completed with the given
// understanding. Unknown lessons or concepts are ignored.
func (t *Tracker) CompleteConcept(ctx context.Context, lessonID, conceptID string, understood bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return
	}
	c := l.concept(conceptID)
	if c == nil {
		return
	}
	c.Completed = true
	c.Understood = &understood

	t.touch(ctx, l)
}

// CompleteIntroduction marks the lesson's introduction done.
func (t *Tracker) CompleteIntroduction(ctx context.Context, lessonID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return
	}
	if l.Introduction.StartedAt == nil {
		now := t.clock.Now()
		l.Introduction.StartedAt = &now
	}
	l.Introduction.Completed = true

	t.touch(ctx, l)
}

// CompleteSummary marks the lesson's summary done and stores the notes.
func (t *Tracker) CompleteSummary(ctx context.Context, lessonID, notes string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return
	}
	l.Summary.Completed = true
	l.Summary.Notes = notes

	t.touch(ctx, l)
}

// RecordTime adds time spent to the lesson, its topic and the addressed
// concept or exercise. Non-positive durations are ignored.
func (t *Tracker) RecordTime(ctx context.Context, lessonID string, e TimeEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil || e.Seconds <= 0 {
		return
	}

	switch e.Section {
	case SectionIntroduction:
		if l.Introduction.StartedAt == nil {
			now := t.clock.Now()
			l.Introduction.StartedAt = &now
		}
		l.Introduction.Duration += e.Seconds
	case SectionConcepts:
		if c := l.concept(e.ItemID); c != nil {
			c.TimeSpent += e.Seconds
		}
	case SectionPractice:
		if ex := l.exercise(e.ItemID); ex != nil {
			ex.TimeSpent += e.Seconds
		}
	}

	l.Progress.TimeSpent += e.Seconds
	if tp := t.progress[l.Topic]; tp != nil {
		tp.TotalTimeSpent += e.Seconds
	}

	t.touch(ctx, l)
}

// SetMasteryLevel stores an externally computed mastery level for topic.
// Unknown topics are ignored.
func (t *Tracker) SetMasteryLevel(ctx context.Context, topic string, level float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp := t.progress[topic]
	if tp == nil {
		return
	}
	tp.MasteryLevel = level
	t.save(ctx)
}

// ListTopics returns all tracked topics in name order.
func (t *Tracker) ListTopics() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sortedTopics()
}

func (t *Tracker) sortedTopics() []string {
	topics := make([]string, 0, len(t.progress))
	for topic := range t.progress {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// ListLessons returns copies of the topic's lessons in creation order.
func (t *Tracker) ListLessons(topic string) []*Lesson {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp := t.progress[topic]
	if tp == nil {
		return nil
	}
	out := make([]*Lesson, 0, len(tp.Lessons))
	for _, id := range tp.Lessons {
		if l := t.lessons[id]; l != nil {
			out = append(out, l.clone())
		}
	}
	return out
}

// GetLesson returns a copy of the lesson, or nil if it does not exist.
func (t *Tracker) GetLesson(lessonID string) *Lesson {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lessons[lessonID].clone()
}

func (l *Lesson) concept(id string) *Concept {
	for _, c := range l.Concepts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (l *Lesson) exercise(id string) *Exercise {
	for _, e := range l.Practice.Exercises {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}
