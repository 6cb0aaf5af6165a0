package spacedrep

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/tutor/internal/clock"
	"github.com/abhisek/tutor/internal/store"
)

// Scheduler owns flashcards partitioned by topic and schedules their
// reviews. Every mutating call persists the whole deck before returning.
type Scheduler struct {
	mu    sync.Mutex
	cards map[string][]*Flashcard

	kv     store.KV
	clock  clock.Clock
	logger *log.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLogger sets where persistence warnings are written.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// NewScheduler creates a scheduler, loading flashcards from kv.
func NewScheduler(ctx context.Context, kv store.KV, opts ...Option) *Scheduler {
	s := &Scheduler{
		cards:  make(map[string][]*Flashcard),
		kv:     kv,
		clock:  clock.System,
		logger: log.New(os.Stderr, "tutor: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

// ValidationError reports an out-of-range review grade.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CreateCard adds a new card to topic's deck, due immediately.
func (s *Scheduler) CreateCard(ctx context.Context, topic, question, answer string, tags []string) *Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	c := &Flashcard{
		ID:          "card_" + uuid.NewString(),
		Topic:       topic,
		Question:    question,
		Answer:      answer,
		Tags:        append([]string{}, tags...),
		CreatedAt:   now,
		Interval:    InitialInterval,
		Repetitions: 0,
		EaseFactor:  InitialEaseFactor,
		NextReview:  now,
		Bucket:      MinBucket,
	}
	s.cards[topic] = append(s.cards[topic], c)
	s.save(ctx)
	return c.clone()
}

// ReviewCard records a recall graded 0 (blackout) to 5 (perfect) and
// reschedules the card. Returns nil, nil if the card is not in topic.
func (s *Scheduler) ReviewCard(ctx context.Context, topic, cardID string, quality int) (*ReviewResult, error) {
	if quality < MinQuality || quality > MaxQuality {
		return nil, &ValidationError{
			Field:  "quality",
			Reason: fmt.Sprintf("%d is outside %d..%d", quality, MinQuality, MaxQuality),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.find(topic, cardID)
	if c == nil {
		return nil, nil
	}
	res := Review(c, quality, s.clock.Now())
	s.save(ctx)
	return &res, nil
}

// GetDueCards returns copies of topic's cards due now, earliest first.
// Unknown topics yield an empty slice.
func (s *Scheduler) GetDueCards(topic string) []*Flashcard {
	return s.GetDueCardsBy(topic, s.clock.Now())
}

// GetDueCardsBy is GetDueCards evaluated at an arbitrary instant, e.g.
// the end of the current day.
func (s *Scheduler) GetDueCardsBy(topic string, now time.Time) []*Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := []*Flashcard{}
	for _, c := range s.cards[topic] {
		if c.IsDue(now) {
			due = append(due, c.clone())
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReview.Before(due[j].NextReview)
	})
	return due
}

// Stats counts a deck's cards by learning stage. The groups overlap:
// a mastered card that is due also counts as review.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
	Mastered int `json:"mastered"`
}

// GetStats returns topic's deck statistics, or nil for unknown topics.
func (s *Scheduler) GetStats(topic string) *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, ok := s.cards[topic]
	if !ok {
		return nil
	}
	now := s.clock.Now()
	st := &Stats{Total: len(cards)}
	for _, c := range cards {
		if c.Repetitions == 0 {
			st.New++
		}
		if c.Bucket <= 2 && c.Repetitions > 0 {
			st.Learning++
		}
		if c.Bucket >= 3 && c.IsDue(now) {
			st.Review++
		}
		if c.Bucket == MaxBucket {
			st.Mastered++
		}
	}
	return st
}

// GetCard returns a copy of one card, or nil.
func (s *Scheduler) GetCard(topic, cardID string) *Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(topic, cardID).clone()
}

// Cards returns copies of every card in topic's deck, in creation order.
func (s *Scheduler) Cards(topic string) []*Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Flashcard, 0, len(s.cards[topic]))
	for _, c := range s.cards[topic] {
		out = append(out, c.clone())
	}
	return out
}

// Topics returns every topic with a deck, in name order.
func (s *Scheduler) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics := make([]string, 0, len(s.cards))
	for topic := range s.cards {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// DueCount returns the number of due cards per topic, omitting topics
// with nothing due.
func (s *Scheduler) DueCount() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	counts := make(map[string]int)
	for topic, cards := range s.cards {
		for _, c := range cards {
			if c.IsDue(now) {
				counts[topic]++
			}
		}
	}
	return counts
}

func (s *Scheduler) find(topic, cardID string) *Flashcard {
	for _, c := range s.cards[topic] {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}
