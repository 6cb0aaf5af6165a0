package lessons

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutor/internal/clock"
	"github.com/abhisek/tutor/internal/store"
)

var testStart = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	tracker *Tracker
	kv      store.KV
	clock   *clock.Manual
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T, kv store.KV, opts ...Option) *testEnv {
	t.Helper()
	if kv == nil {
		kv = store.NewMemoryKV()
	}
	env := &testEnv{kv: kv, clock: clock.NewManual(testStart), logs: &bytes.Buffer{}}
	opts = append([]Option{
		WithClock(env.clock),
		WithLogger(log.New(env.logs, "", 0)),
	}, opts...)
	env.tracker = NewTracker(context.Background(), kv, opts...)
	return env
}

// assertProgressConsistent recomputes the lesson's percentage from scratch.
func assertProgressConsistent(t *testing.T, tr *Tracker, lessonID string) {
	t.Helper()
	l := tr.GetLesson(lessonID)
	require.NotNil(t, l)
	completed, total := Units(l)
	want := 0
	if total > 0 {
		want = int(float64(100*completed)/float64(total) + 0.5)
	}
	assert.Equal(t, want, l.Progress.Percentage, "progress percentage")
	assert.GreaterOrEqual(t, l.Progress.Percentage, 0)
	assert.LessOrEqual(t, l.Progress.Percentage, 100)
}

func TestEndToEnd_Photosynthesis(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	lesson := tr.CreateLesson(ctx, "Photosynthesis", "")
	require.NotNil(t, lesson)

	concept := tr.AddConcept(ctx, lesson.ID, ConceptInput{Title: "Chlorophyll"})
	require.NotNil(t, concept)
	tr.CompleteConcept(ctx, lesson.ID, concept.ID, true)

	tr.CreateQuiz(ctx, lesson.ID, []QuizQuestionInput{{Question: "Q1", CorrectAnswer: "A"}})
	res, err := tr.SubmitQuiz(ctx, lesson.ID, []string{"A"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 1, res.Total)
	assert.True(t, res.Passed)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "quiz_q1", res.Questions[0].ID)

	got := tr.GetLesson(lesson.ID)
	assert.Equal(t, []string{"Chlorophyll"}, got.Analytics.Strengths)
	assert.Empty(t, got.Analytics.Weaknesses)
	assert.Equal(t, 60, got.Analytics.ComprehensionScore)
	// concept + quiz done of intro, concept, quiz, summary
	assert.Equal(t, 50, got.Progress.Percentage)
	assertProgressConsistent(t, tr, lesson.ID)
}

func TestCreateLesson_Defaults(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Spanish", "")
	assert.Equal(t, DefaultDifficulty, l.Difficulty)
	assert.Equal(t, 0, l.Progress.Percentage)
	assert.Equal(t, SectionIntroduction, l.Progress.CurrentSection)
	assert.True(t, l.CreatedAt.Equal(testStart))
	assert.Equal(t, EngagementLow, l.Analytics.EngagementLevel)

	hard := tr.CreateLesson(ctx, "Spanish", "advanced")
	assert.Equal(t, "advanced", hard.Difficulty)
	assert.NotEqual(t, l.ID, hard.ID)

	tp := tr.GetTopicProgress("Spanish")
	require.NotNil(t, tp)
	assert.Equal(t, []string{l.ID, hard.ID}, tp.Lessons)
	assert.Nil(t, tr.GetTopicProgress("French"))
}

func TestIntroductionAndSummary(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Go", "")
	tr.CompleteIntroduction(ctx, l.ID)

	got := tr.GetLesson(l.ID)
	assert.Equal(t, 50, got.Progress.Percentage)
	require.NotNil(t, got.Introduction.StartedAt)
	assert.True(t, got.Introduction.StartedAt.Equal(testStart))

	tr.CompleteSummary(ctx, l.ID, "channels are typed pipes")
	got = tr.GetLesson(l.ID)
	assert.Equal(t, 100, got.Progress.Percentage)
	assert.Equal(t, SectionComplete, got.Progress.CurrentSection)
	assert.Equal(t, "channels are typed pipes", got.Summary.Notes)
}

func TestUnknownLesson_FailsSoft(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	assert.Nil(t, tr.AddConcept(ctx, "missing", ConceptInput{Title: "x"}))
	assert.Nil(t, tr.AddExercise(ctx, "missing", ExerciseInput{Question: "q"}))
	assert.Nil(t, tr.SubmitExercise(ctx, "missing", "e", "a"))
	assert.Nil(t, tr.GetLesson("missing"))
	assert.Nil(t, tr.GetLessonSummary("missing"))
	assert.Nil(t, tr.ExportLesson("missing"))

	res, err := tr.SubmitQuiz(ctx, "missing", []string{"A"})
	assert.NoError(t, err)
	assert.Nil(t, res)

	// No-ops must not panic.
	tr.CompleteConcept(ctx, "missing", "c", true)
	tr.CreateQuiz(ctx, "missing", []QuizQuestionInput{{Question: "q"}})
	tr.CompleteIntroduction(ctx, "missing")
	tr.CompleteSummary(ctx, "missing", "")
	tr.RecordTime(ctx, "missing", TimeEntry{Section: SectionIntroduction, Seconds: 10})
	tr.SetMasteryLevel(ctx, "missing", 0.5)

	assert.Empty(t, tr.ListTopics())
	assert.Equal(t, "", tr.GetRecommendedTopic())
}

func TestCompleteConcept_ScopedToLesson(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	a := tr.CreateLesson(ctx, "Biology", "")
	b := tr.CreateLesson(ctx, "Biology", "")
	c := tr.AddConcept(ctx, a.ID, ConceptInput{Title: "Cells"})
	tr.AddConcept(ctx, b.ID, ConceptInput{Title: "Cells"})

	tr.CompleteConcept(ctx, b.ID, c.ID, true)
	assert.False(t, tr.GetLesson(a.ID).Concepts[0].Completed)
	assert.False(t, tr.GetLesson(b.ID).Concepts[0].Completed)

	tr.CompleteConcept(ctx, a.ID, c.ID, false)
	got := tr.GetLesson(a.ID).Concepts[0]
	assert.True(t, got.Completed)
	require.NotNil(t, got.Understood)
	assert.False(t, *got.Understood)
	assertProgressConsistent(t, tr, a.ID)
}

func TestAddExercise_IncrementsTotal(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Math", "")
	tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "1+1", Type: ExerciseOpenEnded, CorrectAnswer: "2"})
	tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "2+2", Type: ExerciseOpenEnded, CorrectAnswer: "4"})

	got := tr.GetLesson(l.ID)
	assert.Equal(t, 2, got.Practice.Total)
	assert.Equal(t, 0, got.Practice.Completed)
	assertProgressConsistent(t, tr, l.ID)
}

func TestSubmitExercise_Correct(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Photosynthesis", "")
	ex := tr.AddExercise(ctx, l.ID, ExerciseInput{
		Question:      "Which pigment absorbs light?",
		Type:          ExerciseOpenEnded,
		CorrectAnswer: "chlorophyll",
	})

	res := tr.SubmitExercise(ctx, l.ID, ex.ID, "It's CHLOROPHYLL")
	require.NotNil(t, res)
	require.NotNil(t, res.Correct)
	assert.True(t, *res.Correct)
	assert.Equal(t, "✅ Correct! Well done!", res.Feedback.Message)

	got := tr.GetLesson(l.ID)
	assert.Equal(t, 1, got.Practice.Completed)
	assert.Equal(t, 1, got.Practice.Exercises[0].Attempts)
	require.NotNil(t, got.Practice.Exercises[0].UserAnswer)
	assert.Equal(t, "It's CHLOROPHYLL", *got.Practice.Exercises[0].UserAnswer)
	assertProgressConsistent(t, tr, l.ID)
}

func TestSubmitExercise_RepeatedCorrectIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Quiz", "")
	ex := tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "Pick B", Type: ExerciseMultipleChoice, CorrectAnswer: "B"})

	for i := 0; i < 3; i++ {
		tr.SubmitExercise(ctx, l.ID, ex.ID, "B")
	}
	got := tr.GetLesson(l.ID)
	assert.Equal(t, 1, got.Practice.Completed)
	assert.Equal(t, 3, got.Practice.Exercises[0].Attempts)

	// A later wrong answer takes the exercise out of the completed count.
	tr.SubmitExercise(ctx, l.ID, ex.ID, "C")
	assert.Equal(t, 0, tr.GetLesson(l.ID).Practice.Completed)
	assertProgressConsistent(t, tr, l.ID)
}

func TestSubmitExercise_Ungraded(t *testing.T) {
	tests := []struct {
		name string
		in   ExerciseInput
	}{
		{"no correct answer", ExerciseInput{Question: "Explain", Type: ExerciseOpenEnded}},
		{"code type", ExerciseInput{Question: "Write it", Type: ExerciseCode, CorrectAnswer: "x := 1"}},
		{"problem solving", ExerciseInput{Question: "Solve", Type: ExerciseProblemSolving, CorrectAnswer: "42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			tr := env.tracker
			ctx := context.Background()

			l := tr.CreateLesson(ctx, "Topic", "")
			ex := tr.AddExercise(ctx, l.ID, tt.in)

			res := tr.SubmitExercise(ctx, l.ID, ex.ID, tt.in.CorrectAnswer)
			require.NotNil(t, res)
			assert.Nil(t, res.Correct)
			assert.Equal(t, 0, tr.GetLesson(l.ID).Practice.Completed)
		})
	}
}

func TestSubmitExercise_CustomGraderForCode(t *testing.T) {
	g := TypedGrader{Overrides: map[ExerciseType]Grader{
		ExerciseCode: GraderFunc(func(user, correct string, _ ExerciseType) bool { return user == correct }),
	}}
	env := newTestEnv(t, nil, WithGrader(g))
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Go", "")
	ex := tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "declare", Type: ExerciseCode, CorrectAnswer: "x := 1"})

	res := tr.SubmitExercise(ctx, l.ID, ex.ID, "x := 1")
	require.NotNil(t, res.Correct)
	assert.True(t, *res.Correct)
}

func TestSubmitExercise_PointerTypedGraderLeavesCodeUngraded(t *testing.T) {
	env := newTestEnv(t, nil, WithGrader(&TypedGrader{}))
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Go", "")
	code := tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "declare", Type: ExerciseCode, CorrectAnswer: "x"})
	mc := tr.AddExercise(ctx, l.ID, ExerciseInput{
		Question: "Pick", Type: ExerciseMultipleChoice, Options: []string{"A", "B"}, CorrectAnswer: "A",
	})

	res := tr.SubmitExercise(ctx, l.ID, code.ID, "y")
	require.NotNil(t, res)
	assert.Nil(t, res.Correct)

	res = tr.SubmitExercise(ctx, l.ID, mc.ID, "A")
	require.NotNil(t, res.Correct)
	assert.True(t, *res.Correct)
}

func TestAddExercise_CopiesCallerSlices(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Art", "")
	opts := []string{"Red", "Blue"}
	tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "Primary?", Type: ExerciseMultipleChoice, Options: opts, CorrectAnswer: "Red"})
	quizOpts := []string{"Yes", "No"}
	tr.CreateQuiz(ctx, l.ID, []QuizQuestionInput{{Question: "Warm?", Options: quizOpts, CorrectAnswer: "Yes"}})

	opts[0] = "Green"
	quizOpts[0] = "Maybe"

	got := tr.GetLesson(l.ID)
	assert.Equal(t, []string{"Red", "Blue"}, got.Practice.Exercises[0].Options)
	assert.Equal(t, []string{"Yes", "No"}, got.Quiz.Questions[0].Options)
}

func TestSubmitExercise_HintFeedback(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Spanish", "")
	ex := tr.AddExercise(ctx, l.ID, ExerciseInput{
		Question:      "Translate hola",
		Type:          ExerciseOpenEnded,
		CorrectAnswer: "hello",
		Hints:         []string{"It's a greeting", "Starts with h"},
	})
	bare := tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "Pick", Type: ExerciseMultipleChoice, CorrectAnswer: "A"})

	first := tr.SubmitExercise(ctx, l.ID, ex.ID, "bye")
	assert.Equal(t, "Try again. Hint: It's a greeting", first.Feedback.Suggestion)
	second := tr.SubmitExercise(ctx, l.ID, ex.ID, "bye")
	assert.Equal(t, "Try again. Hint: Starts with h", second.Feedback.Suggestion)
	third := tr.SubmitExercise(ctx, l.ID, ex.ID, "bye")
	assert.Equal(t, "Try again. Hint: It's a greeting", third.Feedback.Suggestion)

	noHint := tr.SubmitExercise(ctx, l.ID, bare.ID, "B")
	assert.Equal(t, "❌ Not quite right.", noHint.Feedback.Message)
	assert.Equal(t, "Review the concept and try again.", noHint.Feedback.Suggestion)
}

func TestSubmitQuiz_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "History", "")

	_, err := tr.SubmitQuiz(ctx, l.ID, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "quiz", verr.Field)

	tr.CreateQuiz(ctx, l.ID, []QuizQuestionInput{
		{Question: "Q1", CorrectAnswer: "A"},
		{Question: "Q2", CorrectAnswer: "B"},
	})
	_, err = tr.SubmitQuiz(ctx, l.ID, []string{"A"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "answers", verr.Field)

	got := tr.GetLesson(l.ID)
	assert.Nil(t, got.Quiz.Score)
	assert.Equal(t, 0, got.Quiz.Attempts)
}

func TestSubmitQuiz_PartialScore(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "History", "")
	tr.CreateQuiz(ctx, l.ID, []QuizQuestionInput{
		{Question: "Q1", CorrectAnswer: "A"},
		{Question: "Q2", CorrectAnswer: "B"},
		{Question: "Q3", CorrectAnswer: "C"},
	})

	res, err := tr.SubmitQuiz(ctx, l.ID, []string{"A", "B", "X"})
	require.NoError(t, err)
	assert.InDelta(t, 66.666, res.Score, 0.01)
	assert.Equal(t, 2, res.Correct)
	assert.False(t, res.Passed)
	require.NotNil(t, res.Questions[2].Correct)
	assert.False(t, *res.Questions[2].Correct)

	res, err = tr.SubmitQuiz(ctx, l.ID, []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 2, tr.GetLesson(l.ID).Quiz.Attempts)
}

func TestCreateQuiz_ReplacesQuestions(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Art", "")
	tr.CreateQuiz(ctx, l.ID, []QuizQuestionInput{{Question: "old", CorrectAnswer: "A"}})
	_, err := tr.SubmitQuiz(ctx, l.ID, []string{"A"})
	require.NoError(t, err)

	tr.CreateQuiz(ctx, l.ID, []QuizQuestionInput{
		{Question: "new 1", CorrectAnswer: "A"},
		{Question: "new 2", CorrectAnswer: "B", Options: []string{"A", "B"}},
	})
	got := tr.GetLesson(l.ID)
	require.Len(t, got.Quiz.Questions, 2)
	assert.Equal(t, "quiz_q2", got.Quiz.Questions[1].ID)
	assert.Nil(t, got.Quiz.Questions[1].Correct)
	assert.Nil(t, got.Quiz.Score)
	assert.Equal(t, 0, got.Quiz.Attempts)
	assertProgressConsistent(t, tr, l.ID)
}

func TestTopicOverallProgress_IsMeanOfLessons(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	a := tr.CreateLesson(ctx, "Chemistry", "")
	b := tr.CreateLesson(ctx, "Chemistry", "")
	tr.CompleteIntroduction(ctx, a.ID)
	tr.CompleteSummary(ctx, a.ID, "")
	tr.CompleteIntroduction(ctx, b.ID)

	// a = 100, b = 50
	assert.Equal(t, 75, tr.GetTopicProgress("Chemistry").OverallProgress)
}

func TestRecordTime(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Physics", "")
	c := tr.AddConcept(ctx, l.ID, ConceptInput{Title: "Inertia"})
	ex := tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "F=?", Type: ExerciseOpenEnded, CorrectAnswer: "ma"})

	tr.RecordTime(ctx, l.ID, TimeEntry{Section: SectionIntroduction, Seconds: 120})
	tr.RecordTime(ctx, l.ID, TimeEntry{Section: SectionConcepts, ItemID: c.ID, Seconds: 300})
	tr.RecordTime(ctx, l.ID, TimeEntry{Section: SectionPractice, ItemID: ex.ID, Seconds: 60})
	tr.RecordTime(ctx, l.ID, TimeEntry{Section: SectionQuiz, Seconds: -5})

	got := tr.GetLesson(l.ID)
	assert.Equal(t, 480, got.Progress.TimeSpent)
	assert.Equal(t, 120, got.Introduction.Duration)
	assert.Equal(t, 300, got.Concepts[0].TimeSpent)
	assert.Equal(t, 60, got.Practice.Exercises[0].TimeSpent)
	assert.Equal(t, 480, tr.GetTopicProgress("Physics").TotalTimeSpent)
	assert.Equal(t, 8, tr.GetLessonSummary(l.ID).TimeSpent)

	// 480s over concept+1 sections is high engagement.
	tr.CreateQuiz(ctx, l.ID, []QuizQuestionInput{{Question: "Q", CorrectAnswer: "A"}})
	_, err := tr.SubmitQuiz(ctx, l.ID, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, EngagementHigh, tr.GetLesson(l.ID).Analytics.EngagementLevel)
}

func TestRecommendedTopic(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	tr.CreateLesson(ctx, "Spanish", "")
	tr.CreateLesson(ctx, "Algebra", "")
	tr.CreateLesson(ctx, "Biology", "")

	// All zero: ties resolve by name.
	assert.Equal(t, "Algebra", tr.GetRecommendedTopic())

	tr.SetMasteryLevel(ctx, "Algebra", 0.9)
	tr.SetMasteryLevel(ctx, "Biology", 0.4)
	tr.SetMasteryLevel(ctx, "Spanish", 0.2)
	assert.Equal(t, "Spanish", tr.GetRecommendedTopic())
	assert.Equal(t, []string{"Algebra", "Biology", "Spanish"}, tr.ListTopics())
}

func TestExportLesson(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Music", "beginner")
	tr.AddConcept(ctx, l.ID, ConceptInput{Title: "Rhythm", Examples: []string{"4/4"}})
	env.clock.Advance(time.Hour)

	exp := tr.ExportLesson(l.ID)
	require.NotNil(t, exp)
	assert.Equal(t, l.ID, exp.Lesson.ID)
	assert.Equal(t, "Music", exp.Summary.Topic)
	assert.True(t, exp.ExportedAt.Equal(testStart.Add(time.Hour)))

	// The export is a copy.
	exp.Lesson.Concepts[0].Title = "changed"
	assert.Equal(t, "Rhythm", tr.GetLesson(l.ID).Concepts[0].Title)
}

func TestPersistence_RoundTrip(t *testing.T) {
	kv := store.NewMemoryKV()
	env := newTestEnv(t, kv)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Photosynthesis", "advanced")
	c := tr.AddConcept(ctx, l.ID, ConceptInput{Title: "Chlorophyll", Explanation: "green", Examples: []string{"leaf"}})
	tr.CompleteConcept(ctx, l.ID, c.ID, true)
	ex := tr.AddExercise(ctx, l.ID, ExerciseInput{
		Question: "Pick", Type: ExerciseMultipleChoice, Options: []string{"A", "B"}, CorrectAnswer: "A", Hints: []string{"first"},
	})
	tr.SubmitExercise(ctx, l.ID, ex.ID, "A")
	tr.CreateQuiz(ctx, l.ID, []QuizQuestionInput{{Question: "Q1", CorrectAnswer: "A", Explanation: "because"}})
	_, err := tr.SubmitQuiz(ctx, l.ID, []string{"A"})
	require.NoError(t, err)
	tr.RecordTime(ctx, l.ID, TimeEntry{Section: SectionIntroduction, Seconds: 30})
	tr.SetMasteryLevel(ctx, "Photosynthesis", 0.7)

	reloaded := NewTracker(ctx, kv, WithClock(env.clock), WithLogger(log.New(&bytes.Buffer{}, "", 0)))

	want, err := json.Marshal(tr.GetLesson(l.ID))
	require.NoError(t, err)
	got, err := json.Marshal(reloaded.GetLesson(l.ID))
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	assert.Equal(t, tr.GetTopicProgress("Photosynthesis"), reloaded.GetTopicProgress("Photosynthesis"))
	assert.Empty(t, env.logs.String())
}

func TestLoad_NullRecordsStartEmpty(t *testing.T) {
	tests := []struct {
		name     string
		progress string
		lessons  string
	}{
		{"null records", "null", "null"},
		{"null entries", `{"Ghost":null}`, `{"lesson_x":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := store.NewMemoryKV()
			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, ProgressKey, []byte(tt.progress)))
			require.NoError(t, kv.Set(ctx, LessonsKey, []byte(tt.lessons)))

			env := newTestEnv(t, kv)
			tr := env.tracker
			assert.Equal(t, "", tr.GetRecommendedTopic())
			assert.Empty(t, tr.ListTopics())
			assert.Nil(t, tr.GetLesson("lesson_x"))

			l := tr.CreateLesson(ctx, "Chemistry", "")
			require.NotNil(t, l)
			assert.Equal(t, "Chemistry", tr.GetRecommendedTopic())
			assert.Equal(t, []string{l.ID}, tr.GetTopicProgress("Chemistry").Lessons)
		})
	}
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store offline")
}
func (brokenKV) Set(context.Context, string, []byte) error { return errors.New("store offline") }

func TestPersistenceFailure_LoggedNotSurfaced(t *testing.T) {
	env := newTestEnv(t, brokenKV{})
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Offline", "")
	require.NotNil(t, l)
	c := tr.AddConcept(ctx, l.ID, ConceptInput{Title: "Still works"})
	require.NotNil(t, c)
	tr.CompleteConcept(ctx, l.ID, c.ID, true)

	assert.Equal(t, 33, tr.GetLesson(l.ID).Progress.Percentage)
	assert.Contains(t, env.logs.String(), "warning: load lesson progress")
	assert.Contains(t, env.logs.String(), "warning: save lessons")
}

func TestConcurrentSubmissions(t *testing.T) {
	env := newTestEnv(t, nil)
	tr := env.tracker
	ctx := context.Background()

	l := tr.CreateLesson(ctx, "Race", "")
	var ids []string
	for i := 0; i < 8; i++ {
		ex := tr.AddExercise(ctx, l.ID, ExerciseInput{Question: "q", Type: ExerciseMultipleChoice, CorrectAnswer: "A"})
		ids = append(ids, ex.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			tr.SubmitExercise(ctx, l.ID, id, "A")
		}(id)
	}
	wg.Wait()

	got := tr.GetLesson(l.ID)
	assert.Equal(t, 8, got.Practice.Completed)
	assertProgressConsistent(t, tr, l.ID)
}
