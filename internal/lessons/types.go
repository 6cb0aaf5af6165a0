package lessons

import "time"

// ExerciseType selects how an exercise answer is graded.
type ExerciseType string

const (
	ExerciseMultipleChoice ExerciseType = "multiple-choice"
	ExerciseOpenEnded      ExerciseType = "open-ended"
	ExerciseCode           ExerciseType = "code"
	ExerciseProblemSolving ExerciseType = "problem-solving"
)

// Section names a part of a lesson, in the order a learner works through it.
type Section string

const (
	SectionIntroduction Section = "introduction"
	SectionConcepts     Section = "concepts"
	SectionPractice     Section = "practice"
	SectionQuiz         Section = "quiz"
	SectionSummary      Section = "summary"
	SectionComplete     Section = "complete"
)

// EngagementLevel buckets the mean time spent per section.
type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// DefaultDifficulty is used when CreateLesson is called without one.
const DefaultDifficulty = "intermediate"

// Lesson is one structured learning unit for a topic.
type Lesson struct {
	ID           string       `json:"id"`
	Topic        string       `json:"topic"`
	Difficulty   string       `json:"difficulty"`
	CreatedAt    time.Time    `json:"createdAt"`
	Introduction Introduction `json:"introduction"`
	Concepts     []*Concept   `json:"concepts"`
	Practice     Practice     `json:"practice"`
	Quiz         Quiz         `json:"quiz"`
	Summary      SummaryPart  `json:"summary"`
	Progress     Progress     `json:"progress"`
	Analytics    Analytics    `json:"analytics"`
}

// Introduction is the opening section of a lesson.
type Introduction struct {
	Completed bool       `json:"completed"`
	Duration  int        `json:"duration"` // seconds
	StartedAt *time.Time `json:"startedAt"`
}

// Practice holds the lesson's exercises. Completed and Total are recomputed
// from Exercises after every mutation.
type Practice struct {
	Exercises []*Exercise `json:"exercises"`
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
}

// Quiz is the graded end-of-lesson check. Score is nil until submitted.
type Quiz struct {
	Questions []*QuizQuestion `json:"questions"`
	Score     *float64        `json:"score"`
	Attempts  int             `json:"attempts"`
}

// SummaryPart is the closing section of a lesson.
type SummaryPart struct {
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
}

// Progress is derived from the lesson's sections; never set it directly.
type Progress struct {
	Percentage     int       `json:"percentage"`
	CurrentSection Section   `json:"currentSection"`
	TimeSpent      int       `json:"timeSpent"` // seconds
	LastAccessed   time.Time `json:"lastAccessed"`
}

// Analytics is refreshed on quiz submission.
type Analytics struct {
	Strengths          []string        `json:"strengths"`
	Weaknesses         []string        `json:"weaknesses"`
	ComprehensionScore int             `json:"comprehensionScore"`
	EngagementLevel    EngagementLevel `json:"engagementLevel"`
}

// Concept is one teachable idea within a lesson.
type Concept struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Explanation    string   `json:"explanation"`
	Examples       []string `json:"examples"`
	CheckQuestions []string `json:"checkQuestions"`
	Completed      bool     `json:"completed"`
	Understood     *bool    `json:"understood"`
	TimeSpent      int      `json:"timeSpent"`
	Notes          string   `json:"notes"`
}

// Exercise is a practice item. Exercises without a CorrectAnswer are never
// auto-graded.
type Exercise struct {
	ID            string       `json:"id"`
	Question      string       `json:"question"`
	Type          ExerciseType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Hints         []string     `json:"hints"`
	UserAnswer    *string      `json:"userAnswer"`
	Correct       *bool        `json:"correct"`
	Attempts      int          `json:"attempts"`
	TimeSpent     int          `json:"timeSpent"`
}

// QuizQuestion is one question of a lesson's quiz.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	UserAnswer    *string  `json:"userAnswer"`
	Correct       *bool    `json:"correct"`
}

// TopicProgress aggregates all lessons of one topic.
type TopicProgress struct {
	Lessons         []string `json:"lessons"`
	TotalTimeSpent  int      `json:"totalTimeSpent"`
	OverallProgress int      `json:"overallProgress"`
	MasteryLevel    float64  `json:"masteryLevel"`
}

// ConceptInput is the authoring payload for AddConcept. Title is required.
type ConceptInput struct {
	Title          string   `json:"title"`
	Explanation    string   `json:"explanation,omitempty"`
	Examples       []string `json:"examples,omitempty"`
	CheckQuestions []string `json:"checkQuestions,omitempty"`
}

// ExerciseInput is the authoring payload for AddExercise. Question and Type
// are required; CorrectAnswer enables auto-grading.
type ExerciseInput struct {
	Question      string       `json:"question"`
	Type          ExerciseType `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Hints         []string     `json:"hints,omitempty"`
}

// QuizQuestionInput is the authoring payload for one CreateQuiz question.
type QuizQuestionInput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// TimeEntry records time a learner spent in one section. ItemID names the
// concept or exercise for those sections and is ignored otherwise.
type TimeEntry struct {
	Section Section `json:"section"`
	ItemID  string  `json:"itemId,omitempty"`
	Seconds int     `json:"seconds"`
}

// Feedback is the message shown after an exercise submission.
type Feedback struct {
	Message       string `json:"message"`
	Suggestion    string `json:"suggestion,omitempty"`
	Encouragement string `json:"encouragement"`
	NextStep      string `json:"nextStep,omitempty"`
}

// ExerciseResult is returned by SubmitExercise. Correct is nil for
// ungraded exercises.
type ExerciseResult struct {
	Correct  *bool    `json:"correct"`
	Feedback Feedback `json:"feedback"`
}

// QuizResult is returned by SubmitQuiz.
type QuizResult struct {
	Score     float64         `json:"score"`
	Correct   int             `json:"correct"`
	Total     int             `json:"total"`
	Passed    bool            `json:"passed"`
	Questions []*QuizQuestion `json:"questions"`
}

// LessonSummary is a compact read model of a lesson.
type LessonSummary struct {
	LessonID         string   `json:"lessonId"`
	Topic            string   `json:"topic"`
	Progress         int      `json:"progress"`
	TimeSpent        int      `json:"timeSpent"` // minutes
	Comprehension    int      `json:"comprehension"`
	Strengths        []string `json:"strengths"`
	Weaknesses       []string `json:"weaknesses"`
	QuizScore        *float64 `json:"quizScore"`
	PracticeComplete int      `json:"practiceComplete"`
	PracticeTotal    int      `json:"practiceTotal"`
}

// LessonExport is a read-only snapshot of a lesson for download.
type LessonExport struct {
	Lesson     *Lesson        `json:"lesson"`
	Summary    *LessonSummary `json:"summary"`
	ExportedAt time.Time      `json:"exportedAt"`
}
