package lessons

import "strings"

// Grader decides whether a learner's answer matches the expected one.
type Grader interface {
	Grade(userAnswer, correctAnswer string, t ExerciseType) bool
}

// GraderFunc adapts a function to the Grader interface.
type GraderFunc func(userAnswer, correctAnswer string, t ExerciseType) bool

func (f GraderFunc) Grade(userAnswer, correctAnswer string, t ExerciseType) bool {
	return f(userAnswer, correctAnswer, t)
}

// DefaultGrader uses exact match for multiple-choice and case-insensitive
// containment for open-ended answers. Everything else is graded wrong.
type DefaultGrader struct{}

func (DefaultGrader) Grade(userAnswer, correctAnswer string, t ExerciseType) bool {
	switch t {
	case ExerciseMultipleChoice:
		return userAnswer == correctAnswer
	case ExerciseOpenEnded:
		return strings.Contains(strings.ToLower(userAnswer), strings.ToLower(correctAnswer))
	default:
		return false
	}
}

// TypedGrader routes grading by exercise type, falling back to Fallback
// for types without an override.
type TypedGrader struct {
	Overrides map[ExerciseType]Grader
	Fallback  Grader
}

func (g TypedGrader) Grade(userAnswer, correctAnswer string, t ExerciseType) bool {
	if o, ok := g.Overrides[t]; ok {
		return o.Grade(userAnswer, correctAnswer, t)
	}
	if g.Fallback == nil {
		return DefaultGrader{}.Grade(userAnswer, correctAnswer, t)
	}
	return g.Fallback.Grade(userAnswer, correctAnswer, t)
}

// Selective is implemented by graders that only understand some exercise
// types. Exercises of other types are left ungraded.
type Selective interface {
	Grades(t ExerciseType) bool
}

// Grades reports whether the default grader understands t.
func (DefaultGrader) Grades(t ExerciseType) bool {
	return t == ExerciseMultipleChoice || t == ExerciseOpenEnded
}

// Grades reports whether t has an override or the fallback understands it.
func (g TypedGrader) Grades(t ExerciseType) bool {
	if _, ok := g.Overrides[t]; ok {
		return true
	}
	if g.Fallback == nil {
		return DefaultGrader{}.Grades(t)
	}
	return grades(g.Fallback, t)
}

// grades reports whether g can produce a meaningful verdict for t.
// Graders that are not Selective are trusted with every type.
func grades(g Grader, t ExerciseType) bool {
	if sg, ok := g.(Selective); ok {
		return sg.Grades(t)
	}
	return true
}
