package lessons

import (
	"context"
	"fmt"
)

// SubmitExercise records an answer to one of the lesson's exercises and
// grades it when the exercise has a correct answer the grader understands.
// Returns nil if the lesson or exercise does not exist.
//
// Practice completion is the count of exercises currently graded correct,
// so submitting a correct answer twice does not count twice.
func (t *Tracker) SubmitExercise(ctx context.Context, lessonID, exerciseID, answer string) *ExerciseResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return nil
	}
	e := l.exercise(exerciseID)
	if e == nil {
		return nil
	}

	e.UserAnswer = &answer
	e.Attempts++

	if e.CorrectAnswer != "" && grades(t.grader, e.Type) {
		ok := t.grader.Grade(answer, e.CorrectAnswer, e.Type)
		e.Correct = &ok
	}

	t.touch(ctx, l)

	return &ExerciseResult{
		Correct:  clonePtr(e.Correct),
		Feedback: feedbackFor(e),
	}
}

func feedbackFor(e *Exercise) Feedback {
	switch {
	case e.Correct == nil:
		return Feedback{
			Message:       "📝 Answer recorded.",
			Encouragement: "Compare your answer with the explanation before moving on.",
			NextStep:      "Continue to the next exercise.",
		}
	case *e.Correct:
		return Feedback{
			Message:       "✅ Correct! Well done!",
			Encouragement: "You're mastering this concept.",
			NextStep:      "Continue to the next exercise.",
		}
	}

	suggestion := "Review the concept and try again."
	if hint := hintFor(e); hint != "" {
		suggestion = fmt.Sprintf("Try again. Hint: %s", hint)
	}
	return Feedback{
		Message:       "❌ Not quite right.",
		Suggestion:    suggestion,
		Encouragement: "Learning from mistakes is part of the process!",
	}
}

// hintFor returns the hint matching the attempt number, falling back to
// the first hint once they run out.
func hintFor(e *Exercise) string {
	if len(e.Hints) == 0 {
		return ""
	}
	if i := e.Attempts - 1; i >= 0 && i < len(e.Hints) && e.Hints[i] != "" {
		return e.Hints[i]
	}
	return e.Hints[0]
}
