// Package lessonplan loads authored lesson plans and applies them to a
// lesson tracker in one step.
package lessonplan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/abhisek/tutor/internal/lessons"
)

// Plan is a complete authored lesson.
type Plan struct {
	Topic      string                      `json:"topic"`
	Difficulty string                      `json:"difficulty,omitempty"`
	Concepts   []lessons.ConceptInput      `json:"concepts,omitempty"`
	Exercises  []lessons.ExerciseInput     `json:"exercises,omitempty"`
	Quiz       []lessons.QuizQuestionInput `json:"quiz,omitempty"`
}

// Parse validates raw and decodes it into a Plan.
func Parse(raw []byte) (*Plan, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var p Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &ErrInvalidPlan{Err: err}
	}
	return &p, nil
}

// ReadFile parses the plan stored at path.
func ReadFile(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(raw)
}

// Apply creates a lesson from p on t: the lesson, then its concepts,
// exercises and quiz, in document order. It returns the finished lesson.
func Apply(ctx context.Context, t *lessons.Tracker, p *Plan) (*lessons.Lesson, error) {
	l := t.CreateLesson(ctx, p.Topic, p.Difficulty)

	for i, c := range p.Concepts {
		if t.AddConcept(ctx, l.ID, c) == nil {
			return nil, fmt.Errorf("add concept %d to %s", i, l.ID)
		}
	}
	for i, e := range p.Exercises {
		if t.AddExercise(ctx, l.ID, e) == nil {
			return nil, fmt.Errorf("add exercise %d to %s", i, l.ID)
		}
	}
	if len(p.Quiz) > 0 {
		t.CreateQuiz(ctx, l.ID, p.Quiz)
	}

	return t.GetLesson(l.ID), nil
}
