package lessons

import (
	"context"
	"fmt"
)

// CreateQuiz replaces the lesson's quiz with the given questions, all
// ungraded. Question ids are quiz_q1..quiz_qN. Any previous score and
// attempt count are cleared. Unknown lessons are ignored.
func (t *Tracker) CreateQuiz(ctx context.Context, lessonID string, questions []QuizQuestionInput) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return
	}

	qs := make([]*QuizQuestion, len(questions))
	for i, q := range questions {
		qs[i] = &QuizQuestion{
			ID:            fmt.Sprintf("quiz_q%d", i+1),
			Question:      q.Question,
			Options:       cloneOptions(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
	}
	l.Quiz = Quiz{Questions: qs}

	t.touch(ctx, l)
}

// SubmitQuiz grades answers positionally against the quiz questions.
// Returns nil, nil if the lesson does not exist, and a *ValidationError if
// the quiz is empty or the answer count differs from the question count.
func (t *Tracker) SubmitQuiz(ctx context.Context, lessonID string, answers []string) (*QuizResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return nil, nil
	}
	total := len(l.Quiz.Questions)
	if total == 0 {
		return nil, &ValidationError{Field: "quiz", Reason: "quiz has no questions"}
	}
	if len(answers) != total {
		return nil, &ValidationError{
			Field:  "answers",
			Reason: fmt.Sprintf("got %d answers for %d questions", len(answers), total),
		}
	}

	correct := 0
	for i, q := range l.Quiz.Questions {
		answer := answers[i]
		ok := answer == q.CorrectAnswer
		q.UserAnswer = &answer
		q.Correct = &ok
		if ok {
			correct++
		}
	}

	score := 100 * float64(correct) / float64(total)
	l.Quiz.Score = &score
	l.Quiz.Attempts++

	// Practice totals feed the comprehension score, so refresh them first.
	refresh(l, t.clock.Now())
	updateAnalytics(l, score, t.cfg)
	t.touch(ctx, l)

	return &QuizResult{
		Score:     score,
		Correct:   correct,
		Total:     total,
		Passed:    score >= t.cfg.PassingScore,
		Questions: cloneQuestions(l.Quiz.Questions),
	}, nil
}
