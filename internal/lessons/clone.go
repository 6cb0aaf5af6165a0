package lessons

// Accessors hand out deep copies so callers cannot mutate tracked state
// behind the tracker's back.

func (l *Lesson) clone() *Lesson {
	if l == nil {
		return nil
	}
	cp := *l
	if l.Introduction.StartedAt != nil {
		t := *l.Introduction.StartedAt
		cp.Introduction.StartedAt = &t
	}
	cp.Concepts = make([]*Concept, len(l.Concepts))
	for i, c := range l.Concepts {
		cp.Concepts[i] = c.clone()
	}
	cp.Practice.Exercises = make([]*Exercise, len(l.Practice.Exercises))
	for i, e := range l.Practice.Exercises {
		cp.Practice.Exercises[i] = e.clone()
	}
	cp.Quiz.Questions = cloneQuestions(l.Quiz.Questions)
	cp.Quiz.Score = clonePtr(l.Quiz.Score)
	cp.Analytics.Strengths = append([]string{}, l.Analytics.Strengths...)
	cp.Analytics.Weaknesses = append([]string{}, l.Analytics.Weaknesses...)
	return &cp
}

func (c *Concept) clone() *Concept {
	cp := *c
	cp.Examples = append([]string{}, c.Examples...)
	cp.CheckQuestions = append([]string{}, c.CheckQuestions...)
	cp.Understood = clonePtr(c.Understood)
	return &cp
}

func (e *Exercise) clone() *Exercise {
	cp := *e
	cp.Options = cloneOptions(e.Options)
	cp.Hints = append([]string{}, e.Hints...)
	cp.UserAnswer = clonePtr(e.UserAnswer)
	cp.Correct = clonePtr(e.Correct)
	return &cp
}

func cloneQuestions(qs []*QuizQuestion) []*QuizQuestion {
	out := make([]*QuizQuestion, len(qs))
	for i, q := range qs {
		cp := *q
		cp.Options = cloneOptions(q.Options)
		cp.UserAnswer = clonePtr(q.UserAnswer)
		cp.Correct = clonePtr(q.Correct)
		out[i] = &cp
	}
	return out
}

// cloneOptions copies an options list, keeping nil for exercise types
// that have none.
func cloneOptions(opts []string) []string {
	if opts == nil {
		return nil
	}
	return append([]string{}, opts...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
