package lessons

import "math"

// GetLessonSummary returns a compact view of the lesson, or nil if it does
// not exist. TimeSpent is reported in whole minutes.
func (t *Tracker) GetLessonSummary(lessonID string) *LessonSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return summarize(t.lessons[lessonID])
}

func summarize(l *Lesson) *LessonSummary {
	if l == nil {
		return nil
	}
	return &LessonSummary{
		LessonID:         l.ID,
		Topic:            l.Topic,
		Progress:         l.Progress.Percentage,
		TimeSpent:        int(math.Round(float64(l.Progress.TimeSpent) / 60)),
		Comprehension:    l.Analytics.ComprehensionScore,
		Strengths:        append([]string{}, l.Analytics.Strengths...),
		Weaknesses:       append([]string{}, l.Analytics.Weaknesses...),
		QuizScore:        clonePtr(l.Quiz.Score),
		PracticeComplete: l.Practice.Completed,
		PracticeTotal:    l.Practice.Total,
	}
}

// GetTopicProgress returns a copy of the topic's progress record, or nil.
func (t *Tracker) GetTopicProgress(topic string) *TopicProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp := t.progress[topic]
	if tp == nil {
		return nil
	}
	cp := *tp
	cp.Lessons = append([]string{}, tp.Lessons...)
	return &cp
}

// GetRecommendedTopic returns the topic with the lowest mastery level,
// breaking ties by topic name. Returns "" when no topics are tracked.
func (t *Tracker) GetRecommendedTopic() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	topics := t.sortedTopics()
	if len(topics) == 0 {
		return ""
	}
	best := topics[0]
	for _, topic := range topics[1:] {
		if t.progress[topic].MasteryLevel < t.progress[best].MasteryLevel {
			best = topic
		}
	}
	return best
}

// ExportLesson returns a snapshot of the lesson with its summary, or nil.
func (t *Tracker) ExportLesson(lessonID string) *LessonExport {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.lessons[lessonID]
	if l == nil {
		return nil
	}
	return &LessonExport{
		Lesson:     l.clone(),
		Summary:    summarize(l),
		ExportedAt: t.clock.Now(),
	}
}
