package lessons

import (
	"math"
	"time"
)

// Units counts completed and total progress units of a lesson. The
// introduction and summary are one unit each, every concept and exercise
// is one unit, and the quiz is one unit once it has questions.
func Units(l *Lesson) (completed, total int) {
	total++
	if l.Introduction.Completed {
		completed++
	}

	total += len(l.Concepts)
	for _, c := range l.Concepts {
		if c.Completed {
			completed++
		}
	}

	total += len(l.Practice.Exercises)
	completed += correctExercises(l)

	if len(l.Quiz.Questions) > 0 {
		total++
		if l.Quiz.Score != nil {
			completed++
		}
	}

	total++
	if l.Summary.Completed {
		completed++
	}
	return completed, total
}

// Percentage returns round(100 * completed / total) for the lesson.
func Percentage(l *Lesson) int {
	completed, total := Units(l)
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// CurrentSection returns the first section with outstanding work.
func CurrentSection(l *Lesson) Section {
	if !l.Introduction.Completed {
		return SectionIntroduction
	}
	for _, c := range l.Concepts {
		if !c.Completed {
			return SectionConcepts
		}
	}
	if correctExercises(l) < len(l.Practice.Exercises) {
		return SectionPractice
	}
	if len(l.Quiz.Questions) > 0 && l.Quiz.Score == nil {
		return SectionQuiz
	}
	if !l.Summary.Completed {
		return SectionSummary
	}
	return SectionComplete
}

func correctExercises(l *Lesson) int {
	n := 0
	for _, e := range l.Practice.Exercises {
		if e.Correct != nil && *e.Correct {
			n++
		}
	}
	return n
}

// refresh recomputes every derived progress field of l.
func refresh(l *Lesson, now time.Time) {
	l.Practice.Total = len(l.Practice.Exercises)
	l.Practice.Completed = correctExercises(l)
	l.Progress.Percentage = Percentage(l)
	l.Progress.CurrentSection = CurrentSection(l)
	l.Progress.LastAccessed = now
}

// practiceRate is the percentage of exercises answered correctly, 0 when
// the lesson has none.
func practiceRate(l *Lesson) float64 {
	if l.Practice.Total == 0 {
		return 0
	}
	return 100 * float64(l.Practice.Completed) / float64(l.Practice.Total)
}

// updateAnalytics refreshes comprehension, strengths, weaknesses and
// engagement after a quiz submission.
func updateAnalytics(l *Lesson, quizScore float64, cfg Config) {
	a := &l.Analytics
	a.ComprehensionScore = int(math.Round(quizScore*cfg.QuizWeight + practiceRate(l)*cfg.PracticeWeight))

	a.Strengths = []string{}
	a.Weaknesses = []string{}
	for _, c := range l.Concepts {
		if c.Understood == nil {
			continue
		}
		if *c.Understood {
			a.Strengths = append(a.Strengths, c.Title)
		} else {
			a.Weaknesses = append(a.Weaknesses, c.Title)
		}
	}

	perSection := float64(l.Progress.TimeSpent) / float64(len(l.Concepts)+1)
	switch {
	case perSection > cfg.HighEngagementSecs:
		a.EngagementLevel = EngagementHigh
	case perSection > cfg.MediumEngagementSecs:
		a.EngagementLevel = EngagementMedium
	default:
		a.EngagementLevel = EngagementLow
	}
}
