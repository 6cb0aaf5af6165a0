package lessons

// Config holds the grading and analytics thresholds of a Tracker.
type Config struct {
	// PassingScore is the minimum quiz score (0-100) that counts as passed.
	PassingScore float64

	// QuizWeight and PracticeWeight blend quiz score and practice
	// completion rate into the comprehension score.
	QuizWeight     float64
	PracticeWeight float64

	// HighEngagementSecs and MediumEngagementSecs bound the mean seconds
	// per section for each engagement level (strictly greater than).
	HighEngagementSecs   float64
	MediumEngagementSecs float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		PassingScore:         70,
		QuizWeight:           0.6,
		PracticeWeight:       0.4,
		HighEngagementSecs:   180,
		MediumEngagementSecs: 60,
	}
}
