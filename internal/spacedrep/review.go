package spacedrep

import "time"

// Flashcard is one question/answer card in a topic's deck.
type Flashcard struct {
	ID           string     `json:"id"`
	Topic        string     `json:"topic"`
	Question     string     `json:"question"`
	Answer       string     `json:"answer"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"createdAt"`
	Interval     int        `json:"interval"` // days
	Repetitions  int        `json:"repetitions"`
	EaseFactor   float64    `json:"easeFactor"`
	NextReview   time.Time  `json:"nextReview"`
	LastReviewed *time.Time `json:"lastReviewed"`
	Bucket       int        `json:"bucket"`
}

// IsDue returns true if the card is due for review (at or past NextReview).
func (c *Flashcard) IsDue(now time.Time) bool {
	return !now.Before(c.NextReview)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func (c *Flashcard) OverdueDays(now time.Time) float64 {
	if now.Before(c.NextReview) {
		return 0
	}
	return now.Sub(c.NextReview).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (c *Flashcard) DaysUntilReview(now time.Time) int {
	if c.IsDue(now) {
		return 0
	}
	return int(c.NextReview.Sub(now).Hours()/24.0) + 1
}

// CardStatus describes a card's place in the learning pipeline for display.
type CardStatus string

const (
	StatusNew      CardStatus = "new"
	StatusLearning CardStatus = "learning"
	StatusReview   CardStatus = "review"
	StatusMastered CardStatus = "mastered"
)

// Status classifies the card. Mastered wins over review.
func (c *Flashcard) Status() CardStatus {
	switch {
	case c.Repetitions == 0:
		return StatusNew
	case c.Bucket >= MaxBucket:
		return StatusMastered
	case c.Bucket <= 2:
		return StatusLearning
	default:
		return StatusReview
	}
}

func (c *Flashcard) clone() *Flashcard {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Tags = append([]string{}, c.Tags...)
	if c.LastReviewed != nil {
		t := *c.LastReviewed
		cp.LastReviewed = &t
	}
	return &cp
}
