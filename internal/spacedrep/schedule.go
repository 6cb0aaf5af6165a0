package spacedrep

import (
	"math"
	"time"
)

// Day is the length of one scheduling interval unit.
const Day = 24 * time.Hour

const (
	// InitialInterval is the interval of a new card and after any failed review.
	InitialInterval = 1

	// SecondInterval is the interval after the second consecutive pass.
	SecondInterval = 6

	// MaxInterval caps growth so NextReview stays within time.Duration.
	MaxInterval = 36500

	// InitialEaseFactor is the ease factor of a new card.
	InitialEaseFactor = 2.5

	// MinEaseFactor is the floor the ease factor never drops below.
	MinEaseFactor = 1.3

	// PassQuality is the lowest quality that counts as successful recall.
	PassQuality = 3

	// PromoteQuality and PromoteRepetitions gate a bucket promotion.
	PromoteQuality     = 4
	PromoteRepetitions = 3

	MinBucket = 1
	MaxBucket = 5

	MinQuality = 0
	MaxQuality = 5
)

// ReviewResult is the schedule produced by one review.
type ReviewResult struct {
	NextReview time.Time `json:"nextReview"`
	Interval   int       `json:"interval"`
	Bucket     int       `json:"bucket"`
}

// Review applies one graded recall to c using the SM-2 rules and returns
// the new schedule. quality must be in [MinQuality, MaxQuality].
//
// A failed recall resets repetitions and interval and drops one bucket.
// A pass grows the interval (1, 6, then interval*ease), adjusts the ease
// factor, and promotes one bucket on strong recall from the third
// repetition on.
func Review(c *Flashcard, quality int, now time.Time) ReviewResult {
	reviewed := now
	c.LastReviewed = &reviewed
	c.Repetitions++

	if quality < PassQuality {
		c.Repetitions = 0
		c.Interval = InitialInterval
		c.Bucket = max(MinBucket, c.Bucket-1)
	} else {
		switch c.Repetitions {
		case 1:
			c.Interval = InitialInterval
		case 2:
			c.Interval = SecondInterval
		default:
			c.Interval = min(MaxInterval, int(math.Round(float64(c.Interval)*c.EaseFactor)))
		}

		c.EaseFactor = nextEaseFactor(c.EaseFactor, quality)

		if quality >= PromoteQuality && c.Repetitions >= PromoteRepetitions {
			c.Bucket = min(MaxBucket, c.Bucket+1)
		}
	}

	c.NextReview = now.Add(time.Duration(c.Interval) * Day)

	return ReviewResult{
		NextReview: c.NextReview,
		Interval:   c.Interval,
		Bucket:     c.Bucket,
	}
}

// nextEaseFactor is the SM-2 ease update, floored at MinEaseFactor.
func nextEaseFactor(ef float64, quality int) float64 {
	q := float64(5 - quality)
	ef += 0.1 - q*(0.08+q*0.02)
	if ef < MinEaseFactor {
		return MinEaseFactor
	}
	return ef
}
