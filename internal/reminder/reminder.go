// Package reminder periodically checks the flashcard decks and notifies
// when cards are due for review.
package reminder

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/go-co-op/gocron"
)

// DueCounter reports the number of due cards per topic.
type DueCounter interface {
	DueCount() map[string]int
}

// Notifier delivers one reminder.
type Notifier interface {
	Notify(topic string, count int) error
}

// NotifierFunc adapts a plain function to the Notifier interface.
type NotifierFunc func(topic string, count int) error

func (f NotifierFunc) Notify(topic string, count int) error { return f(topic, count) }

// WriterNotifier prints reminders as lines of text.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(topic string, count int) error {
	noun := "cards"
	if count == 1 {
		noun = "card"
	}
	_, err := fmt.Fprintf(n.W, "%s: %d %s due for review\n", topic, count, noun)
	return err
}

// Watcher runs Check on a fixed interval.
type Watcher struct {
	scheduler *gocron.Scheduler
	deck      DueCounter
	notifier  Notifier
	interval  time.Duration
	logger    *log.Logger
	metrics   *Metrics
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets where notifier failures are written.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithMetrics records due counts and deliveries on m.
func WithMetrics(m *Metrics) Option {
	return func(w *Watcher) { w.metrics = m }
}

// NewWatcher creates a watcher that checks deck every interval.
func NewWatcher(deck DueCounter, notifier Notifier, interval time.Duration, opts ...Option) *Watcher {
	w := &Watcher{
		scheduler: gocron.NewScheduler(time.UTC),
		deck:      deck,
		notifier:  notifier,
		interval:  interval,
		logger:    log.New(os.Stderr, "tutor: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start schedules the check and returns immediately. The first check runs
// right away.
func (w *Watcher) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("reminder interval must be positive, got %s", w.interval)
	}
	if _, err := w.scheduler.Every(w.interval).Do(func() { w.Check(ctx) }); err != nil {
		return fmt.Errorf("schedule reminder check: %w", err)
	}
	w.scheduler.StartAsync()
	return nil
}

// Stop terminates the schedule.
func (w *Watcher) Stop() {
	w.scheduler.Stop()
}

// Check notifies once for every topic with due cards, in topic order, and
// returns how many topics were notified. Notifier failures are logged.
func (w *Watcher) Check(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	counts := w.deck.DueCount()
	if w.metrics != nil {
		w.metrics.observe(counts)
	}
	topics := make([]string, 0, len(counts))
	for topic, n := range counts {
		if n > 0 {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)

	notified := 0
	for _, topic := range topics {
		if err := w.notifier.Notify(topic, counts[topic]); err != nil {
			w.logger.Printf("warning: notify %s: %v", topic, err)
			if w.metrics != nil {
				w.metrics.failures.WithLabelValues(topic).Inc()
			}
			continue
		}
		if w.metrics != nil {
			w.metrics.sent.WithLabelValues(topic).Inc()
		}
		notified++
	}
	return notified
}
