package spacedrep

import (
	"context"
	"slices"

	"github.com/abhisek/tutor/internal/store"
)

// FlashcardsKey is the storage key of the deck record: topic -> cards.
const FlashcardsKey = "tutor_flashcards"

func (s *Scheduler) load(ctx context.Context) {
	if s.kv == nil {
		return
	}
	cards := make(map[string][]*Flashcard)
	if _, err := store.LoadJSON(ctx, s.kv, FlashcardsKey, &cards); err != nil {
		s.logger.Printf("warning: load flashcards: %v", err)
		return
	}
	if cards == nil {
		return
	}
	for topic, deck := range cards {
		deck = slices.DeleteFunc(deck, func(c *Flashcard) bool { return c == nil })
		cards[topic] = deck
		for _, c := range deck {
			// Older records did not carry the partition key on the card.
			if c.Topic == "" {
				c.Topic = topic
			}
		}
	}
	s.cards = cards
}

// save persists every deck. Failures are logged; in-memory state stays
// authoritative.
func (s *Scheduler) save(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := store.SaveJSON(ctx, s.kv, FlashcardsKey, s.cards); err != nil {
		s.logger.Printf("warning: save flashcards: %v", err)
	}
}
