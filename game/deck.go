package game

import (
	"math/rand"
)

// Deck is an ordered set of cards
type Deck []Card

// Hand is a player's draw stack. The top of the stack is the last element.
type Hand []Card

// NewDeck creates an unshuffled 52-card deck, four of each rank
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for suit := 0; suit < SuitCount; suit++ {
		for rank := MinRank; rank <= MaxRank; rank++ {
			deck = append(deck, rank)
		}
	}
	return deck
}

// Shuffle applies a uniform random permutation to the deck
func (d Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// Deal shuffles a fresh deck and splits it into two contiguous halves.
// The first half goes to player A, the second to player B.
func Deal(rng *rand.Rand) (Hand, Hand) {
	deck := NewDeck()
	deck.Shuffle(rng)
	return Hand(deck[:HandSize:HandSize]), Hand(deck[HandSize:])
}

// Pop removes and returns the top card. It panics on an empty hand;
// the engine never draws without checking first.
func (h *Hand) Pop() Card {
	last := len(*h) - 1
	c := (*h)[last]
	*h = (*h)[:last]
	return c
}
