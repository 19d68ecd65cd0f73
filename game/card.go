// Package game implements a two-player game of War: dealing, reshuffle policies and the
// turn-by-turn engine that resolves comparisons and tie chains.
package game

import "strconv"

// Card is a rank in [MinRank, MaxRank]. Suits never affect a comparison in War,
// so they are not tracked.
type Card uint8

const (
	MinRank Card = 2
	Jack    Card = 11
	Queen   Card = 12
	King    Card = 13
	Ace     Card = 14
	MaxRank      = Ace
)

const (
	NumRanks  = int(MaxRank-MinRank) + 1 // 13
	SuitCount = 4
	DeckSize  = NumRanks * SuitCount // 52
	HandSize  = DeckSize / 2         // 26
)

var faceNames = map[Card]string{Jack: "J", Queen: "Q", King: "K", Ace: "A"}

var pluralNames = map[Card]string{Jack: "Jacks", Queen: "Queens", King: "Kings", Ace: "Aces"}

// Valid reports whether c is a rank found in a standard deck
func (c Card) Valid() bool {
	return c >= MinRank && c <= MaxRank
}

func (c Card) String() string {
	if name, ok := faceNames[c]; ok {
		return name
	}
	return strconv.Itoa(int(c))
}

// Plural returns the plural label used in reports ("2s", "10s", "Jacks", "Aces")
func (c Card) Plural() string {
	if name, ok := pluralNames[c]; ok {
		return name
	}
	return strconv.Itoa(int(c)) + "s"
}

// Ranks returns every rank in ascending order
func Ranks() []Card {
	ranks := make([]Card, 0, NumRanks)
	for r := MinRank; r <= MaxRank; r++ {
		ranks = append(ranks, r)
	}
	return ranks
}

// RankCounts tallies how many cards of each rank appear in cards.
// Index 0 holds the count of MinRank. Invalid ranks are ignored.
func RankCounts(cards []Card) [NumRanks]int {
	var counts [NumRanks]int
	for _, c := range cards {
		if c.Valid() {
			counts[c-MinRank]++
		}
	}
	return counts
}
