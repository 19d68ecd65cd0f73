package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrUnknownPolicy is returned by ParsePolicy for names it does not recognise
var ErrUnknownPolicy = errors.New("unknown reshuffle policy")

// ReshufflePolicy turns a player's won pile into a new hand once the hand runs out.
// Implementations may reorder the pile in place and return it; they must not
// change card values.
type ReshufflePolicy interface {
	Reshuffle(pile []Card, rng *rand.Rand) []Card
	String() string
}

// InOrder reverses the pile. Hands are drawn from the end, so the first card won
// is the first card redrawn.
//
// Long or endless games are possible under this policy; run it with an
// iteration cap.
type InOrder struct{}

func (InOrder) Reshuffle(pile []Card, _ *rand.Rand) []Card {
	for i, j := 0, len(pile)-1; i < j; i, j = i+1, j-1 {
		pile[i], pile[j] = pile[j], pile[i]
	}
	return pile
}

func (InOrder) String() string { return "in-order" }

// Shuffled applies a uniform random permutation to the pile
type Shuffled struct{}

func (Shuffled) Reshuffle(pile []Card, rng *rand.Rand) []Card {
	rng.Shuffle(len(pile), func(i, j int) {
		pile[i], pile[j] = pile[j], pile[i]
	})
	return pile
}

func (Shuffled) String() string { return "shuffled" }

// ReshuffleFunc adapts an ordinary function to ReshufflePolicy
type ReshuffleFunc func(pile []Card, rng *rand.Rand) []Card

func (f ReshuffleFunc) Reshuffle(pile []Card, rng *rand.Rand) []Card { return f(pile, rng) }

func (ReshuffleFunc) String() string { return "custom" }

var policies = map[string]ReshufflePolicy{
	InOrder{}.String():  InOrder{},
	Shuffled{}.String(): Shuffled{},
}

// PolicyNames lists the names accepted by ParsePolicy
func PolicyNames() []string {
	return []string{InOrder{}.String(), Shuffled{}.String()}
}

// ParsePolicy resolves a policy by name. Matching ignores case, and "_" is
// accepted in place of "-".
func ParsePolicy(name string) (ReshufflePolicy, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if p, ok := policies[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownPolicy, name, strings.Join(PolicyNames(), ", "))
}
