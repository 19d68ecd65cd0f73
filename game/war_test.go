package game

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_TieThenWin(t *testing.T) {
	// Tops are the last elements: 10 vs 10, then 9 vs 4
	g := NewGame(Hand{2, 9, 3, 10}, Hand{2, 4, 6, 10}, InOrder{})

	require.Equal(t, Playing, g.Step())
	assert.Equal(t, 1, g.Ties)
	assert.Equal(t, 0, g.Turns)
	assert.Equal(t, []Card{10, 3}, g.Seats[PlayerA].Sidepot)
	assert.Equal(t, []Card{10, 6}, g.Seats[PlayerB].Sidepot)

	require.Equal(t, Playing, g.Step())
	assert.Equal(t, 1, g.Ties)
	assert.Equal(t, 1, g.Turns)
	assert.Equal(t, []Card{10, 3, 10, 6, 9, 4}, g.Seats[PlayerA].Pile)
	assert.Empty(t, g.Seats[PlayerB].Pile)
	assert.Empty(t, g.Seats[PlayerA].Sidepot)
	assert.Empty(t, g.Seats[PlayerB].Sidepot)
	assert.Equal(t, 1, g.LongestWar)
	assert.Equal(t, 8, g.TotalCards())
}

func TestGame_LosingSideAwardsInSameOrder(t *testing.T) {
	g := NewGame(Hand{5, 3}, Hand{5, 8}, InOrder{})

	require.Equal(t, Playing, g.Step())
	assert.Equal(t, []Card{3, 8}, g.Seats[PlayerB].Pile)
	assert.Equal(t, 1, g.Turns)
}

func TestGame_SimultaneousExhaustionChecksAFirst(t *testing.T) {
	// 7 vs 7 tie; each stakes its last card and both end with nothing to draw
	g := NewGame(Hand{3, 7}, Hand{4, 7}, Shuffled{})

	state := g.Step()

	assert.Equal(t, TerminalBWins, state)
	assert.Equal(t, 1, g.Ties)
	assert.Equal(t, 0, g.Turns)
	assert.Equal(t, 4, g.TotalCards())
	assert.Equal(t, OutcomeBWins, g.Result().Outcome)
}

func TestGame_WarExhaustion(t *testing.T) {
	tests := []struct {
		name  string
		handA Hand
		handB Hand
		want  State
		cards int
	}{
		{"A cannot stake", Hand{9}, Hand{3, 9}, TerminalBWins, 3},
		{"B cannot stake", Hand{2, 9}, Hand{9}, TerminalAWins, 3},
		{"both cannot stake", Hand{9}, Hand{9}, TerminalBWins, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame(tt.handA, tt.handB, Shuffled{})

			assert.Equal(t, tt.want, g.Step())
			assert.Equal(t, 0, g.Ties, "an unfinished tie round is not counted")
			assert.Equal(t, tt.cards, g.TotalCards())
			assert.Equal(t, Card(9), g.Seats[PlayerA].Sidepot[0])
			assert.Equal(t, Card(9), g.Seats[PlayerB].Sidepot[0])
		})
	}
}

func TestGame_WarRefillsFromPile(t *testing.T) {
	g := NewGame(Hand{9}, Hand{2, 9}, InOrder{})
	g.Seats[PlayerA].Pile = append(g.Seats[PlayerA].Pile, 4, 6)

	state := g.Step()

	assert.Equal(t, TerminalAWins, state)
	assert.Equal(t, 1, g.Seats[PlayerA].Reshuffles)
	assert.Equal(t, []Card{9, 4}, g.Seats[PlayerA].Sidepot)
	assert.Equal(t, []Card{9, 2}, g.Seats[PlayerB].Sidepot)
	assert.Equal(t, Hand{6}, g.Seats[PlayerA].Hand)
	assert.Empty(t, g.Seats[PlayerA].Pile)
}

func TestGame_AlwaysHigherWinsIn26Turns(t *testing.T) {
	deck := NewDeck()
	sort.Slice(deck, func(i, j int) bool { return deck[i] < deck[j] })
	low := Hand(append([]Card{}, deck[:HandSize]...))
	high := Hand(append([]Card{}, deck[HandSize:]...))

	res := NewGame(high, low, Shuffled{}, WithRand(rand.New(rand.NewSource(1)))).Run()

	assert.Equal(t, OutcomeAWins, res.Outcome)
	assert.Equal(t, 26, res.Turns)
	assert.Equal(t, 0, res.Ties)
	assert.Equal(t, 0, res.Count(2))
	assert.Equal(t, 4, res.Count(Ace))
	assert.Equal(t, 2, res.Count(8))
}

func TestGame_EmptyStartingHand(t *testing.T) {
	g := NewGame(Hand{}, Hand{5}, nil)
	assert.Equal(t, TerminalBWins, g.State)

	g = NewGame(Hand{5}, Hand{}, nil)
	assert.Equal(t, TerminalAWins, g.State)

	// Step is a no-op after the end
	assert.Equal(t, TerminalAWins, g.Step())
	assert.Equal(t, 0, g.Iterations())
}

func TestGame_Conservation(t *testing.T) {
	for _, policy := range []ReshufflePolicy{Shuffled{}, InOrder{}} {
		for seed := int64(1); seed <= 30; seed++ {
			rng := rand.New(rand.NewSource(seed))
			handA, handB := Deal(rng)
			g := NewGame(handA, handB, policy, WithRand(rng), WithMaxIterations(5000))

			for g.Step() == Playing {
				require.Equal(t, DeckSize, g.TotalCards(), "policy %s seed %d turn %d", policy, seed, g.Turns)
				require.NotEmpty(t, g.Seats[PlayerA].Hand)
				require.NotEmpty(t, g.Seats[PlayerB].Hand)
			}
			require.Equal(t, DeckSize, g.TotalCards())
		}
	}
}

func TestGame_MaxIterations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	handA, handB := Deal(rng)

	res := NewGame(handA, handB, Shuffled{}, WithRand(rng), WithMaxIterations(1)).Run()

	assert.Equal(t, OutcomeAborted, res.Outcome)
	assert.Equal(t, 1, res.Turns+res.Ties)
	_, ok := res.Winner()
	assert.False(t, ok)
}

func TestPlayGame_Deterministic(t *testing.T) {
	for _, policy := range []ReshufflePolicy{Shuffled{}, InOrder{}} {
		first := PlayGame(policy, 42)
		second := PlayGame(policy, 42)
		assert.Equal(t, first, second, "policy %s", policy)
	}

	a := PlayGame(Shuffled{}, 1)
	b := PlayGame(Shuffled{}, 2)
	assert.NotEqual(t, a.RankCounts, b.RankCounts)
}

func TestPlayGame_ShuffledTerminates(t *testing.T) {
	games := 10000
	if testing.Short() {
		games = 1000
	}

	for seed := int64(0); seed < int64(games); seed++ {
		res := PlayGame(Shuffled{}, seed, WithMaxIterations(100000))

		winner, ok := res.Winner()
		require.True(t, ok, "seed %d aborted after %d turns", seed, res.Turns)
		require.Contains(t, []Player{PlayerA, PlayerB}, winner)
		require.Equal(t, HandSize, sum(res.RankCounts[:]))
	}
}

func TestPlayGame_InOrderIsBounded(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		res := PlayGame(InOrder{}, seed, WithMaxIterations(5000))
		require.LessOrEqual(t, res.Turns+res.Ties, 5000)
		require.Contains(t, []Outcome{OutcomeAWins, OutcomeBWins, OutcomeAborted}, res.Outcome)
	}
}

func FuzzGame_Conservation(f *testing.F) {
	f.Add(int64(1))
	f.Add(int64(42))
	f.Add(int64(20240501))
	f.Fuzz(func(t *testing.T, seed int64) {
		rng := rand.New(rand.NewSource(seed))
		handA, handB := Deal(rng)
		g := NewGame(handA, handB, Shuffled{}, WithRand(rng), WithMaxIterations(5000))
		for g.Step() == Playing {
			if g.TotalCards() != DeckSize {
				t.Fatalf("seed %d: %d cards after %d rounds", seed, g.TotalCards(), g.Iterations())
			}
		}
	})
}

func BenchmarkPlayGame(b *testing.B) {
	for i := 0; i < b.N; i++ {
		PlayGame(Shuffled{}, int64(i))
	}
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
