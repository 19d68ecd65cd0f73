package game

import (
	"math/rand"
	"sync"
)

// gamePool recycles game buffers across PlayGame calls
var gamePool = sync.Pool{
	New: func() interface{} {
		return newGame()
	},
}

func getGame() *Game {
	return gamePool.Get().(*Game)
}

func putGame(g *Game) {
	g.policy = nil
	g.rng = nil
	gamePool.Put(g)
}

// PlayGame deals from a source seeded with seed and plays the game to the end.
// The same policy, seed and options always produce the same result.
func PlayGame(policy ReshufflePolicy, seed int64, opts ...Option) GameResult {
	rng := rand.New(rand.NewSource(seed))
	handA, handB := Deal(rng)

	g := getGame()
	defer putGame(g)

	g.reset(handA, handB, policy, append([]Option{WithRand(rng)}, opts...))
	return g.Run()
}
