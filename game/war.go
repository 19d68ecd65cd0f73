package game

import (
	"math/rand"
	"time"
)

// DefaultMaxIterations bounds a single game. One iteration is one draw, whether it
// resolves a turn or adds a tie round.
const DefaultMaxIterations = 100000

// Player identifies a seat
type Player int

const (
	PlayerA Player = iota
	PlayerB
)

// Opponent returns the other seat
func (p Player) Opponent() Player { return 1 - p }

func (p Player) String() string {
	if p == PlayerA {
		return "A"
	}
	return "B"
}

// State is the engine's state machine position
type State int

const (
	Playing State = iota
	TerminalAWins
	TerminalBWins
	TerminalAborted
)

// Terminal reports whether the game has finished
func (s State) Terminal() bool { return s != Playing }

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case TerminalAWins:
		return "A wins"
	case TerminalBWins:
		return "B wins"
	case TerminalAborted:
		return "aborted"
	}
	return "unknown"
}

// Seat holds the cards one player owns
type Seat struct {
	Hand       Hand
	Pile       []Card // won, not yet drawable
	Sidepot    []Card // at stake in an unresolved war
	Reshuffles int
}

// Count is the number of cards the seat owns
func (s *Seat) Count() int {
	return len(s.Hand) + len(s.Pile) + len(s.Sidepot)
}

// Game is the state of a single game of War
type Game struct {
	Seats      [2]Seat
	Turns      int // rounds with a clear winner
	Ties       int // tie rounds
	LongestWar int // most consecutive tie rounds
	State      State

	policy        ReshufflePolicy
	rng           *rand.Rand
	maxIterations int
	chain         int
	initial       [NumRanks]int
}

// Option configures a Game
type Option func(*Game)

// WithRand sets the random source used by the reshuffle policy
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// WithMaxIterations caps the number of draws. Zero or less removes the cap.
func WithMaxIterations(n int) Option {
	return func(g *Game) { g.maxIterations = n }
}

func newGame() *Game {
	g := &Game{}
	for p := range g.Seats {
		g.Seats[p].Hand = make(Hand, 0, DeckSize)
		g.Seats[p].Pile = make([]Card, 0, DeckSize)
		g.Seats[p].Sidepot = make([]Card, 0, DeckSize)
	}
	return g
}

// NewGame starts a game from the given hands. The hands are copied.
// A nil policy means Shuffled.
func NewGame(handA, handB Hand, policy ReshufflePolicy, opts ...Option) *Game {
	g := newGame()
	g.reset(handA, handB, policy, opts)
	return g
}

func (g *Game) reset(handA, handB Hand, policy ReshufflePolicy, opts []Option) {
	for p := range g.Seats {
		s := &g.Seats[p]
		s.Hand = s.Hand[:0]
		s.Pile = s.Pile[:0]
		s.Sidepot = s.Sidepot[:0]
		s.Reshuffles = 0
	}
	g.Seats[PlayerA].Hand = append(g.Seats[PlayerA].Hand, handA...)
	g.Seats[PlayerB].Hand = append(g.Seats[PlayerB].Hand, handB...)
	g.Turns, g.Ties, g.LongestWar, g.chain = 0, 0, 0, 0
	g.State = Playing
	g.initial = RankCounts(handA)

	g.policy = policy
	g.rng = nil
	g.maxIterations = DefaultMaxIterations
	for _, opt := range opts {
		opt(g)
	}
	if g.policy == nil {
		g.policy = Shuffled{}
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// An empty starting hand is decided before the first draw
	g.settle()
}

// Iterations is the number of draws made so far
func (g *Game) Iterations() int { return g.Turns + g.Ties }

// CardCount is the number of cards player p owns, including any at stake
func (g *Game) CardCount(p Player) int { return g.Seats[p].Count() }

// TotalCards is the number of cards in play across both seats
func (g *Game) TotalCards() int {
	return g.Seats[PlayerA].Count() + g.Seats[PlayerB].Count()
}

// Step plays one round: both players draw, the cards are compared, and a tie
// stakes one more card each. Empty hands are then refilled from the piles, A
// first. It is a no-op once the game is over.
func (g *Game) Step() State {
	if g.State != Playing {
		return g.State
	}
	if g.maxIterations > 0 && g.Iterations() >= g.maxIterations {
		g.State = TerminalAborted
		return g.State
	}

	topA := g.Seats[PlayerA].Hand.Pop()
	topB := g.Seats[PlayerB].Hand.Pop()

	switch {
	case topA > topB:
		g.award(PlayerA, topA, topB)
	case topA < topB:
		g.award(PlayerB, topA, topB)
	default:
		if !g.war(topA, topB) {
			return g.State
		}
	}

	g.settle()
	return g.State
}

// Run steps until the game ends or the iteration cap is reached
func (g *Game) Run() GameResult {
	for g.Step() == Playing {
	}
	return g.Result()
}

// Result reports the outcome. A game still in play is reported as aborted.
func (g *Game) Result() GameResult {
	res := GameResult{
		RankCounts: g.initial,
		Turns:      g.Turns,
		Ties:       g.Ties,
		LongestWar: g.LongestWar,
		Reshuffles: [2]int{g.Seats[PlayerA].Reshuffles, g.Seats[PlayerB].Reshuffles},
		Outcome:    OutcomeAborted,
	}
	switch g.State {
	case TerminalAWins:
		res.Outcome = OutcomeAWins
	case TerminalBWins:
		res.Outcome = OutcomeBWins
	}
	return res
}

// award gives both sidepots and the face-up cards to the winner,
// in the order sidepot A, sidepot B, top A, top B
func (g *Game) award(winner Player, topA, topB Card) {
	a, b := &g.Seats[PlayerA], &g.Seats[PlayerB]
	w := &g.Seats[winner]
	w.Pile = append(w.Pile, a.Sidepot...)
	w.Pile = append(w.Pile, b.Sidepot...)
	w.Pile = append(w.Pile, topA, topB)
	a.Sidepot = a.Sidepot[:0]
	b.Sidepot = b.Sidepot[:0]
	g.Turns++
	g.chain = 0
}

// war stakes the face-up card and one hidden card per player. A player who
// cannot supply the hidden card loses; in that case the face-up cards stay in
// the sidepots and war returns false.
func (g *Game) war(topA, topB Card) bool {
	for _, p := range []Player{PlayerA, PlayerB} {
		if !g.refill(p) {
			g.Seats[PlayerA].Sidepot = append(g.Seats[PlayerA].Sidepot, topA)
			g.Seats[PlayerB].Sidepot = append(g.Seats[PlayerB].Sidepot, topB)
			g.finish(p.Opponent())
			return false
		}
	}

	a, b := &g.Seats[PlayerA], &g.Seats[PlayerB]
	a.Sidepot = append(a.Sidepot, topA, a.Hand.Pop())
	b.Sidepot = append(b.Sidepot, topB, b.Hand.Pop())

	g.Ties++
	g.chain++
	if g.chain > g.LongestWar {
		g.LongestWar = g.chain
	}
	return true
}

// settle refills empty hands, A before B. The first player found with no
// cards to draw loses and B is not examined after A has lost.
func (g *Game) settle() {
	for _, p := range []Player{PlayerA, PlayerB} {
		if !g.refill(p) {
			g.finish(p.Opponent())
			return
		}
	}
}

// refill makes sure p has a card to draw, turning the pile into a new hand if
// needed. It reports false when both hand and pile are empty.
func (g *Game) refill(p Player) bool {
	s := &g.Seats[p]
	if len(s.Hand) > 0 {
		return true
	}
	if len(s.Pile) == 0 {
		return false
	}
	// Swap buffers so the new hand and the emptied pile never share storage
	spent := s.Hand[:0]
	s.Hand = Hand(g.policy.Reshuffle(s.Pile, g.rng))
	s.Pile = spent
	s.Reshuffles++
	return true
}

func (g *Game) finish(winner Player) {
	if winner == PlayerA {
		g.State = TerminalAWins
	} else {
		g.State = TerminalBWins
	}
}
