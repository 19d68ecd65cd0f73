package game

// Outcome is how a game ended. The values double as the Win/Lose column of
// the CSV export.
type Outcome int8

const (
	OutcomeAborted Outcome = -1
	OutcomeAWins   Outcome = 0
	OutcomeBWins   Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAWins:
		return "A"
	case OutcomeBWins:
		return "B"
	}
	return "aborted"
}

// GameResult is the record produced when a game ends
type GameResult struct {
	// RankCounts is the rank distribution of A's starting hand; index 0 is MinRank.
	RankCounts [NumRanks]int `json:"rank_counts"`
	Turns      int           `json:"turns"`
	Ties       int           `json:"ties"`
	LongestWar int           `json:"longest_war"`
	Reshuffles [2]int        `json:"reshuffles"`
	Outcome    Outcome       `json:"outcome"`
}

// Count returns how many cards of rank A started with
func (r GameResult) Count(rank Card) int {
	if !rank.Valid() {
		return 0
	}
	return r.RankCounts[rank-MinRank]
}

// Winner returns the winning player. ok is false for an aborted game.
func (r GameResult) Winner() (winner Player, ok bool) {
	switch r.Outcome {
	case OutcomeAWins:
		return PlayerA, true
	case OutcomeBWins:
		return PlayerB, true
	}
	return 0, false
}
