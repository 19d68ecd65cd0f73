package simulation

import (
	"math"
	"sort"

	"github.com/signalnine/warsim/game"
)

// AggregatedStats summarises a batch. Turn and tie figures cover finished games
// only; aborted games are counted but otherwise left out.
type AggregatedStats struct {
	TotalGames int `json:"total_games"`
	AWins      int `json:"a_wins"`
	BWins      int `json:"b_wins"`
	Aborted    int `json:"aborted"`

	AWinRate     float64 `json:"a_win_rate"`
	AWinRateLow  float64 `json:"a_win_rate_low"`  // Wilson 95% lower bound
	AWinRateHigh float64 `json:"a_win_rate_high"` // Wilson 95% upper bound

	AvgTurns    float64 `json:"avg_turns"`
	MedianTurns int     `json:"median_turns"`
	StdDevTurns float64 `json:"stddev_turns"`
	MaxTurns    int     `json:"max_turns"`

	AvgTies  float64 `json:"avg_ties"`
	MaxTies  int     `json:"max_ties"`
	TieRate  float64 `json:"tie_rate"` // tie rounds per draw
	WarShare float64 `json:"war_share"` // share of games with at least one tie

	LongestWar    int     `json:"longest_war"`
	AvgReshuffles float64 `json:"avg_reshuffles"`

	ByAces []AceBreakdown `json:"by_aces"`
}

// AceBreakdown groups finished games by how many aces A was dealt
type AceBreakdown struct {
	Aces     int     `json:"aces"`
	Games    int     `json:"games"`
	AWins    int     `json:"a_wins"`
	AWinRate float64 `json:"a_win_rate"`
	AvgTurns float64 `json:"avg_turns"`
	AvgTies  float64 `json:"avg_ties"`
}

// Aggregate computes summary statistics over a batch
func Aggregate(records []GameRecord) AggregatedStats {
	stats := AggregatedStats{TotalGames: len(records)}

	turns := make([]int, 0, len(records))
	var totalTurns, totalTies, totalReshuffles, withWar int
	byAces := make([]AceBreakdown, game.SuitCount+1)
	aceTurns := make([]int, game.SuitCount+1)
	aceTies := make([]int, game.SuitCount+1)

	for _, rec := range records {
		switch rec.Outcome {
		case game.OutcomeAWins:
			stats.AWins++
		case game.OutcomeBWins:
			stats.BWins++
		default:
			stats.Aborted++
			continue
		}

		turns = append(turns, rec.Turns)
		totalTurns += rec.Turns
		totalTies += rec.Ties
		totalReshuffles += rec.Reshuffles[0] + rec.Reshuffles[1]
		if rec.Ties > 0 {
			withWar++
		}
		if rec.Turns > stats.MaxTurns {
			stats.MaxTurns = rec.Turns
		}
		if rec.Ties > stats.MaxTies {
			stats.MaxTies = rec.Ties
		}
		if rec.LongestWar > stats.LongestWar {
			stats.LongestWar = rec.LongestWar
		}

		aces := rec.Count(game.Ace)
		if aces >= 0 && aces < len(byAces) {
			byAces[aces].Games++
			if rec.Outcome == game.OutcomeAWins {
				byAces[aces].AWins++
			}
			aceTurns[aces] += rec.Turns
			aceTies[aces] += rec.Ties
		}
	}

	finished := len(turns)
	if finished > 0 {
		n := float64(finished)
		stats.AWinRate = float64(stats.AWins) / n
		stats.AWinRateLow, stats.AWinRateHigh = WilsonCI95(stats.AWins, finished)
		stats.AvgTurns = float64(totalTurns) / n
		stats.MedianTurns = median(turns)
		stats.StdDevTurns = stdDev(turns, stats.AvgTurns)
		stats.AvgTies = float64(totalTies) / n
		stats.WarShare = float64(withWar) / n
		stats.AvgReshuffles = float64(totalReshuffles) / n
	}
	if draws := totalTurns + totalTies; draws > 0 {
		stats.TieRate = float64(totalTies) / float64(draws)
	}

	for aces := range byAces {
		b := &byAces[aces]
		b.Aces = aces
		if b.Games == 0 {
			continue
		}
		g := float64(b.Games)
		b.AWinRate = float64(b.AWins) / g
		b.AvgTurns = float64(aceTurns[aces]) / g
		b.AvgTies = float64(aceTies[aces]) / g
		stats.ByAces = append(stats.ByAces, *b)
	}

	return stats
}

// WilsonCI95 is the Wilson score interval for a win rate of wins/total
func WilsonCI95(wins, total int) (low, high float64) {
	if total <= 0 {
		return 0, 1
	}
	z := 1.96
	n := float64(total)
	p := float64(wins) / n
	den := 1 + (z*z)/n
	center := p + (z*z)/(2*n)
	half := z * math.Sqrt((p*(1-p))/n+(z*z)/(4*n*n))
	return (center - half) / den, (center + half) / den
}

func median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func stdDev(values []int, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
