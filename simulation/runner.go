// Package simulation runs batches of War games and summarises their results.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signalnine/warsim/game"
)

// ErrInvalidGames is returned when a batch asks for no games
var ErrInvalidGames = errors.New("number of games must be positive")

// Config describes a batch of games
type Config struct {
	Games  int
	Policy game.ReshufflePolicy // nil means game.Shuffled
	Seed   int64                // master seed; every game seed is derived from it
	// Workers is the size of the parallel worker pool; <= 0 uses runtime.NumCPU().
	Workers int
	// MaxIterations caps each game. 0 uses game.DefaultMaxIterations,
	// a negative value disables the cap.
	MaxIterations int
	Logger        logrus.FieldLogger
	// OnResult, if set, sees every record as it is produced. It is never
	// called concurrently.
	OnResult func(GameRecord)
}

// Validate checks the batch parameters
func (c Config) Validate() error {
	if c.Games <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidGames, c.Games)
	}
	return nil
}

func (c Config) policy() game.ReshufflePolicy {
	if c.Policy == nil {
		return game.Shuffled{}
	}
	return c.Policy
}

// NoIterationCap is what EffectiveMaxIterations reports for an uncapped batch
const NoIterationCap = -1

// EffectiveMaxIterations is the per-game cap in force, or NoIterationCap
func (c Config) EffectiveMaxIterations() int {
	if c.MaxIterations < 0 {
		return NoIterationCap
	}
	return c.maxIterations()
}

func (c Config) maxIterations() int {
	switch {
	case c.MaxIterations == 0:
		return game.DefaultMaxIterations
	case c.MaxIterations < 0:
		return 0
	}
	return c.MaxIterations
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// GameRecord is one game's result tagged with its position in the batch
type GameRecord struct {
	SimID int   `json:"sim_id"`
	Seed  int64 `json:"seed"`
	game.GameResult
}

// gameSeeds derives the per-game seeds from the master seed. Serial and
// parallel runs use the same sequence, so they produce the same records.
func gameSeeds(seed int64, n int) []int64 {
	rng := rand.New(rand.NewSource(seed))
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	return seeds
}

// RunBatch plays cfg.Games games one after another
func RunBatch(cfg Config) ([]GameRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	log := cfg.logger()

	records := make([]GameRecord, cfg.Games)
	for i, seed := range gameSeeds(cfg.Seed, cfg.Games) {
		records[i] = RunSingleGame(cfg, i, seed)
		if cfg.OnResult != nil {
			cfg.OnResult(records[i])
		}
	}

	log.WithFields(logrus.Fields{
		"games":   cfg.Games,
		"policy":  cfg.policy().String(),
		"seed":    cfg.Seed,
		"elapsed": time.Since(start).String(),
	}).Info("batch complete")
	return records, nil
}

// RunSingleGame plays one game to termination
func RunSingleGame(cfg Config, simID int, seed int64) GameRecord {
	res := game.PlayGame(cfg.policy(), seed, game.WithMaxIterations(cfg.maxIterations()))
	if res.Outcome == game.OutcomeAborted {
		cfg.logger().WithFields(logrus.Fields{
			"sim_id": simID,
			"seed":   seed,
			"turns":  res.Turns,
			"ties":   res.Ties,
		}).Debug("game hit iteration cap")
	}
	return GameRecord{SimID: simID, Seed: seed, GameResult: res}
}
