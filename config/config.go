// Package config loads warsim settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/signalnine/warsim/game"
	"github.com/signalnine/warsim/simulation"
)

// Config holds every tunable. Command-line flags override these values.
type Config struct {
	Games         int    `env:"WARSIM_GAMES,default=100000"`
	Policy        string `env:"WARSIM_POLICY,default=shuffled"`
	Seed          int64  `env:"WARSIM_SEED,default=0"` // 0 picks a time-based seed
	Workers       int    `env:"WARSIM_WORKERS,default=0"`
	MaxIterations int    `env:"WARSIM_MAX_ITERATIONS,default=100000"`

	Output      string `env:"WARSIM_OUTPUT,default=war_results.csv"`
	BatchFile   string `env:"WARSIM_BATCH_FILE"`
	SummaryFile string `env:"WARSIM_SUMMARY_FILE"`
	DatabaseURL string `env:"WARSIM_DATABASE_URL"`

	ListenAddr              string `env:"WARSIM_LISTEN_ADDR,default=:8080"`
	MaxGamesPerRequest      int    `env:"WARSIM_MAX_GAMES_PER_REQUEST,default=1000000"`
	MaxWorkersPerRequest    int    `env:"WARSIM_MAX_WORKERS_PER_REQUEST,default=0"` // 0 = CPU count
	MaxIterationsPerRequest int    `env:"WARSIM_MAX_ITERATIONS_PER_REQUEST,default=100000"`

	LogLevel  string `env:"WARSIM_LOG_LEVEL,default=info"`
	LogFormat string `env:"WARSIM_LOG_FORMAT,default=text"`
}

// Load reads the given .env files (".env" when none are named), then decodes
// the environment. Missing .env files are not an error; variables already set
// in the environment win over .env values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that envdecode cannot
func (c *Config) Validate() error {
	if c.Games <= 0 {
		return fmt.Errorf("%w: got %d", simulation.ErrInvalidGames, c.Games)
	}
	if _, err := game.ParsePolicy(c.Policy); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations must not be negative: %d", c.MaxIterations)
	}
	if c.MaxGamesPerRequest <= 0 {
		return fmt.Errorf("max games per request must be positive: %d", c.MaxGamesPerRequest)
	}
	if c.MaxWorkersPerRequest < 0 {
		return fmt.Errorf("max workers per request must not be negative: %d", c.MaxWorkersPerRequest)
	}
	if c.MaxIterationsPerRequest <= 0 {
		return fmt.Errorf("max iterations per request must be positive: %d", c.MaxIterationsPerRequest)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// Simulation builds the batch configuration. Call Validate first.
func (c *Config) Simulation(logger logrus.FieldLogger) (simulation.Config, error) {
	policy, err := game.ParsePolicy(c.Policy)
	if err != nil {
		return simulation.Config{}, err
	}
	maxIter := c.MaxIterations
	if maxIter == 0 {
		maxIter = -1 // 0 in the environment means no cap
	}
	return simulation.Config{
		Games:         c.Games,
		Policy:        policy,
		Seed:          c.Seed,
		Workers:       c.Workers,
		MaxIterations: maxIter,
		Logger:        logger,
	}, nil
}

// NewLogger builds a logger writing to stderr at the configured level and format
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
