// Package config defines the estimator configuration and how it is loaded.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Input is a contests JSON file or a directory of them.
	Input string `koanf:"input"`

	// StoreDriver selects the model store: json, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`
	// StorePath is the json document or sqlite database path.
	StorePath string `koanf:"store_path"`
	// StoreDSN is the postgres connection string.
	StoreDSN string `koanf:"store_dsn"`

	// WorkerCount sets the number of fit workers.
	WorkerCount int `koanf:"worker_count"`
	// QueueSize bounds the fit job queue.
	QueueSize int `koanf:"queue_size"`
	// SolveParallelism bounds concurrent performance solves per contest.
	SolveParallelism int `koanf:"solve_parallelism"`

	// Overwrite re-fits problems that already have a stored model.
	Overwrite bool `koanf:"overwrite"`
	// RecomputeHistory emulates ratings for contests held before the
	// rating system.
	RecomputeHistory bool `koanf:"recompute_history"`

	MinSamples    int     `koanf:"min_samples"`
	MaxDifficulty float64 `koanf:"max_difficulty"`

	// Problem classification. Unset lists use the built-in defaults; an
	// explicit empty list disables the rule set.
	VeryEasyRules        []string `koanf:"very_easy_rules"`
	AgcEasiestRules      []string `koanf:"agc_easiest_rules"`
	ProhibitedProblems   []string `koanf:"prohibited_problems"`
	OldSponsoredContests []string `koanf:"old_sponsored_contests"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		MaxLeaderboardLimit: 1000,
		Input:               "contests.json",
		StoreDriver:         "json",
		StorePath:           "problem-models.json",
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           1024,
		SolveParallelism:    runtime.NumCPU(),
		MinSamples:          40,
		MaxDifficulty:       6000,
	}
}
