// Package config reads server settings from flags, falling back to
// CHESS_* environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Addr           string
	AllowedOrigins []string
	DataDir        string
	LogLevel       zerolog.Level
	PrettyLogs     bool
	MatchInterval  time.Duration
}

// Load parses args (without the program name). getenv is usually os.Getenv.
func Load(args []string, getenv func(string) string) (Config, error) {
	prettyDefault, err := parseBool(getenv("CHESS_LOG_PRETTY"))
	if err != nil {
		return Config{}, fmt.Errorf("CHESS_LOG_PRETTY: %w", err)
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	addr := fs.String("addr", envOr(getenv, "CHESS_ADDR", ":3000"), "listen address")
	origins := fs.String("origins", envOr(getenv, "CHESS_ALLOWED_ORIGINS", "http://localhost:5173"), "comma-separated origins allowed for CORS and websockets")
	dataDir := fs.String("data-dir", envOr(getenv, "CHESS_DATA_DIR", ""), "directory for game snapshots (empty keeps games in memory)")
	level := fs.String("log-level", envOr(getenv, "CHESS_LOG_LEVEL", "info"), "log level: trace, debug, info, warn, error")
	pretty := fs.Bool("pretty", prettyDefault, "human-readable console logs")
	interval := fs.String("match-interval", envOr(getenv, "CHESS_MATCH_INTERVAL", "1s"), "how often matchmaking pairs queued players")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:           *addr,
		AllowedOrigins: splitList(*origins),
		DataDir:        *dataDir,
		PrettyLogs:     *pretty,
	}

	if cfg.LogLevel, err = zerolog.ParseLevel(strings.ToLower(*level)); err != nil {
		return Config{}, fmt.Errorf("log-level: %w", err)
	}
	if cfg.MatchInterval, err = time.ParseDuration(*interval); err != nil {
		return Config{}, fmt.Errorf("match-interval: %w", err)
	}
	if cfg.MatchInterval <= 0 {
		return Config{}, fmt.Errorf("match-interval must be positive, got %v", cfg.MatchInterval)
	}
	if cfg.Addr == "" {
		return Config{}, fmt.Errorf("addr must not be empty")
	}
	return cfg, nil
}

func envOr(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "", "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
