package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr                string
	AllowedOrigins      string
	DataDir             string
	InMemory            bool
	MatchmakingInterval time.Duration
	LogLevel            log.Level
}

var ErrInvalidConfig = errors.New("invalid config")

// Load parses args (without the program name). Each flag defaults to its
// CHESS_* environment variable, then to a built-in value.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	addr := fs.String("addr", getenv("CHESS_ADDR", ":3000"), "listen address")
	origins := fs.String("allowed-origins", getenv("CHESS_ALLOWED_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	dataDir := fs.String("data-dir", getenv("CHESS_DATA_DIR", "data"), "badger directory for game records")
	inMemory := fs.Bool("in-memory", getenb("CHESS_IN_MEMORY", false), "keep game records in memory only")
	interval := fs.String("matchmaking-interval", getenv("CHESS_MATCHMAKING_INTERVAL", "1s"), "how often the queue is paired")
	level := fs.String("log-level", getenv("CHESS_LOG_LEVEL", "info"), "trace, debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	d, err := time.ParseDuration(*interval)
	if err != nil || d <= 0 {
		return Config{}, fmt.Errorf("%w: matchmaking interval %q", ErrInvalidConfig, *interval)
	}
	lvl, err := parseLevel(*level)
	if err != nil {
		return Config{}, err
	}
	if *addr == "" {
		return Config{}, fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if !*inMemory && *dataDir == "" {
		return Config{}, fmt.Errorf("%w: data dir is required unless running in memory", ErrInvalidConfig)
	}

	return Config{
		Addr:                *addr,
		AllowedOrigins:      *origins,
		DataDir:             *dataDir,
		InMemory:            *inMemory,
		MatchmakingInterval: d,
		LogLevel:            lvl,
	}, nil
}

// Origins splits AllowedOrigins for the websocket upgrader.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
