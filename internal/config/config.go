// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is the process configuration, read once from the environment at
// startup (a .env file is autoloaded by cmd/server). Every field has a
// working default so the server runs with no environment at all.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// LogLevel is a logrus level name (trace, debug, info, warn, error).
	LogLevel logrus.Level

	// BotDelay is the base pacing delay before a bot turn resolves; the
	// room's gameSpeed setting scales it.
	BotDelay time.Duration

	// OriginPatterns is the websocket origin allowlist.
	OriginPatterns []string
}

// Load reads configuration from the environment.
func Load() Config {
	cfg := Config{
		Addr:           ":8080",
		LogLevel:       logrus.InfoLevel,
		BotDelay:       1200 * time.Millisecond,
		OriginPatterns: []string{"*"},
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			cfg.LogLevel = parsed
		}
	}
	if ms := os.Getenv("BOT_TURN_DELAY_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n >= 0 {
			cfg.BotDelay = time.Duration(n) * time.Millisecond
		}
	}
	if origins := os.Getenv("WS_ORIGINS"); origins != "" {
		cfg.OriginPatterns = strings.Split(origins, ",")
	}

	return cfg
}
