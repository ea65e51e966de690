package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config is the relay's runtime configuration. It is loaded once at startup
// from a JSON file, overlaid with FCR_* environment variables, and treated as
// read-only afterwards.
type Config struct {
	// LogFile is the game server's console log, the plain-text line source.
	LogFile string `json:"logFile" env:"FCR_LOG_FILE"`

	EventsLogger EventsLogger `json:"eventsLogger"`

	// CleanMessages wraps everything sent to the remote console in a silent
	// game.print command so relayed chat does not echo back into the log.
	CleanMessages bool `json:"cleanMessages" env:"FCR_CLEAN_MESSAGES"`

	// LogLevel is one of "debug", "info" or "error". Empty means "error".
	LogLevel string `json:"logLevel" env:"FCR_LOG_LEVEL"`

	Bot     Bot     `json:"bot"`
	Metrics Metrics `json:"metrics"`
}

// EventsLogger configures the structured event log integration.
type EventsLogger struct {
	Enable bool   `json:"enable" env:"FCR_EVENTS_ENABLE"`
	ELFile string `json:"elFile" env:"FCR_EVENTS_FILE"`

	// Events toggles chat notifications per event kind, keyed by the raw
	// event tag ("JOIN", "DIED", ...). Missing keys mean disabled.
	Events map[string]bool `json:"events"`
}

// Bot holds the chat platform side of the relay.
type Bot struct {
	// ChatChannel is the platform channel id the relay mirrors.
	ChatChannel string `json:"chatChannel" env:"FCR_CHAT_CHANNEL"`
}

// Metrics configures the optional prometheus endpoint.
type Metrics struct {
	// Addr is the listen address for /metrics, e.g. ":9137". Empty disables
	// the endpoint.
	Addr string `json:"addr" env:"FCR_METRICS_ADDR"`
}

// EventEnabled reports whether chat notifications for the given event tag
// are switched on.
func (c *Config) EventEnabled(kind string) bool {
	return c.EventsLogger.Events[kind]
}

// SlogLevel maps the configured log level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelError
	}
}

// Load reads the config file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every option the relay depends on and names the offending
// one on failure.
func (c *Config) Validate() error {
	if c.LogFile == "" {
		return fmt.Errorf("logFile was not specified")
	}
	if _, err := os.Stat(c.LogFile); err != nil {
		return fmt.Errorf("logFile %q is not accessible: %w", c.LogFile, err)
	}

	if c.EventsLogger.Enable {
		if c.EventsLogger.ELFile == "" {
			return fmt.Errorf("eventsLogger.enable is set but eventsLogger.elFile was not specified")
		}
		if _, err := os.Stat(c.EventsLogger.ELFile); err != nil {
			return fmt.Errorf("eventsLogger.elFile %q is not accessible: %w", c.EventsLogger.ELFile, err)
		}
	}

	switch c.LogLevel {
	case "", "debug", "info", "error":
	default:
		return fmt.Errorf("logLevel %q is invalid: pick one of debug, info or error, or remove the option", c.LogLevel)
	}

	if c.Bot.ChatChannel == "" {
		return fmt.Errorf("bot.chatChannel was not specified")
	}
	return nil
}
