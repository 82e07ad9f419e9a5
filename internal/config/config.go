// Package config loads mornify's settings. JSON (comments allowed), YAML and
// TOML files are accepted; all of them are decoded strictly through JSON so
// a typo in a key is an error rather than a silently ignored setting.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DefaultPath is tried when no --config flag or MORNIFY_CONFIG is given.
const DefaultPath = "mornify.yaml"

// EnvPath overrides DefaultPath.
const EnvPath = "MORNIFY_CONFIG"

type Config struct {
	RoutineFile string `json:"routine_file"`
	ThemeFile   string `json:"theme_file"`
	SoundFile   string `json:"sound_file"`
	// SoundPlayer is a command line; the sound file path is appended.
	// Empty picks the first player found on PATH.
	SoundPlayer string `json:"sound_player,omitempty"`

	Notifications NotificationsConfig `json:"notifications"`
	Scheduler     SchedulerConfig     `json:"scheduler"`
	History       HistoryConfig       `json:"history"`
	Logging       LoggingConfig       `json:"logging"`
}

// NotificationsConfig selects the OS notification backend.
//
// Backend values: "auto", "dbus", "exec", "log".
type NotificationsConfig struct {
	Backend    string `json:"backend"`
	AppName    string `json:"app_name"`
	Timeout    string `json:"timeout"`
	RatePerSec int    `json:"rate_per_sec"`
	Burst      int    `json:"burst"`
}

type SchedulerConfig struct {
	// Tick is a robfig/cron spec for the routine scan.
	Tick string `json:"tick"`
	// DuplicateWindow suppresses a second trigger of the same task within
	// the window. "0s" keeps every trigger.
	DuplicateWindow string `json:"duplicate_window"`
	WatchRoutine    bool   `json:"watch_routine"`
}

// HistoryConfig selects where fired reminders are recorded.
//
// Driver values: "sqlite", "file", "none" (or empty).
type HistoryConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
}

type LoggingConfig struct {
	Level   string `json:"level"`
	Console bool   `json:"console"`
	File    string `json:"file,omitempty"`
}

func Default() *Config {
	return &Config{
		RoutineFile: "routine.json",
		ThemeFile:   "theme.json",
		SoundFile:   "alarm_sound.mp3",
		Notifications: NotificationsConfig{
			Backend:    "auto",
			AppName:    "Mornify",
			Timeout:    "10s",
			RatePerSec: 1,
			Burst:      3,
		},
		Scheduler: SchedulerConfig{
			Tick:            "@every 1m",
			DuplicateWindow: "0s",
			WatchRoutine:    true,
		},
		History: HistoryConfig{Driver: "sqlite", Path: "mornify.db"},
		Logging: LoggingConfig{Level: "info", Console: true, File: "mornify.log"},
	}
}

// Resolve picks the config path: flag, then env, then DefaultPath.
// explicit is false only for DefaultPath, which may be absent.
func Resolve(flagPath string) (path string, explicit bool) {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p, true
	}
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p, true
	}
	return DefaultPath, false
}

// Load reads path on top of Default(). A missing file is an error only
// when explicit is set.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(path, b, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode merges data, in the format implied by path's extension, into cfg.
func Decode(path string, data []byte, cfg *Config) error {
	jb, format, err := coerceToJSONBytes(path, data)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode %s config: %w", format, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid config: trailing data")
		}
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.RoutineFile) == "" {
		return errors.New("routine_file required")
	}
	if strings.TrimSpace(c.ThemeFile) == "" {
		return errors.New("theme_file required")
	}
	switch strings.ToLower(c.Notifications.Backend) {
	case "", "auto", "dbus", "exec", "log":
	default:
		return fmt.Errorf("notifications.backend: unknown backend %q", c.Notifications.Backend)
	}
	if _, err := c.NotifyTimeout(); err != nil {
		return err
	}
	if _, err := c.DuplicateWindow(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Scheduler.Tick) == "" {
		return errors.New("scheduler.tick required")
	}
	switch strings.ToLower(c.History.Driver) {
	case "", "none", "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("history.driver: unknown driver %q", c.History.Driver)
	}
	return nil
}

func (c *Config) NotifyTimeout() (time.Duration, error) {
	return parseDuration("notifications.timeout", c.Notifications.Timeout, 10*time.Second)
}

func (c *Config) DuplicateWindow() (time.Duration, error) {
	return parseDuration("scheduler.duplicate_window", c.Scheduler.DuplicateWindow, 0)
}

func parseDuration(field, v string, def time.Duration) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}
