// Package history records fired reminders so the CLI can show what went
// off and when.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/idilsaglam/mornify/internal/logx"
)

var ErrDisabled = errors.New("history disabled")

// Config configures storage.
//
// Driver values:
//   - "file": JSON Lines file, no dependencies beyond the filesystem
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", history is disabled.
type Config struct {
	Driver string
	Path   string
}

// Record is one fired reminder.
type Record struct {
	ID          string    `json:"id"`
	At          time.Time `json:"at"`
	TaskTime    string    `json:"task_time"`
	Activity    string    `json:"activity"`
	Source      string    `json:"source"`
	NotifyError string    `json:"notify_error,omitempty"`
}

// Store is the persistence API used by the dispatcher and the CLI.
type Store interface {
	Append(ctx context.Context, r Record) error
	// Recent returns up to n records, oldest first.
	Recent(ctx context.Context, n int) ([]Record, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if history is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown history driver: " + driver)
	}
}
