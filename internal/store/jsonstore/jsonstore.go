package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/mornify/internal/model"
)

// JSON-backed storage. One human-readable file per store, written in full
// on every save. No locking or atomic rename; a single app instance owns
// the files.

const indent = "    "

// RoutineStore persists the routine as a JSON array.
type RoutineStore struct {
	path string
}

func NewRoutineStore(path string) *RoutineStore {
	return &RoutineStore{path: path}
}

func (s *RoutineStore) Path() string { return s.path }

// Load returns the stored routine, or the default routine when the file
// does not exist. Malformed content is an error.
func (s *RoutineStore) Load() (model.Routine, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultRoutine(), nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var tasks model.Routine
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("json unmarshal %s: %w", s.path, err)
	}
	return tasks, nil
}

// Save replaces the file with tasks.
func (s *RoutineStore) Save(tasks model.Routine) error {
	if tasks == nil {
		tasks = model.Routine{}
	}
	return writeJSON(s.path, tasks)
}

// ThemeStore persists the theme as a JSON object.
type ThemeStore struct {
	path string
}

func NewThemeStore(path string) *ThemeStore {
	return &ThemeStore{path: path}
}

func (s *ThemeStore) Path() string { return s.path }

// Load merges the stored theme onto base. A missing file returns base as is
// and writes nothing.
func (s *ThemeStore) Load(base model.Theme) (model.Theme, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return base, fmt.Errorf("read file: %w", err)
	}
	th := base.Clone()
	if err := json.Unmarshal(b, &th); err != nil {
		return base, fmt.Errorf("json unmarshal %s: %w", s.path, err)
	}
	return th, nil
}

func (s *ThemeStore) Save(th model.Theme) error {
	return writeJSON(s.path, th)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
