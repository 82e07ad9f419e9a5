package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/idilsaglam/mornify/internal/model"
)

// EditRow is one row of the edit grid, as typed.
type EditRow struct {
	Time     string
	Activity string
	Duration string
}

// ValidationError reports the first row that does not parse. Row is
// 1-based.
type ValidationError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var errNotMinutes = errors.New("want a whole number of minutes")

// EditRows renders r for the edit grid.
func EditRows(r model.Routine) []EditRow {
	out := make([]EditRow, 0, len(r))
	for _, t := range r {
		out = append(out, EditRow{Time: t.Time, Activity: t.Activity, Duration: strconv.Itoa(t.Duration)})
	}
	return out
}

// ParseEdits turns grid rows into a routine. Rows with neither a time nor
// an activity are dropped. Times are only trimmed; durations must be
// non-negative integers.
func ParseEdits(rows []EditRow) (model.Routine, error) {
	out := make(model.Routine, 0, len(rows))
	for i, row := range rows {
		tm := strings.TrimSpace(row.Time)
		act := strings.TrimSpace(row.Activity)
		dur := strings.TrimSpace(row.Duration)
		if tm == "" && act == "" {
			continue
		}
		n, err := strconv.Atoi(dur)
		if err != nil || n < 0 {
			return nil, &ValidationError{Row: i + 1, Field: "duration", Value: row.Duration, Err: errNotMinutes}
		}
		out = append(out, model.Task{Time: tm, Activity: act, Duration: n})
	}
	return out, nil
}
