package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/idilsaglam/mornify/internal/logx"
)

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " None "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", driver, st, err)
		}
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestStoresAppendAndRecent(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			st, err := Open(Config{Driver: driver, Path: filepath.Join(t.TempDir(), "history."+driver)}, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer st.Close()

			ctx := context.Background()
			base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
			acts := []string{"Wake Up", "Drink a glass of water", "Prayer and Worship"}
			for i, a := range acts {
				r := Record{
					ID:       a,
					At:       base.Add(time.Duration(i) * time.Minute),
					TaskTime: "08:0" + string(rune('0'+i)),
					Activity: a,
					Source:   "tick",
				}
				if i == 1 {
					r.NotifyError = "dbus unavailable"
				}
				if err := st.Append(ctx, r); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			got, err := st.Recent(ctx, 2)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("len = %d, want 2", len(got))
			}
			if got[0].Activity != acts[1] || got[1].Activity != acts[2] {
				t.Fatalf("order = %q, %q; want oldest first", got[0].Activity, got[1].Activity)
			}
			if got[0].NotifyError != "dbus unavailable" || got[1].NotifyError != "" {
				t.Fatalf("NotifyError not kept: %+v", got)
			}
			if !got[1].At.Equal(base.Add(2 * time.Minute)) {
				t.Fatalf("At = %v", got[1].At)
			}

			all, err := st.Recent(ctx, 0)
			if err != nil || len(all) != 3 {
				t.Fatalf("Recent(0) = %d records, %v; want 3", len(all), err)
			}
		})
	}
}
