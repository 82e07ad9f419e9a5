package reminder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/idilsaglam/mornify/internal/logx"
)

// Player plays the reminder sound once, to the end.
type Player interface {
	Play(ctx context.Context) error
}

var errNoPlayer = errors.New("no audio player found on PATH")

// players are tried in order when no command is configured.
var players = [][]string{
	{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
	{"mpg123", "-q"},
	{"afplay"},
	{"paplay"},
	{"aplay", "-q"},
}

// ExecPlayer runs an external audio player on the sound file.
type ExecPlayer struct {
	path string
	argv []string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewPlayer checks the sound asset once. A missing asset returns (nil, nil):
// reminders then run without sound. command overrides player discovery.
func NewPlayer(path, command string, log logx.Logger) (Player, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Info("sound asset not found; reminders will be silent", logx.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("stat sound: %w", err)
	}

	argv := strings.Fields(command)
	if len(argv) == 0 {
		for _, cand := range players {
			if _, err := exec.LookPath(cand[0]); err == nil {
				argv = cand
				break
			}
		}
	}
	if len(argv) == 0 {
		log.Warn("sound asset present but no player available", logx.String("path", path), logx.Err(errNoPlayer))
		return nil, nil
	}
	return &ExecPlayer{path: path, argv: argv, run: runCommand}, nil
}

func (p *ExecPlayer) Play(ctx context.Context) error {
	args := append(append([]string(nil), p.argv[1:]...), p.path)
	return p.run(ctx, p.argv[0], args...)
}
