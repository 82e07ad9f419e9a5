package reminder

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/idilsaglam/mornify/internal/logx"
)

type Notification struct {
	Title   string
	Body    string
	Timeout time.Duration
}

// Notifier delivers an OS-level notification.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// NewNotifier builds the backend named by backend ("auto", "dbus", "exec",
// "log"). "auto" falls back from dbus to exec to log.
func NewNotifier(backend, appName string, log logx.Logger) (Notifier, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "dbus":
		n, err := NewDBusNotifier(appName)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "exec":
		n, err := NewExecNotifier(appName)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "log":
		return NewLogNotifier(log), nil
	case "", "auto":
		dn, err := NewDBusNotifier(appName)
		if err == nil {
			return dn, nil
		}
		log.Debug("dbus notifications unavailable", logx.Err(err))
		en, err := NewExecNotifier(appName)
		if err == nil {
			return en, nil
		}
		log.Debug("exec notifications unavailable", logx.Err(err))
		log.Warn("no notification backend found; reminders are logged only")
		return NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q", backend)
	}
}

const (
	fdoDest       = "org.freedesktop.Notifications"
	fdoPath       = "/org/freedesktop/Notifications"
	fdoNotify     = "org.freedesktop.Notifications.Notify"
	fdoServerInfo = "org.freedesktop.Notifications.GetServerInformation"
)

// DBusNotifier talks to the desktop's org.freedesktop.Notifications service.
type DBusNotifier struct {
	appName string
	conn    *dbus.Conn
}

func NewDBusNotifier(appName string) (*DBusNotifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	// Fail early if nobody owns the notification name.
	obj := conn.Object(fdoDest, dbus.ObjectPath(fdoPath))
	if call := obj.Call(fdoServerInfo, 0); call.Err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("notification server: %w", call.Err)
	}
	return &DBusNotifier{appName: appName, conn: conn}, nil
}

func (n *DBusNotifier) Name() string { return "dbus" }

func (n *DBusNotifier) Notify(ctx context.Context, msg Notification) error {
	obj := n.conn.Object(fdoDest, dbus.ObjectPath(fdoPath))
	call := obj.CallWithContext(ctx, fdoNotify, 0,
		n.appName,
		uint32(0), // replaces_id
		"",        // app_icon
		msg.Title,
		msg.Body,
		[]string{},
		map[string]dbus.Variant{},
		int32(msg.Timeout.Milliseconds()),
	)
	return call.Err
}

func (n *DBusNotifier) Close() error { return n.conn.Close() }

// ExecNotifier shells out to notify-send (Linux/BSD) or osascript (macOS).
type ExecNotifier struct {
	appName string
	bin     string
	// run is swapped in tests.
	run func(ctx context.Context, name string, args ...string) error
}

func NewExecNotifier(appName string) (*ExecNotifier, error) {
	name := "notify-send"
	if runtime.GOOS == "darwin" {
		name = "osascript"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, err
	}
	return &ExecNotifier{appName: appName, bin: bin, run: runCommand}, nil
}

func (n *ExecNotifier) Name() string { return "exec" }

func (n *ExecNotifier) Notify(ctx context.Context, msg Notification) error {
	return n.run(ctx, n.bin, n.args(msg)...)
}

func (n *ExecNotifier) args(msg Notification) []string {
	if strings.HasSuffix(n.bin, "osascript") {
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(msg.Body), strconv.Quote(msg.Title))
		return []string{"-e", script}
	}
	return []string{
		"--app-name", n.appName,
		"--expire-time", strconv.FormatInt(msg.Timeout.Milliseconds(), 10),
		msg.Title,
		msg.Body,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if s := strings.TrimSpace(string(out)); s != "" {
			return fmt.Errorf("%s: %w: %s", name, err, s)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// LogNotifier only writes the notification to the log.
type LogNotifier struct {
	log logx.Logger
}

func NewLogNotifier(log logx.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.log.Info(msg.Title, logx.String("body", msg.Body), logx.Duration("timeout", msg.Timeout))
	return nil
}
