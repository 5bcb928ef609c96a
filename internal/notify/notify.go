// Package notify delivers desktop notifications over the session bus.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/displayctl/internal/logging"
)

const (
	notifyBusName    = "org.freedesktop.Notifications"
	notifyObjectPath = "/org/freedesktop/Notifications"
	notifyMethod     = "org.freedesktop.Notifications.Notify"

	// errorSummary is the title shown on failure notifications.
	errorSummary = "Screen Configuration Error"

	expireMillis = int32(5000)
)

// Level indicates the urgency of a notification.
type Level int

const (
	// LevelInfo is for informational messages (low urgency).
	LevelInfo Level = iota
	// LevelWarning is for warning messages (normal urgency).
	LevelWarning
	// LevelError is for error messages (critical urgency).
	LevelError
)

// Notifier sends best-effort desktop notifications. Delivery failures are
// logged, never returned, so callers can fire and forget.
type Notifier interface {
	Notify(level Level, summary, body string)
}

// Noop discards every notification.
type Noop struct{}

func (Noop) Notify(Level, string, string) {}

// caller issues one org.freedesktop.Notifications.Notify method call.
type caller func(args ...any) error

// DBus sends notifications through org.freedesktop.Notifications.
type DBus struct {
	call    caller
	appName string
	log     logging.Logger
}

// New connects to the session bus. When no bus is reachable it returns a
// Noop notifier so the rest of the program keeps working.
func New(appName string, log logging.Logger) Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		log.Warn("session bus unavailable, notifications disabled", "error", err)
		return Noop{}
	}
	call := func(args ...any) error {
		obj := conn.Object(notifyBusName, dbus.ObjectPath(notifyObjectPath))
		return obj.Call(notifyMethod, 0, args...).Err
	}
	return &DBus{call: call, appName: appName, log: log}
}

// Notify delivers one notification. The summary falls back to the shared
// error title when the caller leaves it empty on an error-level message.
func (n *DBus) Notify(level Level, summary, body string) {
	if summary == "" && level == LevelError {
		summary = errorSummary
	}

	urgency := byte(1)
	icon := "dialog-warning"
	switch level {
	case LevelInfo:
		urgency = 0
		icon = "dialog-information"
	case LevelError:
		urgency = 2
		icon = "dialog-error"
	}

	hints := map[string]dbus.Variant{
		"urgency":  dbus.MakeVariant(urgency),
		"category": dbus.MakeVariant("device"),
	}
	if level == LevelInfo {
		hints["transient"] = dbus.MakeVariant(true)
	}

	err := n.call(n.appName, uint32(0), icon, summary, body, []string{}, hints, expireMillis)
	if err != nil {
		n.log.Warn("notification delivery failed",
			"summary", summary, "error", err)
		return
	}
	n.log.Debug("notification sent", "summary", summary, "level", int(level))
}

// Errorf formats and delivers a critical notification.
func Errorf(n Notifier, format string, args ...any) {
	n.Notify(LevelError, errorSummary, fmt.Sprintf(format, args...))
}
