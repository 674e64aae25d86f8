//go:build linux

package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName   = "org.freedesktop.Notifications"
	busPath   = "/org/freedesktop/Notifications"
	busMethod = busName + ".Notify"
	busClose  = busName + ".CloseNotification"

	appName = "wavecore"
)

type dbusNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. Without one, it returns a notifier that
// drops everything, so callers need no special case.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nopNotifier{}, nil //nolint:nilerr // no session bus, no notifications
	}
	return &dbusNotifier{obj: conn.Object(busName, busPath)}, nil
}

func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout) -> id
	call := n.obj.Call(busMethod, 0,
		appName,
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		[]string{},
		hints(notif),
		notif.Timeout,
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: read id: %w", err)
	}
	return id, nil
}

func (n *dbusNotifier) Close(id uint32) error {
	if id == 0 {
		return nil
	}
	if call := n.obj.Call(busClose, 0, id); call.Err != nil {
		return fmt.Errorf("close notification %d: %w", id, call.Err)
	}
	return nil
}

func hints(n Notification) map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant(appName),
		"category":      dbus.MakeVariant("x-wavecore.playback"),
	}
}
