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

	appName = "Amethyst"
)

type dbusNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. Without a session bus it returns Nop.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return Nop{}, nil //nolint:nilerr // no session bus means no popups
	}
	return &dbusNotifier{obj: conn.Object(busName, busPath)}, nil
}

func (d *dbusNotifier) Notify(n Notification) (uint32, error) {
	call := d.obj.Call(busMethod, 0,
		appName, n.Replaces, n.Icon, n.Title, n.Body,
		[]string{}, hints(n), n.Timeout,
	)
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}

func (d *dbusNotifier) Close(id uint32) error {
	return d.obj.Call(busClose, 0, id).Err
}
