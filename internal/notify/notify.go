// Package notify shows desktop notifications over the freedesktop
// notification service.
package notify

import (
	"path/filepath"

	"github.com/godbus/dbus/v5"
)

const desktopEntry = "amethyst"

// Notification is a single desktop popup.
type Notification struct {
	Title   string
	Body    string
	Icon    string // icon name or absolute image path
	Timeout int32  // ms; -1 lets the server decide
	// Replaces is the ID of a notification to update in place, or 0.
	Replaces uint32
	// Transient notifications bypass the server's history.
	Transient bool
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns the server-assigned ID, or 0 when
	// notifications are unavailable.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(Notification) (uint32, error) { return 0, nil }
func (Nop) Close(uint32) error                  { return nil }

// hints builds the hint dictionary sent with n. Track popups are always
// low urgency.
func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(0)),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
	}
	if n.Transient {
		h["transient"] = dbus.MakeVariant(true)
	}
	if filepath.IsAbs(n.Icon) {
		h["image-path"] = dbus.MakeVariant(n.Icon)
	}
	return h
}
