//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDBusNotifier_RoundTrip(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	n, err := New()
	require.NoError(t, err)

	id, err := n.Notify(Notification{Title: "Amethyst", Body: "first", Timeout: 1000, Transient: true})
	require.NoError(t, err)
	require.NotZero(t, id)

	again, err := n.Notify(Notification{Title: "Amethyst", Body: "second", Timeout: 1000, Replaces: id, Transient: true})
	require.NoError(t, err)
	require.Equal(t, id, again)

	require.NoError(t, n.Close(id))
}
