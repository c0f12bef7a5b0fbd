//go:build linux

package mpris

import (
	"github.com/charmbracelet/log"
	"github.com/quarckster/go-mpris-server/pkg/server"

	"github.com/llehouerou/amethyst/internal/logger"
	"github.com/llehouerou/amethyst/internal/playback"
)

// Adapter publishes a playback service on the session bus as an MPRIS
// player. Properties are pulled from the service on demand.
type Adapter struct {
	server *server.Server
	logger *log.Logger
}

// New registers the player and starts serving in the background.
func New(service playback.Service, art ArtFunc, l *log.Logger) (*Adapter, error) {
	a := &Adapter{
		server: server.NewServer(busName, rootAdapter{}, newPlayerAdapter(service, art)),
		logger: logger.Component(l, "mpris"),
	}
	go func() {
		if err := a.server.Listen(); err != nil {
			a.logger.Warn("listen", "err", err)
		}
	}()
	return a, nil
}

// Close releases the bus name.
func (a *Adapter) Close() error {
	return a.server.Stop()
}
