// internal/state/interface.go
package state

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	GetVolume() (float64, error)
	SaveVolume(volume float64) error
	GetCurrentPath() (string, error)
	SaveCurrentPath(path string) error
	GetQueue() (*QueueState, error)
	SaveQueue(state QueueState)
	LoadTempos() (map[string]int, error)
	SaveTempo(path string, bpm int) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
