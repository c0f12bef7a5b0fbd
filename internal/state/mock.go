// internal/state/mock.go
package state

import (
	"maps"
	"slices"
	"sync"
)

// Mock is a test double for Manager.
type Mock struct {
	mu          sync.Mutex
	volume      float64
	currentPath string
	queue       *QueueState
	queueSaves  int
	tempos      map[string]int
	closed      bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{volume: 1, tempos: make(map[string]int)}
}

func (m *Mock) GetVolume() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume, nil
}

func (m *Mock) SaveVolume(volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	return nil
}

func (m *Mock) GetCurrentPath() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentPath, nil
}

func (m *Mock) SaveCurrentPath(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentPath = path
	return nil
}

func (m *Mock) GetQueue() (*QueueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue == nil {
		return &QueueState{CurrentIndex: -1}, nil
	}
	q := QueueState{CurrentIndex: m.queue.CurrentIndex, Tracks: slices.Clone(m.queue.Tracks)}
	return &q, nil
}

func (m *Mock) SaveQueue(state QueueState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state.Tracks = slices.Clone(state.Tracks)
	m.queue = &state
	m.queueSaves++
}

func (m *Mock) LoadTempos() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.tempos), nil
}

func (m *Mock) SaveTempo(path string, bpm int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempos[path] = bpm
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetQueue(state *QueueState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = state
}

func (m *Mock) QueueSaves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queueSaves
}

func (m *Mock) Tempos() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.tempos)
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
