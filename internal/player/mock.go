// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// Mock is a test double for Transport.
type Mock struct {
	mu         sync.Mutex
	path       string
	state      State
	position   time.Duration
	duration   time.Duration
	volume     float64
	playCalls  int
	pauseCalls int
	seekCalls  []time.Duration
	volumes    []float64
	finished   chan struct{}
	finishOnce sync.Once
}

// NewMock creates a paused mock transport for path.
func NewMock(path string) *Mock {
	return &Mock{
		path:     path,
		state:    Paused,
		volume:   1,
		finished: make(chan struct{}),
	}
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.state != Stopped {
		m.state = Playing
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	if m.state != Stopped {
		m.state = Paused
	}
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Seek records the delta and moves the position without clamping.
func (m *Mock) Seek(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, d)
	m.position += d
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
	m.volumes = append(m.volumes, level)
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Finished() <-chan struct{} {
	return m.finished
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Stopped
	return nil
}

// Test helpers

func (m *Mock) Path() string { return m.path }

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	m.duration = d
	m.mu.Unlock()
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	m.position = d
	m.mu.Unlock()
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) IsClosed() bool {
	return m.State() == Stopped
}

// SimulateFinished simulates the track reaching its natural end.
func (m *Mock) SimulateFinished() {
	m.finishOnce.Do(func() { close(m.finished) })
}

// Verify Mock implements Transport at compile time.
var _ Transport = (*Mock)(nil)

// MockOpener hands out Mock transports and records every load.
type MockOpener struct {
	mu         sync.Mutex
	transports []*Mock
	failPaths  map[string]error
	duration   time.Duration
}

// NewMockOpener creates an opener producing mocks of the given duration.
func NewMockOpener(duration time.Duration) *MockOpener {
	return &MockOpener{
		failPaths: make(map[string]error),
		duration:  duration,
	}
}

// Open implements Opener.
func (o *MockOpener) Open(path string) (Transport, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err, ok := o.failPaths[path]; ok {
		return nil, err
	}
	m := NewMock(path)
	m.duration = o.duration
	o.transports = append(o.transports, m)
	return m, nil
}

// FailOn makes opening path return err.
func (o *MockOpener) FailOn(path string, err error) {
	o.mu.Lock()
	o.failPaths[path] = err
	o.mu.Unlock()
}

// Loads returns the paths opened so far, in order.
func (o *MockOpener) Loads() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	paths := make([]string, len(o.transports))
	for i, m := range o.transports {
		paths[i] = m.path
	}
	return paths
}

// Last returns the most recently opened mock, or nil.
func (o *MockOpener) Last() *Mock {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.transports) == 0 {
		return nil
	}
	return o.transports[len(o.transports)-1]
}

// All returns every mock opened so far.
func (o *MockOpener) All() []*Mock {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*Mock(nil), o.transports...)
}
