package enrich

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/amethyst/internal/logger"
)

// ComputeFunc produces the value for one track.
type ComputeFunc[V any] func(ctx context.Context, path string) (V, error)

// Pipeline runs a ComputeFunc for tracks missing from its cache, at most
// gate.Max() at a time and at most once concurrently per path.
// Failures are logged at debug level and leave the cache untouched.
type Pipeline[V any] struct {
	name    string
	cache   *Cache[V]
	gate    *Gate
	compute ComputeFunc[V]
	logger  *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewPipeline creates a pipeline named after its domain.
func NewPipeline[V any](name string, cache *Cache[V], gate *Gate, compute ComputeFunc[V], l *log.Logger) *Pipeline[V] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline[V]{
		name:    name,
		cache:   cache,
		gate:    gate,
		compute: compute,
		logger:  logger.Component(l, name),
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]struct{}),
	}
}

// Cache returns the pipeline's result store.
func (p *Pipeline[V]) Cache() *Cache[V] {
	return p.cache
}

// Gate returns the pipeline's admission gate.
func (p *Pipeline[V]) Gate() *Gate {
	return p.gate
}

// Enrich submits path for background computation. It returns false when
// path is empty, already cached, already pending, or the pipeline is closed.
// Cancelling ctx abandons the task if it has not finished.
func (p *Pipeline[V]) Enrich(ctx context.Context, path string) bool {
	if path == "" {
		return false
	}

	p.mu.Lock()
	// Tasks store before leaving pending, so the cache check must
	// happen under the same lock as the pending check
	if _, ok := p.pending[path]; ok || p.closed || p.cache.Has(path) {
		p.mu.Unlock()
		return false
	}
	p.pending[path] = struct{}{}
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(ctx, path)
	return true
}

// EnrichAll submits every path lacking a cache entry and returns how many
// were submitted.
func (p *Pipeline[V]) EnrichAll(ctx context.Context, paths []string) int {
	n := 0
	for _, path := range paths {
		if p.Enrich(ctx, path) {
			n++
		}
	}
	return n
}

// Pending returns the number of submitted tasks not yet finished.
func (p *Pipeline[V]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Wait blocks until every submitted task has finished.
func (p *Pipeline[V]) Wait() {
	p.wg.Wait()
}

// Close cancels running and waiting tasks and waits for them to return.
func (p *Pipeline[V]) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *Pipeline[V]) run(ctx context.Context, path string) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		delete(p.pending, path)
		p.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	if err := p.gate.Acquire(ctx); err != nil {
		return
	}
	defer p.gate.Release()

	v, err := p.safeCompute(ctx, path)
	if err != nil {
		p.logger.Debug("enrichment failed", "path", path, "err", err)
		return
	}
	p.cache.Store(path, v)
}

func (p *Pipeline[V]) safeCompute(ctx context.Context, path string) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.compute(ctx, path)
}
