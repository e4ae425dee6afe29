package pipeline

import (
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
)

// ErrBusy signals that every pipeline slot is occupied. Callers reject the
// upload rather than queueing unbounded transcode work.
var ErrBusy = errors.New("pipeline capacity exhausted")

// Pool bounds the number of concurrently executing pipelines. Each slot
// covers one whole upload, including all of its artifact transcodes.
type Pool struct {
	slots  chan struct{}
	active atomic.Int64
}

// NewPool builds a pool with the given slot count. A non-positive limit
// sizes the pool from available CPUs.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = DefaultPoolSize()
	}
	return &Pool{slots: make(chan struct{}, limit)}
}

// DefaultPoolSize derives a pipeline cap from GOMAXPROCS, which tracks
// container CPU limits. Transcodes are CPU-bound, so one pipeline per CPU
// with a floor of one. VIDFORGE_PIPELINE_SLOTS overrides.
func DefaultPoolSize() int {
	if override := os.Getenv("VIDFORGE_PIPELINE_SLOTS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return count
		}
	}
	size := runtime.GOMAXPROCS(0)
	if size < 1 {
		size = 1
	}
	return size
}

// TryAcquire claims a slot without blocking. It returns false when the pool
// is saturated.
func (p *Pool) TryAcquire() bool {
	select {
	case p.slots <- struct{}{}:
		p.active.Add(1)
		return true
	default:
		return false
	}
}

// Release frees a slot claimed by TryAcquire.
func (p *Pool) Release() {
	select {
	case <-p.slots:
		p.active.Add(-1)
	default:
	}
}

// Active returns the number of pipelines currently holding slots.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Capacity returns the total slot count.
func (p *Pool) Capacity() int {
	return cap(p.slots)
}
