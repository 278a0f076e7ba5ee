// Package asynchook moves typecache hook delivery off the caller's
// goroutine. Probe hooks fire under a table lock, so a slow Hooks
// implementation should be wrapped:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000)
//	defer hooks.Close()
//
//	tv, _ := typecache.New(typecache.Options[Schema]{Compute: build, Hooks: hooks})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/typecache"
)

type Hooks struct {
	inner   typecache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ typecache.Hooks = (*Hooks)(nil)

func New(inner typecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. No hook may fire
// after Close.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped counts events lost to a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) ComputeFailed(t reflect.Type, err error) {
	h.try(func() { h.inner.ComputeFailed(t, err) })
}
func (h *Hooks) ComputeDiscarded(t reflect.Type, r string) {
	h.try(func() { h.inner.ComputeDiscarded(t, r) })
}
func (h *Hooks) ProbeResized(t reflect.Type, from, to int) {
	h.try(func() { h.inner.ProbeResized(t, from, to) })
}
func (h *Hooks) ProbeSaturated(t reflect.Type, n int) {
	h.try(func() { h.inner.ProbeSaturated(t, n) })
}
func (h *Hooks) TierSelfHeal(k, r string) { h.try(func() { h.inner.TierSelfHeal(k, r) }) }
func (h *Hooks) TierSetRejected(k string) { h.try(func() { h.inner.TierSetRejected(k) }) }
func (h *Hooks) GenBumpError(k string, err error) {
	h.try(func() { h.inner.GenBumpError(k, err) })
}
func (h *Hooks) GenSnapshotError(k string, err error) {
	h.try(func() { h.inner.GenSnapshotError(k, err) })
}
func (h *Hooks) RemoveOutage(k string, be, de error) {
	h.try(func() { h.inner.RemoveOutage(k, be, de) })
}
