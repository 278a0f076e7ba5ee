package typecache

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

type Foo struct{}
type Quux struct{}
type Bar struct{ N int }

var (
	fooType  = reflect.TypeOf(Foo{})
	quuxType = reflect.TypeOf(Quux{})
	barType  = reflect.TypeOf(Bar{})
)

// nameLen computes len(typ.Name()) and counts calls per type.
type nameLen struct {
	mu    sync.Mutex
	calls map[reflect.Type]int
	total atomic.Int64
}

func newNameLen() *nameLen { return &nameLen{calls: make(map[reflect.Type]int)} }

func (n *nameLen) compute(typ reflect.Type) (int, error) {
	n.total.Add(1)
	n.mu.Lock()
	n.calls[typ]++
	n.mu.Unlock()
	return len(typ.Name()), nil
}

func (n *nameLen) count(typ reflect.Type) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[typ]
}

func newTestRegistry(t *testing.T, opts RegistryOptions) *Registry {
	t.Helper()
	r, err := NewRegistry(opts)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func newTestValue[V any](t *testing.T, opts Options[V]) TypeValue[V] {
	t.Helper()
	tv, err := New[V](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tv
}

func mustImpl[V any](t *testing.T, tv TypeValue[V]) *typeValue[V] {
	t.Helper()
	impl, ok := tv.(*typeValue[V])
	if !ok {
		t.Fatalf("unexpected concrete type for TypeValue")
	}
	return impl
}

type discard struct {
	typ    reflect.Type
	reason string
}

type resize struct{ from, to int }

type events struct {
	failed    []error
	discarded []discard
	resized   []resize
	saturated []int
	selfHeals []string
	rejected  []string
	bumpErrs  []error
	outages   int
}

// recordingHooks keeps every event it sees.
type recordingHooks struct {
	NopHooks

	mu sync.Mutex
	ev events
}

func (h *recordingHooks) ComputeFailed(_ reflect.Type, err error) {
	h.mu.Lock()
	h.ev.failed = append(h.ev.failed, err)
	h.mu.Unlock()
}

func (h *recordingHooks) ComputeDiscarded(typ reflect.Type, reason string) {
	h.mu.Lock()
	h.ev.discarded = append(h.ev.discarded, discard{typ, reason})
	h.mu.Unlock()
}

func (h *recordingHooks) ProbeResized(_ reflect.Type, from, to int) {
	h.mu.Lock()
	h.ev.resized = append(h.ev.resized, resize{from, to})
	h.mu.Unlock()
}

func (h *recordingHooks) ProbeSaturated(_ reflect.Type, size int) {
	h.mu.Lock()
	h.ev.saturated = append(h.ev.saturated, size)
	h.mu.Unlock()
}

func (h *recordingHooks) TierSelfHeal(_ string, reason string) {
	h.mu.Lock()
	h.ev.selfHeals = append(h.ev.selfHeals, reason)
	h.mu.Unlock()
}

func (h *recordingHooks) TierSetRejected(k string) {
	h.mu.Lock()
	h.ev.rejected = append(h.ev.rejected, k)
	h.mu.Unlock()
}

func (h *recordingHooks) GenBumpError(_ string, err error) {
	h.mu.Lock()
	h.ev.bumpErrs = append(h.ev.bumpErrs, err)
	h.mu.Unlock()
}

func (h *recordingHooks) RemoveOutage(string, error, error) {
	h.mu.Lock()
	h.ev.outages++
	h.mu.Unlock()
}

func (h *recordingHooks) seen() events {
	h.mu.Lock()
	defer h.mu.Unlock()
	return events{
		failed:    append([]error(nil), h.ev.failed...),
		discarded: append([]discard(nil), h.ev.discarded...),
		resized:   append([]resize(nil), h.ev.resized...),
		saturated: append([]int(nil), h.ev.saturated...),
		selfHeals: append([]string(nil), h.ev.selfHeals...),
		rejected:  append([]string(nil), h.ev.rejected...),
		bumpErrs:  append([]error(nil), h.ev.bumpErrs...),
		outages:   h.ev.outages,
	}
}
