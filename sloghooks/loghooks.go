// Package sloghooks reports typecache events to a log/slog Logger.
package sloghooks

import (
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/unkn0wn-root/typecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	DiscardEvery  uint64
	SelfHealEvery uint64
	// Optional key redactor. Defaults to a 64-bit hash of the key.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	discardCtr  atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ typecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	var buf [16]byte
	const hexdigits = "0123456789abcdef"
	sum := xxhash.Sum64String(k)
	for i := 15; i >= 0; i-- {
		buf[i] = hexdigits[sum&0xf]
		sum >>= 4
	}
	return string(buf[:])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n <= 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ComputeFailed(typ reflect.Type, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("typecache.compute_failed", "type", typ.String(), "err", err)
}

func (h *Hooks) ComputeDiscarded(typ reflect.Type, reason string) {
	if h.l == nil || !sample(h.opts.DiscardEvery, &h.discardCtr) {
		return
	}
	h.l.Debug("typecache.compute_discarded", "type", typ.String(), "reason", reason)
}

func (h *Hooks) ProbeResized(typ reflect.Type, from, to int) {
	if h.l == nil {
		return
	}
	h.l.Debug("typecache.probe_resized", "type", typ.String(), "from", from, "to", to)
}

func (h *Hooks) ProbeSaturated(typ reflect.Type, size int) {
	if h.l == nil {
		return
	}
	h.l.Warn("typecache.probe_saturated", "type", typ.String(), "size", size)
}

func (h *Hooks) TierSelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("typecache.tier_self_heal", "key", h.redact(storageKey), "reason", reason)
}

func (h *Hooks) TierSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("typecache.tier_set_rejected", "key", h.redact(storageKey))
}

func (h *Hooks) GenSnapshotError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("typecache.gen_snapshot_error", "key", h.redact(storageKey), "err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("typecache.gen_bump_error", "key", h.redact(storageKey), "err", err)
}

func (h *Hooks) RemoveOutage(storageKey string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("typecache.remove_outage",
		"key", h.redact(storageKey),
		"bump_err", bumpErr,
		"del_err", delErr)
}
