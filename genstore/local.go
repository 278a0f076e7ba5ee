package genstore

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const localShards = 16

type localGen struct {
	gen     uint64
	touched time.Time
}

type localShard struct {
	mu   sync.RWMutex
	gens map[string]localGen
}

// LocalGenStore keeps generations in process memory, split over a few
// shards so that Bump on one type does not stall Snapshot on another.
// With a positive cleanup interval and retention a background loop
// prunes generations nobody bumped for retention.
type LocalGenStore struct {
	shards [localShards]localShard

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

var _ GenStore = (*LocalGenStore)(nil)

func NewLocalGenStore(cleanupInterval, retention time.Duration) *LocalGenStore {
	s := &LocalGenStore{}
	for i := range s.shards {
		s.shards[i].gens = make(map[string]localGen)
	}
	if cleanupInterval > 0 && retention > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.cleanupLoop(cleanupInterval, retention)
	}
	return s
}

func (s *LocalGenStore) shard(k string) *localShard {
	return &s.shards[xxhash.Sum64String(k)%localShards]
}

func (s *LocalGenStore) Snapshot(_ context.Context, k string) (uint64, error) {
	sh := s.shard(k)
	sh.mu.RLock()
	g := sh.gens[k].gen
	sh.mu.RUnlock()
	return g, nil
}

func (s *LocalGenStore) Bump(_ context.Context, k string) (uint64, error) {
	now := time.Now()
	sh := s.shard(k)
	sh.mu.Lock()
	e := sh.gens[k]
	e.gen++
	e.touched = now
	sh.gens[k] = e
	sh.mu.Unlock()
	return e.gen, nil
}

// Cleanup drops generations last bumped before now-retention. A dropped
// key reads as 0 again; tier entries written under a higher generation
// are then rejected and deleted on their next read.
func (s *LocalGenStore) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, e := range sh.gens {
			if e.touched.Before(cutoff) {
				delete(sh.gens, k)
			}
		}
		sh.mu.Unlock()
	}
}

func (s *LocalGenStore) cleanupLoop(every, retention time.Duration) {
	defer close(s.done)
	tk := time.NewTicker(every)
	defer tk.Stop()
	for {
		select {
		case <-tk.C:
			s.Cleanup(retention)
		case <-s.stop:
			return
		}
	}
}

// Close stops the cleanup loop and waits for it. Safe to call twice.
func (s *LocalGenStore) Close(_ context.Context) error {
	if s.stop == nil {
		return nil
	}
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}
