package genstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGenStore shares generations between processes and survives
// restarts. With a TTL, generation keys expire after TTL without a bump;
// readers then observe 0 and tier entries written later self-heal.
type RedisGenStore struct {
	rdb         redis.UniversalClient
	ns          string
	ttl         time.Duration
	closeClient bool
}

var _ GenStore = (*RedisGenStore)(nil)

// RedisGenOptions configure NewRedisGenStore. Client is required.
type RedisGenOptions struct {
	Client      redis.UniversalClient
	Namespace   string        // prefixes generation keys
	TTL         time.Duration // 0 => generation keys never expire
	CloseClient bool          // Close also closes Client
}

var ErrNilClient = errors.New("genstore: nil redis client")

func NewRedisGenStore(opts RedisGenOptions) (*RedisGenStore, error) {
	if opts.Client == nil {
		return nil, ErrNilClient
	}
	return &RedisGenStore{
		rdb:         opts.Client,
		ns:          opts.Namespace,
		ttl:         opts.TTL,
		closeClient: opts.CloseClient,
	}, nil
}

func (s *RedisGenStore) key(k string) string { return "gen:" + s.ns + ":" + k }

func (s *RedisGenStore) Snapshot(ctx context.Context, storageKey string) (uint64, error) {
	res, err := s.rdb.Get(ctx, s.key(storageKey)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	u, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("genstore: parse %q: %w", res, err)
	}
	return u, nil
}

// Bump increments the generation. With a TTL, INCR and EXPIRE go out in
// one pipelined round trip.
func (s *RedisGenStore) Bump(ctx context.Context, storageKey string) (uint64, error) {
	k := s.key(storageKey)
	if s.ttl <= 0 {
		v, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Cleanup is a no-op; Redis expires keys itself when a TTL is set.
func (s *RedisGenStore) Cleanup(time.Duration) {}

func (s *RedisGenStore) Close(context.Context) error {
	if !s.closeClient {
		return nil
	}
	if err := s.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
