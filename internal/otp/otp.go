// Package otp stores one-time login codes sent to phone numbers.
package otp

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps at most one live code per phone. Verify consumes the code
// when it matches.
type Store interface {
	Save(ctx context.Context, phone, code string, ttl time.Duration) error
	Verify(ctx context.Context, phone, code string) (bool, error)
}

func key(phone string) string { return "otp:" + phone }

// verifyScript compares and deletes in one step so a code can only be
// redeemed once.
var verifyScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v and v == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// RedisStore keeps codes under otp:<phone> with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key(phone), code, ttl).Err()
}

func (s *RedisStore) Verify(ctx context.Context, phone, code string) (bool, error) {
	n, err := verifyScript.Run(ctx, s.rdb, []string{key(phone)}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

type entry struct {
	code string
	exp  time.Time
}

// MemoryStore is a process-local Store used when Redis is unavailable.
// Codes do not survive a restart and are not shared between replicas.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]entry
	now   func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: map[string]entry{}, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, phone, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key(phone)] = entry{code: code, exp: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Verify(_ context.Context, phone, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(phone)
	e, ok := s.codes[k]
	if !ok {
		return false, nil
	}
	if !s.now().Before(e.exp) {
		delete(s.codes, k)
		return false, nil
	}
	if e.code != code {
		return false, nil
	}
	delete(s.codes, k)
	return true, nil
}
