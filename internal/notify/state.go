package notify

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/benvon/smart-connections/internal/models"
)

const (
	fingerprintKeyPrefix  = "suggestions:fingerprint:"
	defaultFingerprintTTL = 30 * 24 * time.Hour
)

// StateStore remembers the last high-confidence suggestion set a user was notified about.
// SwapFingerprint must be atomic so that concurrent evaluations of one set claim it once.
type StateStore interface {
	// SwapFingerprint stores fingerprint and returns the value it replaced, or "" when none was stored
	SwapFingerprint(ctx context.Context, userID uuid.UUID, fingerprint string) (string, error)
	// RestoreFingerprint puts previous back if claimed is still the stored value
	RestoreFingerprint(ctx context.Context, userID uuid.UUID, claimed, previous string) error
	ClearFingerprint(ctx context.Context, userID uuid.UUID) error
}

// Fingerprint identifies a suggestion set independent of its order
func Fingerprint(suggestions []models.Suggestion) string {
	parts := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		parts = append(parts, s.PersonID.String()+":"+strconv.Itoa(s.SuggestedCloseness)+":"+string(s.ActionType))
	}
	sort.Strings(parts)

	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.WriteString("\n")
	}
	return hex.EncodeToString(d.Sum(nil))
}

// RedisStateStore keeps fingerprints in Redis with an expiry
type RedisStateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ StateStore = (*RedisStateStore)(nil)

// NewRedisStateStore creates a Redis-backed state store. A non-positive ttl uses 30 days.
func NewRedisStateStore(client redis.UniversalClient, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = defaultFingerprintTTL
	}
	return &RedisStateStore{client: client, ttl: ttl}
}

func fingerprintKey(userID uuid.UUID) string {
	return fingerprintKeyPrefix + userID.String()
}

// SwapFingerprint sets the fingerprint with SET ... GET and returns the previous value
func (s *RedisStateStore) SwapFingerprint(ctx context.Context, userID uuid.UUID, fingerprint string) (string, error) {
	prev, err := s.client.SetArgs(ctx, fingerprintKey(userID), fingerprint, redis.SetArgs{TTL: s.ttl, Get: true}).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to swap suggestion fingerprint: %w", err)
	}
	return prev, nil
}

// KEYS[1] fingerprint key; ARGV claimed, previous ("" deletes), ttl in ms
var restoreFingerprintScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) ~= ARGV[1] then
  return 0
end
if ARGV[2] == '' then
  redis.call('DEL', KEYS[1])
else
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
end
return 1
`)

// RestoreFingerprint undoes a claim unless another evaluation has replaced it since
func (s *RedisStateStore) RestoreFingerprint(ctx context.Context, userID uuid.UUID, claimed, previous string) error {
	err := restoreFingerprintScript.Run(ctx, s.client, []string{fingerprintKey(userID)},
		claimed, previous, s.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to restore suggestion fingerprint: %w", err)
	}
	return nil
}

// ClearFingerprint forgets the stored fingerprint
func (s *RedisStateStore) ClearFingerprint(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, fingerprintKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear suggestion fingerprint: %w", err)
	}
	return nil
}
