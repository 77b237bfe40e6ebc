package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/291e/bogofit-verify/domain"
)

const (
	challengePrefix = "vc:ch:"
	attemptsPrefix  = "vc:att:"

	// Keys outlive the challenge TTL by this much so Verify can still report
	// Expired instead of NotFound shortly after expiry. Once redis reaps the
	// key the entry is genuinely absent and NotFound is correct under the
	// lazy-expiry contract.
	expiryGrace = 5 * time.Minute
)

// RedisStore implements domain.ChallengeStore on a shared redis backend. This
// is the deployment answer to horizontally scaled instances: every instance
// sees the same pending challenges behind the identical interface.
type RedisStore struct {
	client *redis.Client
	cfg    Config
}

// NewRedisStore creates a redis-backed challenge store.
func NewRedisStore(client *redis.Client, cfg Config) *RedisStore {
	return &RedisStore{client: client, cfg: cfg}
}

type storedChallenge struct {
	Identifier  string            `json:"identifier"`
	Purpose     domain.Purpose    `json:"purpose"`
	Code        string            `json:"code"`
	OwnerID     string            `json:"owner_id"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   time.Time         `json:"expires_at"`
	// Millisecond timestamp duplicated for the verify script's expiry check.
	ExpiresAtMS int64 `json:"expires_at_ms"`
}

// verifyScript runs the whole read-compare-consume sequence server-side so
// concurrent submissions of the same code cannot all observe the challenge
// before one of them deletes it. Only one caller can ever see "ok".
//
// KEYS[1] challenge key, KEYS[2] attempts key.
// ARGV[1] submitted code (uppercased), ARGV[2] now (unix ms), ARGV[3] max attempts.
var verifyScript = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {'not_found', ''}
end
local ch = cjson.decode(data)
if tonumber(ARGV[2]) >= tonumber(ch.expires_at_ms) then
  redis.call('DEL', KEYS[1], KEYS[2])
  return {'expired', ''}
end
if ch.code ~= ARGV[1] then
  local attempts = redis.call('INCR', KEYS[2])
  if tonumber(ARGV[3]) > 0 and attempts >= tonumber(ARGV[3]) then
    redis.call('DEL', KEYS[1], KEYS[2])
    return {'too_many_attempts', ''}
  end
  return {'mismatch', ''}
end
redis.call('DEL', KEYS[1], KEYS[2])
return {'ok', data}
`)

func challengeRedisKey(identifier string, purpose domain.Purpose) string {
	return fmt.Sprintf("%s%s:%s", challengePrefix, purpose, identifier)
}

func attemptsRedisKey(identifier string, purpose domain.Purpose) string {
	return fmt.Sprintf("%s%s:%s", attemptsPrefix, purpose, identifier)
}

// Save implements domain.ChallengeStore.
func (s *RedisStore) Save(ctx context.Context, identifier string, purpose domain.Purpose, code, ownerID string, metadata map[string]string) (*domain.Challenge, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.TTL)
	sc := storedChallenge{
		Identifier:  identifier,
		Purpose:     purpose,
		Code:        strings.ToUpper(code),
		OwnerID:     ownerID,
		Metadata:    metadata,
		CreatedAt:   now,
		ExpiresAt:   expiresAt,
		ExpiresAtMS: expiresAt.UnixMilli(),
	}

	data, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	key := challengeRedisKey(identifier, purpose)
	if err := s.client.Set(ctx, key, data, s.cfg.TTL+expiryGrace).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// Reset the attempt counter along with the challenge.
	if err := s.client.Set(ctx, attemptsRedisKey(identifier, purpose), 0, s.cfg.TTL+expiryGrace).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &domain.Challenge{
		Identifier: sc.Identifier,
		Purpose:    sc.Purpose,
		Code:       sc.Code,
		OwnerID:    sc.OwnerID,
		Metadata:   sc.Metadata,
		CreatedAt:  sc.CreatedAt,
		ExpiresAt:  sc.ExpiresAt,
	}, nil
}

// Verify implements domain.ChallengeStore. The lookup, code comparison and
// consume all happen inside one script invocation; a successful verification
// deletes the challenge in the same step that observed it.
func (s *RedisStore) Verify(ctx context.Context, identifier string, purpose domain.Purpose, submittedCode string) (*domain.VerifyResult, error) {
	keys := []string{challengeRedisKey(identifier, purpose), attemptsRedisKey(identifier, purpose)}
	args := []interface{}{strings.ToUpper(submittedCode), time.Now().UnixMilli(), s.cfg.MaxAttempts}

	raw, err := verifyScript.Run(ctx, s.client, keys, args...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 2 {
		return nil, fmt.Errorf("%w: unexpected verify script reply %v", domain.ErrStoreUnavailable, raw)
	}
	status, _ := reply[0].(string)

	switch status {
	case "not_found":
		return &domain.VerifyResult{Success: false, Reason: domain.ReasonNotFound}, nil
	case "expired":
		return &domain.VerifyResult{Success: false, Reason: domain.ReasonExpired}, nil
	case "mismatch":
		return &domain.VerifyResult{Success: false, Reason: domain.ReasonMismatch}, nil
	case "too_many_attempts":
		return &domain.VerifyResult{Success: false, Reason: domain.ReasonTooManyAttempts}, nil
	case "ok":
		data, _ := reply[1].(string)
		var sc storedChallenge
		if err := json.Unmarshal([]byte(data), &sc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
		}
		return &domain.VerifyResult{
			Success:  true,
			OwnerID:  sc.OwnerID,
			Metadata: sc.Metadata,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown verify script status %q", domain.ErrStoreUnavailable, status)
	}
}

// Delete implements domain.ChallengeStore. Idempotent.
func (s *RedisStore) Delete(ctx context.Context, identifier string, purpose domain.Purpose) error {
	err := s.client.Del(ctx, challengeRedisKey(identifier, purpose), attemptsRedisKey(identifier, purpose)).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Debug implements domain.ChallengeStore using SCAN over the challenge prefix.
func (s *RedisStore) Debug(ctx context.Context) ([]domain.ChallengeSnapshot, error) {
	var snapshots []domain.ChallengeSnapshot

	iter := s.client.Scan(ctx, 0, challengePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}

		var sc storedChallenge
		if err := json.Unmarshal([]byte(data), &sc); err != nil {
			continue
		}

		attempts, _ := s.client.Get(ctx, attemptsRedisKey(sc.Identifier, sc.Purpose)).Int()

		code := "REDACTED"
		if s.cfg.DebugCodes {
			code = sc.Code
		}
		snapshots = append(snapshots, domain.ChallengeSnapshot{
			Identifier: sc.Identifier,
			Purpose:    sc.Purpose,
			Code:       code,
			OwnerID:    sc.OwnerID,
			Metadata:   sc.Metadata,
			Attempts:   attempts,
			CreatedAt:  sc.CreatedAt,
			ExpiresAt:  sc.ExpiresAt,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return snapshots, nil
}

// Compile-time interface compliance verification
var _ domain.ChallengeStore = (*RedisStore)(nil)
