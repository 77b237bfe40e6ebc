package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/291e/bogofit-verify/domain"
)

func newTestRedisStore(t *testing.T, cfg Config) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	if cfg.TTL == 0 {
		cfg.TTL = 10 * time.Minute
	}
	return NewRedisStore(client, cfg), mr
}

func TestRedisStore_SingleUse(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{})
	ctx := context.Background()

	ch, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "k3f9qz", "u1", nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ch.Code != "K3F9QZ" {
		t.Errorf("expected stored code to be uppercased, got %q", ch.Code)
	}

	result, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "K3f9Qz")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got reason %q", result.Reason)
	}
	if result.OwnerID != "u1" {
		t.Errorf("expected owner u1, got %q", result.OwnerID)
	}

	result, err = s.Verify(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonNotFound {
		t.Errorf("expected reason %q, got %q", domain.ReasonNotFound, result.Reason)
	}
}

func TestRedisStore_ConcurrentVerifySingleUse(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Every submission races on the same correct code; the consume must win
	// for exactly one of them even with no client-side synchronization.
	var successes int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ")
			if err != nil {
				t.Errorf("Verify failed: %v", err)
				return
			}
			if result.Success {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly 1 successful verification, got %d", successes)
	}
}

func TestRedisStore_RetryOnTypo(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "AB12CD", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "XX00XX")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonMismatch {
		t.Fatalf("expected mismatch, got %q", result.Reason)
	}

	result, err = s.Verify(ctx, "a@b.com", domain.PurposeSignup, "AB12CD")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Success {
		t.Errorf("expected correct code to still verify after a typo, got reason %q", result.Reason)
	}
}

func TestRedisStore_Supersession(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposeEmailChange, "111111", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save(ctx, "a@b.com", domain.PurposeEmailChange, "222222", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := s.Verify(ctx, "a@b.com", domain.PurposeEmailChange, "111111")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Success {
		t.Error("expected superseded code to be rejected")
	}

	result, err = s.Verify(ctx, "a@b.com", domain.PurposeEmailChange, "222222")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Success {
		t.Errorf("expected latest code to verify, got reason %q", result.Reason)
	}
}

func TestRedisStore_ExpiryWithinGrace(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{TTL: 10 * time.Millisecond})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposePasswordReset, "AB12CD", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	// The key is still held during the grace window, so the store can report
	// Expired rather than NotFound.
	result, err := s.Verify(ctx, "a@b.com", domain.PurposePasswordReset, "AB12CD")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonExpired {
		t.Fatalf("expected expired, got %q", result.Reason)
	}

	// Expired entries are removed on detection.
	result, err = s.Verify(ctx, "a@b.com", domain.PurposePasswordReset, "AB12CD")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonNotFound {
		t.Errorf("expected reason %q after removal, got %q", domain.ReasonNotFound, result.Reason)
	}
}

func TestRedisStore_ExpiryAfterGrace(t *testing.T) {
	s, mr := newTestRedisStore(t, Config{TTL: time.Minute})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposePasswordReset, "AB12CD", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Once redis reaps the key the entry is genuinely absent.
	mr.FastForward(time.Minute + expiryGrace + time.Second)

	result, err := s.Verify(ctx, "a@b.com", domain.PurposePasswordReset, "AB12CD")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonNotFound {
		t.Errorf("expected reason %q, got %q", domain.ReasonNotFound, result.Reason)
	}
}

func TestRedisStore_MaxAttempts(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{MaxAttempts: 3})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "WRONG1")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if result.Reason != domain.ReasonMismatch {
			t.Fatalf("attempt %d: expected mismatch, got %q", i+1, result.Reason)
		}
	}

	result, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "WRONG1")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonTooManyAttempts {
		t.Fatalf("expected too_many_attempts, got %q", result.Reason)
	}

	result, err = s.Verify(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonNotFound {
		t.Errorf("expected reason %q, got %q", domain.ReasonNotFound, result.Reason)
	}
}

func TestRedisStore_AttemptCounterResetOnReissue(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{MaxAttempts: 2})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "111111", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "WRONG1"); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	// Re-issuing resets the counter with the challenge.
	if _, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "222222", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "WRONG1")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonMismatch {
		t.Fatalf("expected mismatch on first attempt after reissue, got %q", result.Reason)
	}

	result, err = s.Verify(ctx, "a@b.com", domain.PurposeSignup, "222222")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Success {
		t.Errorf("expected fresh code to verify, got reason %q", result.Reason)
	}
}

func TestRedisStore_ExplicitDelete(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Delete(ctx, "a@b.com", domain.PurposeSignup); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "a@b.com", domain.PurposeSignup); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}

	result, err := s.Verify(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if result.Reason != domain.ReasonNotFound {
		t.Errorf("expected reason %q after delete, got %q", domain.ReasonNotFound, result.Reason)
	}
}

func TestRedisStore_Debug(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{DebugCodes: true})
	ctx := context.Background()

	metadata := map[string]string{"update_type": "address"}
	if _, err := s.Save(ctx, "a@b.com", domain.PurposeProfileUpdate, "K3F9QZ", "u1", metadata); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save(ctx, "+15550100", domain.PurposePhone, "AB12CD", "u2", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snapshots, err := s.Debug(ctx)
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}

	byIdentifier := make(map[string]domain.ChallengeSnapshot, len(snapshots))
	for _, snap := range snapshots {
		byIdentifier[snap.Identifier] = snap
	}
	if byIdentifier["a@b.com"].Code != "K3F9QZ" {
		t.Errorf("expected plaintext code for a@b.com, got %q", byIdentifier["a@b.com"].Code)
	}
	if byIdentifier["a@b.com"].Metadata["update_type"] != "address" {
		t.Errorf("expected metadata to survive the round trip, got %v", byIdentifier["a@b.com"].Metadata)
	}
	if byIdentifier["+15550100"].Purpose != domain.PurposePhone {
		t.Errorf("expected phone purpose, got %q", byIdentifier["+15550100"].Purpose)
	}
}

func TestRedisStore_DebugRedactsByDefault(t *testing.T) {
	s, _ := newTestRedisStore(t, Config{})
	ctx := context.Background()

	if _, err := s.Save(ctx, "a@b.com", domain.PurposeSignup, "K3F9QZ", "u1", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snapshots, err := s.Debug(ctx)
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0].Code != "REDACTED" {
		t.Errorf("expected redacted code, got %q", snapshots[0].Code)
	}
}
