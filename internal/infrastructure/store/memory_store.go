package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/291e/bogofit-verify/domain"
)

// Config holds the knobs shared by both challenge store backends.
type Config struct {
	TTL           time.Duration
	MaxAttempts   int // 0 disables the attempt limit
	SweepInterval time.Duration
	DebugCodes    bool // expose plaintext codes in Debug output
}

type challengeKey struct {
	identifier string
	purpose    domain.Purpose
}

// MemoryStore implements domain.ChallengeStore with a mutex-guarded map.
// Suitable for a single-instance deployment; a code issued on one instance
// will not validate on another, so horizontally scaled deployments must use
// the redis backend instead.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[challengeKey]*domain.Challenge
	cfg     Config

	sweepOnce sync.Once
	done      chan struct{}
}

// NewMemoryStore creates an in-memory challenge store. Call StartSweeper to
// bound memory by evicting expired entries in the background; expiry is
// otherwise enforced lazily at Verify time.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{
		entries: make(map[challengeKey]*domain.Challenge),
		cfg:     cfg,
		done:    make(chan struct{}),
	}
}

// Save implements domain.ChallengeStore. It is an unconditional upsert:
// issuing a new challenge for a key silently supersedes any prior one, even
// if the prior code was still within its TTL.
func (s *MemoryStore) Save(ctx context.Context, identifier string, purpose domain.Purpose, code, ownerID string, metadata map[string]string) (*domain.Challenge, error) {
	now := time.Now().UTC()
	ch := &domain.Challenge{
		Identifier: identifier,
		Purpose:    purpose,
		Code:       strings.ToUpper(code),
		OwnerID:    ownerID,
		Metadata:   metadata,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.cfg.TTL),
	}

	s.mu.Lock()
	s.entries[challengeKey{identifier, purpose}] = ch
	s.mu.Unlock()

	return ch, nil
}

// Verify implements domain.ChallengeStore. The whole read-modify-write runs
// under the lock; operations on a single key are linearizable.
func (s *MemoryStore) Verify(ctx context.Context, identifier string, purpose domain.Purpose, submittedCode string) (*domain.VerifyResult, error) {
	key := challengeKey{identifier, purpose}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.entries[key]
	if !ok {
		return &domain.VerifyResult{Success: false, Reason: domain.ReasonNotFound}, nil
	}

	if time.Now().After(ch.ExpiresAt) {
		// Expired entries are never left revivable.
		delete(s.entries, key)
		return &domain.VerifyResult{Success: false, Reason: domain.ReasonExpired}, nil
	}

	if !strings.EqualFold(submittedCode, ch.Code) {
		ch.Attempts++
		if s.cfg.MaxAttempts > 0 && ch.Attempts >= s.cfg.MaxAttempts {
			delete(s.entries, key)
			return &domain.VerifyResult{Success: false, Reason: domain.ReasonTooManyAttempts}, nil
		}
		// A wrong guess does not burn the challenge; the legitimate holder
		// can retry within the TTL window.
		return &domain.VerifyResult{Success: false, Reason: domain.ReasonMismatch}, nil
	}

	// Single use: a matching code consumes the challenge.
	delete(s.entries, key)
	return &domain.VerifyResult{
		Success:  true,
		OwnerID:  ch.OwnerID,
		Metadata: ch.Metadata,
	}, nil
}

// Delete implements domain.ChallengeStore. No error if absent.
func (s *MemoryStore) Delete(ctx context.Context, identifier string, purpose domain.Purpose) error {
	s.mu.Lock()
	delete(s.entries, challengeKey{identifier, purpose})
	s.mu.Unlock()
	return nil
}

// Debug implements domain.ChallengeStore.
func (s *MemoryStore) Debug(ctx context.Context) ([]domain.ChallengeSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]domain.ChallengeSnapshot, 0, len(s.entries))
	for _, ch := range s.entries {
		snapshots = append(snapshots, snapshot(ch, s.cfg.DebugCodes))
	}
	return snapshots, nil
}

// StartSweeper launches the background eviction goroutine. Safe to call once;
// Stop terminates it.
func (s *MemoryStore) StartSweeper() {
	s.sweepOnce.Do(func() {
		interval := s.cfg.SweepInterval
		if interval <= 0 {
			interval = time.Minute
		}
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.sweep()
				case <-s.done:
					return
				}
			}
		}()
	})
}

// Stop terminates the sweeper goroutine.
func (s *MemoryStore) Stop() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	for key, ch := range s.entries {
		if now.After(ch.ExpiresAt) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func snapshot(ch *domain.Challenge, includeCode bool) domain.ChallengeSnapshot {
	code := "REDACTED"
	if includeCode {
		code = ch.Code
	}
	return domain.ChallengeSnapshot{
		Identifier: ch.Identifier,
		Purpose:    ch.Purpose,
		Code:       code,
		OwnerID:    ch.OwnerID,
		Metadata:   ch.Metadata,
		Attempts:   ch.Attempts,
		CreatedAt:  ch.CreatedAt,
		ExpiresAt:  ch.ExpiresAt,
	}
}

// Compile-time interface compliance verification
var _ domain.ChallengeStore = (*MemoryStore)(nil)
