package mocks

import (
	"context"
	"time"

	"github.com/291e/bogofit-verify/domain"
)

// MockChallengeStore implements domain.ChallengeStore interface for testing
type MockChallengeStore struct {
	SaveFunc   func(ctx context.Context, identifier string, purpose domain.Purpose, code, ownerID string, metadata map[string]string) (*domain.Challenge, error)
	VerifyFunc func(ctx context.Context, identifier string, purpose domain.Purpose, submittedCode string) (*domain.VerifyResult, error)
	DeleteFunc func(ctx context.Context, identifier string, purpose domain.Purpose) error
	DebugFunc  func(ctx context.Context) ([]domain.ChallengeSnapshot, error)
}

// NewMockChallengeStore creates a new MockChallengeStore with default behaviors
func NewMockChallengeStore() *MockChallengeStore {
	return &MockChallengeStore{}
}

// Save stores a challenge for the key
func (m *MockChallengeStore) Save(ctx context.Context, identifier string, purpose domain.Purpose, code, ownerID string, metadata map[string]string) (*domain.Challenge, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, identifier, purpose, code, ownerID, metadata)
	}
	// Default behavior: echo the stored challenge back
	now := time.Now().UTC()
	return &domain.Challenge{
		Identifier: identifier,
		Purpose:    purpose,
		Code:       code,
		OwnerID:    ownerID,
		Metadata:   metadata,
		CreatedAt:  now,
		ExpiresAt:  now.Add(10 * time.Minute),
	}, nil
}

// Verify checks a submitted code against the stored challenge
func (m *MockChallengeStore) Verify(ctx context.Context, identifier string, purpose domain.Purpose, submittedCode string) (*domain.VerifyResult, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, identifier, purpose, submittedCode)
	}
	// Default behavior: accept "123456" as the valid code
	if submittedCode == "123456" {
		return &domain.VerifyResult{Success: true, OwnerID: "1"}, nil
	}
	return &domain.VerifyResult{Success: false, Reason: domain.ReasonMismatch}, nil
}

// Delete removes the challenge for the key
func (m *MockChallengeStore) Delete(ctx context.Context, identifier string, purpose domain.Purpose) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, identifier, purpose)
	}
	// Default behavior: success
	return nil
}

// Debug enumerates stored challenges
func (m *MockChallengeStore) Debug(ctx context.Context) ([]domain.ChallengeSnapshot, error) {
	if m.DebugFunc != nil {
		return m.DebugFunc(ctx)
	}
	// Default behavior: empty store
	return []domain.ChallengeSnapshot{}, nil
}

// Compile-time interface compliance verification
var _ domain.ChallengeStore = (*MockChallengeStore)(nil)
