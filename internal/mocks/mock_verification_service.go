package mocks

import (
	"context"
	"time"

	"github.com/291e/bogofit-verify/domain"
)

// MockVerificationService implements domain.VerificationService interface for testing
type MockVerificationService struct {
	IssueFunc   func(ctx context.Context, identifier string, purpose domain.Purpose, ownerID string, metadata map[string]string) (*domain.IssueResult, error)
	VerifyFunc  func(ctx context.Context, identifier string, purpose domain.Purpose, submittedCode string) (*domain.VerifyOutcome, error)
	RevokeFunc  func(ctx context.Context, identifier string, purpose domain.Purpose) error
	InspectFunc func(ctx context.Context) ([]domain.ChallengeSnapshot, error)
}

// NewMockVerificationService creates a new MockVerificationService with default behaviors
func NewMockVerificationService() *MockVerificationService {
	return &MockVerificationService{}
}

// Issue generates and stores a challenge
func (m *MockVerificationService) Issue(ctx context.Context, identifier string, purpose domain.Purpose, ownerID string, metadata map[string]string) (*domain.IssueResult, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, identifier, purpose, ownerID, metadata)
	}
	// Default behavior: fixed code, ten-minute expiry
	return &domain.IssueResult{
		Code:      "K3F9QZ",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}, nil
}

// Verify validates a submitted code
func (m *MockVerificationService) Verify(ctx context.Context, identifier string, purpose domain.Purpose, submittedCode string) (*domain.VerifyOutcome, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, identifier, purpose, submittedCode)
	}
	// Default behavior: accept "K3F9QZ" as the valid code
	if submittedCode == "K3F9QZ" {
		return &domain.VerifyOutcome{Success: true, Message: "Verification successful.", OwnerID: "1"}, nil
	}
	return &domain.VerifyOutcome{
		Success: false,
		Reason:  domain.ReasonMismatch,
		Message: "The verification code is incorrect.",
	}, nil
}

// Revoke removes a pending challenge
func (m *MockVerificationService) Revoke(ctx context.Context, identifier string, purpose domain.Purpose) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, identifier, purpose)
	}
	// Default behavior: success
	return nil
}

// Inspect enumerates pending challenges
func (m *MockVerificationService) Inspect(ctx context.Context) ([]domain.ChallengeSnapshot, error) {
	if m.InspectFunc != nil {
		return m.InspectFunc(ctx)
	}
	// Default behavior: empty store
	return []domain.ChallengeSnapshot{}, nil
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*MockVerificationService)(nil)
