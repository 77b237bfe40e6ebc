package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/291e/bogofit-verify/domain"
)

// User-facing messages for verification outcomes. The HTTP layer owns status
// codes; wording lives here so every call site reports failures consistently.
const (
	msgVerified        = "Verification successful."
	msgNotFound        = "No verification code is pending for this request. Please request a new code."
	msgExpired         = "The verification code has expired. Please request a new code."
	msgMismatch        = "The verification code is incorrect."
	msgTooManyAttempts = "Too many incorrect attempts. Please request a new code."
)

// VerificationServiceImpl implements domain.VerificationService: generate a
// code, persist the challenge, and validate submissions against it.
type VerificationServiceImpl struct {
	codeGen domain.CodeGenerator
	store   domain.ChallengeStore
}

// NewVerificationService creates a new verification service.
func NewVerificationService(codeGen domain.CodeGenerator, store domain.ChallengeStore) domain.VerificationService {
	return &VerificationServiceImpl{
		codeGen: codeGen,
		store:   store,
	}
}

// Issue implements domain.VerificationService. It overwrites any prior
// challenge for the (identifier, purpose) key: the most recently issued code
// is authoritative and older codes stop working immediately.
func (s *VerificationServiceImpl) Issue(ctx context.Context, identifier string, purpose domain.Purpose, ownerID string, metadata map[string]string) (*domain.IssueResult, error) {
	if identifier == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}
	if purpose == "" {
		return nil, domain.ErrInvalidPurpose
	}

	code, err := s.codeGen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	ch, err := s.store.Save(ctx, identifier, purpose, code, ownerID, metadata)
	if err != nil {
		// The caller must surface a delivery failure without sending any code.
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	s.audit(domain.NewAuditEvent(domain.CodeIssuedEvent, identifier, purpose).WithOwner(ownerID))

	return &domain.IssueResult{Code: ch.Code, ExpiresAt: ch.ExpiresAt}, nil
}

// Verify implements domain.VerificationService. Expected failures come back
// inside the outcome; the error return is reserved for infrastructure faults.
func (s *VerificationServiceImpl) Verify(ctx context.Context, identifier string, purpose domain.Purpose, submittedCode string) (*domain.VerifyOutcome, error) {
	if purpose == "" {
		return nil, domain.ErrInvalidPurpose
	}

	result, err := s.store.Verify(ctx, identifier, purpose, submittedCode)
	if err != nil {
		return nil, fmt.Errorf("failed to verify challenge: %w", err)
	}

	if result.Success {
		s.audit(domain.NewAuditEvent(domain.CodeVerifiedEvent, identifier, purpose).WithOwner(result.OwnerID))
		return &domain.VerifyOutcome{
			Success:  true,
			Message:  msgVerified,
			OwnerID:  result.OwnerID,
			Metadata: result.Metadata,
		}, nil
	}

	s.audit(domain.NewAuditEvent(domain.CodeVerifyFailedEvent, identifier, purpose).WithReason(result.Reason))

	return &domain.VerifyOutcome{
		Success: false,
		Reason:  result.Reason,
		Message: reasonMessage(result.Reason),
	}, nil
}

// Revoke implements domain.VerificationService.
func (s *VerificationServiceImpl) Revoke(ctx context.Context, identifier string, purpose domain.Purpose) error {
	if err := s.store.Delete(ctx, identifier, purpose); err != nil {
		return fmt.Errorf("failed to revoke challenge: %w", err)
	}
	s.audit(domain.NewAuditEvent(domain.CodeRevokedEvent, identifier, purpose))
	return nil
}

// Inspect implements domain.VerificationService.
func (s *VerificationServiceImpl) Inspect(ctx context.Context) ([]domain.ChallengeSnapshot, error) {
	return s.store.Debug(ctx)
}

func (s *VerificationServiceImpl) audit(event *domain.AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("%s: identifier=%s purpose=%s", event.EventType, event.Identifier, event.Purpose)
		return
	}
	log.Printf("%s: %s", event.EventType, data)
}

func reasonMessage(reason domain.VerifyReason) string {
	switch reason {
	case domain.ReasonNotFound:
		return msgNotFound
	case domain.ReasonExpired:
		return msgExpired
	case domain.ReasonMismatch:
		return msgMismatch
	case domain.ReasonTooManyAttempts:
		return msgTooManyAttempts
	default:
		return msgNotFound
	}
}

// Compile-time interface compliance verification
var _ domain.VerificationService = (*VerificationServiceImpl)(nil)
