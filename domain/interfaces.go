package domain

import "context"

// CodeGenerator produces a human-typable one-time code. Implementations must
// draw from a cryptographically secure random source; a general-purpose PRNG
// is a security defect for an account-proof token.
type CodeGenerator interface {
	Generate() (string, error)
}

// ChallengeStore owns the pending challenges. All operations are keyed by
// (identifier, purpose). Expected verification failures travel inside
// VerifyResult; the error return is reserved for infrastructure failures such
// as an unreachable backend.
type ChallengeStore interface {
	// Save unconditionally upserts the challenge for the key, resetting its
	// creation and expiry timestamps. A prior challenge for the same key stops
	// working even if still within its TTL.
	Save(ctx context.Context, identifier string, purpose Purpose, code, ownerID string, metadata map[string]string) (*Challenge, error)
	// Verify checks a submitted code. A matching code consumes the challenge;
	// a mismatch retains it so the legitimate holder can retry within the TTL.
	Verify(ctx context.Context, identifier string, purpose Purpose, submittedCode string) (*VerifyResult, error)
	// Delete removes the challenge if present. Idempotent.
	Delete(ctx context.Context, identifier string, purpose Purpose) error
	// Debug enumerates current entries for operational diagnosis. Never used
	// on the success/failure path.
	Debug(ctx context.Context) ([]ChallengeSnapshot, error)
}

// VerificationService is the public façade over code generation and the
// challenge store.
type VerificationService interface {
	Issue(ctx context.Context, identifier string, purpose Purpose, ownerID string, metadata map[string]string) (*IssueResult, error)
	Verify(ctx context.Context, identifier string, purpose Purpose, submittedCode string) (*VerifyOutcome, error)
	// Revoke rolls back a just-issued challenge, typically after the delivery
	// channel failed, so a stale undeliverable code does not linger.
	Revoke(ctx context.Context, identifier string, purpose Purpose) error
	// Inspect exposes the store's debug enumeration.
	Inspect(ctx context.Context) ([]ChallengeSnapshot, error)
}

// NotificationService defines the delivery channels a generated code is handed
// to. Transports see only the identifier and the templated message body.
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// TokenService validates the access tokens presented on the authenticated
// verification flows.
type TokenService interface {
	GenerateAccessToken(ownerID, role string) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

// TokenClaims represents JWT token claims.
type TokenClaims struct {
	OwnerID   string `json:"owner_id"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// AccountRepository is the account directory consulted before a challenge is
// issued and updated after a proof succeeds.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByPhone(ctx context.Context, phone string) (*Account, error)
	FindByID(ctx context.Context, id uint) (*Account, error)
	MarkEmailVerified(ctx context.Context, accountID uint) error
	MarkPhoneVerified(ctx context.Context, accountID uint) error
}
