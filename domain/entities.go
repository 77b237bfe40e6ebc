package domain

import "time"

// Purpose partitions the challenge namespace. The same identifier may hold
// independent pending challenges for different purposes.
type Purpose string

const (
	PurposeSignup          Purpose = "signup"
	PurposePasswordReset   Purpose = "password-reset"
	PurposeEmailChange     Purpose = "email-change"
	PurposeAccountDeletion Purpose = "account-deletion"
	PurposeProfileUpdate   Purpose = "profile-update"

	// PurposePhone is the generic purpose used by the phone verification flow.
	PurposePhone Purpose = "verification"
)

// emailPurposes are the purposes accepted on the email-addressed endpoints.
var emailPurposes = map[Purpose]bool{
	PurposeSignup:          true,
	PurposePasswordReset:   true,
	PurposeEmailChange:     true,
	PurposeAccountDeletion: true,
	PurposeProfileUpdate:   true,
}

func (p Purpose) String() string { return string(p) }

// IsEmailPurpose reports whether p belongs to the email flow enum.
func (p Purpose) IsEmailPurpose() bool { return emailPurposes[p] }

// Challenge is a pending verification record keyed by (identifier, purpose).
type Challenge struct {
	Identifier string
	Purpose    Purpose
	Code       string
	OwnerID    string
	Metadata   map[string]string
	Attempts   int
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// ChallengeSnapshot is a read-only view of a stored challenge, returned by the
// debug enumeration. The code is redacted unless the store is configured for
// plaintext debug output.
type ChallengeSnapshot struct {
	Identifier string            `json:"identifier"`
	Purpose    Purpose           `json:"purpose"`
	Code       string            `json:"code"`
	OwnerID    string            `json:"owner_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Attempts   int               `json:"attempts"`
	CreatedAt  time.Time         `json:"created_at"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// VerifyReason is the machine-readable failure classification of a Verify call.
type VerifyReason string

const (
	ReasonNotFound        VerifyReason = "not_found"
	ReasonExpired         VerifyReason = "expired"
	ReasonMismatch        VerifyReason = "mismatch"
	ReasonTooManyAttempts VerifyReason = "too_many_attempts"
)

// VerifyResult is the store-level outcome of a verification attempt. Reason is
// empty on success. OwnerID and Metadata are populated only on success so the
// caller can complete the account mutation the challenge guarded.
type VerifyResult struct {
	Success  bool
	Reason   VerifyReason
	OwnerID  string
	Metadata map[string]string
}

// IssueResult is returned to the caller of Issue so it can hand the code to a
// delivery channel and the expiry to user-facing copy.
type IssueResult struct {
	Code      string
	ExpiresAt time.Time
}

// VerifyOutcome is the service-level result: the store reason plus a
// user-facing message. The HTTP layer owns status codes, not wording.
type VerifyOutcome struct {
	Success  bool
	Reason   VerifyReason
	Message  string
	OwnerID  string
	Metadata map[string]string
}

// Account represents an account record in the directory the handlers consult
// before issuing a challenge.
type Account struct {
	ID            uint
	Email         string
	Phone         string
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
