package domain

import "time"

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Challenge lifecycle events
	CodeIssuedEvent       AuditEventType = "CODE_ISSUED"
	CodeVerifiedEvent     AuditEventType = "CODE_VERIFIED"
	CodeVerifyFailedEvent AuditEventType = "CODE_VERIFY_FAILED"
	CodeRevokedEvent      AuditEventType = "CODE_REVOKED"

	// Delivery events
	CodeDeliveryFailedEvent AuditEventType = "CODE_DELIVERY_FAILED"

	// Account events
	EmailVerifiedEvent AuditEventType = "EMAIL_VERIFIED"
	PhoneVerifiedEvent AuditEventType = "PHONE_VERIFIED"
)

// AuditEvent represents a business event that occurred in the system
type AuditEvent struct {
	EventType  AuditEventType    `json:"event_type"`
	Identifier string            `json:"identifier,omitempty"`
	Purpose    Purpose           `json:"purpose,omitempty"`
	OwnerID    string            `json:"owner_id,omitempty"`
	Reason     VerifyReason      `json:"reason,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	ErrorMsg   string            `json:"error_msg,omitempty"`
	Success    bool              `json:"success"`
}

// NewAuditEvent creates a new audit event with common fields populated
func NewAuditEvent(eventType AuditEventType, identifier string, purpose Purpose) *AuditEvent {
	return &AuditEvent{
		EventType:  eventType,
		Identifier: identifier,
		Purpose:    purpose,
		Timestamp:  time.Now().UTC(),
		Success:    true,
	}
}

// WithError sets error information on the audit event
func (e *AuditEvent) WithError(err error) *AuditEvent {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithOwner sets the owner field
func (e *AuditEvent) WithOwner(ownerID string) *AuditEvent {
	e.OwnerID = ownerID
	return e
}

// WithReason sets the verification failure reason
func (e *AuditEvent) WithReason(reason VerifyReason) *AuditEvent {
	e.Success = false
	e.Reason = reason
	return e
}

// WithMetadata attaches the challenge metadata to the event
func (e *AuditEvent) WithMetadata(metadata map[string]string) *AuditEvent {
	e.Metadata = metadata
	return e
}
