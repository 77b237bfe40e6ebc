package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/291e/bogofit-verify/domain"
)

// EmailHandlers serves the email-addressed verification call sites: signup,
// password-reset, email-change, account-deletion and profile-update.
type EmailHandlers struct {
	verifySvc domain.VerificationService
	accounts  domain.AccountRepository
	notifier  domain.NotificationService
}

// NewEmailHandlers creates new email verification handlers
func NewEmailHandlers(verifySvc domain.VerificationService, accounts domain.AccountRepository, notifier domain.NotificationService) *EmailHandlers {
	return &EmailHandlers{
		verifySvc: verifySvc,
		accounts:  accounts,
		notifier:  notifier,
	}
}

// SendCodeRequest represents a public code issue request
type SendCodeRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required"`
}

// VerifyCodeRequest represents a public code verification request
type VerifyCodeRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required"`
	Code    string `json:"code" binding:"required"`
}

// EmailChangeRequest represents an email-change issue request
type EmailChangeRequest struct {
	NewEmail string `json:"new_email" binding:"required,email"`
}

// ProfileUpdateRequest represents a profile-update issue request
type ProfileUpdateRequest struct {
	UpdateType string `json:"update_type" binding:"required"`
}

// AuthenticatedVerifyRequest represents a code verification request on the
// authenticated flows, where the identifier is resolved server-side.
type AuthenticatedVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// publicPurposes are the purposes accepted without authentication.
var publicPurposes = map[domain.Purpose]bool{
	domain.PurposeSignup:        true,
	domain.PurposePasswordReset: true,
}

// SendCode handles the public issue endpoints (signup, password-reset).
func (h *EmailHandlers) SendCode(c *gin.Context) {
	var req SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := normalizeEmail(req.Email)
	purpose := domain.Purpose(req.Purpose)
	if !publicPurposes[purpose] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification purpose"})
		return
	}

	ownerID := ""
	switch purpose {
	case domain.PurposeSignup:
		// A signup challenge proves control of an address that must not
		// already belong to an account.
		if _, err := h.accounts.FindByEmail(c.Request.Context(), email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
			return
		} else if err != domain.ErrAccountNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
			return
		}
	case domain.PurposePasswordReset:
		account, err := h.accounts.FindByEmail(c.Request.Context(), email)
		if err != nil {
			if err == domain.ErrAccountNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "No account found for this email"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
			return
		}
		ownerID = strconv.FormatUint(uint64(account.ID), 10)
	}

	h.issueAndSend(c, email, purpose, ownerID, nil)
}

// VerifyCode handles the public verification endpoints (signup, password-reset)
// and marks the owning account's email verified when the challenge was bound
// to one.
func (h *EmailHandlers) VerifyCode(c *gin.Context) {
	var req VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purpose := domain.Purpose(req.Purpose)
	if !publicPurposes[purpose] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification purpose"})
		return
	}

	email := normalizeEmail(req.Email)
	outcome, err := h.verifySvc.Verify(c.Request.Context(), email, purpose, req.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	if !outcome.Success {
		c.JSON(reasonStatus(outcome.Reason), gin.H{"error": outcome.Message, "reason": outcome.Reason})
		return
	}

	if outcome.OwnerID != "" {
		if id, err := strconv.ParseUint(outcome.OwnerID, 10, 32); err == nil {
			if err := h.accounts.MarkEmailVerified(c.Request.Context(), uint(id)); err != nil {
				logEvent(domain.NewAuditEvent(domain.EmailVerifiedEvent, email, purpose).WithOwner(outcome.OwnerID).WithError(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark email verified"})
				return
			}
			logEvent(domain.NewAuditEvent(domain.EmailVerifiedEvent, email, purpose).WithOwner(outcome.OwnerID))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":  outcome.Message,
			"verified": true,
			"metadata": outcome.Metadata,
		},
	})
}

// SendEmailChange issues a challenge to the new address of an email change.
// The metadata carries both addresses so the main application can complete the
// swap once the proof succeeds.
func (h *EmailHandlers) SendEmailChange(c *gin.Context) {
	ownerID, account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req EmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newEmail := normalizeEmail(req.NewEmail)
	if newEmail == account.Email {
		c.JSON(http.StatusBadRequest, gin.H{"error": "New email matches the current one"})
		return
	}
	if _, err := h.accounts.FindByEmail(c.Request.Context(), newEmail); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
		return
	}

	metadata := map[string]string{
		"old_email": account.Email,
		"new_email": newEmail,
	}
	h.issueAndSend(c, newEmail, domain.PurposeEmailChange, ownerID, metadata)
}

// VerifyEmailChange verifies the email-change challenge on the new address.
func (h *EmailHandlers) VerifyEmailChange(c *gin.Context) {
	ownerID, _, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req AuthenticatedVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.verify(c, normalizeEmail(req.Email), domain.PurposeEmailChange, req.Code, ownerID)
}

// SendAccountDeletion issues a challenge to the account's current address.
func (h *EmailHandlers) SendAccountDeletion(c *gin.Context) {
	ownerID, account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	h.issueAndSend(c, account.Email, domain.PurposeAccountDeletion, ownerID, nil)
}

// VerifyAccountDeletion verifies the account-deletion challenge.
func (h *EmailHandlers) VerifyAccountDeletion(c *gin.Context) {
	ownerID, account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.verify(c, account.Email, domain.PurposeAccountDeletion, req.Code, ownerID)
}

// SendProfileUpdate issues a challenge guarding a sensitive profile mutation.
func (h *EmailHandlers) SendProfileUpdate(c *gin.Context) {
	ownerID, account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	metadata := map[string]string{"update_type": req.UpdateType}
	h.issueAndSend(c, account.Email, domain.PurposeProfileUpdate, ownerID, metadata)
}

// VerifyProfileUpdate verifies the profile-update challenge.
func (h *EmailHandlers) VerifyProfileUpdate(c *gin.Context) {
	ownerID, account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.verify(c, account.Email, domain.PurposeProfileUpdate, req.Code, ownerID)
}

// issueAndSend runs the issue-then-deliver sequence shared by every email
// flow, rolling the challenge back if the email transport fails so a stale,
// undeliverable code does not linger as a false pending state.
func (h *EmailHandlers) issueAndSend(c *gin.Context, email string, purpose domain.Purpose, ownerID string, metadata map[string]string) {
	result, err := h.verifySvc.Issue(c.Request.Context(), email, purpose, ownerID, metadata)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue verification code"})
		return
	}

	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", result.Code, expiresInMinutes(result.ExpiresAt))
	if err := h.notifier.SendEmail(email, subject, body); err != nil {
		logEvent(domain.NewAuditEvent(domain.CodeDeliveryFailedEvent, email, purpose).WithError(err))
		if revokeErr := h.verifySvc.Revoke(c.Request.Context(), email, purpose); revokeErr != nil {
			logEvent(domain.NewAuditEvent(domain.CodeRevokedEvent, email, purpose).WithError(revokeErr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":    "Verification code sent",
			"expires_at": result.ExpiresAt,
		},
	})
}

// verify runs a verification attempt and maps the outcome onto HTTP. When
// expectedOwner is non-empty, a consumed challenge bound to a different owner
// is rejected: a code issued for one account must not unlock another.
func (h *EmailHandlers) verify(c *gin.Context, identifier string, purpose domain.Purpose, code, expectedOwner string) {
	outcome, err := h.verifySvc.Verify(c.Request.Context(), identifier, purpose, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed"})
		return
	}

	if !outcome.Success {
		c.JSON(reasonStatus(outcome.Reason), gin.H{"error": outcome.Message, "reason": outcome.Reason})
		return
	}

	if expectedOwner != "" && outcome.OwnerID != expectedOwner {
		log.Printf("CODE_OWNER_MISMATCH: identifier=%s purpose=%s expected=%s got=%s", identifier, purpose, expectedOwner, outcome.OwnerID)
		c.JSON(http.StatusForbidden, gin.H{"error": "Verification code does not belong to this account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":  outcome.Message,
			"verified": true,
			"metadata": outcome.Metadata,
		},
	})
}

// currentAccount resolves the authenticated owner's account record.
func (h *EmailHandlers) currentAccount(c *gin.Context) (string, *domain.Account, bool) {
	ownerIDVal, exists := c.Get("owner_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Owner ID not found in context"})
		return "", nil, false
	}
	ownerID := ownerIDVal.(string)

	id, err := strconv.ParseUint(ownerID, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner ID"})
		return "", nil, false
	}

	account, err := h.accounts.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return "", nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
		return "", nil, false
	}

	return ownerID, account, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func expiresInMinutes(expiresAt time.Time) int {
	minutes := int(time.Until(expiresAt).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func reasonStatus(reason domain.VerifyReason) int {
	switch reason {
	case domain.ReasonNotFound:
		return http.StatusNotFound
	case domain.ReasonTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}
