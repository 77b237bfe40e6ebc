package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/291e/bogofit-verify/domain"
)

var phoneRx = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

// PhoneHandlers serves the phone verification call site. Phone flows run on
// the same issue/verify contract as the email flows under the generic
// verification purpose.
type PhoneHandlers struct {
	verifySvc domain.VerificationService
	accounts  domain.AccountRepository
	notifier  domain.NotificationService
}

// NewPhoneHandlers creates new phone verification handlers
func NewPhoneHandlers(verifySvc domain.VerificationService, accounts domain.AccountRepository, notifier domain.NotificationService) *PhoneHandlers {
	return &PhoneHandlers{
		verifySvc: verifySvc,
		accounts:  accounts,
		notifier:  notifier,
	}
}

// PhoneSendRequest represents a phone code issue request
type PhoneSendRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// PhoneVerifyRequest represents a phone code verification request
type PhoneVerifyRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// SendCode handles phone code issue and SMS delivery.
func (h *PhoneHandlers) SendCode(c *gin.Context) {
	var req PhoneSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := normalizePhone(req.Phone)
	if !phoneRx.MatchString(phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number must be in E.164 format"})
		return
	}

	// Bind the challenge to the owning account when the number is known.
	ownerID := ""
	if account, err := h.accounts.FindByPhone(c.Request.Context(), phone); err == nil {
		ownerID = strconv.FormatUint(uint64(account.ID), 10)
	}

	result, err := h.verifySvc.Issue(c.Request.Context(), phone, domain.PurposePhone, ownerID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue verification code"})
		return
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", result.Code, expiresInMinutes(result.ExpiresAt))
	if err := h.notifier.SendSMS(phone, message); err != nil {
		logEvent(domain.NewAuditEvent(domain.CodeDeliveryFailedEvent, phone, domain.PurposePhone).WithError(err))
		if revokeErr := h.verifySvc.Revoke(c.Request.Context(), phone, domain.PurposePhone); revokeErr != nil {
			logEvent(domain.NewAuditEvent(domain.CodeRevokedEvent, phone, domain.PurposePhone).WithError(revokeErr))
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

// VerifyCode handles phone code verification and marks the owning account's
// phone verified on success.
func (h *PhoneHandlers) VerifyCode(c *gin.Context) {
	var req PhoneVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phone := normalizePhone(req.Phone)
	outcome, err := h.verifySvc.Verify(c.Request.Context(), phone, domain.PurposePhone, req.Code)
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
			if err := h.accounts.MarkPhoneVerified(c.Request.Context(), uint(id)); err != nil {
				logEvent(domain.NewAuditEvent(domain.PhoneVerifiedEvent, phone, domain.PurposePhone).WithOwner(outcome.OwnerID).WithError(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate phone number"})
				return
			}
			logEvent(domain.NewAuditEvent(domain.PhoneVerifiedEvent, phone, domain.PurposePhone).
				WithOwner(outcome.OwnerID).
				WithMetadata(map[string]string{"phone": phone}))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":  outcome.Message,
			"verified": true,
		},
	})
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
