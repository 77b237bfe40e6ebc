package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/291e/bogofit-verify/domain"
)

// DebugHandlers exposes the read-only challenge enumeration for operational
// diagnosis. It must never drive application logic.
type DebugHandlers struct {
	verifySvc domain.VerificationService
}

// NewDebugHandlers creates new debug handlers
func NewDebugHandlers(verifySvc domain.VerificationService) *DebugHandlers {
	return &DebugHandlers{verifySvc: verifySvc}
}

// List returns all pending challenges.
func (h *DebugHandlers) List(c *gin.Context) {
	snapshots, err := h.verifySvc.Inspect(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enumerate challenges"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"count":      len(snapshots),
			"challenges": snapshots,
		},
	})
}
