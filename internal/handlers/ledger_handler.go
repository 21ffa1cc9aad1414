package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/services"
)

// LedgerHandler serves the whole ledger document.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, auditService: auditService}
}

// GetLedger handles retrieval of the user's full ledger
// @Summary     Get ledger
// @Description Get the authenticated user's complete ledger: accounts with current balances and all transactions
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ledger.Ledger "Ledger document"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger [get]
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	l, err := h.ledgerService.GetLedger(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ledger": l})
}

// ClearLedger handles resetting the user's ledger
// @Summary     Clear ledger
// @Description Remove all accounts and transactions from the authenticated user's ledger
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]string "Cleared"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger [delete]
func (h *LedgerHandler) ClearLedger(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.ClearLedger(userID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CLEAR_LEDGER", "ledger", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Ledger cleared successfully"})
}
