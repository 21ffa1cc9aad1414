package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/money"
	"fintrack/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{ledgerService: ledgerService, auditService: auditService}
}

// CreateAccountRequest represents the request payload for creating an account.
// Balance decodes leniently: missing or malformed values become zero.
type CreateAccountRequest struct {
	Name    string       `json:"name" binding:"required,min=1,max=100"`
	Type    string       `json:"type" binding:"required,account_type"`
	Balance money.Amount `json:"balance"`
	Color   string       `json:"color" binding:"omitempty,hex_color"`
}

// AccountResponse represents an account in the response.
type AccountResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Balance float64 `json:"balance"`
	Color   string  `json:"color"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create a new bank or card account for the authenticated user
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.ledgerService.AddAccount(userID, ledger.AccountInput{
		Name:    req.Name,
		Type:    ledger.AccountType(req.Type),
		Balance: req.Balance,
		Color:   req.Color,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_ACCOUNT", "account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": req.Name, "type": req.Type})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetAccounts handles the retrieval of the user's accounts
// @Summary     Get user accounts
// @Description Get all accounts for the authenticated user
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]AccountResponse "Accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetAccounts(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"accounts": l.Accounts})
}

// DeleteAccount handles account deletion
// @Summary     Delete account
// @Description Delete an account by ID. Unknown IDs succeed as a no-op; transactions referencing the account keep their payments.
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID := c.Param("id")

	if err := h.ledgerService.DeleteAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_ACCOUNT", "account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
