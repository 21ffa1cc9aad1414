package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/timezone"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService, auditService: auditService}
}

// PaymentRequest represents one split of a transaction against an account.
// Amounts decode leniently: missing or malformed values become zero and
// are filtered out by validation.
type PaymentRequest struct {
	AccountID string       `json:"account_id"`
	Amount    money.Amount `json:"amount"`
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	Type        string           `json:"type" binding:"required,transaction_type"`
	Amount      money.Amount     `json:"amount"`
	Category    string           `json:"category" binding:"required,min=1,max=100"`
	Description string           `json:"description" binding:"max=500"`
	OccurredAt  string           `json:"occurred_at" binding:"required"`
	Payments    []PaymentRequest `json:"payments" binding:"required"`
}

// UpdateTransactionRequest represents the request payload for updating a
// transaction. Absent fields keep their stored values; a payments array
// replaces the split entirely.
type UpdateTransactionRequest struct {
	Type        *string          `json:"type" binding:"omitempty,transaction_type"`
	Amount      *money.Amount    `json:"amount"`
	Category    *string          `json:"category" binding:"omitempty,min=1,max=100"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	OccurredAt  *string          `json:"occurred_at"`
	Payments    []PaymentRequest `json:"payments"`
}

// TransactionResponse represents a transaction in the response.
type TransactionResponse struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	Amount      float64          `json:"amount"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Payments    []PaymentRequest `json:"payments"`
}

func toPayments(reqs []PaymentRequest) []ledger.Payment {
	payments := make([]ledger.Payment, 0, len(reqs))
	for _, p := range reqs {
		payments = append(payments, ledger.Payment{AccountID: p.AccountID, Amount: p.Amount})
	}
	return payments
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Create an income or expense transaction split across one or more accounts
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionResponse "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	occurredAt, err := timezone.Normalize(req.OccurredAt)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid occurred_at format"))
		return
	}

	transaction, err := h.ledgerService.AddTransaction(userID, ledger.TransactionInput{
		Type:        ledger.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  occurredAt,
		Payments:    toPayments(req.Payments),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": req.Type, "category": req.Category})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactions handles the retrieval of transactions for a user
// @Summary     Get user transactions
// @Description Get a paginated list of transactions, most recent first
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[TransactionResponse] "Paginated transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	l, err := h.ledgerService.GetLedger(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Most recent first; storage order is insertion order.
	transactions := make([]ledger.Transaction, len(l.Transactions))
	copy(transactions, l.Transactions)
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].OccurredAt.After(transactions[j].OccurredAt)
	})

	c.JSON(http.StatusOK, pagination.Paginate(transactions, page))
}

// UpdateTransaction handles updating a transaction
// @Summary     Update transaction
// @Description Update a transaction. Old payment effects are reversed and the new ones applied, so accounts see only the net change.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Updated transaction details"
// @Success     200 {object} TransactionResponse "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	patch := ledger.TransactionPatch{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Type != nil {
		t := ledger.TransactionType(*req.Type)
		patch.Type = &t
	}
	if req.OccurredAt != nil {
		occurredAt, err := timezone.Normalize(*req.OccurredAt)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid occurred_at format"))
			return
		}
		patch.OccurredAt = &occurredAt
	}
	if req.Payments != nil {
		patch.Payments = toPayments(req.Payments)
	}

	transaction, err := h.ledgerService.UpdateTransaction(userID, transactionID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles transaction deletion
// @Summary     Delete transaction
// @Description Delete a transaction by ID, reversing its balance effects
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("id")

	if err := h.ledgerService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
