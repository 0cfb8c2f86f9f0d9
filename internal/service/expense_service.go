package service

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/auth"
	"github.com/divvyhq/divvy/internal/middleware"
	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

const dateLayout = "2006-01-02"

// ExpenseService handles the transaction CRUD operations.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates an ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

type transactionRequest struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       string          `json:"paid_by"`
	Kind         string          `json:"kind"`
	TransferTo   string          `json:"transfer_to"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	SplitBetween []string        `json:"split_between"`
	Date         string          `json:"date"`
}

type transactionPayload struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"group_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       string          `json:"paid_by"`
	Kind         string          `json:"kind"`
	TransferTo   string          `json:"transfer_to,omitempty"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	SplitBetween []string        `json:"split_between"`
	Date         string          `json:"date"`
	CreatedAt    int64           `json:"created_at"`
}

func toTransactionPayload(txn *models.Transaction) transactionPayload {
	split := txn.SplitBetween
	if split == nil {
		split = []string{}
	}
	return transactionPayload{
		ID:           txn.ID,
		GroupID:      txn.GroupID,
		Description:  txn.Description,
		Amount:       txn.Amount,
		PaidBy:       txn.PaidBy,
		Kind:         string(txn.Kind),
		TransferTo:   txn.TransferTo,
		Currency:     txn.Currency,
		ExchangeRate: txn.ExchangeRate,
		SplitBetween: split,
		Date:         time.Unix(txn.Date, 0).UTC().Format(dateLayout),
		CreatedAt:    txn.CreatedAt,
	}
}

// fromRequest builds a transaction scoped to the principal's group,
// normalized against the group currency and validated.
func (s *ExpenseService) fromRequest(r *http.Request, req *transactionRequest, groupID string) (*models.Transaction, string) {
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		return nil, "group no longer exists"
	}

	txn := &models.Transaction{
		GroupID:      groupID,
		Description:  req.Description,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		Kind:         models.TxKind(req.Kind),
		TransferTo:   req.TransferTo,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		SplitBetween: req.SplitBetween,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return nil, "date must be YYYY-MM-DD"
		}
		txn.Date = date.Unix()
	}

	txn.Normalize(group.Currency)
	if err := txn.Validate(); err != nil {
		return nil, err.Error()
	}
	return txn, ""
}

// List returns the group's transactions, newest first.
func (s *ExpenseService) List(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	txns, err := s.store.ListTransactions(r.Context(), principal.GroupID)
	if err != nil {
		respondError(w, err)
		return
	}

	payload := make([]transactionPayload, len(txns))
	for i := range txns {
		payload[i] = toTransactionPayload(&txns[i])
	}
	respondJSON(w, http.StatusOK, payload)
}

// Create records a new transaction.
func (s *ExpenseService) Create(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if err := principal.Require(auth.CapAddExpenses); err != nil {
		respondError(w, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	txn, msg := s.fromRequest(r, &req, principal.GroupID)
	if msg != "" {
		respondValidation(w, msg)
		return
	}

	if err := s.store.CreateTransaction(r.Context(), txn); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Transaction created",
		"group_id", principal.GroupID,
		"transaction_id", txn.ID,
		"kind", txn.Kind,
	)
	respondJSON(w, http.StatusCreated, toTransactionPayload(txn))
}

// Update replaces an existing transaction's fields and split set.
func (s *ExpenseService) Update(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if err := principal.Require(auth.CapEditExpenses); err != nil {
		respondError(w, err)
		return
	}

	txID := mux.Vars(r)["id"]
	existing, err := s.store.GetTransaction(r.Context(), principal.GroupID, txID)
	if err != nil {
		respondError(w, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, "invalid request body")
		return
	}

	txn, msg := s.fromRequest(r, &req, principal.GroupID)
	if msg != "" {
		respondValidation(w, msg)
		return
	}
	txn.ID = existing.ID
	txn.CreatedAt = existing.CreatedAt
	if txn.Date == 0 {
		txn.Date = existing.Date
	}

	if err := s.store.UpdateTransaction(r.Context(), txn); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Transaction updated", "group_id", principal.GroupID, "transaction_id", txn.ID)
	respondJSON(w, http.StatusOK, toTransactionPayload(txn))
}

// Delete removes a transaction.
func (s *ExpenseService) Delete(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if err := principal.Require(auth.CapEditExpenses); err != nil {
		respondError(w, err)
		return
	}

	txID := mux.Vars(r)["id"]
	if err := s.store.DeleteTransaction(r.Context(), principal.GroupID, txID); err != nil {
		respondError(w, err)
		return
	}

	slog.Info("Transaction deleted", "group_id", principal.GroupID, "transaction_id", txID)
	respondJSON(w, http.StatusNoContent, nil)
}
