package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TxKind is the closed set of transaction kinds.
type TxKind string

const (
	// KindExpense is the default: the payer fronted money the split
	// members owe back.
	KindExpense TxKind = "expense"

	// KindTransfer is a direct payment from the payer to one member.
	KindTransfer TxKind = "transfer"

	// KindIncome is money received by one member on behalf of the split
	// members.
	KindIncome TxKind = "income"
)

// Valid reports whether k is one of the known kinds.
func (k TxKind) Valid() bool {
	switch k {
	case KindExpense, KindTransfer, KindIncome:
		return true
	}
	return false
}

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrMissingTransfer  = errors.New("transfer requires a target member")
	ErrMissingPayer     = errors.New("transaction requires a payer")
	ErrEmptyDescription = errors.New("transaction requires a description")
)

// Transaction is one ledger entry in a group's history.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GroupID is the group this transaction belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// Amount is the transaction amount in Currency.
	Amount decimal.Decimal

	// PaidBy is the member who paid (or, for income, received).
	PaidBy string

	// Kind selects how the amount moves between members.
	Kind TxKind

	// TransferTo is the receiving member. Only meaningful for transfers.
	TransferTo string

	// Currency is the ISO 4217 code of Amount. Defaults to the group
	// currency.
	Currency string

	// ExchangeRate converts Amount into the group currency. Supplied by
	// the caller; 1 when the currencies match.
	ExchangeRate decimal.Decimal

	// SplitBetween lists the member IDs the amount is divided among
	// equally. Ignored for transfers. May be empty, which makes the
	// transaction a no-op in balance terms.
	SplitBetween []string

	// Date is the Unix timestamp of the day the transaction happened.
	Date int64

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}

// Validate checks the fields that make a transaction meaningless rather
// than merely empty. An empty split is deliberately fine.
func (t *Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.PaidBy == "" {
		return ErrMissingPayer
	}
	if t.Description == "" {
		return ErrEmptyDescription
	}
	if t.Kind == KindTransfer && t.TransferTo == "" {
		return ErrMissingTransfer
	}
	return nil
}

// Normalize clears the fields that do not apply to the transaction's kind,
// so a transfer-with-split or an expense-with-target never gets stored, and
// fills kind and exchange-rate defaults.
func (t *Transaction) Normalize(groupCurrency string) {
	if t.Kind == "" {
		t.Kind = KindExpense
	}
	if t.Currency == "" {
		t.Currency = groupCurrency
	}
	if t.ExchangeRate.IsZero() {
		t.ExchangeRate = decimal.NewFromInt(1)
	}
	switch t.Kind {
	case KindTransfer:
		t.SplitBetween = nil
	default:
		t.TransferTo = ""
	}
}
