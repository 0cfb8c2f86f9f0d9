// Package ledger computes each member's net balance from a group's
// transaction history. The computation is pure and re-derived from scratch
// on every call; no running balance is ever stored.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/models"
)

// Balance is one member's net position within the group currency.
// Positive means the member is owed money, negative means they owe.
type Balance struct {
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	Balance    decimal.Decimal `json:"balance"`
}

// ComputeBalances turns a snapshot of members and transactions into one
// balance per member, in member input order.
//
// Each transaction contributes independently by commutative addition, so
// the result is invariant under reordering of the transaction list. A leg
// referencing a member absent from the member list is silently dropped:
// the snapshot may be torn under concurrent mutation and reporting must
// not fail on it.
func ComputeBalances(members []models.Member, txns []models.Transaction, groupCurrency string) []Balance {
	balances := make([]Balance, len(members))
	index := make(map[string]int, len(members))
	for i, m := range members {
		balances[i] = Balance{MemberID: m.ID, MemberName: m.Name, Balance: decimal.Zero}
		index[m.ID] = i
	}

	credit := func(memberID string, amount decimal.Decimal) {
		if i, ok := index[memberID]; ok {
			balances[i].Balance = balances[i].Balance.Add(amount)
		}
	}

	for _, tx := range txns {
		amount := normalize(tx, groupCurrency)

		switch tx.Kind {
		case models.KindTransfer:
			// The payer is owed the money back; the target owes it.
			// The split set is ignored for transfers.
			credit(tx.PaidBy, amount)
			credit(tx.TransferTo, amount.Neg())

		case models.KindIncome:
			// The receiver holds the money; each split member is owed
			// an equal share of it.
			if len(tx.SplitBetween) == 0 {
				continue
			}
			share := amount.Div(decimal.NewFromInt(int64(len(tx.SplitBetween))))
			credit(tx.PaidBy, amount.Neg())
			for _, memberID := range tx.SplitBetween {
				credit(memberID, share)
			}

		default:
			// Expense: the payer fronted the money; each split member
			// owes an equal share.
			if len(tx.SplitBetween) == 0 {
				continue
			}
			share := amount.Div(decimal.NewFromInt(int64(len(tx.SplitBetween))))
			credit(tx.PaidBy, amount)
			for _, memberID := range tx.SplitBetween {
				credit(memberID, share.Neg())
			}
		}
	}

	return balances
}

// normalize converts a transaction amount into the group currency using the
// caller-supplied exchange rate. A transaction already in the group
// currency, or one without a rate, passes through unchanged.
func normalize(tx models.Transaction, groupCurrency string) decimal.Decimal {
	if tx.Currency == "" || tx.Currency == groupCurrency || tx.ExchangeRate.IsZero() {
		return tx.Amount
	}
	return tx.Amount.Mul(tx.ExchangeRate)
}
