package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/divvyhq/divvy/internal/models"
	"github.com/divvyhq/divvy/internal/storage"
)

// CreateTransaction persists a new transaction with its split set.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}
	if txn.Date == 0 {
		txn.Date = txn.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, group_id, description, amount, paid_by, kind, transfer_to, currency, exchange_rate, tx_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.GroupID, txn.Description, txn.Amount.String(), txn.PaidBy, string(txn.Kind),
		txn.TransferTo, txn.Currency, txn.ExchangeRate.String(), txn.Date, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := insertSplits(ctx, tx, txn.ID, txn.SplitBetween); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves one transaction scoped to the given group.
func (s *SQLiteStore) GetTransaction(ctx context.Context, groupID, txID string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, kind, transfer_to, currency, exchange_rate, tx_date, created_at
		 FROM transactions WHERE id = ? AND group_id = ?`,
		txID, groupID,
	)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	splits, err := s.listSplits(ctx, txn.ID)
	if err != nil {
		return nil, err
	}
	txn.SplitBetween = splits
	return txn, nil
}

// UpdateTransaction replaces a transaction's fields and re-inserts its
// split set.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, amount = ?, paid_by = ?, kind = ?, transfer_to = ?, currency = ?, exchange_rate = ?, tx_date = ?
		 WHERE id = ? AND group_id = ?`,
		txn.Description, txn.Amount.String(), txn.PaidBy, string(txn.Kind), txn.TransferTo,
		txn.Currency, txn.ExchangeRate.String(), txn.Date, txn.ID, txn.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM transaction_splits WHERE transaction_id = ?", txn.ID); err != nil {
		return fmt.Errorf("failed to delete old splits: %w", err)
	}
	if err := insertSplits(ctx, tx, txn.ID, txn.SplitBetween); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction scoped to the given group;
// splits cascade.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, groupID, txID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND group_id = ?",
		txID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListTransactions returns the group's transactions, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, groupID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, description, amount, paid_by, kind, transfer_to, currency, exchange_rate, tx_date, created_at
		 FROM transactions WHERE group_id = ? ORDER BY created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	for i := range txns {
		splits, err := s.listSplits(ctx, txns[i].ID)
		if err != nil {
			return nil, err
		}
		txns[i].SplitBetween = splits
	}
	return txns, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		txn          models.Transaction
		kind         string
		amount       string
		exchangeRate string
	)
	err := row.Scan(&txn.ID, &txn.GroupID, &txn.Description, &amount, &txn.PaidBy, &kind,
		&txn.TransferTo, &txn.Currency, &exchangeRate, &txn.Date, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	txn.Kind = models.TxKind(kind)
	if txn.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
	}
	if txn.ExchangeRate, err = decimal.NewFromString(exchangeRate); err != nil {
		return nil, fmt.Errorf("failed to parse stored exchange rate %q: %w", exchangeRate, err)
	}
	return &txn, nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, txID string, memberIDs []string) error {
	for _, memberID := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO transaction_splits (transaction_id, member_id) VALUES (?, ?)",
			txID, memberID,
		); err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) listSplits(ctx context.Context, txID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM transaction_splits WHERE transaction_id = ? ORDER BY member_id",
		txID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var memberIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		memberIDs = append(memberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return memberIDs, nil
}
