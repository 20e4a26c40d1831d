package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finshield/finshield-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// ListByUser retrieves a user's transactions, optionally filtered by date range and kind
func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, amount, kind, category, date, merchant, description
		FROM transactions
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += " AND date >= $" + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += " AND date <= $" + strconv.Itoa(len(args))
	}
	if filter.Kind != nil {
		args = append(args, string(*filter.Kind))
		query += " AND kind = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var amountStr string

		if err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&amountStr,
			&tx.Kind,
			&tx.Category,
			&tx.Date,
			&tx.Merchant,
			&tx.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount: %w", err)
		}
		tx.Amount = amount

		txs = append(txs, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

// Create appends a new transaction to the ledger
func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, kind, category, date, merchant, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Amount.String(),
		string(tx.Kind),
		tx.Category,
		tx.Date,
		tx.Merchant,
		tx.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}
