package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finshield/finshield-backend/internal/domain"
)

// loanRepository implements domain.LoanRepository
type loanRepository struct {
	db *DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *DB) domain.LoanRepository {
	return &loanRepository{db: db}
}

// ListActiveByUser retrieves all of a user's active loans
func (r *loanRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	query := `
		SELECT id, user_id, name, lender, outstanding_amount, interest_rate, emi_amount, status
		FROM loans
		WHERE user_id = $1 AND status = $2
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, string(domain.LoanStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}

	return loans, nil
}

// FindByID retrieves a loan owned by the user
func (r *loanRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Loan, error) {
	query := `
		SELECT id, user_id, name, lender, outstanding_amount, interest_rate, emi_amount, status
		FROM loans
		WHERE id = $1 AND user_id = $2
	`

	row := r.db.QueryRowContext(ctx, query, id, userID)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "loan", ID: id}
		}
		return nil, err
	}

	return loan, nil
}

// Save persists changes to an existing loan
func (r *loanRepository) Save(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET name = $1, lender = $2, outstanding_amount = $3, interest_rate = $4, emi_amount = $5, status = $6
		WHERE id = $7 AND user_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		loan.Name,
		loan.Lender,
		loan.OutstandingAmount.String(),
		loan.InterestRate.String(),
		loan.EMIAmount.String(),
		string(loan.Status),
		loan.ID,
		loan.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save loan: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check saved loan: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "loan", ID: loan.ID}
	}

	return nil
}

func scanLoan(row scanner) (*domain.Loan, error) {
	var loan domain.Loan
	var outstandingStr, rateStr, emiStr string

	if err := row.Scan(
		&loan.ID,
		&loan.UserID,
		&loan.Name,
		&loan.Lender,
		&outstandingStr,
		&rateStr,
		&emiStr,
		&loan.Status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}

	outstanding, err := decimal.NewFromString(outstandingStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse loan outstanding amount: %w", err)
	}
	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse loan interest rate: %w", err)
	}
	emi, err := decimal.NewFromString(emiStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse loan emi amount: %w", err)
	}
	loan.OutstandingAmount = outstanding
	loan.InterestRate = rate
	loan.EMIAmount = emi

	return &loan, nil
}
