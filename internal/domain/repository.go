package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionFilter narrows a ledger listing. Nil fields mean no filter.
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
	Kind *TransactionKind
}

// TransactionRepository defines the interface for the transaction store
type TransactionRepository interface {
	// ListByUser retrieves a user's transactions, optionally filtered by
	// date range and kind
	ListByUser(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]*Transaction, error)

	// Create appends a new transaction to the ledger
	Create(ctx context.Context, tx *Transaction) error
}

// GoalRepository defines the interface for the goal store
type GoalRepository interface {
	// ListActiveByUser retrieves all of a user's active goals
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Goal, error)

	// FindByID retrieves a goal owned by the user.
	// Returns a NotFoundError if it does not exist or belongs to someone else.
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Goal, error)

	// Save persists changes to an existing goal
	Save(ctx context.Context, goal *Goal) error

	// Create creates a new goal
	Create(ctx context.Context, goal *Goal) error
}

// LoanRepository defines the interface for the loan store
type LoanRepository interface {
	// ListActiveByUser retrieves all of a user's active loans
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error)

	// FindByID retrieves a loan owned by the user.
	// Returns a NotFoundError if it does not exist or belongs to someone else.
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Loan, error)

	// Save persists changes to an existing loan
	Save(ctx context.Context, loan *Loan) error
}
