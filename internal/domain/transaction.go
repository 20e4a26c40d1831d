package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind represents the direction of a ledger record
type TransactionKind string

const (
	TransactionKindIncome  TransactionKind = "income"
	TransactionKindExpense TransactionKind = "expense"
)

// Categories stamped on transactions the coordinator posts itself.
const (
	CategorySavings = "Savings"
	CategoryLoanEMI = "Loan EMI"
)

// Transaction represents an append-only ledger record.
// Amount is always positive; direction comes from Kind, never from the sign.
// Records are immutable once created.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Kind        TransactionKind
	Category    string
	Date        time.Time
	Merchant    string
	Description string
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("transaction must belong to a user")
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return errors.New("transaction amount must be positive")
	}

	if t.Kind != TransactionKindIncome && t.Kind != TransactionKindExpense {
		return errors.New("transaction kind must be income or expense")
	}

	if t.Date.IsZero() {
		return errors.New("transaction date is required")
	}

	return nil
}

// IsSavings reports whether this expense is an allocation posting into an
// envelope rather than real consumption. Savings postings are excluded from
// the net-spend side of every balance formula.
func (t *Transaction) IsSavings() bool {
	return t.Kind == TransactionKindExpense && strings.EqualFold(strings.TrimSpace(t.Category), CategorySavings)
}
