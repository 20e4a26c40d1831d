package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
	LoanStatusClosed LoanStatus = "closed"
)

var monthsPerYear = decimal.NewFromInt(12)

// Loan represents an amortizing debt record. OutstandingAmount is reduced by
// surplus-to-loan reallocation; the loan closes automatically when it
// reaches zero.
type Loan struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Name              string
	Lender            string
	OutstandingAmount decimal.Decimal
	InterestRate      decimal.Decimal // annual, percent
	EMIAmount         decimal.Decimal
	Status            LoanStatus
}

// Validate ensures the loan adheres to domain rules
// Returns an error if validation fails
func (l *Loan) Validate() error {
	if l.UserID == uuid.Nil {
		return errors.New("loan must belong to a user")
	}

	if l.Name == "" {
		return errors.New("loan name cannot be empty")
	}

	if l.OutstandingAmount.IsNegative() {
		return errors.New("loan outstanding amount cannot be negative")
	}

	if l.InterestRate.IsNegative() {
		return errors.New("loan interest rate cannot be negative")
	}

	if l.Status != LoanStatusActive && l.Status != LoanStatusClosed {
		return errors.New("loan status must be active or closed")
	}

	return nil
}

// IsActive reports whether the loan still accrues interest.
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// MonthlyInterestBurn is the interest cost of carrying the loan for one
// month: outstanding × (annual rate / 12 / 100). It is the ranking key for
// prepayment recommendations.
func (l *Loan) MonthlyInterestBurn() decimal.Decimal {
	return l.OutstandingAmount.Mul(l.InterestRate).Div(monthsPerYear).Div(decimal.NewFromInt(100))
}
