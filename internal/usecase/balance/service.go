package balance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finshield/finshield-backend/internal/domain"
)

// Service derives balance aggregates from the transaction and goal stores.
// It holds no state and caches nothing: every figure is recomputed from
// whatever is currently persisted, so concurrent writers can never observe
// a stale aggregate from here.
type Service struct {
	TransactionRepo domain.TransactionRepository
	GoalRepo        domain.GoalRepository

	// Now is the clock used for calendar-month windows. Overridable in tests.
	Now func() time.Time
}

// NewService creates a new balance Service instance
func NewService(transactionRepo domain.TransactionRepository, goalRepo domain.GoalRepository) *Service {
	return &Service{
		TransactionRepo: transactionRepo,
		GoalRepo:        goalRepo,
		Now:             time.Now,
	}
}

// UserBalance holds the derived balance aggregates.
// All amounts are rounded to whole currency units; internal arithmetic keeps
// full precision and rounds once here, at the component boundary.
type UserBalance struct {
	NetBalance            decimal.Decimal
	MonthlyIncome         decimal.Decimal
	MonthlyExpenses       decimal.Decimal
	AllocatedBalance      decimal.Decimal
	EmergencyAllocated    decimal.Decimal
	NonEmergencyAllocated decimal.Decimal
	FreeBalance           decimal.Decimal

	// Core/Surplus split of the emergency allocation against the six-month
	// optimal. Zero unless monthly essentials were supplied.
	CoreEmergency    decimal.Decimal
	SurplusEmergency decimal.Decimal
}

// ComputeBalance derives the user's balance aggregates from raw data.
//
// NetBalance is income minus non-savings expenses. Savings-category expenses
// are allocation postings: the money moved into an envelope, it did not leave
// the system, so counting it on the spend side would double-count it against
// the envelope's claim. Do not "simplify" this to all expenses; that silently
// breaks money conservation (see the regression test).
//
// When monthlyEssentials is supplied the emergency allocation is split into
// core (up to essentials × 6) and surplus (beyond it).
func (s *Service) ComputeBalance(ctx context.Context, userID uuid.UUID, monthlyEssentials *decimal.Decimal) (*UserBalance, error) {
	txs, err := s.TransactionRepo.ListByUser(ctx, userID, domain.TransactionFilter{})
	if err != nil {
		return nil, &domain.UpstreamError{Step: "list transactions", Err: err}
	}

	goals, err := s.GoalRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, &domain.UpstreamError{Step: "list goals", Err: err}
	}

	now := s.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	var income, nonSavingsExpenses decimal.Decimal
	var monthlyIncome, monthlyExpenses decimal.Decimal

	for _, tx := range txs {
		inMonth := !tx.Date.Before(monthStart) && tx.Date.Before(nextMonthStart)

		switch tx.Kind {
		case domain.TransactionKindIncome:
			income = income.Add(tx.Amount)
			if inMonth {
				monthlyIncome = monthlyIncome.Add(tx.Amount)
			}
		case domain.TransactionKindExpense:
			if tx.IsSavings() {
				continue
			}
			nonSavingsExpenses = nonSavingsExpenses.Add(tx.Amount)
			if inMonth {
				monthlyExpenses = monthlyExpenses.Add(tx.Amount)
			}
		}
	}

	netBalance := income.Sub(nonSavingsExpenses)

	var allocated, emergencyAllocated decimal.Decimal
	for _, goal := range goals {
		allocated = allocated.Add(goal.CurrentAmount)
		if goal.IsEmergencyFund() {
			emergencyAllocated = emergencyAllocated.Add(goal.CurrentAmount)
		}
	}
	nonEmergencyAllocated := allocated.Sub(emergencyAllocated)

	// Allocations exceeding net balance are rejected at the allocation
	// boundary, so this floor is a display-safety clamp, not a normal path.
	freeBalance := netBalance.Sub(allocated)
	if freeBalance.IsNegative() {
		freeBalance = decimal.Zero
	}

	result := &UserBalance{
		NetBalance:            netBalance.Round(0),
		MonthlyIncome:         monthlyIncome.Round(0),
		MonthlyExpenses:       monthlyExpenses.Round(0),
		AllocatedBalance:      allocated.Round(0),
		EmergencyAllocated:    emergencyAllocated.Round(0),
		NonEmergencyAllocated: nonEmergencyAllocated.Round(0),
		FreeBalance:           freeBalance.Round(0),
	}

	if monthlyEssentials != nil {
		coreOptimal := monthlyEssentials.Mul(decimal.NewFromInt(6))
		core := decimal.Min(emergencyAllocated, coreOptimal)
		surplus := emergencyAllocated.Sub(coreOptimal)
		if surplus.IsNegative() {
			surplus = decimal.Zero
		}
		result.CoreEmergency = core.Round(0)
		result.SurplusEmergency = surplus.Round(0)
	}

	return result, nil
}
