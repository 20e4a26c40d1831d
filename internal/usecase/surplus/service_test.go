package surplus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finshield/finshield-backend/internal/domain"
	"github.com/finshield/finshield-backend/internal/storetest"
	"github.com/finshield/finshield-backend/internal/usecase/balance"
	"github.com/finshield/finshield-backend/internal/usecase/shield"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	service   *Service
	goalStore *storetest.GoalStore
	loanStore *storetest.LoanStore
	userID    uuid.UUID
}

// newTestEnv seeds essentials of 20000/month (optimal 120000) plus an
// emergency fund holding the given amount.
func newTestEnv(t *testing.T, emergencyAllocated int64) *testEnv {
	t.Helper()

	env := &testEnv{
		goalStore: storetest.NewGoalStore(),
		loanStore: storetest.NewLoanStore(),
		userID:    uuid.New(),
	}

	txStore := storetest.NewTransactionStore()
	txStore.Seed(&domain.Transaction{
		ID:       uuid.New(),
		UserID:   env.userID,
		Amount:   decimal.NewFromInt(800000),
		Kind:     domain.TransactionKindIncome,
		Category: "Salary",
		Date:     testNow.AddDate(0, -3, 0),
	})
	for monthsAgo := 1; monthsAgo <= 3; monthsAgo++ {
		txStore.Seed(&domain.Transaction{
			ID:       uuid.New(),
			UserID:   env.userID,
			Amount:   decimal.NewFromInt(20000),
			Kind:     domain.TransactionKindExpense,
			Category: "Rent",
			Date:     testNow.AddDate(0, -monthsAgo, 0),
		})
	}

	env.goalStore.Seed(&domain.Goal{
		ID:            uuid.New(),
		UserID:        env.userID,
		Title:         "Emergency Fund",
		TargetAmount:  decimal.NewFromInt(120000),
		CurrentAmount: decimal.NewFromInt(emergencyAllocated),
		Status:        domain.GoalStatusActive,
		Priority:      1,
	})

	balanceService := balance.NewService(txStore, env.goalStore)
	balanceService.Now = func() time.Time { return testNow }
	shieldService := shield.NewService(txStore, balanceService)
	shieldService.Now = func() time.Time { return testNow }

	env.service = NewService(env.goalStore, env.loanStore, shieldService)
	return env
}

func (e *testEnv) seedLoan(name string, outstanding, rate, emi int64) *domain.Loan {
	loan := &domain.Loan{
		ID:                uuid.New(),
		UserID:            e.userID,
		Name:              name,
		Lender:            "HDFC",
		OutstandingAmount: decimal.NewFromInt(outstanding),
		InterestRate:      decimal.NewFromInt(rate),
		EMIAmount:         decimal.NewFromInt(emi),
		Status:            domain.LoanStatusActive,
	}
	e.loanStore.Seed(loan)
	return loan
}

func (e *testEnv) seedGoal(title string, target, current int64, priority int) *domain.Goal {
	goal := &domain.Goal{
		ID:            uuid.New(),
		UserID:        e.userID,
		Title:         title,
		TargetAmount:  decimal.NewFromInt(target),
		CurrentAmount: decimal.NewFromInt(current),
		Status:        domain.GoalStatusActive,
		Priority:      priority,
	}
	e.goalStore.Seed(goal)
	return goal
}

func TestRecommend_EmptyWithoutSurplus(t *testing.T) {
	// 100000 allocated is below the 120000 optimal: no surplus, no advice.
	env := newTestEnv(t, 100000)
	env.seedLoan("Car Loan", 300000, 11, 8000)

	recs, err := env.service.Recommend(context.Background(), env.userID)
	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecommend_LoanBeatsGoal(t *testing.T) {
	env := newTestEnv(t, 170000) // surplus 50000
	env.seedLoan("Car Loan", 300000, 11, 8000)
	env.seedGoal("Goa Trip", 60000, 10000, 2)

	recs, err := env.service.Recommend(context.Background(), env.userID)
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, RecommendationLoanPrepayment, recs[0].Type)
	assert.Equal(t, RecommendationGoalFunding, recs[1].Type)
}

func TestRecommend_RanksLoansByInterestBurn(t *testing.T) {
	env := newTestEnv(t, 170000)
	// 300000 × 11% / 12 = 2750/mo vs 500000 × 9% / 12 = 3750/mo.
	env.seedLoan("Car Loan", 300000, 11, 8000)
	home := env.seedLoan("Home Loan", 500000, 9, 12000)

	recs, err := env.service.Recommend(context.Background(), env.userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, recs)

	top := recs[0]
	assert.Equal(t, RecommendationLoanPrepayment, top.Type)
	assert.Equal(t, "Home Loan", top.TargetName)
	assert.Equal(t, home.ID, *top.TargetID)
	assert.Contains(t, top.Message, "Home Loan")
}

func TestRecommend_PrepaymentSizing(t *testing.T) {
	env := newTestEnv(t, 170000) // surplus 50000
	env.seedLoan("Car Loan", 300000, 11, 8000)

	recs, err := env.service.Recommend(context.Background(), env.userID)
	assert.NoError(t, err)

	// max(25000 floor, 3 × 8000) = 25000, within the 50000 surplus.
	assert.True(t, recs[0].SuggestedAmount.Equal(decimal.NewFromInt(25000)),
		"got %s", recs[0].SuggestedAmount)
	assert.True(t, recs[0].Safety.CoreAfterReallocation.Equal(decimal.NewFromInt(120000)))
	assert.True(t, recs[0].Safety.SurplusAfterReallocation.Equal(decimal.NewFromInt(25000)))
}

func TestRecommend_PrepaymentCappedBySurplus(t *testing.T) {
	env := newTestEnv(t, 130000) // surplus 10000
	env.seedLoan("Car Loan", 300000, 11, 8000)

	recs, err := env.service.Recommend(context.Background(), env.userID)
	assert.NoError(t, err)
	assert.True(t, recs[0].SuggestedAmount.Equal(decimal.NewFromInt(10000)))
}

func TestRecommend_GoalFundingPicksMostUrgent(t *testing.T) {
	env := newTestEnv(t, 170000) // surplus 50000, no loans
	env.seedGoal("Goa Trip", 60000, 10000, 3)
	env.seedGoal("New Laptop", 90000, 80000, 1)

	recs, err := env.service.Recommend(context.Background(), env.userID)
	assert.NoError(t, err)
	assert.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, RecommendationGoalFunding, rec.Type)
	assert.Equal(t, "New Laptop", rec.TargetName)
	// Capped at the goal's remaining gap of 10000.
	assert.True(t, rec.SuggestedAmount.Equal(decimal.NewFromInt(10000)))
}

func TestRecommend_HoldFallback(t *testing.T) {
	// Surplus exists but there is nothing to fund.
	env := newTestEnv(t, 170000)

	recs, err := env.service.Recommend(context.Background(), env.userID)
	assert.NoError(t, err)
	assert.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, RecommendationHold, rec.Type)
	assert.Nil(t, rec.TargetID)
	assert.True(t, rec.SuggestedAmount.Equal(decimal.NewFromInt(50000)))
	assert.True(t, rec.Safety.CoreAfterReallocation.Equal(decimal.NewFromInt(120000)))
}

func TestFormatINR(t *testing.T) {
	out := formatINR(decimal.NewFromInt(25000))
	assert.Contains(t, out, "₹")
	assert.Contains(t, out, "25,000")
}
