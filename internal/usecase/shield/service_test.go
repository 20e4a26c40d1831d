package shield

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
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

// fixture seeds three months of ₹20,000 rent so monthly essentials average
// to 20,000, plus enough income to back the allocations.
func fixture(t *testing.T, emergencyAllocated int64) (*Service, *storetest.GoalStore, uuid.UUID) {
	t.Helper()

	userID := uuid.New()
	txStore := storetest.NewTransactionStore()
	goalStore := storetest.NewGoalStore()

	for monthsAgo := 1; monthsAgo <= 3; monthsAgo++ {
		txStore.Seed(&domain.Transaction{
			ID:       uuid.New(),
			UserID:   userID,
			Amount:   decimal.NewFromInt(20000),
			Kind:     domain.TransactionKindExpense,
			Category: "Rent",
			Date:     testNow.AddDate(0, -monthsAgo, 0),
		})
	}
	txStore.Seed(&domain.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Amount: decimal.NewFromInt(500000),
		Kind:   domain.TransactionKindIncome,
		Date:   testNow.AddDate(0, -3, 0),
	})

	if emergencyAllocated > 0 {
		goalStore.Seed(&domain.Goal{
			ID:            uuid.New(),
			UserID:        userID,
			Title:         "Emergency Fund",
			TargetAmount:  decimal.NewFromInt(120000),
			CurrentAmount: decimal.NewFromInt(emergencyAllocated),
			Status:        domain.GoalStatusActive,
		})
	}

	balanceService := balance.NewService(txStore, goalStore)
	balanceService.Now = func() time.Time { return testNow }
	service := NewService(txStore, balanceService)
	service.Now = func() time.Time { return testNow }

	return service, goalStore, userID
}

func TestComputeStatus_PartiallyProtected(t *testing.T) {
	service, _, userID := fixture(t, 40000)

	st, err := service.ComputeStatus(context.Background(), userID)
	assert.NoError(t, err)

	assert.True(t, st.MonthlyEssentials.Equal(decimal.NewFromInt(20000)))
	assert.True(t, st.EmergencyTarget.Equal(decimal.NewFromInt(60000)))
	assert.True(t, st.EmergencyOptimal.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, int64(67), st.ProgressPct)
	assert.Equal(t, int64(33), st.CoreProgressPct)
	assert.Equal(t, StatusPartial, st.Status)
	assert.Equal(t, "Building", st.Label)
	assert.False(t, st.CanInvest)
	assert.False(t, st.CanPrepayLoans)
	assert.True(t, st.CanAllocateToGoals)
	assert.False(t, st.HasSurplus)
}

func TestComputeStatus_FullyProtectedWithSurplus(t *testing.T) {
	service, _, userID := fixture(t, 130000)

	st, err := service.ComputeStatus(context.Background(), userID)
	assert.NoError(t, err)

	assert.True(t, st.CoreEmergency.Equal(decimal.NewFromInt(120000)))
	assert.True(t, st.SurplusEmergency.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, StatusSafe, st.Status)
	assert.Equal(t, "Fully Protected", st.Label)
	assert.True(t, st.HasSurplus)
	assert.True(t, st.CanInvest)
	assert.True(t, st.CanPrepayLoans)
	assert.True(t, st.CanAllocateToGoals)
	assert.True(t, st.ShortfallToOptimal.IsZero())
	assert.True(t, st.RecommendedMonthly.IsZero())
}

func TestComputeStatus_ProtectedBelowOptimal(t *testing.T) {
	service, _, userID := fixture(t, 60000)

	st, err := service.ComputeStatus(context.Background(), userID)
	assert.NoError(t, err)

	assert.Equal(t, int64(100), st.ProgressPct)
	assert.Equal(t, int64(50), st.CoreProgressPct)
	assert.Equal(t, StatusSafe, st.Status)
	assert.Equal(t, "Protected", st.Label)
	assert.True(t, st.CanInvest)
	assert.False(t, st.CanPrepayLoans)
	// Surplus only exists beyond the six-month optimal.
	assert.True(t, st.SurplusEmergency.IsZero())
	assert.False(t, st.HasSurplus)

	assert.True(t, st.Shortfall.IsZero())
	assert.True(t, st.ShortfallToOptimal.Equal(decimal.NewFromInt(60000)))
	// Spread the remaining 60000 over six months.
	assert.True(t, st.RecommendedMonthly.Equal(decimal.NewFromInt(10000)))
}

func TestComputeStatus_NewUserZeroHistory(t *testing.T) {
	userID := uuid.New()
	txStore := storetest.NewTransactionStore()
	goalStore := storetest.NewGoalStore()

	balanceService := balance.NewService(txStore, goalStore)
	service := NewService(txStore, balanceService)

	st, err := service.ComputeStatus(context.Background(), userID)
	assert.NoError(t, err)

	// Zero history is a valid state: zero targets, 0% progress, at risk.
	assert.True(t, st.EmergencyTarget.IsZero())
	assert.Equal(t, int64(0), st.ProgressPct)
	assert.Equal(t, StatusAtRisk, st.Status)
	assert.Equal(t, "At Risk", st.Label)
}

func TestComputeStatus_ReadIsIdempotent(t *testing.T) {
	service, goalStore, userID := fixture(t, 40000)

	first, err := service.ComputeStatus(context.Background(), userID)
	assert.NoError(t, err)
	second, err := service.ComputeStatus(context.Background(), userID)
	assert.NoError(t, err)

	assert.Equal(t, first, second)

	// Nothing was persisted along the way.
	goals, err := goalStore.ListActiveByUser(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, goals, 1)
	assert.True(t, goals[0].CurrentAmount.Equal(decimal.NewFromInt(40000)))
}

func TestCheckFeatureAccess(t *testing.T) {
	service, _, userID := fixture(t, 40000)

	invest, err := service.CheckFeatureAccess(context.Background(), userID, FeatureInvest)
	assert.NoError(t, err)
	assert.False(t, invest.Allowed)
	assert.NotEmpty(t, invest.Reason)

	goals, err := service.CheckFeatureAccess(context.Background(), userID, FeatureAllocateGoals)
	assert.NoError(t, err)
	assert.True(t, goals.Allowed)
	assert.Empty(t, goals.Reason)

	_, err = service.CheckFeatureAccess(context.Background(), userID, "teleport")
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestIsEssentialCategory(t *testing.T) {
	assert.True(t, isEssentialCategory("Rent"))
	assert.True(t, isEssentialCategory("Utilities"))
	assert.True(t, isEssentialCategory("Home Loan EMI"))
	assert.True(t, isEssentialCategory("grocery run"))
	assert.False(t, isEssentialCategory("Dining Out"))
	assert.False(t, isEssentialCategory("Entertainment"))
}
