package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finshield/finshield-backend/internal/domain"
	"github.com/finshield/finshield-backend/internal/storetest"
	"github.com/finshield/finshield-backend/internal/usecase/balance"
	"github.com/finshield/finshield-backend/internal/usecase/reallocation"
	"github.com/finshield/finshield-backend/internal/usecase/shield"
	"github.com/finshield/finshield-backend/internal/usecase/surplus"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	server    *Server
	txStore   *storetest.TransactionStore
	goalStore *storetest.GoalStore
	userID    uuid.UUID
}

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()

	env := &testEnv{
		txStore:   storetest.NewTransactionStore(),
		goalStore: storetest.NewGoalStore(),
		userID:    uuid.New(),
	}
	loanStore := storetest.NewLoanStore()

	balanceService := balance.NewService(env.txStore, env.goalStore)
	balanceService.Now = func() time.Time { return testNow }
	shieldService := shield.NewService(env.txStore, balanceService)
	shieldService.Now = func() time.Time { return testNow }
	reallocationService := reallocation.NewService(
		env.txStore, env.goalStore, loanStore, balanceService, shieldService, nil)
	reallocationService.Now = func() time.Time { return testNow }
	surplusService := surplus.NewService(env.goalStore, loanStore, shieldService)

	env.server = NewServer(
		Config{Addr: ":0", APIToken: token},
		balanceService, shieldService, reallocationService, surplusService, nil)
	return env
}

func (e *testEnv) seedIncome(amount int64) {
	e.txStore.Seed(&domain.Transaction{
		ID:       uuid.New(),
		UserID:   e.userID,
		Amount:   decimal.NewFromInt(amount),
		Kind:     domain.TransactionKindIncome,
		Category: "Salary",
		Date:     testNow.AddDate(0, -1, 0),
	})
}

func (e *testEnv) seedGoal(title string, current int64) *domain.Goal {
	goal := &domain.Goal{
		ID:            uuid.New(),
		UserID:        e.userID,
		Title:         title,
		TargetAmount:  decimal.NewFromInt(200000),
		CurrentAmount: decimal.NewFromInt(current),
		Status:        domain.GoalStatusActive,
		Priority:      1,
	}
	e.goalStore.Seed(goal)
	return goal
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestGetBalance(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedIncome(100000)
	env.seedGoal("Emergency Fund", 30000)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%s/balance", env.userID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(100000), body["net_balance"])
	assert.Equal(t, float64(30000), body["allocated_balance"])
	assert.Equal(t, float64(70000), body["free_balance"])
}

func TestGetBalance_InvalidUserID(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, "/api/users/not-a-uuid/balance", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetShield(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedIncome(100000)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%s/shield", env.userID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "at_risk", body["status"])
	assert.Equal(t, "At Risk", body["label"])
}

func TestCheckFeatureAccess_UnknownFeature(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%s/shield/access/teleport", env.userID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContribute(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedIncome(100000)
	fund := env.seedGoal("Emergency Fund", 0)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/contributions", env.userID),
		map[string]any{"fund_id": fund.ID, "amount": 30000})
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	goal := body["goal"].(map[string]any)
	assert.Equal(t, float64(30000), goal["current_amount"])
	assert.Equal(t, "general", goal["emergency_type"])
}

func TestContribute_RejectionCarriesShortfall(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedIncome(3000)
	fund := env.seedGoal("Emergency Fund", 0)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/contributions", env.userID),
		map[string]any{"fund_id": fund.ID, "amount": 5000})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(5000), body["requested"])
	assert.Equal(t, float64(3000), body["available"])
	assert.Equal(t, float64(2000), body["shortfall"])
}

func TestContribute_UnknownFund(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedIncome(100000)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/contributions", env.userID),
		map[string]any{"fund_id": uuid.New(), "amount": 1000})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContribute_MalformedBody(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/contributions", env.userID),
		map[string]any{"fund_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEmergencyFund(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%s/emergency-funds", env.userID),
		map[string]any{"type": "medical", "target_amount": 90000})
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Medical Emergency Fund", body["title"])
	assert.Equal(t, "medical", body["emergency_type"])
	assert.Equal(t, float64(90000), body["target_amount"])
}

func TestDeletionCheck(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedIncome(100000)
	fund := env.seedGoal("Emergency Fund", 40000)

	rec := env.do(t, http.MethodGet,
		fmt.Sprintf("/api/users/%s/emergency-funds/%s/deletable", env.userID, fund.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	// No essential history means a zero target, so deletion is allowed.
	assert.Equal(t, true, body["allowed"])
}

func TestSurplusRecommendations_EmptyWithoutSurplus(t *testing.T) {
	env := newTestEnv(t, "")
	env.seedIncome(100000)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%s/surplus/recommendations", env.userID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Empty(t, body["recommendations"])
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t, "sekrit")

	path := fmt.Sprintf("/api/users/%s/balance", env.userID)

	rec := env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer wrong")
	res := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(res, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	res = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestHealthSkipsAuth(t *testing.T) {
	env := newTestEnv(t, "sekrit")

	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShutdown(t *testing.T) {
	env := newTestEnv(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, env.server.Shutdown(ctx))
}
