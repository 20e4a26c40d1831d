package httpapi

import (
	"time"

	"github.com/finshield/finshield-backend/internal/domain"
	"github.com/finshield/finshield-backend/internal/usecase/balance"
	"github.com/finshield/finshield-backend/internal/usecase/shield"
	"github.com/finshield/finshield-backend/internal/usecase/surplus"
)

// Amounts cross the wire as whole currency units.

type balanceResponse struct {
	NetBalance            int64 `json:"net_balance"`
	MonthlyIncome         int64 `json:"monthly_income"`
	MonthlyExpenses       int64 `json:"monthly_expenses"`
	AllocatedBalance      int64 `json:"allocated_balance"`
	EmergencyAllocated    int64 `json:"emergency_allocated"`
	NonEmergencyAllocated int64 `json:"non_emergency_allocated"`
	FreeBalance           int64 `json:"free_balance"`
}

func newBalanceResponse(bal *balance.UserBalance) balanceResponse {
	return balanceResponse{
		NetBalance:            bal.NetBalance.IntPart(),
		MonthlyIncome:         bal.MonthlyIncome.IntPart(),
		MonthlyExpenses:       bal.MonthlyExpenses.IntPart(),
		AllocatedBalance:      bal.AllocatedBalance.IntPart(),
		EmergencyAllocated:    bal.EmergencyAllocated.IntPart(),
		NonEmergencyAllocated: bal.NonEmergencyAllocated.IntPart(),
		FreeBalance:           bal.FreeBalance.IntPart(),
	}
}

type shieldResponse struct {
	Status             string `json:"status"`
	Label              string `json:"label"`
	MonthlyEssentials  int64  `json:"monthly_essentials"`
	EmergencyTarget    int64  `json:"emergency_target"`
	EmergencyOptimal   int64  `json:"emergency_optimal"`
	TotalShield        int64  `json:"total_shield"`
	CoreEmergency      int64  `json:"core_emergency"`
	SurplusEmergency   int64  `json:"surplus_emergency"`
	NetBalance         int64  `json:"net_balance"`
	FreeBalance        int64  `json:"free_balance"`
	ProgressPct        int64  `json:"progress_pct"`
	CoreProgressPct    int64  `json:"core_progress_pct"`
	Shortfall          int64  `json:"shortfall"`
	ShortfallToOptimal int64  `json:"shortfall_to_optimal"`
	MaxContribution    int64  `json:"max_contribution"`
	RecommendedMonthly int64  `json:"recommended_monthly"`
	HasSurplus         bool   `json:"has_surplus"`
	CanInvest          bool   `json:"can_invest"`
	CanPrepayLoans     bool   `json:"can_prepay_loans"`
	CanAllocateToGoals bool   `json:"can_allocate_to_goals"`
}

func newShieldResponse(st *shield.ShieldStatus) shieldResponse {
	return shieldResponse{
		Status:             string(st.Status),
		Label:              st.Label,
		MonthlyEssentials:  st.MonthlyEssentials.IntPart(),
		EmergencyTarget:    st.EmergencyTarget.IntPart(),
		EmergencyOptimal:   st.EmergencyOptimal.IntPart(),
		TotalShield:        st.TotalShield.IntPart(),
		CoreEmergency:      st.CoreEmergency.IntPart(),
		SurplusEmergency:   st.SurplusEmergency.IntPart(),
		NetBalance:         st.NetBalance.IntPart(),
		FreeBalance:        st.FreeBalance.IntPart(),
		ProgressPct:        st.ProgressPct,
		CoreProgressPct:    st.CoreProgressPct,
		Shortfall:          st.Shortfall.IntPart(),
		ShortfallToOptimal: st.ShortfallToOptimal.IntPart(),
		MaxContribution:    st.MaxContribution.IntPart(),
		RecommendedMonthly: st.RecommendedMonthly.IntPart(),
		HasSurplus:         st.HasSurplus,
		CanInvest:          st.CanInvest,
		CanPrepayLoans:     st.CanPrepayLoans,
		CanAllocateToGoals: st.CanAllocateToGoals,
	}
}

type featureAccessResponse struct {
	Feature         string `json:"feature"`
	Allowed         bool   `json:"allowed"`
	Status          string `json:"status"`
	ProgressPct     int64  `json:"progress_pct"`
	CoreProgressPct int64  `json:"core_progress_pct"`
	Reason          string `json:"reason,omitempty"`
}

type goalResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TargetAmount  int64  `json:"target_amount"`
	CurrentAmount int64  `json:"current_amount"`
	Status        string `json:"status"`
	Priority      int    `json:"priority"`
	EmergencyType string `json:"emergency_type,omitempty"`
}

func newGoalResponse(goal *domain.Goal) goalResponse {
	resp := goalResponse{
		ID:            goal.ID.String(),
		Title:         goal.Title,
		TargetAmount:  goal.TargetAmount.IntPart(),
		CurrentAmount: goal.CurrentAmount.IntPart(),
		Status:        string(goal.Status),
		Priority:      goal.Priority,
	}
	if kind, ok := domain.ClassifyEmergencyTitle(goal.Title); ok {
		resp.EmergencyType = string(kind)
	}
	return resp
}

type loanResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Lender            string `json:"lender"`
	OutstandingAmount int64  `json:"outstanding_amount"`
	InterestRate      string `json:"interest_rate"`
	EMIAmount         int64  `json:"emi_amount"`
	Status            string `json:"status"`
}

func newLoanResponse(loan *domain.Loan) loanResponse {
	return loanResponse{
		ID:                loan.ID.String(),
		Name:              loan.Name,
		Lender:            loan.Lender,
		OutstandingAmount: loan.OutstandingAmount.IntPart(),
		InterestRate:      loan.InterestRate.String(),
		EMIAmount:         loan.EMIAmount.IntPart(),
		Status:            string(loan.Status),
	}
}

type transactionResponse struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Kind        string    `json:"kind"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Merchant    string    `json:"merchant,omitempty"`
	Description string    `json:"description,omitempty"`
}

func newTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID.String(),
		Amount:      tx.Amount.IntPart(),
		Kind:        string(tx.Kind),
		Category:    tx.Category,
		Date:        tx.Date,
		Merchant:    tx.Merchant,
		Description: tx.Description,
	}
}

type safetyPreviewResponse struct {
	CoreAfterReallocation    int64 `json:"core_after_reallocation"`
	SurplusAfterReallocation int64 `json:"surplus_after_reallocation"`
}

type recommendationResponse struct {
	Type            string                `json:"type"`
	TargetID        string                `json:"target_id,omitempty"`
	TargetName      string                `json:"target_name,omitempty"`
	SuggestedAmount int64                 `json:"suggested_amount"`
	Message         string                `json:"message"`
	Action          string                `json:"action"`
	Safety          safetyPreviewResponse `json:"safety"`
}

func newRecommendationResponse(rec surplus.Recommendation) recommendationResponse {
	resp := recommendationResponse{
		Type:            string(rec.Type),
		TargetName:      rec.TargetName,
		SuggestedAmount: rec.SuggestedAmount.IntPart(),
		Message:         rec.Message,
		Action:          rec.Action,
		Safety: safetyPreviewResponse{
			CoreAfterReallocation:    rec.Safety.CoreAfterReallocation.IntPart(),
			SurplusAfterReallocation: rec.Safety.SurplusAfterReallocation.IntPart(),
		},
	}
	if rec.TargetID != nil {
		resp.TargetID = rec.TargetID.String()
	}
	return resp
}
