package surplus

import (
	"context"
	"fmt"
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finshield/finshield-backend/internal/domain"
	"github.com/finshield/finshield-backend/internal/usecase/shield"
)

// Prepayment sizing heuristic: suggest at least the floor, or three EMIs,
// whichever is larger, capped by the available surplus. Tunable, not a hard
// rule.
var (
	prepaymentFloor       = decimal.NewFromInt(25000)
	prepaymentEMIMultiple = decimal.NewFromInt(3)
)

// RecommendationType tells the caller what kind of action is suggested.
type RecommendationType string

const (
	RecommendationLoanPrepayment RecommendationType = "loan_prepayment"
	RecommendationGoalFunding    RecommendationType = "goal_funding"
	RecommendationHold           RecommendationType = "hold"
)

// SafetyPreview shows the shield before/after applying a recommendation so
// the caller can render it without re-querying. Core never moves under a
// surplus action.
type SafetyPreview struct {
	CoreAfterReallocation    decimal.Decimal
	SurplusAfterReallocation decimal.Decimal
}

// Recommendation is one actionable use for surplus emergency allocation.
type Recommendation struct {
	Type            RecommendationType
	TargetID        *uuid.UUID
	TargetName      string
	SuggestedAmount decimal.Decimal
	Message         string
	Action          string
	Safety          SafetyPreview
}

// Service ranks where excess protection should flow once the core shield is
// fully satisfied. Read-only: it never mutates anything.
type Service struct {
	GoalRepo domain.GoalRepository
	LoanRepo domain.LoanRepository
	Shield   *shield.Service
}

// NewService creates a new surplus Service instance
func NewService(goalRepo domain.GoalRepository, loanRepo domain.LoanRepository, shieldService *shield.Service) *Service {
	return &Service{
		GoalRepo: goalRepo,
		LoanRepo: loanRepo,
		Shield:   shieldService,
	}
}

// Recommend returns an ordered list of surplus uses, highest priority first.
// Empty when the user has no actionable surplus.
//
// Ranking: debt beats goals (interest burn is a guaranteed loss), goals beat
// holding. Loans are ranked by monthly interest burn, goals by their
// user-assigned priority number.
func (s *Service) Recommend(ctx context.Context, userID uuid.UUID) ([]Recommendation, error) {
	st, err := s.Shield.ComputeStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !st.HasSurplus {
		return []Recommendation{}, nil
	}
	surplus := st.SurplusEmergency
	core := st.CoreEmergency

	loans, err := s.LoanRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, &domain.UpstreamError{Step: "list loans", Err: err}
	}
	goals, err := s.GoalRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, &domain.UpstreamError{Step: "list goals", Err: err}
	}

	recommendations := make([]Recommendation, 0, 2)

	if rec := s.recommendLoanPrepayment(loans, surplus, core); rec != nil {
		recommendations = append(recommendations, *rec)
	}
	if st.CanInvest {
		if rec := s.recommendGoalFunding(goals, surplus, core); rec != nil {
			recommendations = append(recommendations, *rec)
		}
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, Recommendation{
			Type:            RecommendationHold,
			SuggestedAmount: surplus,
			Message:         "Your emergency shield already exceeds the six-month optimal with no debt or goals to fund",
			Action:          fmt.Sprintf("Hold %s as extra cushion or diversify it into low-risk instruments", formatINR(surplus)),
			Safety: SafetyPreview{
				CoreAfterReallocation:    core,
				SurplusAfterReallocation: decimal.Zero,
			},
		})
	}

	return recommendations, nil
}

// recommendLoanPrepayment picks the loan burning the most interest per month.
func (s *Service) recommendLoanPrepayment(loans []*domain.Loan, surplus, core decimal.Decimal) *Recommendation {
	if len(loans) == 0 {
		return nil
	}

	ranked := make([]*domain.Loan, len(loans))
	copy(ranked, loans)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MonthlyInterestBurn().GreaterThan(ranked[j].MonthlyInterestBurn())
	})
	top := ranked[0]

	suggested := decimal.Min(surplus, decimal.Max(prepaymentFloor, top.EMIAmount.Mul(prepaymentEMIMultiple)))

	id := top.ID
	return &Recommendation{
		Type:            RecommendationLoanPrepayment,
		TargetID:        &id,
		TargetName:      top.Name,
		SuggestedAmount: suggested,
		Message: fmt.Sprintf("%s costs you %s every month in interest",
			top.Name, formatINR(top.MonthlyInterestBurn())),
		Action: fmt.Sprintf("Prepay %s from your surplus emergency allocation", formatINR(suggested)),
		Safety: SafetyPreview{
			CoreAfterReallocation:    core,
			SurplusAfterReallocation: surplus.Sub(suggested),
		},
	}
}

// recommendGoalFunding picks the most urgent (lowest priority number)
// non-emergency active goal.
func (s *Service) recommendGoalFunding(goals []*domain.Goal, surplus, core decimal.Decimal) *Recommendation {
	var top *domain.Goal
	for _, goal := range goals {
		if goal.IsEmergencyFund() {
			continue
		}
		if top == nil || goal.Priority < top.Priority {
			top = goal
		}
	}
	if top == nil {
		return nil
	}

	remaining := top.TargetAmount.Sub(top.CurrentAmount)
	suggested := surplus
	if remaining.IsPositive() {
		suggested = decimal.Min(surplus, remaining)
	}

	id := top.ID
	return &Recommendation{
		Type:            RecommendationGoalFunding,
		TargetID:        &id,
		TargetName:      top.Title,
		SuggestedAmount: suggested,
		Message: fmt.Sprintf("%q is your most urgent goal with %s still to go",
			top.Title, formatINR(clampNonNegative(remaining))),
		Action: fmt.Sprintf("Move %s of surplus into it", formatINR(suggested)),
		Safety: SafetyPreview{
			CoreAfterReallocation:    core,
			SurplusAfterReallocation: surplus.Sub(suggested),
		},
	}
}

// formatINR renders a whole-rupee amount for user-facing messages.
func formatINR(amount decimal.Decimal) string {
	return money.New(amount.Round(0).IntPart()*100, money.INR).Display()
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
