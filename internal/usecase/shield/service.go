package shield

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finshield/finshield-backend/internal/domain"
	"github.com/finshield/finshield-backend/internal/usecase/balance"
)

// Status represents the emergency-shield protection level. It is a pure
// function of the progress percentages, evaluated fresh on every call; there
// are no stored transitions.
type Status string

const (
	StatusAtRisk  Status = "at_risk"
	StatusPartial Status = "partial"
	StatusSafe    Status = "safe"
)

// Features gated behind the shield.
const (
	FeatureInvest        = "invest"
	FeaturePrepayLoans   = "prepay_loans"
	FeatureAllocateGoals = "allocate_goals"
)

// Essential-expense categories, matched by substring, case-insensitive.
// The three-month trailing average of expenses in these categories is the
// baseline every shield target is derived from.
var essentialCategoryKeywords = []string{
	"rent",
	"mortgage",
	"utilit",
	"electricity",
	"water",
	"gas",
	"grocer",
	"healthcare",
	"medical",
	"pharmacy",
	"insurance",
	"emi",
	"loan",
	"transport",
	"fuel",
	"commute",
	"education",
	"school",
	"tuition",
	"childcare",
}

const trailingMonths = 3

// Service computes the two-tier emergency-shield status.
type Service struct {
	TransactionRepo domain.TransactionRepository
	Balance         *balance.Service

	// Now is the clock used for the trailing window. Overridable in tests.
	Now func() time.Time
}

// NewService creates a new shield Service instance
func NewService(transactionRepo domain.TransactionRepository, balanceService *balance.Service) *Service {
	return &Service{
		TransactionRepo: transactionRepo,
		Balance:         balanceService,
		Now:             time.Now,
	}
}

// ShieldStatus is the full two-tier shield evaluation for one user.
// All amounts are whole currency units.
type ShieldStatus struct {
	MonthlyEssentials decimal.Decimal
	EmergencyTarget   decimal.Decimal // essentials × 3, the hard floor
	EmergencyOptimal  decimal.Decimal // essentials × 6, the core ceiling

	TotalShield      decimal.Decimal // sum of emergency-classified envelopes
	CoreEmergency    decimal.Decimal
	SurplusEmergency decimal.Decimal
	NetBalance       decimal.Decimal
	FreeBalance      decimal.Decimal

	ProgressPct     int64 // core against the 3-month target
	CoreProgressPct int64 // core against the 6-month optimal
	Status          Status
	Label           string

	Shortfall          decimal.Decimal // to the 3-month target
	ShortfallToOptimal decimal.Decimal // to the 6-month optimal
	MaxContribution    decimal.Decimal
	RecommendedMonthly decimal.Decimal

	HasSurplus         bool
	CanInvest          bool
	CanPrepayLoans     bool
	CanAllocateToGoals bool
}

// ComputeStatus evaluates the shield for a user.
//
// A brand-new user with no essential-expense history gets zero targets and
// at_risk status; that is a valid state, not an error. Division by a zero
// target yields 0%, never NaN.
func (s *Service) ComputeStatus(ctx context.Context, userID uuid.UUID) (*ShieldStatus, error) {
	essentials, err := s.monthlyEssentialExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := essentials.Mul(decimal.NewFromInt(3)).Round(0)
	optimal := essentials.Mul(decimal.NewFromInt(6)).Round(0)

	bal, err := s.Balance.ComputeBalance(ctx, userID, &essentials)
	if err != nil {
		return nil, err
	}

	progressPct := percentOf(bal.CoreEmergency, target)
	coreProgressPct := percentOf(bal.CoreEmergency, optimal)

	status, label := classify(progressPct, coreProgressPct)

	shortfall := clampNonNegative(target.Sub(bal.CoreEmergency))
	shortfallToOptimal := clampNonNegative(optimal.Sub(bal.CoreEmergency))

	recommended := decimal.Zero
	if shortfallToOptimal.IsPositive() {
		recommended = shortfallToOptimal.Div(decimal.NewFromInt(6)).Ceil()
	}

	return &ShieldStatus{
		MonthlyEssentials:  essentials.Round(0),
		EmergencyTarget:    target,
		EmergencyOptimal:   optimal,
		TotalShield:        bal.EmergencyAllocated,
		CoreEmergency:      bal.CoreEmergency,
		SurplusEmergency:   bal.SurplusEmergency,
		NetBalance:         bal.NetBalance,
		FreeBalance:        bal.FreeBalance,
		ProgressPct:        progressPct,
		CoreProgressPct:    coreProgressPct,
		Status:             status,
		Label:              label,
		Shortfall:          shortfall,
		ShortfallToOptimal: shortfallToOptimal,
		MaxContribution:    decimal.Min(bal.FreeBalance, shortfallToOptimal),
		RecommendedMonthly: recommended,
		// Surplus only becomes actionable once the core tier is fully
		// satisfied; a partially-protected user must not see surplus actions.
		HasSurplus:         bal.SurplusEmergency.IsPositive() && coreProgressPct >= 100,
		CanInvest:          progressPct >= 100,
		CanPrepayLoans:     coreProgressPct >= 100,
		CanAllocateToGoals: progressPct >= 50,
	}, nil
}

// FeatureAccess is the gating verdict for a single feature.
type FeatureAccess struct {
	Feature         string
	Allowed         bool
	Status          Status
	ProgressPct     int64
	CoreProgressPct int64
	Reason          string
}

// CheckFeatureAccess recomputes the shield and reports whether the given
// feature is unlocked.
func (s *Service) CheckFeatureAccess(ctx context.Context, userID uuid.UUID, feature string) (*FeatureAccess, error) {
	st, err := s.ComputeStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	access := &FeatureAccess{
		Feature:         feature,
		Status:          st.Status,
		ProgressPct:     st.ProgressPct,
		CoreProgressPct: st.CoreProgressPct,
	}

	switch feature {
	case FeatureInvest:
		access.Allowed = st.CanInvest
		if !access.Allowed {
			access.Reason = "emergency shield below the 3-month target"
		}
	case FeaturePrepayLoans:
		access.Allowed = st.CanPrepayLoans
		if !access.Allowed {
			access.Reason = "emergency shield below the 6-month optimal"
		}
	case FeatureAllocateGoals:
		access.Allowed = st.CanAllocateToGoals
		if !access.Allowed {
			access.Reason = "emergency shield below half the 3-month target"
		}
	default:
		return nil, domain.NewValidationError("unknown feature: " + feature)
	}

	return access, nil
}

// monthlyEssentialExpenses averages essential-category expense transactions
// over the trailing three months.
func (s *Service) monthlyEssentialExpenses(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	now := s.Now()
	from := now.AddDate(0, -trailingMonths, 0)
	kind := domain.TransactionKindExpense

	txs, err := s.TransactionRepo.ListByUser(ctx, userID, domain.TransactionFilter{
		From: &from,
		To:   &now,
		Kind: &kind,
	})
	if err != nil {
		return decimal.Zero, &domain.UpstreamError{Step: "list transactions", Err: err}
	}

	var total decimal.Decimal
	for _, tx := range txs {
		if isEssentialCategory(tx.Category) {
			total = total.Add(tx.Amount)
		}
	}

	return total.Div(decimal.NewFromInt(trailingMonths)), nil
}

func isEssentialCategory(category string) bool {
	lower := strings.ToLower(category)
	for _, keyword := range essentialCategoryKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func classify(progressPct, coreProgressPct int64) (Status, string) {
	switch {
	case coreProgressPct >= 100:
		return StatusSafe, "Fully Protected"
	case progressPct >= 100:
		return StatusSafe, "Protected"
	case progressPct >= 50:
		return StatusPartial, "Building"
	default:
		return StatusAtRisk, "At Risk"
	}
}

// percentOf returns part/whole as a rounded percentage, 0 for a zero whole.
func percentOf(part, whole decimal.Decimal) int64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
