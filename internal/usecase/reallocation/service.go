package reallocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"github.com/finshield/finshield-backend/internal/domain"
	"github.com/finshield/finshield-backend/internal/usecase/balance"
	"github.com/finshield/finshield-backend/internal/usecase/shield"
)

// TargetType selects where reallocated surplus flows.
type TargetType string

const (
	TargetTypeGoal TargetType = "goal"
	TargetTypeLoan TargetType = "loan"
)

// Service validates and executes every balance-affecting and
// envelope-affecting mutation. Each operation recomputes the balance or
// shield fresh (caller-supplied snapshots are never trusted), validates, and
// only then mutates; a validation failure leaves every entity untouched.
//
// All mutating operations for one user are serialized through a per-user
// lock. Read-only computations run unserialized.
type Service struct {
	TransactionRepo domain.TransactionRepository
	GoalRepo        domain.GoalRepository
	LoanRepo        domain.LoanRepository
	Balance         *balance.Service
	Shield          *shield.Service

	logger *zap.Logger
	locks  userLocks

	// Now stamps posted transactions. Overridable in tests.
	Now func() time.Time
}

// NewService creates a new reallocation Service instance
func NewService(
	transactionRepo domain.TransactionRepository,
	goalRepo domain.GoalRepository,
	loanRepo domain.LoanRepository,
	balanceService *balance.Service,
	shieldService *shield.Service,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		TransactionRepo: transactionRepo,
		GoalRepo:        goalRepo,
		LoanRepo:        loanRepo,
		Balance:         balanceService,
		Shield:          shieldService,
		logger:          logger,
		Now:             time.Now,
	}
}

// ContributionResult reports a successful contribution.
type ContributionResult struct {
	Goal        *domain.Goal
	Transaction *domain.Transaction
}

// Contribute moves free balance into an envelope. The increment to the goal
// is backed by a savings expense posted to the ledger, so the allocation is a
// real ledger entry, not merely a counter bump: net balance stays put while
// the contributed amount moves from free to allocated.
func (s *Service) Contribute(ctx context.Context, userID, fundID uuid.UUID, amount decimal.Decimal) (*ContributionResult, error) {
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("contribution amount must be positive")
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	if err := s.validateAllocation(ctx, userID, amount); err != nil {
		return nil, err
	}

	goal, err := s.GoalRepo.FindByID(ctx, userID, fundID)
	if err != nil {
		return nil, err
	}
	if !goal.IsActive() {
		return nil, domain.NewValidationError("cannot contribute to a closed goal")
	}

	goal.CurrentAmount = goal.CurrentAmount.Add(amount)
	if err := s.GoalRepo.Save(ctx, goal); err != nil {
		return nil, &domain.UpstreamError{Step: "update envelope", Err: err}
	}

	tx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Kind:        domain.TransactionKindExpense,
		Category:    domain.CategorySavings,
		Date:        s.Now(),
		Description: "Contribution to " + goal.Title,
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		// The envelope was already updated. Surface exactly that so the
		// operator can reconcile; never retry a half-applied mutation.
		return nil, &domain.UpstreamError{Step: "post savings ledger entry (envelope already updated)", Err: err}
	}

	s.logger.Info("contribution applied",
		zap.String("user_id", userID.String()),
		zap.String("fund_id", fundID.String()),
		zap.String("amount", amount.String()),
	)

	return &ContributionResult{Goal: goal, Transaction: tx}, nil
}

// validateAllocation rejects any allocation exceeding the user's current free
// balance. The rejection carries the free balance, the requested amount and
// the shortfall so the caller can self-correct.
func (s *Service) validateAllocation(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	bal, err := s.Balance.ComputeBalance(ctx, userID, nil)
	if err != nil {
		return err
	}
	if amount.GreaterThan(bal.FreeBalance) {
		return domain.NewAmountValidationError("contribution exceeds free balance", amount, bal.FreeBalance)
	}
	return nil
}

// EmergencyReallocationResult reports a successful intra-pool move.
type EmergencyReallocationResult struct {
	From *domain.Goal
	To   *domain.Goal
}

// ReallocateWithinEmergency redistributes between two emergency envelopes.
// Pure intra-pool move: no transaction is posted, net balance and the total
// shield are unchanged.
func (s *Service) ReallocateWithinEmergency(ctx context.Context, userID, fromFundID, toFundID uuid.UUID, amount decimal.Decimal) (*EmergencyReallocationResult, error) {
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("reallocation amount must be positive")
	}
	if fromFundID == toFundID {
		return nil, domain.NewValidationError("source and target funds must differ")
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	from, err := s.GoalRepo.FindByID(ctx, userID, fromFundID)
	if err != nil {
		return nil, err
	}
	to, err := s.GoalRepo.FindByID(ctx, userID, toFundID)
	if err != nil {
		return nil, err
	}

	if !from.IsEmergencyFund() {
		return nil, domain.NewValidationError("source goal is not an emergency fund")
	}
	if !to.IsEmergencyFund() {
		return nil, domain.NewValidationError("target goal is not an emergency fund")
	}
	if amount.GreaterThan(from.CurrentAmount) {
		return nil, domain.NewAmountValidationError("amount exceeds source fund balance", amount, from.CurrentAmount)
	}

	from.CurrentAmount = from.CurrentAmount.Sub(amount)
	to.CurrentAmount = to.CurrentAmount.Add(amount)

	if err := s.GoalRepo.Save(ctx, from); err != nil {
		return nil, &domain.UpstreamError{Step: "update source envelope", Err: err}
	}
	if err := s.GoalRepo.Save(ctx, to); err != nil {
		return nil, &domain.UpstreamError{Step: "update target envelope (source already debited)", Err: err}
	}

	s.logger.Info("emergency reallocation applied",
		zap.String("user_id", userID.String()),
		zap.String("from_fund_id", fromFundID.String()),
		zap.String("to_fund_id", toFundID.String()),
		zap.String("amount", amount.String()),
	)

	return &EmergencyReallocationResult{From: from, To: to}, nil
}

// SurplusReallocationResult reports a successful surplus move.
type SurplusReallocationResult struct {
	From        *domain.Goal
	ToGoal      *domain.Goal        // set for goal targets
	Loan        *domain.Loan        // set for loan targets
	Transaction *domain.Transaction // set for loan targets only
	LoanClosed  bool
}

// ReallocateSurplus moves surplus emergency allocation to a non-emergency
// goal or into loan principal. Surplus is recomputed fresh and the move can
// never touch the core tier. A goal target is a pure envelope move; a loan
// target is real money leaving the allocation system, so it posts a ledger
// entry and reduces net balance.
func (s *Service) ReallocateSurplus(ctx context.Context, userID, fromFundID, targetID uuid.UUID, amount decimal.Decimal, targetType TargetType) (*SurplusReallocationResult, error) {
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("reallocation amount must be positive")
	}
	if targetType != TargetTypeGoal && targetType != TargetTypeLoan {
		return nil, domain.NewValidationError("target type must be goal or loan")
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	st, err := s.Shield.ComputeStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(st.SurplusEmergency) {
		return nil, domain.NewAmountValidationError("amount exceeds surplus emergency", amount, st.SurplusEmergency)
	}

	from, err := s.GoalRepo.FindByID(ctx, userID, fromFundID)
	if err != nil {
		return nil, err
	}
	if !from.IsEmergencyFund() {
		return nil, domain.NewValidationError("source goal is not an emergency fund")
	}
	if amount.GreaterThan(from.CurrentAmount) {
		return nil, domain.NewAmountValidationError("amount exceeds source fund balance", amount, from.CurrentAmount)
	}

	switch targetType {
	case TargetTypeGoal:
		return s.reallocateSurplusToGoal(ctx, userID, from, targetID, amount)
	default:
		return s.reallocateSurplusToLoan(ctx, userID, from, targetID, amount)
	}
}

func (s *Service) reallocateSurplusToGoal(ctx context.Context, userID uuid.UUID, from *domain.Goal, targetID uuid.UUID, amount decimal.Decimal) (*SurplusReallocationResult, error) {
	target, err := s.GoalRepo.FindByID(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	// Surplus flows to non-emergency envelopes or loans only; moving it into
	// another emergency fund is the within-emergency operation's job.
	if target.IsEmergencyFund() {
		return nil, domain.NewValidationError("surplus cannot flow into another emergency fund")
	}
	if !target.IsActive() {
		return nil, domain.NewValidationError("target goal is closed")
	}

	from.CurrentAmount = from.CurrentAmount.Sub(amount)
	target.CurrentAmount = target.CurrentAmount.Add(amount)

	if err := s.GoalRepo.Save(ctx, from); err != nil {
		return nil, &domain.UpstreamError{Step: "update source envelope", Err: err}
	}
	if err := s.GoalRepo.Save(ctx, target); err != nil {
		return nil, &domain.UpstreamError{Step: "update target envelope (source already debited)", Err: err}
	}

	s.logger.Info("surplus reallocated to goal",
		zap.String("user_id", userID.String()),
		zap.String("from_fund_id", from.ID.String()),
		zap.String("target_goal_id", target.ID.String()),
		zap.String("amount", amount.String()),
	)

	return &SurplusReallocationResult{From: from, ToGoal: target}, nil
}

func (s *Service) reallocateSurplusToLoan(ctx context.Context, userID uuid.UUID, from *domain.Goal, loanID uuid.UUID, amount decimal.Decimal) (*SurplusReallocationResult, error) {
	loan, err := s.LoanRepo.FindByID(ctx, userID, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive() {
		return nil, domain.NewValidationError("target loan is not active")
	}

	from.CurrentAmount = from.CurrentAmount.Sub(amount)
	if err := s.GoalRepo.Save(ctx, from); err != nil {
		return nil, &domain.UpstreamError{Step: "update source envelope", Err: err}
	}

	tx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Kind:        domain.TransactionKindExpense,
		Category:    domain.CategoryLoanEMI,
		Date:        s.Now(),
		Merchant:    loan.Lender,
		Description: "Surplus prepayment on " + loan.Name,
	}
	if err := s.TransactionRepo.Create(ctx, tx); err != nil {
		return nil, &domain.UpstreamError{Step: "post loan payment ledger entry (envelope already debited)", Err: err}
	}

	loan.OutstandingAmount = loan.OutstandingAmount.Sub(amount)
	closed := false
	if !loan.OutstandingAmount.IsPositive() {
		loan.OutstandingAmount = decimal.Zero
		loan.Status = domain.LoanStatusClosed
		closed = true
	}
	if err := s.LoanRepo.Save(ctx, loan); err != nil {
		return nil, &domain.UpstreamError{Step: "update loan (envelope debited, payment posted)", Err: err}
	}

	s.logger.Info("surplus reallocated to loan",
		zap.String("user_id", userID.String()),
		zap.String("from_fund_id", from.ID.String()),
		zap.String("loan_id", loan.ID.String()),
		zap.String("amount", amount.String()),
		zap.Bool("loan_closed", closed),
	)

	return &SurplusReallocationResult{From: from, Loan: loan, Transaction: tx, LoanClosed: closed}, nil
}

// DeletionCheck is the verdict on deleting an emergency fund.
type DeletionCheck struct {
	Allowed         bool
	ShieldAfter     decimal.Decimal
	EmergencyTarget decimal.Decimal
	Reason          string
}

// CanDeleteEmergencyFund reports whether deleting the fund would drop the
// total emergency shield below the 3-month target. The target is a hard
// floor against fund destruction, whichever specific fund is aimed at.
// Computed only, nothing is mutated.
func (s *Service) CanDeleteEmergencyFund(ctx context.Context, userID, fundID uuid.UUID) (*DeletionCheck, error) {
	goal, err := s.GoalRepo.FindByID(ctx, userID, fundID)
	if err != nil {
		return nil, err
	}

	st, err := s.Shield.ComputeStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !goal.IsEmergencyFund() {
		// Deleting a non-emergency goal never moves the shield.
		return &DeletionCheck{
			Allowed:         true,
			ShieldAfter:     st.TotalShield,
			EmergencyTarget: st.EmergencyTarget,
		}, nil
	}

	after := st.TotalShield.Sub(goal.CurrentAmount)
	if after.LessThan(st.EmergencyTarget) {
		return &DeletionCheck{
			Allowed:         false,
			ShieldAfter:     after,
			EmergencyTarget: st.EmergencyTarget,
			Reason:          "deleting this fund would drop the emergency shield below the 3-month target",
		}, nil
	}

	return &DeletionCheck{
		Allowed:         true,
		ShieldAfter:     after,
		EmergencyTarget: st.EmergencyTarget,
	}, nil
}

// CreateEmergencyFund creates a new emergency envelope with a synthesized
// title carrying the type marker, so the title classifier round-trips. When
// no target is supplied the six-month optimal is used.
func (s *Service) CreateEmergencyFund(ctx context.Context, userID uuid.UUID, kind domain.EmergencyType, targetAmount *decimal.Decimal) (*domain.Goal, error) {
	title, err := domain.EmergencyFundTitle(kind)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	var target decimal.Decimal
	if targetAmount != nil {
		target = *targetAmount
	} else {
		st, err := s.Shield.ComputeStatus(ctx, userID)
		if err != nil {
			return nil, err
		}
		target = st.EmergencyOptimal
	}
	if !target.IsPositive() {
		return nil, domain.NewValidationError("target amount required: no essential-expense history to derive one from")
	}

	goal := &domain.Goal{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Status:        domain.GoalStatusActive,
		Priority:      1, // emergency funds come first
	}
	if err := goal.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.GoalRepo.Create(ctx, goal); err != nil {
		return nil, &domain.UpstreamError{Step: "create emergency fund", Err: err}
	}

	s.logger.Info("emergency fund created",
		zap.String("user_id", userID.String()),
		zap.String("fund_id", goal.ID.String()),
		zap.String("type", string(kind)),
		zap.String("target", target.String()),
	)

	return goal, nil
}
