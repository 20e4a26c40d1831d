// Package storetest provides in-memory repository implementations for tests
// that need real read-back-what-you-wrote behavior, like conservation and
// concurrency checks, where call-by-call mocks get unwieldy.
package storetest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/finshield/finshield-backend/internal/domain"
)

// TransactionStore is a mutex-guarded in-memory domain.TransactionRepository.
type TransactionStore struct {
	mu  sync.Mutex
	txs []*domain.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{}
}

// Seed appends transactions without going through Create.
func (s *TransactionStore) Seed(txs ...*domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		cp := *tx
		s.txs = append(s.txs, &cp)
	}
}

func (s *TransactionStore) ListByUser(_ context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Transaction
	for _, tx := range s.txs {
		if tx.UserID != userID {
			continue
		}
		if filter.From != nil && tx.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && tx.Date.After(*filter.To) {
			continue
		}
		if filter.Kind != nil && tx.Kind != *filter.Kind {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	return out, nil
}

func (s *TransactionStore) Create(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tx
	s.txs = append(s.txs, &cp)
	return nil
}

// Count returns the number of stored transactions for a user.
func (s *TransactionStore) Count(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, tx := range s.txs {
		if tx.UserID == userID {
			n++
		}
	}
	return n
}

// GoalStore is a mutex-guarded in-memory domain.GoalRepository.
type GoalStore struct {
	mu    sync.Mutex
	goals map[uuid.UUID]*domain.Goal
}

func NewGoalStore() *GoalStore {
	return &GoalStore{goals: make(map[uuid.UUID]*domain.Goal)}
}

// Seed inserts goals without going through Create.
func (s *GoalStore) Seed(goals ...*domain.Goal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, goal := range goals {
		cp := *goal
		s.goals[goal.ID] = &cp
	}
}

func (s *GoalStore) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Goal
	for _, goal := range s.goals {
		if goal.UserID == userID && goal.IsActive() {
			cp := *goal
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *GoalStore) FindByID(_ context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goal, ok := s.goals[id]
	if !ok || goal.UserID != userID {
		return nil, &domain.NotFoundError{Entity: "goal", ID: id}
	}
	cp := *goal
	return &cp, nil
}

func (s *GoalStore) Save(_ context.Context, goal *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[goal.ID]; !ok {
		return &domain.NotFoundError{Entity: "goal", ID: goal.ID}
	}
	cp := *goal
	s.goals[goal.ID] = &cp
	return nil
}

func (s *GoalStore) Create(_ context.Context, goal *domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *goal
	s.goals[goal.ID] = &cp
	return nil
}

// Get returns the current stored state of one goal.
func (s *GoalStore) Get(id uuid.UUID) *domain.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	goal, ok := s.goals[id]
	if !ok {
		return nil
	}
	cp := *goal
	return &cp
}

// LoanStore is a mutex-guarded in-memory domain.LoanRepository.
type LoanStore struct {
	mu    sync.Mutex
	loans map[uuid.UUID]*domain.Loan
}

func NewLoanStore() *LoanStore {
	return &LoanStore{loans: make(map[uuid.UUID]*domain.Loan)}
}

// Seed inserts loans without going through Save.
func (s *LoanStore) Seed(loans ...*domain.Loan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, loan := range loans {
		cp := *loan
		s.loans[loan.ID] = &cp
	}
}

func (s *LoanStore) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Loan
	for _, loan := range s.loans {
		if loan.UserID == userID && loan.IsActive() {
			cp := *loan
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *LoanStore) FindByID(_ context.Context, userID, id uuid.UUID) (*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loan, ok := s.loans[id]
	if !ok || loan.UserID != userID {
		return nil, &domain.NotFoundError{Entity: "loan", ID: id}
	}
	cp := *loan
	return &cp, nil
}

func (s *LoanStore) Save(_ context.Context, loan *domain.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loans[loan.ID]; !ok {
		return &domain.NotFoundError{Entity: "loan", ID: loan.ID}
	}
	cp := *loan
	s.loans[loan.ID] = &cp
	return nil
}

// Get returns the current stored state of one loan.
func (s *LoanStore) Get(id uuid.UUID) *domain.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	loan, ok := s.loans[id]
	if !ok {
		return nil
	}
	cp := *loan
	return &cp
}
