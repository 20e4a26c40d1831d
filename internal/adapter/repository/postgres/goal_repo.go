package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/finshield/finshield-backend/internal/domain"
)

// goalRepository implements domain.GoalRepository
type goalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *DB) domain.GoalRepository {
	return &goalRepository{db: db}
}

// ListActiveByUser retrieves all of a user's active goals
func (r *goalRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	query := `
		SELECT id, user_id, title, target_amount, current_amount, status, priority
		FROM goals
		WHERE user_id = $1 AND status = $2
		ORDER BY priority ASC, title ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, string(domain.GoalStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	var goals []*domain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	return goals, nil
}

// FindByID retrieves a goal owned by the user
func (r *goalRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Goal, error) {
	query := `
		SELECT id, user_id, title, target_amount, current_amount, status, priority
		FROM goals
		WHERE id = $1 AND user_id = $2
	`

	row := r.db.QueryRowContext(ctx, query, id, userID)
	goal, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "goal", ID: id}
		}
		return nil, err
	}

	return goal, nil
}

// Save persists changes to an existing goal
func (r *goalRepository) Save(ctx context.Context, goal *domain.Goal) error {
	query := `
		UPDATE goals
		SET title = $1, target_amount = $2, current_amount = $3, status = $4, priority = $5
		WHERE id = $6 AND user_id = $7
	`

	result, err := r.db.ExecContext(ctx, query,
		goal.Title,
		goal.TargetAmount.String(),
		goal.CurrentAmount.String(),
		string(goal.Status),
		goal.Priority,
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check saved goal: %w", err)
	}
	if affected == 0 {
		return &domain.NotFoundError{Entity: "goal", ID: goal.ID}
	}

	return nil
}

// Create creates a new goal
func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, title, target_amount, current_amount, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.TargetAmount.String(),
		goal.CurrentAmount.String(),
		string(goal.Status),
		goal.Priority,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGoal(row scanner) (*domain.Goal, error) {
	var goal domain.Goal
	var targetStr, currentStr string

	if err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&targetStr,
		&currentStr,
		&goal.Status,
		&goal.Priority,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}

	target, err := decimal.NewFromString(targetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse goal target amount: %w", err)
	}
	current, err := decimal.NewFromString(currentStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse goal current amount: %w", err)
	}
	goal.TargetAmount = target
	goal.CurrentAmount = current

	return &goal, nil
}
