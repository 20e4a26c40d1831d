package domain

import (
	"errors"
	"regexp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalStatus represents the lifecycle state of a goal
type GoalStatus string

const (
	GoalStatusActive GoalStatus = "active"
	GoalStatusClosed GoalStatus = "closed"
)

// Goal represents a savings envelope. CurrentAmount is a claim against the
// user's net balance, not independently-held money. It is mutated only by
// the reallocation coordinator.
type Goal struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Status        GoalStatus
	Priority      int // lower number = more urgent
}

// Validate ensures the goal adheres to domain rules
// Returns an error if validation fails
func (g *Goal) Validate() error {
	if g.UserID == uuid.Nil {
		return errors.New("goal must belong to a user")
	}

	if g.Title == "" {
		return errors.New("goal title cannot be empty")
	}

	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return errors.New("goal target amount must be positive")
	}

	if g.CurrentAmount.IsNegative() {
		return errors.New("goal current amount cannot be negative")
	}

	if g.Status != GoalStatusActive && g.Status != GoalStatusClosed {
		return errors.New("goal status must be active or closed")
	}

	return nil
}

// IsActive reports whether the goal still participates in allocation.
func (g *Goal) IsActive() bool {
	return g.Status == GoalStatusActive
}

// EmergencyType identifies what kind of emergency an emergency fund covers.
type EmergencyType string

const (
	EmergencyTypeMedical    EmergencyType = "medical"
	EmergencyTypeJobLoss    EmergencyType = "job_loss"
	EmergencyTypeHomeRepair EmergencyType = "home_repair"
	EmergencyTypeVehicle    EmergencyType = "vehicle"
	EmergencyTypeGeneral    EmergencyType = "general"
)

// Emergency funds are not a stored entity: any active goal whose title matches
// one of these patterns is an emergency fund of the matched type. The list is
// ordered; a title matching several patterns takes the first match. The
// classification is recomputed from the title on every read, so renaming a
// goal changes its classification.
var emergencyTitlePatterns = []struct {
	pattern *regexp.Regexp
	kind    EmergencyType
}{
	{regexp.MustCompile(`(?i)medical|health\s+emergency|hospital`), EmergencyTypeMedical},
	{regexp.MustCompile(`(?i)job[\s-]?loss|layoff|unemploy`), EmergencyTypeJobLoss},
	{regexp.MustCompile(`(?i)(home|house)\s+(repair|maintenance|emergency)`), EmergencyTypeHomeRepair},
	{regexp.MustCompile(`(?i)vehicle\s+(repair|emergency)|car\s+repair|breakdown`), EmergencyTypeVehicle},
	{regexp.MustCompile(`(?i)emergency|contingency|rainy[\s-]?day|safety\s+net`), EmergencyTypeGeneral},
}

// ClassifyEmergencyTitle returns the emergency type indicated by a goal title,
// or false if the title carries no emergency marker.
func ClassifyEmergencyTitle(title string) (EmergencyType, bool) {
	for _, p := range emergencyTitlePatterns {
		if p.pattern.MatchString(title) {
			return p.kind, true
		}
	}
	return "", false
}

// EmergencyKind classifies the goal by its title.
func (g *Goal) EmergencyKind() (EmergencyType, bool) {
	return ClassifyEmergencyTitle(g.Title)
}

// IsEmergencyFund reports whether the goal is classified as an emergency fund.
func (g *Goal) IsEmergencyFund() bool {
	_, ok := g.EmergencyKind()
	return ok
}

var emergencyFundTitles = map[EmergencyType]string{
	EmergencyTypeMedical:    "Medical Emergency Fund",
	EmergencyTypeJobLoss:    "Job Loss Emergency Fund",
	EmergencyTypeHomeRepair: "Home Repair Emergency Fund",
	EmergencyTypeVehicle:    "Vehicle Repair Emergency Fund",
	EmergencyTypeGeneral:    "Emergency Fund",
}

// EmergencyFundTitle synthesizes a title that classifies back to the given
// type. Used by the emergency-fund creation flow.
func EmergencyFundTitle(kind EmergencyType) (string, error) {
	title, ok := emergencyFundTitles[kind]
	if !ok {
		return "", errors.New("unknown emergency fund type")
	}
	return title, nil
}
