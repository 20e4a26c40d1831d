package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyInterestBurn(t *testing.T) {
	loan := Loan{
		OutstandingAmount: decimal.NewFromInt(600000),
		InterestRate:      decimal.NewFromInt(12), // 12% annual
	}

	// 600000 × 12% / 12 months = 6000 per month.
	assert.True(t, loan.MonthlyInterestBurn().Equal(decimal.NewFromInt(6000)),
		"got %s", loan.MonthlyInterestBurn())
}

func TestMonthlyInterestBurn_ZeroOutstanding(t *testing.T) {
	loan := Loan{
		OutstandingAmount: decimal.Zero,
		InterestRate:      decimal.NewFromInt(10),
	}
	assert.True(t, loan.MonthlyInterestBurn().IsZero())
}

func TestLoanValidate(t *testing.T) {
	valid := Loan{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		Name:              "Home Loan",
		Lender:            "HDFC",
		OutstandingAmount: decimal.NewFromInt(2500000),
		InterestRate:      decimal.NewFromFloat(8.5),
		EMIAmount:         decimal.NewFromInt(25000),
		Status:            LoanStatusActive,
	}
	assert.NoError(t, valid.Validate())

	noUser := valid
	noUser.UserID = uuid.Nil
	assert.Error(t, noUser.Validate())

	noName := valid
	noName.Name = ""
	assert.Error(t, noName.Validate())

	negativeOutstanding := valid
	negativeOutstanding.OutstandingAmount = decimal.NewFromInt(-1)
	assert.Error(t, negativeOutstanding.Validate())

	negativeRate := valid
	negativeRate.InterestRate = decimal.NewFromInt(-1)
	assert.Error(t, negativeRate.Validate())

	badStatus := valid
	badStatus.Status = "defaulted"
	assert.Error(t, badStatus.Validate())
}
