package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoanIsOverdue(t *testing.T) {
	due := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	loan := Loan{DueDate: due}

	assert.False(t, loan.IsOverdue(due.Add(-time.Hour)))
	assert.False(t, loan.IsOverdue(due)) // due instant itself is not overdue
	assert.True(t, loan.IsOverdue(due.Add(time.Hour)))

	// a returned loan is never overdue
	rd := due.Add(48 * time.Hour)
	loan.ReturnedDate = &rd
	assert.False(t, loan.IsOverdue(due.Add(72*time.Hour)))
}

func TestLoanDaysOverdue(t *testing.T) {
	due := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	loan := Loan{DueDate: due}

	assert.Equal(t, 0, loan.DaysOverdue(due.Add(-time.Hour)))
	assert.Equal(t, 0, loan.DaysOverdue(due))
	assert.Equal(t, 1, loan.DaysOverdue(due.Add(time.Hour))) // partial days round up
	assert.Equal(t, 1, loan.DaysOverdue(due.Add(24*time.Hour)))
	assert.Equal(t, 2, loan.DaysOverdue(due.Add(25*time.Hour)))

	// once returned, the return date is the reference, not now
	rd := due.Add(3 * 24 * time.Hour)
	loan.ReturnedDate = &rd
	assert.Equal(t, 3, loan.DaysOverdue(due.Add(100*24*time.Hour)))
}

func TestLoanStateHelpers(t *testing.T) {
	loan := Loan{Status: StatusActive}
	assert.True(t, loan.Outstanding())
	assert.False(t, loan.Terminal())

	now := time.Now()
	loan.ReturnedDate = &now
	loan.Status = StatusReturned
	assert.False(t, loan.Outstanding())
	assert.True(t, loan.Terminal())

	loan.Status = StatusLost
	assert.True(t, loan.Terminal())

	loan.Status = StatusOverdue
	loan.ReturnedDate = nil
	assert.True(t, loan.Outstanding())
	assert.False(t, loan.Terminal())
}

func TestResourceAvailableQuantity(t *testing.T) {
	r := Resource{TotalQuantity: 5, CurrentLoansCount: 2}
	assert.Equal(t, 3, r.AvailableQuantity())

	// defensive clamp against counter drift
	r.CurrentLoansCount = 7
	assert.Equal(t, 0, r.AvailableQuantity())
}

func TestResourceLoanableConditionAndAvailability(t *testing.T) {
	r := Resource{Available: true, ConditionState: ConditionGood}
	assert.True(t, r.Loanable())

	r.ConditionState = ConditionDeteriorated
	assert.True(t, r.Loanable())

	r.ConditionState = ConditionDamaged
	assert.False(t, r.Loanable())

	r.ConditionState = ConditionGood
	r.Available = false
	assert.False(t, r.Loanable())
}
