package models

import (
	"math"
	"time"
)

const LoanTable = "lib_loans"

// Loan records one lending transaction of Quantity units. Terminal statuses
// (returned, lost) set ReturnedDate and are never left again; loans are not
// deleted in normal operation.
type Loan struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	PersonID   string `gorm:"type:uuid;index;not null" json:"personId"`
	ResourceID string `gorm:"type:uuid;index;not null" json:"resourceId"`
	Quantity   int    `gorm:"not null;default:1" json:"quantity"`

	LoanDate     time.Time  `gorm:"index;not null" json:"loanDate"`
	DueDate      time.Time  `gorm:"index;not null" json:"dueDate"`
	ReturnedDate *time.Time `gorm:"index" json:"returnedDate,omitempty"`
	Status       string     `gorm:"size:20;index;not null;default:'active'" json:"status"`

	// Observations is append-only: return, loss and renewal events add
	// tagged notes, nothing overwrites earlier ones.
	Observations string `gorm:"type:text" json:"observations,omitempty"`

	LoanedBy   string     `gorm:"type:uuid" json:"loanedBy"`
	ReturnedBy *string    `gorm:"type:uuid" json:"returnedBy,omitempty"`
	RenewedBy  *string    `gorm:"type:uuid" json:"renewedBy,omitempty"`
	RenewedAt  *time.Time `json:"renewedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

// Outstanding reports whether the units are still out.
func (l *Loan) Outstanding() bool { return l.ReturnedDate == nil }

// Terminal reports whether the loan reached a final status.
func (l *Loan) Terminal() bool {
	return l.Status == StatusReturned || l.Status == StatusLost
}

// IsOverdue is derived, never stored: outstanding and past due at the given
// instant.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.ReturnedDate == nil && now.After(l.DueDate)
}

// DaysOverdue counts whole late days, rounded up. For returned loans the
// return date is the reference instant, otherwise now.
func (l *Loan) DaysOverdue(now time.Time) int {
	ref := now
	if l.ReturnedDate != nil {
		ref = *l.ReturnedDate
	}
	return lateDays(l.DueDate, ref)
}

func lateDays(due, ref time.Time) int {
	if !ref.After(due) {
		return 0
	}
	return int(math.Ceil(ref.Sub(due).Hours() / 24))
}
