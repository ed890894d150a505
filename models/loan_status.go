package models

import "time"

const LoanStatusTable = "lib_loan_statuses"

const (
	StatusActive   = "active"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"
	StatusLost     = "lost"
)

// LoanStatus is a fixed vocabulary row. The canonical set below is seeded at
// startup and self-healed on the write paths if a row goes missing.
type LoanStatus struct {
	Name        string `gorm:"size:20;primaryKey" json:"name"`
	Description string `gorm:"size:200;not null" json:"description"`
	Color       string `gorm:"size:10;not null" json:"color"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LoanStatus) TableName() string { return LoanStatusTable }

func CanonicalStatuses() []LoanStatus {
	return []LoanStatus{
		{Name: StatusActive, Description: "Loan in progress", Color: "#2e7d32"},
		{Name: StatusReturned, Description: "Returned to the library", Color: "#1565c0"},
		{Name: StatusOverdue, Description: "Past its due date", Color: "#ef6c00"},
		{Name: StatusLost, Description: "Reported lost", Color: "#c62828"},
	}
}
