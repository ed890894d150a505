package services

import (
	"context"
	"time"

	"school_library_backend/db"
	"school_library_backend/models"
)

// The services are written against these narrow views of *db.Repo so the
// clock-sensitive rules can be tested with in-memory fakes.

type PersonDirectory interface {
	FindPersonByID(ctx context.Context, id string) (*models.Person, error)
	// FindPersonType returns (nil, nil) when the type has no reference row.
	FindPersonType(ctx context.Context, name string) (*models.PersonType, error)
}

type LoanStore interface {
	CreateLoan(ctx context.Context, loan *models.Loan) error
	FindLoanByID(ctx context.Context, id string) (*models.Loan, error)
	UpdateLoan(ctx context.Context, id string, fields map[string]interface{}) error
	CountActiveLoans(ctx context.Context, personID string) (int64, error)
	ListActiveLoansByPerson(ctx context.Context, personID string) ([]models.Loan, error)
}

type InventoryStore interface {
	FindResourceByID(ctx context.Context, id string) (*models.Resource, error)
	GetStockInfo(ctx context.Context, id string) (*db.StockInfo, error)
	DecrementLoaned(ctx context.Context, id string, qty int) error
	SetAvailability(ctx context.Context, id string, available bool) error
	SetCondition(ctx context.Context, id string, condition string) error
}

type StatusRegistry interface {
	GetOrCreateStatus(ctx context.Context, name string) (*models.LoanStatus, error)
}

type OverdueStore interface {
	MarkLoansOverdue(ctx context.Context, now time.Time) (int64, error)
	ListOverdueDetailed(ctx context.Context, now time.Time) ([]db.OverdueRow, error)
	ListLoansDueWithin(ctx context.Context, now, until time.Time) ([]models.Loan, error)
}
