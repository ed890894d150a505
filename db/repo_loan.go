package db

import (
	"context"
	"errors"
	"time"

	"school_library_backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateLoan writes the loan and claims its stock in one transaction: the
// resource row is locked, the counter update carries its own stock guard, and
// the insert only happens if the guard passed. Two concurrent requests for
// the last unit cannot both succeed.
func (r *Repo) CreateLoan(ctx context.Context, loan *models.Loan) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.Resource
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&res, "id = ?", loan.ResourceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrResourceNotFound
			}
			return err
		}
		if !res.Loanable() {
			return ErrResourceUnavailable
		}
		ok, err := incrementLoaned(tx, loan.ResourceID, loan.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientStock
		}
		return tx.Create(loan).Error
	})
}

func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &l, nil
}

// UpdateLoan applies partial field updates; lifecycle transitions go through
// here so UpdatedAt always moves.
func (r *Repo) UpdateLoan(ctx context.Context, id string, fields map[string]interface{}) error {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLoanNotFound
	}
	return nil
}

func (r *Repo) CountActiveLoans(ctx context.Context, personID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("person_id = ? AND returned_date IS NULL", personID).
		Count(&n).Error
	return n, err
}

func (r *Repo) ListActiveLoansByPerson(ctx context.Context, personID string) ([]models.Loan, error) {
	var ls []models.Loan
	err := r.DB.WithContext(ctx).
		Where("person_id = ? AND returned_date IS NULL", personID).
		Order("due_date ASC").
		Find(&ls).Error
	return ls, err
}

// LoanRow is the person-enriched listing view; the joined name/type are
// presentation, the foreign keys stay the truth.
type LoanRow struct {
	models.Loan
	PersonName string `json:"personName"`
	PersonType string `json:"personType"`
}

type LoanQuery struct {
	PersonID   string
	ResourceID string
	Status     string // "", "active", "returned", "overdue", "lost", "outstanding"
}

func (r *Repo) ListLoans(ctx context.Context, q LoanQuery) ([]LoanRow, error) {
	qry := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select("l.*, p.name AS person_name, p.person_type").
		Joins("LEFT JOIN "+models.PersonTable+" p ON p.id = l.person_id").
		Order("l.loan_date DESC")

	if q.PersonID != "" {
		qry = qry.Where("l.person_id = ?", q.PersonID)
	}
	if q.ResourceID != "" {
		qry = qry.Where("l.resource_id = ?", q.ResourceID)
	}
	switch q.Status {
	case "":
		// all
	case "outstanding":
		qry = qry.Where("l.returned_date IS NULL")
	default:
		qry = qry.Where("l.status = ?", q.Status)
	}

	var rows []LoanRow
	if err := qry.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkLoansOverdue bulk-promotes outstanding past-due loans. Idempotent: the
// status filter makes a second run a no-op.
func (r *Repo) MarkLoansOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("returned_date IS NULL AND due_date < ? AND status <> ?", now, models.StatusOverdue).
		Update("status", models.StatusOverdue)
	return res.RowsAffected, res.Error
}

// OverdueRow feeds the sweeper statistics; ordered oldest-due first.
type OverdueRow struct {
	models.Loan
	PersonName string `json:"personName"`
	PersonType string `json:"personType"`
}

func (r *Repo) ListOverdueDetailed(ctx context.Context, now time.Time) ([]OverdueRow, error) {
	var rows []OverdueRow
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select("l.*, p.name AS person_name, p.person_type").
		Joins("LEFT JOIN "+models.PersonTable+" p ON p.id = l.person_id").
		Where("l.returned_date IS NULL AND l.due_date < ?", now).
		Order("l.due_date ASC").
		Scan(&rows).Error
	return rows, err
}

// ListLoansDueWithin is the early-warning query: outstanding, not yet
// overdue, due inside (now, now+window].
func (r *Repo) ListLoansDueWithin(ctx context.Context, now, until time.Time) ([]models.Loan, error) {
	var ls []models.Loan
	err := r.DB.WithContext(ctx).
		Where("returned_date IS NULL AND status <> ? AND due_date > ? AND due_date <= ?",
			models.StatusOverdue, now, until).
		Order("due_date ASC").
		Find(&ls).Error
	return ls, err
}
