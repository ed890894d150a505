package db

import (
	"context"
	"errors"

	"school_library_backend/models"

	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Sentinel errors callers branch on. Anything else is a store failure.
var (
	ErrPersonNotFound      = errors.New("person not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrResourceUnavailable = errors.New("resource not available")
	ErrShrinkBelowLoaned   = errors.New("total quantity below loaned count")
)

// Persons (read-only dependency of the loan core)

func (r *Repo) CreatePerson(ctx context.Context, p *models.Person) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) FindPersonByID(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindPersonType returns (nil, nil) when the type has no reference row; a
// missing row is not an error, the person just has no extra restriction.
func (r *Repo) FindPersonType(ctx context.Context, name string) (*models.PersonType, error) {
	var t models.PersonType
	if err := r.DB.WithContext(ctx).First(&t, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListPersons(ctx context.Context) ([]models.Person, error) {
	var ps []models.Person
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&ps).Error
	return ps, err
}
