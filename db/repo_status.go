package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"school_library_backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureSeededStatuses inserts any missing canonical status rows. Run once at
// startup; existing rows keep whatever description/color they have.
func (r *Repo) EnsureSeededStatuses(ctx context.Context) error {
	for _, s := range models.CanonicalStatuses() {
		st := s
		if err := r.DB.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&st).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreateStatus is the self-healing fallback for the write paths: if a
// canonical row vanished after seeding it is recreated on access. Unknown
// names are rejected, the vocabulary is fixed.
func (r *Repo) GetOrCreateStatus(ctx context.Context, name string) (*models.LoanStatus, error) {
	var st models.LoanStatus
	err := r.DB.WithContext(ctx).First(&st, "name = ?", name).Error
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var canonical *models.LoanStatus
	for _, c := range models.CanonicalStatuses() {
		if c.Name == name {
			cc := c
			canonical = &cc
			break
		}
	}
	if canonical == nil {
		return nil, fmt.Errorf("unknown loan status %q", name)
	}

	log.Printf("[status] recreating missing loan status %q", name)
	if err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(canonical).Error; err != nil {
		return nil, err
	}
	return canonical, nil
}
