package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"school_library_backend/models"

	"gorm.io/gorm"
)

// StockInfo is the read view of a resource's counters.
type StockInfo struct {
	ResourceID        string `json:"resourceId"`
	TotalQuantity     int    `json:"totalQuantity"`
	CurrentLoansCount int    `json:"currentLoansCount"`
	AvailableQuantity int    `json:"availableQuantity"`
	Available         bool   `json:"available"`
	ConditionState    string `json:"conditionState"`
	HasStock          bool   `json:"hasStock"`
}

func (r *Repo) CreateResource(ctx context.Context, res *models.Resource) error {
	return r.DB.WithContext(ctx).Create(res).Error
}

func (r *Repo) FindResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	var res models.Resource
	if err := r.DB.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *Repo) FindResourceByISBN(ctx context.Context, isbn string) (*models.Resource, error) {
	var res models.Resource
	if err := r.DB.WithContext(ctx).First(&res, "isbn = ?", isbn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return &res, nil
}

func (r *Repo) ListResources(ctx context.Context) ([]models.Resource, error) {
	var rs []models.Resource
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&rs).Error
	return rs, err
}

func (r *Repo) GetStockInfo(ctx context.Context, id string) (*StockInfo, error) {
	res, err := r.FindResourceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	avail := res.AvailableQuantity()
	return &StockInfo{
		ResourceID:        res.ID,
		TotalQuantity:     res.TotalQuantity,
		CurrentLoansCount: res.CurrentLoansCount,
		AvailableQuantity: avail,
		Available:         res.Available,
		ConditionState:    res.ConditionState,
		HasStock:          res.Available && avail > 0,
	}, nil
}

// incrementLoaned adds qty to the loaned counter in one conditional UPDATE,
// so it can never push the counter past total_quantity. Only CreateLoan calls
// it, inside the same transaction as the loan insert. Returns false when the
// guard rejects the update (no stock, or resource gone).
func incrementLoaned(tx *gorm.DB, id string, qty int) (bool, error) {
	res := tx.Model(&models.Resource{}).
		Where("id = ? AND current_loans_count + ? <= total_quantity", id, qty).
		Updates(map[string]interface{}{
			"current_loans_count": gorm.Expr("current_loans_count + ?", qty),
			"total_loans":         gorm.Expr("total_loans + ?", qty),
			"last_loan_date":      gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementLoaned subtracts qty, clamped at zero. An underflow means the
// counter had drifted; it is corrected to zero and logged, not errored.
func (r *Repo) DecrementLoaned(ctx context.Context, id string, qty int) error {
	res := r.DB.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND current_loans_count >= ?", id, qty).
		Update("current_loans_count", gorm.Expr("current_loans_count - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// zero rows is either a missing resource or an underflow; only the
		// latter gets the drift correction
		if _, err := r.FindResourceByID(ctx, id); err != nil {
			return err
		}
		log.Printf("[inventory] decrement of %d would underflow resource %s, resetting counter to 0", qty, id)
		return r.DB.WithContext(ctx).Model(&models.Resource{}).
			Where("id = ?", id).
			Update("current_loans_count", 0).Error
	}
	return nil
}

// SetAvailability flips the administrative switch; it says nothing about
// stock.
func (r *Repo) SetAvailability(ctx context.Context, id string, available bool) error {
	res := r.DB.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ?", id).
		Update("available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func (r *Repo) SetCondition(ctx context.Context, id string, condition string) error {
	res := r.DB.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ?", id).
		Update("condition_state", condition)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrResourceNotFound
	}
	return nil
}

// UpdateTotalQuantity rejects shrinking below what is already out on loan.
func (r *Repo) UpdateTotalQuantity(ctx context.Context, id string, newTotal int) error {
	if newTotal < 1 {
		return fmt.Errorf("total quantity must be at least 1")
	}
	res := r.DB.WithContext(ctx).Model(&models.Resource{}).
		Where("id = ? AND current_loans_count <= ?", id, newTotal).
		Update("total_quantity", newTotal)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindResourceByID(ctx, id); err != nil {
			return err
		}
		return ErrShrinkBelowLoaned
	}
	return nil
}

// SyncLoanCounts recomputes current_loans_count from the outstanding loans,
// the reconciliation pass that corrects any tolerated drift. Returns the
// number of resources corrected.
func (r *Repo) SyncLoanCounts(ctx context.Context) (int64, error) {
	q := fmt.Sprintf(`
	  UPDATE %s res
	  SET current_loans_count = LEAST(res.total_quantity, (
	    SELECT COALESCE(SUM(l.quantity), 0)
	    FROM %s l
	    WHERE l.resource_id = res.id AND l.returned_date IS NULL
	  ))
	  WHERE res.current_loans_count <> LEAST(res.total_quantity, (
	    SELECT COALESCE(SUM(l.quantity), 0)
	    FROM %s l
	    WHERE l.resource_id = res.id AND l.returned_date IS NULL
	  ))
	`, models.ResourceTable, models.LoanTable, models.LoanTable)

	res := r.DB.WithContext(ctx).Exec(q)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[inventory] reconciliation corrected %d resource counters", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
