package models

import "time"

const ResourceTable = "lib_resources"

// Resource condition states. Damaged and lost copies are not loanable.
const (
	ConditionGood         = "good"
	ConditionDeteriorated = "deteriorated"
	ConditionDamaged      = "damaged"
	ConditionLost         = "lost"
)

// Resource is the inventory unit (book, game, map). Invariant:
// 0 <= current_loans_count <= total_quantity, enforced in SQL by the
// conditional counter updates in db.Repo.
type Resource struct {
	ID    string `gorm:"type:uuid;primaryKey" json:"id"`
	Title string `gorm:"size:300;not null" json:"title"`
	// ISBN is optional (games and maps have none); uniqueness is enforced
	// by a partial index in db.Migrate so empty values never collide.
	ISBN string `gorm:"size:20" json:"isbn,omitempty"`

	TotalQuantity     int    `gorm:"not null;default:1" json:"totalQuantity"`
	CurrentLoansCount int    `gorm:"not null;default:0" json:"currentLoansCount"`
	Available         bool   `gorm:"not null;default:true" json:"available"` // administrative switch, independent of stock
	ConditionState    string `gorm:"size:20;not null;default:'good'" json:"conditionState"`

	// Append-only historical counters, never decremented.
	TotalLoans   int64      `gorm:"not null;default:0" json:"totalLoans"`
	LastLoanDate *time.Time `json:"lastLoanDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Resource) TableName() string { return ResourceTable }

// AvailableQuantity clamps at zero so counter drift never surfaces as a
// negative number.
func (r *Resource) AvailableQuantity() int {
	q := r.TotalQuantity - r.CurrentLoansCount
	if q < 0 {
		return 0
	}
	return q
}

// Loanable reports whether the resource may back a new loan at all,
// regardless of stock.
func (r *Resource) Loanable() bool {
	return r.Available && r.ConditionState != ConditionDamaged && r.ConditionState != ConditionLost
}
