package services

import (
	"context"
	"log"
	"time"

	"school_library_backend/config"
	"school_library_backend/db"
	"school_library_backend/models"
)

// EligibilityEngine decides whether a person may receive a new loan. Checks
// run in a fixed order and the first failure wins.
type EligibilityEngine struct {
	persons   PersonDirectory
	loans     LoanStore
	inventory InventoryStore
	policy    config.Policy

	// Now is the clock; tests override it.
	Now func() time.Time
}

func NewEligibilityEngine(persons PersonDirectory, loans LoanStore, inventory InventoryStore, policy config.Policy) *EligibilityEngine {
	return &EligibilityEngine{
		persons:   persons,
		loans:     loans,
		inventory: inventory,
		policy:    policy,
		Now:       time.Now,
	}
}

// Validate runs the full check chain for a prospective loan. A nil return
// means the request may proceed to the lifecycle service; the stock guard is
// re-applied atomically there, so a pass here is advisory under concurrency.
func (e *EligibilityEngine) Validate(ctx context.Context, personID, resourceID string, quantity int) error {
	// 1) parameter sanity
	if quantity < e.policy.MinQuantity {
		return validationErr("INVALID_QUANTITY", "quantity must be at least %d", e.policy.MinQuantity)
	}
	if quantity > e.policy.AbsoluteMaxQuantity {
		return validationErr("INVALID_QUANTITY", "quantity exceeds the maximum of %d per request", e.policy.AbsoluteMaxQuantity)
	}

	// 2) person
	person, err := e.persons.FindPersonByID(ctx, personID)
	if err != nil {
		if err == db.ErrPersonNotFound {
			return validationErr("PERSON_NOT_FOUND", "person %s does not exist", personID)
		}
		return err
	}
	if !person.Active {
		return validationErr("PERSON_INACTIVE", "person %s is not active", personID)
	}
	ptype, err := e.persons.FindPersonType(ctx, person.PersonType)
	if err != nil {
		return err
	}
	if ptype != nil && !ptype.Active {
		return validationErr("PERSON_TYPE_INACTIVE", "person type %q is not active", person.PersonType)
	}

	// 3) resource
	resource, err := e.inventory.FindResourceByID(ctx, resourceID)
	if err != nil {
		if err == db.ErrResourceNotFound {
			return validationErr("RESOURCE_NOT_FOUND", "resource %s does not exist", resourceID)
		}
		return err
	}
	if !resource.Available {
		return validationErr("RESOURCE_UNAVAILABLE", "resource %q is not available for lending", resource.Title)
	}
	if resource.ConditionState == models.ConditionDamaged || resource.ConditionState == models.ConditionLost {
		return validationErr("RESOURCE_CONDITION", "resource %q is %s and cannot be loaned", resource.Title, resource.ConditionState)
	}

	// 4) stock
	if avail := resource.AvailableQuantity(); avail < quantity {
		return validationErr("INSUFFICIENT_STOCK", "only %d of %d requested units available", avail, quantity)
	}

	// 5) per-type quantity policy
	if max := e.typeQuantityCap(person.PersonType, resource.AvailableQuantity()); quantity > max {
		return validationErr("QUANTITY_POLICY", "person type %q may borrow at most %d unit(s) per request", person.PersonType, max)
	}

	// 6) active-loan limit
	active, err := e.loans.CountActiveLoans(ctx, personID)
	if err != nil {
		return err
	}
	if active >= int64(e.policy.MaxLoansPerPerson) {
		return validationErr("LOAN_LIMIT", "person already has %d outstanding loans (limit %d)", active, e.policy.MaxLoansPerPerson)
	}

	// 7) overdue block
	overdue, err := e.countOverdue(ctx, personID, "")
	if err != nil {
		return err
	}
	if overdue > 0 {
		return validationErr("OVERDUE_BLOCK", "person has %d overdue loan(s); return them before borrowing again", overdue)
	}

	return nil
}

// typeQuantityCap: students one unit, teachers bounded by stock only,
// everyone else by the general cap.
func (e *EligibilityEngine) typeQuantityCap(personType string, availableQuantity int) int {
	switch personType {
	case models.PersonTypeStudent:
		return e.policy.MaxQuantityStudent
	case models.PersonTypeTeacher:
		return availableQuantity
	default:
		return e.policy.MaxQuantityDefault
	}
}

func (e *EligibilityEngine) countOverdue(ctx context.Context, personID, excludeLoanID string) (int, error) {
	loans, err := e.loans.ListActiveLoansByPerson(ctx, personID)
	if err != nil {
		return 0, err
	}
	now := e.Now()
	n := 0
	for i := range loans {
		if loans[i].ID == excludeLoanID {
			continue
		}
		if loans[i].IsOverdue(now) {
			n++
		}
	}
	return n, nil
}

// BorrowEligibility is the advisory answer for UI gating.
type BorrowEligibility struct {
	CanBorrow    bool   `json:"canBorrow"`
	Reason       string `json:"reason,omitempty"`
	ActiveLoans  int64  `json:"activeLoans"`
	OverdueLoans int    `json:"overdueLoans"`
}

// CanPersonBorrow never returns an error: on any internal failure it degrades
// to canBorrow=false so a broken backend cannot grant eligibility.
func (e *EligibilityEngine) CanPersonBorrow(ctx context.Context, personID string) BorrowEligibility {
	person, err := e.persons.FindPersonByID(ctx, personID)
	if err != nil {
		if err != db.ErrPersonNotFound {
			log.Printf("[eligibility] lookup failed for person %s: %v", personID, err)
		}
		return BorrowEligibility{CanBorrow: false, Reason: "person not found or unavailable"}
	}
	if !person.Active {
		return BorrowEligibility{CanBorrow: false, Reason: "person is not active"}
	}

	active, err := e.loans.CountActiveLoans(ctx, personID)
	if err != nil {
		log.Printf("[eligibility] active-loan count failed for person %s: %v", personID, err)
		return BorrowEligibility{CanBorrow: false, Reason: "eligibility could not be determined"}
	}
	overdue, err := e.countOverdue(ctx, personID, "")
	if err != nil {
		log.Printf("[eligibility] overdue count failed for person %s: %v", personID, err)
		return BorrowEligibility{CanBorrow: false, Reason: "eligibility could not be determined", ActiveLoans: active}
	}

	out := BorrowEligibility{ActiveLoans: active, OverdueLoans: overdue}
	switch {
	case overdue > 0:
		out.Reason = "person has overdue loans"
	case active >= int64(e.policy.MaxLoansPerPerson):
		out.Reason = "active-loan limit reached"
	default:
		out.CanBorrow = true
	}
	return out
}

// GetResourceAvailabilityInfo is a read-through to the inventory store.
func (e *EligibilityEngine) GetResourceAvailabilityInfo(ctx context.Context, resourceID string) (*db.StockInfo, error) {
	return e.inventory.GetStockInfo(ctx, resourceID)
}

// GetMaxQuantityForPerson combines type policy and live stock into the
// largest request this person could make right now. Zero when the person or
// resource cannot support a loan at all.
func (e *EligibilityEngine) GetMaxQuantityForPerson(ctx context.Context, personID, resourceID string) (int, error) {
	person, err := e.persons.FindPersonByID(ctx, personID)
	if err != nil {
		return 0, err
	}
	if !person.Active {
		return 0, nil
	}
	resource, err := e.inventory.FindResourceByID(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	if !resource.Loanable() {
		return 0, nil
	}
	avail := resource.AvailableQuantity()
	limit := e.typeQuantityCap(person.PersonType, avail)
	if limit > avail {
		limit = avail
	}
	return limit, nil
}
