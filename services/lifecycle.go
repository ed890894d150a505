package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"school_library_backend/config"
	"school_library_backend/db"
	"school_library_backend/models"

	"github.com/google/uuid"
)

// LoanLifecycleService owns the loan state machine:
// (none) -> active -> {returned | lost}, with active -> active under Renew.
type LoanLifecycleService struct {
	eligibility *EligibilityEngine
	loans       LoanStore
	inventory   InventoryStore
	statuses    StatusRegistry
	policy      config.Policy

	Now func() time.Time
}

func NewLoanLifecycleService(eligibility *EligibilityEngine, loans LoanStore, inventory InventoryStore, statuses StatusRegistry, policy config.Policy) *LoanLifecycleService {
	return &LoanLifecycleService{
		eligibility: eligibility,
		loans:       loans,
		inventory:   inventory,
		statuses:    statuses,
		policy:      policy,
		Now:         time.Now,
	}
}

type CreateLoanInput struct {
	PersonID     string
	ResourceID   string
	Quantity     int
	Observations string
	ActorID      string
}

// Create validates eligibility, then persists the loan and claims stock in a
// single store transaction.
func (s *LoanLifecycleService) Create(ctx context.Context, in CreateLoanInput) (*models.Loan, error) {
	if err := s.eligibility.Validate(ctx, in.PersonID, in.ResourceID, in.Quantity); err != nil {
		return nil, err
	}
	if _, err := s.statuses.GetOrCreateStatus(ctx, models.StatusActive); err != nil {
		return nil, err
	}

	now := s.Now()
	loan := &models.Loan{
		ID:           uuid.NewString(),
		PersonID:     in.PersonID,
		ResourceID:   in.ResourceID,
		Quantity:     in.Quantity,
		LoanDate:     now,
		DueDate:      now.AddDate(0, 0, s.policy.LoanDays),
		Status:       models.StatusActive,
		Observations: strings.TrimSpace(in.Observations),
		LoanedBy:     in.ActorID,
	}
	if err := s.loans.CreateLoan(ctx, loan); err != nil {
		switch err {
		case db.ErrInsufficientStock:
			return nil, validationErr("INSUFFICIENT_STOCK", "stock was claimed by a concurrent loan, none left")
		case db.ErrResourceUnavailable:
			return nil, validationErr("RESOURCE_UNAVAILABLE", "resource is no longer available for lending")
		case db.ErrResourceNotFound:
			return nil, validationErr("RESOURCE_NOT_FOUND", "resource %s does not exist", in.ResourceID)
		}
		return nil, err
	}
	return loan, nil
}

// Renew extends the due date of an active loan. The loan being renewed is
// excluded from the overdue block, any other overdue loan still blocks.
func (s *LoanLifecycleService) Renew(ctx context.Context, loanID string, additionalDays int, actorID string) (*models.Loan, error) {
	if additionalDays < s.policy.MinRenewalDays || additionalDays > s.policy.MaxRenewalDays {
		return nil, validationErr("INVALID_RENEWAL", "renewal must be between %d and %d days", s.policy.MinRenewalDays, s.policy.MaxRenewalDays)
	}

	loan, err := s.loans.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.StatusActive && loan.Status != models.StatusOverdue {
		return nil, conflictErr("loan %s is %s and cannot be renewed", loanID, loan.Status)
	}
	if loan.ReturnedDate != nil {
		return nil, conflictErr("loan %s is already closed", loanID)
	}

	otherOverdue, err := s.eligibility.countOverdue(ctx, loan.PersonID, loan.ID)
	if err != nil {
		return nil, err
	}
	if otherOverdue > 0 {
		return nil, validationErr("OVERDUE_BLOCK", "person has %d other overdue loan(s); renewal refused", otherOverdue)
	}

	now := s.Now()
	newDue := loan.DueDate.AddDate(0, 0, additionalDays)
	note := fmt.Sprintf("[RENOVACIÓN] %s: +%d day(s), new due date %s",
		now.Format("2006-01-02"), additionalDays, newDue.Format("2006-01-02"))
	obs := appendObservation(loan.Observations, note)

	fields := map[string]interface{}{
		"due_date":     newDue,
		"observations": obs,
		"renewed_by":   actorID,
		"renewed_at":   now,
		"status":       models.StatusActive,
	}
	if err := s.loans.UpdateLoan(ctx, loan.ID, fields); err != nil {
		return nil, err
	}

	loan.DueDate = newDue
	loan.Observations = obs
	loan.RenewedBy = &actorID
	loan.RenewedAt = &now
	loan.Status = models.StatusActive
	return loan, nil
}

type ReturnInput struct {
	LoanID            string
	ReturnDate        *time.Time // defaults to now
	ResourceCondition string     // optional; "lost"/"damaged" disable the resource
	Observations      string
	ActorID           string
}

type ReturnSummary struct {
	Loan        *models.Loan `json:"loan"`
	WasOverdue  bool         `json:"wasOverdue"`
	DaysOverdue int          `json:"daysOverdue"`
	Penalty     string       `json:"penalty,omitempty"`
}

// ProcessReturn closes a loan. The loan record is authoritative: if the stock
// decrement fails afterwards the return still stands, the drift is logged and
// left to the reconciliation pass.
func (s *LoanLifecycleService) ProcessReturn(ctx context.Context, in ReturnInput) (*ReturnSummary, error) {
	loan, err := s.loans.FindLoanByID(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.Terminal() || loan.ReturnedDate != nil {
		return nil, conflictErr("loan %s is already %s", in.LoanID, loan.Status)
	}

	returnDate := s.Now()
	if in.ReturnDate != nil {
		returnDate = *in.ReturnDate
	}
	daysOverdue := loan.DaysOverdue(returnDate)

	if _, err := s.statuses.GetOrCreateStatus(ctx, models.StatusReturned); err != nil {
		return nil, err
	}

	note := fmt.Sprintf("[DEVOLUCIÓN] %s", returnDate.Format("2006-01-02"))
	if in.ResourceCondition != "" {
		note += " condition: " + in.ResourceCondition
	}
	if daysOverdue > 0 {
		note += fmt.Sprintf(" (%d day(s) late)", daysOverdue)
	}
	if obs := strings.TrimSpace(in.Observations); obs != "" {
		note += " " + obs
	}

	fields := map[string]interface{}{
		"status":        models.StatusReturned,
		"returned_date": returnDate,
		"returned_by":   in.ActorID,
		"observations":  appendObservation(loan.Observations, note),
	}
	if err := s.loans.UpdateLoan(ctx, loan.ID, fields); err != nil {
		return nil, err
	}

	// Lost copies never come back to stock; everything else frees its units.
	if in.ResourceCondition != models.ConditionLost {
		if err := s.inventory.DecrementLoaned(ctx, loan.ResourceID, loan.Quantity); err != nil {
			log.Printf("[lifecycle] stock decrement failed for resource %s after return of loan %s: %v",
				loan.ResourceID, loan.ID, err)
		}
	}
	if in.ResourceCondition != "" {
		s.applyReturnCondition(ctx, loan.ResourceID, in.ResourceCondition)
	}

	loan.Status = models.StatusReturned
	loan.ReturnedDate = &returnDate
	loan.ReturnedBy = &in.ActorID
	loan.Observations = fields["observations"].(string)

	summary := &ReturnSummary{
		Loan:        loan,
		WasOverdue:  daysOverdue > 0,
		DaysOverdue: daysOverdue,
	}
	if daysOverdue > 0 {
		summary.Penalty = fmt.Sprintf("returned %d day(s) late", daysOverdue)
	}
	return summary, nil
}

func (s *LoanLifecycleService) applyReturnCondition(ctx context.Context, resourceID, condition string) {
	if err := s.inventory.SetCondition(ctx, resourceID, condition); err != nil {
		log.Printf("[lifecycle] condition update failed for resource %s: %v", resourceID, err)
	}
	available := condition != models.ConditionLost && condition != models.ConditionDamaged
	if err := s.inventory.SetAvailability(ctx, resourceID, available); err != nil {
		log.Printf("[lifecycle] availability update failed for resource %s: %v", resourceID, err)
	}
}

type LostInput struct {
	LoanID       string
	Observations string // required, bounded
	ActorID      string
}

// MarkAsLost closes the loan and takes the unit out of circulation: the
// loaned counter is decremented (the copy is gone, not outstanding) and the
// resource is disabled with condition=lost. TotalQuantity is untouched, that
// is an inventory-audit concern.
func (s *LoanLifecycleService) MarkAsLost(ctx context.Context, in LostInput) (*models.Loan, error) {
	obs := strings.TrimSpace(in.Observations)
	if obs == "" {
		return nil, validationErr("OBSERVATIONS_REQUIRED", "loss observations are required")
	}
	if len(obs) > s.policy.MaxLostNoteLength {
		return nil, validationErr("OBSERVATIONS_TOO_LONG", "loss observations exceed %d characters", s.policy.MaxLostNoteLength)
	}

	loan, err := s.loans.FindLoanByID(ctx, in.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.Terminal() || loan.ReturnedDate != nil {
		return nil, conflictErr("loan %s is already %s", in.LoanID, loan.Status)
	}

	if _, err := s.statuses.GetOrCreateStatus(ctx, models.StatusLost); err != nil {
		return nil, err
	}

	now := s.Now()
	note := fmt.Sprintf("[PÉRDIDA] %s %s", now.Format("2006-01-02"), obs)
	fields := map[string]interface{}{
		"status":        models.StatusLost,
		"returned_date": now,
		"returned_by":   in.ActorID,
		"observations":  appendObservation(loan.Observations, note),
	}
	if err := s.loans.UpdateLoan(ctx, loan.ID, fields); err != nil {
		return nil, err
	}

	if err := s.inventory.DecrementLoaned(ctx, loan.ResourceID, loan.Quantity); err != nil {
		log.Printf("[lifecycle] stock decrement failed for resource %s after loss of loan %s: %v",
			loan.ResourceID, loan.ID, err)
	}
	if err := s.inventory.SetCondition(ctx, loan.ResourceID, models.ConditionLost); err != nil {
		log.Printf("[lifecycle] condition update failed for resource %s: %v", loan.ResourceID, err)
	}
	if err := s.inventory.SetAvailability(ctx, loan.ResourceID, false); err != nil {
		log.Printf("[lifecycle] availability update failed for resource %s: %v", loan.ResourceID, err)
	}

	loan.Status = models.StatusLost
	loan.ReturnedDate = &now
	loan.ReturnedBy = &in.ActorID
	loan.Observations = fields["observations"].(string)
	return loan, nil
}

type BatchReturnResult struct {
	LoanID  string         `json:"loanId"`
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Summary *ReturnSummary `json:"summary,omitempty"`
}

// ProcessBatchReturns applies ProcessReturn per item; one failure never
// aborts the siblings.
func (s *LoanLifecycleService) ProcessBatchReturns(ctx context.Context, items []ReturnInput, actorID string) []BatchReturnResult {
	results := make([]BatchReturnResult, 0, len(items))
	for _, item := range items {
		item.ActorID = actorID
		summary, err := s.ProcessReturn(ctx, item)
		if err != nil {
			results = append(results, BatchReturnResult{LoanID: item.LoanID, Error: err.Error()})
			continue
		}
		results = append(results, BatchReturnResult{LoanID: item.LoanID, Success: true, Summary: summary})
	}
	return results
}

func appendObservation(existing, note string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
