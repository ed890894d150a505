package services

import (
	"context"
	"time"

	"school_library_backend/db"
	"school_library_backend/models"
)

// Severity buckets by days overdue.
const (
	SeverityLow      = "low"      // <= 7
	SeverityMedium   = "medium"   // <= 15
	SeverityHigh     = "high"     // <= 30
	SeverityCritical = "critical" // > 30
)

// OverdueSweeper promotes past-due loans and reports on them. It has no
// timer of its own: the sweep endpoint (or the optional cron job) triggers it.
type OverdueSweeper struct {
	loans OverdueStore

	Now func() time.Time
}

func NewOverdueSweeper(loans OverdueStore) *OverdueSweeper {
	return &OverdueSweeper{loans: loans, Now: time.Now}
}

// Sweep bulk-transitions outstanding past-due loans to overdue. Idempotent:
// a second run with no newly-due loans updates nothing.
func (s *OverdueSweeper) Sweep(ctx context.Context) (int64, error) {
	return s.loans.MarkLoansOverdue(ctx, s.Now())
}

type OverdueStats struct {
	Total        int             `json:"total"`
	BySeverity   map[string]int  `json:"bySeverity"`
	ByPersonType map[string]int  `json:"byPersonType"`
	Oldest       *db.OverdueRow  `json:"oldest,omitempty"`
	MostRecent   []db.OverdueRow `json:"mostRecent"`
}

// Statistics partitions the currently-overdue loans by severity and person
// type, and singles out the oldest plus the five most recently due.
func (s *OverdueSweeper) Statistics(ctx context.Context) (*OverdueStats, error) {
	now := s.Now()
	rows, err := s.loans.ListOverdueDetailed(ctx, now)
	if err != nil {
		return nil, err
	}

	stats := &OverdueStats{
		Total:        len(rows),
		BySeverity:   map[string]int{SeverityLow: 0, SeverityMedium: 0, SeverityHigh: 0, SeverityCritical: 0},
		ByPersonType: map[string]int{},
		MostRecent:   []db.OverdueRow{},
	}
	for i := range rows {
		stats.BySeverity[SeverityBucket(rows[i].DaysOverdue(now))]++
		if rows[i].PersonType != "" {
			stats.ByPersonType[rows[i].PersonType]++
		}
	}
	if len(rows) > 0 {
		// rows arrive ordered by due date ascending
		stats.Oldest = &rows[0]
		n := 5
		if len(rows) < n {
			n = len(rows)
		}
		for i := 0; i < n; i++ {
			stats.MostRecent = append(stats.MostRecent, rows[len(rows)-1-i])
		}
	}
	return stats, nil
}

func SeverityBucket(daysOverdue int) string {
	switch {
	case daysOverdue <= 7:
		return SeverityLow
	case daysOverdue <= 15:
		return SeverityMedium
	case daysOverdue <= 30:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// FindNearDue lists outstanding loans due within the next daysThreshold days,
// a read-only early warning.
func (s *OverdueSweeper) FindNearDue(ctx context.Context, daysThreshold int) ([]models.Loan, error) {
	if daysThreshold < 1 {
		return nil, validationErr("INVALID_THRESHOLD", "days threshold must be at least 1")
	}
	now := s.Now()
	return s.loans.ListLoansDueWithin(ctx, now, now.AddDate(0, 0, daysThreshold))
}
