package services

import (
	"context"
	"sort"
	"time"

	"school_library_backend/config"
	"school_library_backend/db"
	"school_library_backend/models"
)

// In-memory stand-ins for *db.Repo. The loan fake mirrors the store's
// transactional create: stock is checked and claimed together, so the
// contention scenarios behave like the real thing.

type fakePersons struct {
	persons map[string]*models.Person
	types   map[string]*models.PersonType
	err     error
}

func (f *fakePersons) FindPersonByID(_ context.Context, id string) (*models.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.persons[id]
	if !ok {
		return nil, db.ErrPersonNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePersons) FindPersonType(_ context.Context, name string) (*models.PersonType, error) {
	t, ok := f.types[name]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

type fakeInventory struct {
	resources    map[string]*models.Resource
	decrementErr error
}

func (f *fakeInventory) FindResourceByID(_ context.Context, id string) (*models.Resource, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, db.ErrResourceNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeInventory) GetStockInfo(ctx context.Context, id string) (*db.StockInfo, error) {
	r, ok := f.resources[id]
	if !ok {
		return nil, db.ErrResourceNotFound
	}
	avail := r.AvailableQuantity()
	return &db.StockInfo{
		ResourceID:        r.ID,
		TotalQuantity:     r.TotalQuantity,
		CurrentLoansCount: r.CurrentLoansCount,
		AvailableQuantity: avail,
		Available:         r.Available,
		ConditionState:    r.ConditionState,
		HasStock:          r.Available && avail > 0,
	}, nil
}

func (f *fakeInventory) DecrementLoaned(_ context.Context, id string, qty int) error {
	if f.decrementErr != nil {
		return f.decrementErr
	}
	r, ok := f.resources[id]
	if !ok {
		return db.ErrResourceNotFound
	}
	r.CurrentLoansCount -= qty
	if r.CurrentLoansCount < 0 {
		r.CurrentLoansCount = 0
	}
	return nil
}

func (f *fakeInventory) SetAvailability(_ context.Context, id string, available bool) error {
	r, ok := f.resources[id]
	if !ok {
		return db.ErrResourceNotFound
	}
	r.Available = available
	return nil
}

func (f *fakeInventory) SetCondition(_ context.Context, id string, condition string) error {
	r, ok := f.resources[id]
	if !ok {
		return db.ErrResourceNotFound
	}
	r.ConditionState = condition
	return nil
}

type fakeLoanStore struct {
	loans   map[string]*models.Loan
	inv     *fakeInventory
	persons *fakePersons
	listErr error
}

func (f *fakeLoanStore) CreateLoan(_ context.Context, loan *models.Loan) error {
	res, ok := f.inv.resources[loan.ResourceID]
	if !ok {
		return db.ErrResourceNotFound
	}
	if !res.Loanable() {
		return db.ErrResourceUnavailable
	}
	if res.AvailableQuantity() < loan.Quantity {
		return db.ErrInsufficientStock
	}
	res.CurrentLoansCount += loan.Quantity
	res.TotalLoans += int64(loan.Quantity)
	t := loan.LoanDate
	res.LastLoanDate = &t
	cp := *loan
	f.loans[loan.ID] = &cp
	return nil
}

func (f *fakeLoanStore) FindLoanByID(_ context.Context, id string) (*models.Loan, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, db.ErrLoanNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLoanStore) UpdateLoan(_ context.Context, id string, fields map[string]interface{}) error {
	l, ok := f.loans[id]
	if !ok {
		return db.ErrLoanNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			l.Status = v.(string)
		case "due_date":
			l.DueDate = v.(time.Time)
		case "returned_date":
			t := v.(time.Time)
			l.ReturnedDate = &t
		case "returned_by":
			s := v.(string)
			l.ReturnedBy = &s
		case "renewed_by":
			s := v.(string)
			l.RenewedBy = &s
		case "renewed_at":
			t := v.(time.Time)
			l.RenewedAt = &t
		case "observations":
			l.Observations = v.(string)
		}
	}
	return nil
}

func (f *fakeLoanStore) CountActiveLoans(_ context.Context, personID string) (int64, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	var n int64
	for _, l := range f.loans {
		if l.PersonID == personID && l.ReturnedDate == nil {
			n++
		}
	}
	return n, nil
}

func (f *fakeLoanStore) ListActiveLoansByPerson(_ context.Context, personID string) ([]models.Loan, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Loan
	for _, l := range f.loans {
		if l.PersonID == personID && l.ReturnedDate == nil {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeLoanStore) MarkLoansOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, l := range f.loans {
		if l.ReturnedDate == nil && l.DueDate.Before(now) && l.Status != models.StatusOverdue {
			l.Status = models.StatusOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeLoanStore) ListOverdueDetailed(_ context.Context, now time.Time) ([]db.OverdueRow, error) {
	var out []db.OverdueRow
	for _, l := range f.loans {
		if l.ReturnedDate == nil && l.DueDate.Before(now) {
			row := db.OverdueRow{Loan: *l}
			if p, ok := f.persons.persons[l.PersonID]; ok {
				row.PersonName = p.Name
				row.PersonType = p.PersonType
			}
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeLoanStore) ListLoansDueWithin(_ context.Context, now, until time.Time) ([]models.Loan, error) {
	var out []models.Loan
	for _, l := range f.loans {
		if l.ReturnedDate == nil && l.Status != models.StatusOverdue &&
			l.DueDate.After(now) && !l.DueDate.After(until) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

type fakeStatuses struct {
	created []string
}

func (f *fakeStatuses) GetOrCreateStatus(_ context.Context, name string) (*models.LoanStatus, error) {
	for _, c := range models.CanonicalStatuses() {
		if c.Name == name {
			cc := c
			f.created = append(f.created, name)
			return &cc, nil
		}
	}
	return nil, db.ErrLoanNotFound
}

type testEnv struct {
	now time.Time

	persons  *fakePersons
	inv      *fakeInventory
	loans    *fakeLoanStore
	statuses *fakeStatuses

	engine    *EligibilityEngine
	lifecycle *LoanLifecycleService
	sweeper   *OverdueSweeper
}

func newTestEnv() *testEnv {
	env := &testEnv{
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		persons: &fakePersons{
			persons: map[string]*models.Person{},
			types: map[string]*models.PersonType{
				models.PersonTypeStudent: {Name: models.PersonTypeStudent, Active: true},
				models.PersonTypeTeacher: {Name: models.PersonTypeTeacher, Active: true},
			},
		},
		inv:      &fakeInventory{resources: map[string]*models.Resource{}},
		statuses: &fakeStatuses{},
	}
	env.loans = &fakeLoanStore{loans: map[string]*models.Loan{}, inv: env.inv, persons: env.persons}

	policy := config.DefaultPolicy()
	clock := func() time.Time { return env.now }

	env.engine = NewEligibilityEngine(env.persons, env.loans, env.inv, policy)
	env.engine.Now = clock
	env.lifecycle = NewLoanLifecycleService(env.engine, env.loans, env.inv, env.statuses, policy)
	env.lifecycle.Now = clock
	env.sweeper = NewOverdueSweeper(env.loans)
	env.sweeper.Now = clock
	return env
}

func (env *testEnv) addPerson(id, personType string, active bool) {
	env.persons.persons[id] = &models.Person{ID: id, Name: "person " + id, PersonType: personType, Active: active}
}

func (env *testEnv) addResource(id string, total, loaned int) *models.Resource {
	r := &models.Resource{
		ID:                id,
		Title:             "resource " + id,
		TotalQuantity:     total,
		CurrentLoansCount: loaned,
		Available:         true,
		ConditionState:    models.ConditionGood,
	}
	env.inv.resources[id] = r
	return r
}

func (env *testEnv) addLoan(id, personID, resourceID string, qty int, due time.Time) *models.Loan {
	l := &models.Loan{
		ID:         id,
		PersonID:   personID,
		ResourceID: resourceID,
		Quantity:   qty,
		LoanDate:   due.AddDate(0, 0, -15),
		DueDate:    due,
		Status:     models.StatusActive,
	}
	env.loans.loans[id] = l
	return l
}

func (env *testEnv) daysFromNow(d int) time.Time { return env.now.AddDate(0, 0, d) }
