package services

import (
	"context"
	"errors"
	"testing"

	"school_library_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationCode(t *testing.T, err error, code string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, code, ve.Code)
}

func TestValidateQuantityBounds(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeTeacher, true)
	env.addResource("r1", 100, 0)

	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 0), "INVALID_QUANTITY")
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", -3), "INVALID_QUANTITY")
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 51), "INVALID_QUANTITY")
	assert.NoError(t, env.engine.Validate(context.Background(), "p1", "r1", 50))
}

func TestValidatePersonChecks(t *testing.T) {
	env := newTestEnv()
	env.addResource("r1", 5, 0)

	requireValidationCode(t, env.engine.Validate(context.Background(), "ghost", "r1", 1), "PERSON_NOT_FOUND")

	env.addPerson("p1", models.PersonTypeStudent, false)
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 1), "PERSON_INACTIVE")

	env.addPerson("p2", models.PersonTypeStudent, true)
	env.persons.types[models.PersonTypeStudent].Active = false
	requireValidationCode(t, env.engine.Validate(context.Background(), "p2", "r1", 1), "PERSON_TYPE_INACTIVE")

	// no reference row for the type means no extra restriction
	env.addPerson("p3", "librarian", true)
	assert.NoError(t, env.engine.Validate(context.Background(), "p3", "r1", 1))
}

func TestValidateResourceChecks(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeStudent, true)

	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "ghost", 1), "RESOURCE_NOT_FOUND")

	env.addResource("r1", 5, 0).Available = false
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 1), "RESOURCE_UNAVAILABLE")

	env.addResource("r2", 5, 0).ConditionState = models.ConditionDamaged
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r2", 1), "RESOURCE_CONDITION")

	env.addResource("r3", 5, 0).ConditionState = models.ConditionLost
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r3", 1), "RESOURCE_CONDITION")

	// deteriorated copies still circulate
	env.addResource("r4", 5, 0).ConditionState = models.ConditionDeteriorated
	assert.NoError(t, env.engine.Validate(context.Background(), "p1", "r4", 1))
}

func TestValidateInsufficientStock(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeTeacher, true)
	env.addResource("r1", 5, 3)

	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 3), "INSUFFICIENT_STOCK")
	assert.NoError(t, env.engine.Validate(context.Background(), "p1", "r1", 2))
}

func TestStudentQuantityCap(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeStudent, true)
	env.addResource("r1", 10, 0)

	// always rejected regardless of stock
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 2), "QUANTITY_POLICY")
	assert.NoError(t, env.engine.Validate(context.Background(), "p1", "r1", 1))
}

func TestTeacherBoundedByStockOnly(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeTeacher, true)
	env.addResource("r1", 10, 0)

	assert.NoError(t, env.engine.Validate(context.Background(), "p1", "r1", 10))
	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 11), "INSUFFICIENT_STOCK")
}

func TestDefaultTypeQuantityCap(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", "staff", true)
	env.addResource("r1", 10, 0)

	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 6), "QUANTITY_POLICY")
	assert.NoError(t, env.engine.Validate(context.Background(), "p1", "r1", 5))
}

func TestActiveLoanLimit(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeStudent, true)
	env.addResource("r1", 10, 0)
	for i, id := range []string{"l1", "l2", "l3"} {
		env.addLoan(id, "p1", "r1", 1, env.daysFromNow(5+i))
	}

	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 1), "LOAN_LIMIT")
}

func TestOverdueBlock(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeStudent, true)
	env.addResource("r1", 10, 0)
	// one overdue loan, well under the count limit
	env.addLoan("l1", "p1", "r1", 1, env.daysFromNow(-2))

	requireValidationCode(t, env.engine.Validate(context.Background(), "p1", "r1", 1), "OVERDUE_BLOCK")
}

func TestCanPersonBorrow(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeStudent, true)
	env.addResource("r1", 10, 0)

	out := env.engine.CanPersonBorrow(context.Background(), "p1")
	assert.True(t, out.CanBorrow)
	assert.EqualValues(t, 0, out.ActiveLoans)

	env.addLoan("l1", "p1", "r1", 1, env.daysFromNow(-1))
	out = env.engine.CanPersonBorrow(context.Background(), "p1")
	assert.False(t, out.CanBorrow)
	assert.Equal(t, 1, out.OverdueLoans)
	assert.Equal(t, "person has overdue loans", out.Reason)
}

func TestCanPersonBorrowFailsClosed(t *testing.T) {
	env := newTestEnv()
	env.addPerson("p1", models.PersonTypeStudent, true)
	env.loans.listErr = errors.New("store down")

	out := env.engine.CanPersonBorrow(context.Background(), "p1")
	assert.False(t, out.CanBorrow)
	assert.NotEmpty(t, out.Reason)
}

func TestGetMaxQuantityForPerson(t *testing.T) {
	env := newTestEnv()
	env.addPerson("student", models.PersonTypeStudent, true)
	env.addPerson("teacher", models.PersonTypeTeacher, true)
	env.addPerson("staff", "staff", true)
	env.addPerson("inactive", models.PersonTypeTeacher, false)
	env.addResource("r1", 10, 2)

	cases := []struct {
		person string
		want   int
	}{
		{"student", 1},
		{"teacher", 8},
		{"staff", 5},
		{"inactive", 0},
	}
	for _, tc := range cases {
		got, err := env.engine.GetMaxQuantityForPerson(context.Background(), tc.person, "r1")
		require.NoError(t, err, tc.person)
		assert.Equal(t, tc.want, got, tc.person)
	}

	// stock below the type cap wins
	env.addResource("r2", 3, 0)
	got, err := env.engine.GetMaxQuantityForPerson(context.Background(), "staff", "r2")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	// disabled resource supports nothing
	env.addResource("r3", 3, 0).Available = false
	got, err = env.engine.GetMaxQuantityForPerson(context.Background(), "teacher", "r3")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestGetResourceAvailabilityInfo(t *testing.T) {
	env := newTestEnv()
	env.addResource("r1", 5, 2)

	info, err := env.engine.GetResourceAvailabilityInfo(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, info.AvailableQuantity)
	assert.True(t, info.HasStock)

	env.inv.resources["r1"].Available = false
	info, err = env.engine.GetResourceAvailabilityInfo(context.Background(), "r1")
	require.NoError(t, err)
	assert.False(t, info.HasStock)
	assert.Equal(t, 3, info.AvailableQuantity)
}
