package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cantiere/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestProject(t *testing.T, store *SQLiteStore, userID string) *core.Project {
	t.Helper()
	p := &core.Project{
		UserID:            userID,
		Name:              "Kitchen remodel",
		Description:       "Full kitchen renovation",
		ExpenseEstimation: decimal.RequireFromString("25000"),
	}
	require.NoError(t, store.CreateProject(context.Background(), p))
	return p
}

func createTestBudget(t *testing.T, store *SQLiteStore, projectID string) *core.Budget {
	t.Helper()
	desc := "Cabinets and counters"
	b := &core.Budget{
		ProjectID:       projectID,
		Name:            "Carpentry",
		Description:     &desc,
		EstimatedAmount: decimal.RequireFromString("8000"),
	}
	require.NoError(t, store.CreateBudget(context.Background(), b))
	return b
}

func TestProjectCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := store.Project(ctx, p.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.True(t, got.ExpenseEstimation.Equal(p.ExpenseEstimation))

	// Scoped by owner.
	_, err = store.Project(ctx, p.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := store.UpdateProject(ctx, p.ID, "user-1", ProjectUpdate{
		Name:              "Kitchen + dining",
		Description:       "Extended scope",
		ExpenseEstimation: decimal.RequireFromString("30000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen + dining", updated.Name)
	assert.True(t, updated.ExpenseEstimation.Equal(decimal.RequireFromString("30000")))

	list, err := store.ProjectsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.DeleteProject(ctx, p.ID, "user-1"))
	assert.ErrorIs(t, store.DeleteProject(ctx, p.ID, "user-1"), ErrNotFound)
}

func TestUpdateProjectNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.UpdateProject(context.Background(), "nope", "user-1", ProjectUpdate{
		Name: "x", ExpenseEstimation: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBudgetCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")
	b := createTestBudget(t, store, p.ID)

	got, err := store.Budget(ctx, b.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carpentry", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Cabinets and counters", *got.Description)

	newName := "Carpentry & finish"
	newAmount := decimal.RequireFromString("9500.50")
	updated, err := store.UpdateBudget(ctx, b.ID, p.ID, BudgetUpdate{
		Name:            &newName,
		EstimatedAmount: &newAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.True(t, updated.EstimatedAmount.Equal(newAmount))
	// Untouched field survives a partial patch.
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Cabinets and counters", *updated.Description)

	// Empty patch returns the row unchanged.
	same, err := store.UpdateBudget(ctx, b.ID, p.ID, BudgetUpdate{})
	require.NoError(t, err)
	assert.Equal(t, newName, same.Name)

	require.NoError(t, store.DeleteBudget(ctx, b.ID, p.ID))
	_, err = store.Budget(ctx, b.ID, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBudgetsByProjectTotalPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")
	b := createTestBudget(t, store, p.ID)

	insert := func(amount string, status core.Status) {
		t.Helper()
		e := &core.BudgetExpense{
			BudgetID:    b.ID,
			Name:        "expense",
			Amount:      decimal.RequireFromString(amount),
			Status:      status,
			ExpenseDate: "2026-01-15",
		}
		require.NoError(t, store.CreateBudgetExpense(ctx, e))
	}

	insert("100.10", core.StatusPaid)
	insert("200.20", core.StatusPaid)
	insert("999.99", core.StatusPending)

	budgets, err := store.BudgetsByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.True(t, budgets[0].TotalPaid.Equal(decimal.RequireFromString("300.30")),
		"got total_paid %s", budgets[0].TotalPaid)
}

func TestBudgetExpenseLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")
	b := createTestBudget(t, store, p.ID)

	e := &core.BudgetExpense{
		BudgetID:    b.ID,
		Name:        "Countertop slab",
		Description: "Quartz, 3cm",
		Amount:      decimal.RequireFromString("2100.75"),
		Status:      core.StatusPending,
		ExpenseDate: "2026-02-01",
	}
	require.NoError(t, store.CreateBudgetExpense(ctx, e))

	paid := core.StatusPaid
	file := "proj-budget-receipt.jpg"
	require.NoError(t, store.UpdateBudgetExpense(ctx, e.ID, BudgetExpenseUpdate{
		Status:   &paid,
		FilePath: &file,
	}))

	list, err := store.ExpensesByBudget(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, core.StatusPaid, list[0].Status)
	require.NotNil(t, list[0].FilePath)
	assert.Equal(t, file, *list[0].FilePath)
	assert.True(t, list[0].Amount.Equal(e.Amount))

	require.NoError(t, store.DeleteBudgetExpense(ctx, e.ID))
	list, err = store.ExpensesByBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestExpensesByBudgetOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")
	b := createTestBudget(t, store, p.ID)

	for _, date := range []string{"2026-01-05", "2026-03-20", "2026-02-11"} {
		e := &core.BudgetExpense{
			BudgetID:    b.ID,
			Name:        "e-" + date,
			Amount:      decimal.RequireFromString("10"),
			Status:      core.StatusPending,
			ExpenseDate: date,
		}
		require.NoError(t, store.CreateBudgetExpense(ctx, e))
	}

	list, err := store.ExpensesByBudget(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "2026-03-20", list[0].ExpenseDate)
	assert.Equal(t, "2026-02-11", list[1].ExpenseDate)
	assert.Equal(t, "2026-01-05", list[2].ExpenseDate)
}

func TestDeleteBudgetCascadesExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")
	b := createTestBudget(t, store, p.ID)

	e := &core.BudgetExpense{
		BudgetID:    b.ID,
		Name:        "doomed",
		Amount:      decimal.RequireFromString("5"),
		Status:      core.StatusPending,
		ExpenseDate: "2026-01-01",
	}
	require.NoError(t, store.CreateBudgetExpense(ctx, e))

	require.NoError(t, store.DeleteBudget(ctx, b.ID, p.ID))

	list, err := store.ExpensesByBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectExpenseScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")

	e := &core.ProjectExpense{
		UserID:      "user-1",
		ProjectID:   p.ID,
		Name:        "Permit fee",
		Amount:      decimal.RequireFromString("350"),
		ExpenseDate: "2026-01-10",
		Status:      core.StatusPaid,
	}
	require.NoError(t, store.CreateProjectExpense(ctx, e))

	list, err := store.ProjectExpenses(ctx, p.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Different user sees nothing.
	list, err = store.ProjectExpenses(ctx, p.ID, "user-2")
	require.NoError(t, err)
	assert.Empty(t, list)

	// Update from the wrong user is a no-op.
	newName := "hijacked"
	require.NoError(t, store.UpdateProjectExpense(ctx, e.ID, "user-2", ProjectExpenseUpdate{Name: &newName}))
	list, err = store.ProjectExpenses(ctx, p.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Permit fee", list[0].Name)

	require.NoError(t, store.DeleteProjectExpense(ctx, e.ID, "user-1"))
	list, err = store.ProjectExpenses(ctx, p.ID, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProjectPaymentLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")

	pay := &core.ProjectPayment{
		UserID:      "user-1",
		ProjectID:   p.ID,
		PaymentDate: "2026-02-28",
		Amount:      decimal.RequireFromString("5000"),
		Status:      core.StatusPending,
	}
	require.NoError(t, store.CreateProjectPayment(ctx, pay))

	paid := core.StatusPaid
	require.NoError(t, store.UpdateProjectPayment(ctx, pay.ID, "user-1", ProjectPaymentUpdate{Status: &paid}))

	list, err := store.ProjectPayments(ctx, p.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, core.StatusPaid, list[0].Status)

	require.NoError(t, store.DeleteProjectPayment(ctx, pay.ID, "user-1"))
	list, err = store.ProjectPayments(ctx, p.ID, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := &core.Setting{UserID: "user-1", Key: "currency", Value: "EUR"}
	require.NoError(t, store.CreateSetting(ctx, st))

	// Same key for the same user is rejected.
	dup := &core.Setting{UserID: "user-1", Key: "currency", Value: "USD"}
	assert.ErrorIs(t, store.CreateSetting(ctx, dup), ErrDuplicateKey)

	// Same key for another user is fine.
	other := &core.Setting{UserID: "user-2", Key: "currency", Value: "USD"}
	require.NoError(t, store.CreateSetting(ctx, other))

	updated, err := store.UpdateSetting(ctx, st.ID, "user-1", "GBP")
	require.NoError(t, err)
	assert.Equal(t, "GBP", updated.Value)
	assert.Equal(t, "currency", updated.Key)

	_, err = store.UpdateSetting(ctx, st.ID, "user-2", "JPY")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.SettingsByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, store.DeleteSetting(ctx, st.ID, "user-1"))
	assert.ErrorIs(t, store.DeleteSetting(ctx, st.ID, "user-1"), ErrNotFound)
}

func TestAmountsStayExact(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := createTestProject(t, store, "user-1")
	b := createTestBudget(t, store, p.ID)

	// Values that lose precision as float64.
	amounts := []string{"0.10", "0.20", "0.30"}
	for _, a := range amounts {
		e := &core.BudgetExpense{
			BudgetID:    b.ID,
			Name:        "penny-" + a,
			Amount:      decimal.RequireFromString(a),
			Status:      core.StatusPaid,
			ExpenseDate: "2026-01-01",
		}
		require.NoError(t, store.CreateBudgetExpense(ctx, e))
	}

	budgets, err := store.BudgetsByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "0.6", budgets[0].TotalPaid.String())
}

func TestErrNotFoundIsSentinel(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Project(context.Background(), "missing", "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}
