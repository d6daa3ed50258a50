// Package storage provides persistence for projects, budgets, expenses,
// payments and settings.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"cantiere/internal/core"
)

var (
	// ErrNotFound is returned when the referenced row does not exist or is
	// not visible within the caller's scope.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a setting key already exists for
	// the user.
	ErrDuplicateKey = errors.New("key already exists")
)

// ProjectUpdate replaces a project's mutable fields in full; the original
// update endpoint requires name and description, so there is no patching.
type ProjectUpdate struct {
	Name              string
	Description       string
	ExpenseEstimation decimal.Decimal
}

// BudgetUpdate patches a subset of budget fields. Nil means "leave as is".
type BudgetUpdate struct {
	Name            *string
	Description     *string
	EstimatedAmount *decimal.Decimal
}

// BudgetExpenseUpdate patches a subset of budget expense fields.
type BudgetExpenseUpdate struct {
	Name        *string
	Description *string
	Amount      *decimal.Decimal
	Status      *core.Status
	ExpenseDate *string
	FilePath    *string
}

// ProjectExpenseUpdate patches a subset of project-level expense fields.
type ProjectExpenseUpdate struct {
	Name        *string
	Description *string
	Amount      *decimal.Decimal
	Status      *core.Status
	ExpenseDate *string
}

// ProjectPaymentUpdate patches a subset of payment fields.
type ProjectPaymentUpdate struct {
	PaymentDate *string
	Amount      *decimal.Decimal
	Status      *core.Status
}

// Store is the datastore contract consumed by the HTTP layer. A single
// implementation backs it (SQLite); the interface keeps handlers testable
// and the driver swappable.
type Store interface {
	// Projects. All reads and mutations are scoped by (id, userID).
	ProjectsByUser(ctx context.Context, userID string) ([]core.Project, error)
	Project(ctx context.Context, id, userID string) (*core.Project, error)
	CreateProject(ctx context.Context, p *core.Project) error
	UpdateProject(ctx context.Context, id, userID string, upd ProjectUpdate) (*core.Project, error)
	DeleteProject(ctx context.Context, id, userID string) error

	// Budgets. Scoped by project; ownership of the project is the
	// handler's concern.
	BudgetsByProject(ctx context.Context, projectID string) ([]core.Budget, error)
	Budget(ctx context.Context, id, projectID string) (*core.Budget, error)
	CreateBudget(ctx context.Context, b *core.Budget) error
	UpdateBudget(ctx context.Context, id, projectID string, upd BudgetUpdate) (*core.Budget, error)
	DeleteBudget(ctx context.Context, id, projectID string) error

	// Budget expenses.
	ExpensesByBudget(ctx context.Context, budgetID string) ([]core.BudgetExpense, error)
	CreateBudgetExpense(ctx context.Context, e *core.BudgetExpense) error
	UpdateBudgetExpense(ctx context.Context, id string, upd BudgetExpenseUpdate) error
	DeleteBudgetExpense(ctx context.Context, id string) error

	// Project-level expenses, scoped by (projectID, userID).
	ProjectExpenses(ctx context.Context, projectID, userID string) ([]core.ProjectExpense, error)
	CreateProjectExpense(ctx context.Context, e *core.ProjectExpense) error
	UpdateProjectExpense(ctx context.Context, id, userID string, upd ProjectExpenseUpdate) error
	DeleteProjectExpense(ctx context.Context, id, userID string) error

	// Project payments, scoped by (projectID, userID).
	ProjectPayments(ctx context.Context, projectID, userID string) ([]core.ProjectPayment, error)
	CreateProjectPayment(ctx context.Context, p *core.ProjectPayment) error
	UpdateProjectPayment(ctx context.Context, id, userID string, upd ProjectPaymentUpdate) error
	DeleteProjectPayment(ctx context.Context, id, userID string) error

	// Settings.
	SettingsByUser(ctx context.Context, userID string) ([]core.Setting, error)
	CreateSetting(ctx context.Context, s *core.Setting) error
	UpdateSetting(ctx context.Context, id, userID, value string) (*core.Setting, error)
	DeleteSetting(ctx context.Context, id, userID string) error

	Close() error
}
