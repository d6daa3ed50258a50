package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"cantiere/internal/core"
)

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Timestamps are persisted as RFC3339 text so rows stay readable and
// lexically ordered.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ===== Projects =====

const projectColumns = "id, user_id, name, description, expense_estimation, created_at, updated_at"

func scanProject(row rowScanner) (*core.Project, error) {
	var p core.Project
	var estimation, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &estimation, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.ExpenseEstimation, err = parseAmount(estimation); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (s *SQLiteStore) ProjectsByUser(ctx context.Context, userID string) ([]core.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (s *SQLiteStore) Project(ctx context.Context, id, userID string) (*core.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ? AND user_id = ?",
		id, userID,
	)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) CreateProject(ctx context.Context, p *core.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, user_id, name, description, expense_estimation, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.UserID, p.Name, p.Description, p.ExpenseEstimation.String(), formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateProject(ctx context.Context, id, userID string, upd ProjectUpdate) (*core.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"UPDATE projects SET name = ?, description = ?, expense_estimation = ?, updated_at = ? WHERE id = ? AND user_id = ? RETURNING "+projectColumns,
		upd.Name, upd.Description, upd.ExpenseEstimation.String(), formatTime(time.Now()), id, userID,
	)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) DeleteProject(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM projects WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== Budgets =====

const budgetColumns = "id, project_id, name, description, estimated_amount, created_at, updated_at"

func scanBudget(row rowScanner) (*core.Budget, error) {
	var b core.Budget
	var description sql.NullString
	var estimated, createdAt, updatedAt string
	if err := row.Scan(&b.ID, &b.ProjectID, &b.Name, &description, &estimated, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		b.Description = &description.String
	}
	var err error
	if b.EstimatedAmount, err = parseAmount(estimated); err != nil {
		return nil, err
	}
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

// BudgetsByProject returns the project's budgets, newest first, each with
// the sum of its paid expenses. The sum is computed over the decimal text
// amounts in Go so it stays exact.
func (s *SQLiteStore) BudgetsByProject(ctx context.Context, projectID string) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+budgetColumns+" FROM project_budgets WHERE project_id = ? ORDER BY created_at DESC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	if len(budgets) == 0 {
		return budgets, nil
	}

	paid, err := s.paidTotalsByBudget(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		budgets[i].TotalPaid = paid[budgets[i].ID]
	}
	return budgets, nil
}

func (s *SQLiteStore) paidTotalsByBudget(ctx context.Context, projectID string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT be.budget_id, be.amount
		 FROM budget_expenses be
		 JOIN project_budgets pb ON pb.id = be.budget_id
		 WHERE pb.project_id = ? AND be.status = 'paid'`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query paid totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var budgetID, amount string
		if err := rows.Scan(&budgetID, &amount); err != nil {
			return nil, fmt.Errorf("scan paid total: %w", err)
		}
		d, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		totals[budgetID] = totals[budgetID].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paid totals: %w", err)
	}
	return totals, nil
}

func (s *SQLiteStore) Budget(ctx context.Context, id, projectID string) (*core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM project_budgets WHERE id = ? AND project_id = ?",
		id, projectID,
	)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) CreateBudget(ctx context.Context, b *core.Budget) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	b.CreatedAt = now
	b.UpdatedAt = now

	var description any
	if b.Description != nil {
		description = *b.Description
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO project_budgets (id, project_id, name, description, estimated_amount, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		b.ID, b.ProjectID, b.Name, description, b.EstimatedAmount.String(), formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateBudget(ctx context.Context, id, projectID string, upd BudgetUpdate) (*core.Budget, error) {
	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.EstimatedAmount != nil {
		sets = append(sets, "estimated_amount = ?")
		args = append(args, upd.EstimatedAmount.String())
	}

	// Nothing to patch: hand back the current row.
	if len(sets) == 0 {
		return s.Budget(ctx, id, projectID)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()), id, projectID)

	row := s.db.QueryRowContext(ctx,
		"UPDATE project_budgets SET "+strings.Join(sets, ", ")+" WHERE id = ? AND project_id = ? RETURNING "+budgetColumns,
		args...,
	)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, id, projectID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM project_budgets WHERE id = ? AND project_id = ?",
		id, projectID,
	)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ===== Budget expenses =====

const budgetExpenseColumns = "id, budget_id, name, description, amount, status, expense_date, file_path, created_at, updated_at"

func scanBudgetExpense(row rowScanner) (*core.BudgetExpense, error) {
	var e core.BudgetExpense
	var filePath sql.NullString
	var amount, createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.BudgetID, &e.Name, &e.Description, &amount, &e.Status, &e.ExpenseDate, &filePath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if filePath.Valid {
		e.FilePath = &filePath.String
	}
	var err error
	if e.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

func (s *SQLiteStore) ExpensesByBudget(ctx context.Context, budgetID string) ([]core.BudgetExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+budgetExpenseColumns+" FROM budget_expenses WHERE budget_id = ? ORDER BY expense_date DESC",
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("query budget expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.BudgetExpense
	for rows.Next() {
		e, err := scanBudgetExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget expenses: %w", err)
	}
	return expenses, nil
}

func (s *SQLiteStore) CreateBudgetExpense(ctx context.Context, e *core.BudgetExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	e.CreatedAt = now
	e.UpdatedAt = now

	var filePath any
	if e.FilePath != nil {
		filePath = *e.FilePath
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO budget_expenses (id, budget_id, name, description, amount, status, expense_date, file_path, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.BudgetID, e.Name, e.Description, e.Amount.String(), string(e.Status), e.ExpenseDate, filePath, formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert budget expense: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateBudgetExpense(ctx context.Context, id string, upd BudgetExpenseUpdate) error {
	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, upd.Amount.String())
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.ExpenseDate != nil {
		sets = append(sets, "expense_date = ?")
		args = append(args, *upd.ExpenseDate)
	}
	if upd.FilePath != nil {
		sets = append(sets, "file_path = ?")
		args = append(args, *upd.FilePath)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()), id)

	_, err := s.db.ExecContext(ctx,
		"UPDATE budget_expenses SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("update budget expense: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteBudgetExpense(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM budget_expenses WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete budget expense: %w", err)
	}
	return nil
}

// ===== Project-level expenses =====

const projectExpenseColumns = "id, user_id, project_id, name, description, amount, expense_date, status, created_at, updated_at"

func scanProjectExpense(row rowScanner) (*core.ProjectExpense, error) {
	var e core.ProjectExpense
	var amount, createdAt, updatedAt string
	if err := row.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.Name, &e.Description, &amount, &e.ExpenseDate, &e.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return &e, nil
}

func (s *SQLiteStore) ProjectExpenses(ctx context.Context, projectID, userID string) ([]core.ProjectExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectExpenseColumns+" FROM expenses WHERE project_id = ? AND user_id = ? ORDER BY expense_date DESC",
		projectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query project expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.ProjectExpense
	for rows.Next() {
		e, err := scanProjectExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project expenses: %w", err)
	}
	return expenses, nil
}

func (s *SQLiteStore) CreateProjectExpense(ctx context.Context, e *core.ProjectExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (id, user_id, project_id, name, description, amount, expense_date, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.UserID, e.ProjectID, e.Name, e.Description, e.Amount.String(), e.ExpenseDate, string(e.Status), formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert project expense: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateProjectExpense(ctx context.Context, id, userID string, upd ProjectExpenseUpdate) error {
	var sets []string
	var args []any

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, upd.Amount.String())
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.ExpenseDate != nil {
		sets = append(sets, "expense_date = ?")
		args = append(args, *upd.ExpenseDate)
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()), id, userID)

	_, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("update project expense: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteProjectExpense(ctx context.Context, id, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("delete project expense: %w", err)
	}
	return nil
}

// ===== Project payments =====

const paymentColumns = "id, user_id, project_id, payment_date, amount, status, created_at, updated_at"

func scanPayment(row rowScanner) (*core.ProjectPayment, error) {
	var p core.ProjectPayment
	var amount, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.UserID, &p.ProjectID, &p.PaymentDate, &amount, &p.Status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}

func (s *SQLiteStore) ProjectPayments(ctx context.Context, projectID, userID string) ([]core.ProjectPayment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM project_payments WHERE project_id = ? AND user_id = ? ORDER BY payment_date DESC",
		projectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []core.ProjectPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}

func (s *SQLiteStore) CreateProjectPayment(ctx context.Context, p *core.ProjectPayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO project_payments (id, user_id, project_id, payment_date, amount, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.UserID, p.ProjectID, p.PaymentDate, p.Amount.String(), string(p.Status), formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateProjectPayment(ctx context.Context, id, userID string, upd ProjectPaymentUpdate) error {
	var sets []string
	var args []any

	if upd.PaymentDate != nil {
		sets = append(sets, "payment_date = ?")
		args = append(args, *upd.PaymentDate)
	}
	if upd.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, upd.Amount.String())
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()), id, userID)

	_, err := s.db.ExecContext(ctx,
		"UPDATE project_payments SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteProjectPayment(ctx context.Context, id, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM project_payments WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// ===== Settings =====

func (s *SQLiteStore) SettingsByUser(ctx context.Context, userID string) ([]core.Setting, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, key, value FROM settings WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	var settings []core.Setting
	for rows.Next() {
		var st core.Setting
		if err := rows.Scan(&st.ID, &st.UserID, &st.Key, &st.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return settings, nil
}

func (s *SQLiteStore) CreateSetting(ctx context.Context, st *core.Setting) error {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (id, user_id, key, value) VALUES (?, ?, ?, ?)",
		st.ID, st.UserID, st.Key, st.Value,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert setting: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateSetting(ctx context.Context, id, userID, value string) (*core.Setting, error) {
	row := s.db.QueryRowContext(ctx,
		"UPDATE settings SET value = ? WHERE id = ? AND user_id = ? RETURNING id, user_id, key, value",
		value, id, userID,
	)
	var st core.Setting
	err := row.Scan(&st.ID, &st.UserID, &st.Key, &st.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update setting: %w", err)
	}
	return &st, nil
}

func (s *SQLiteStore) DeleteSetting(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
