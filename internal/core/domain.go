package core

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

type (
	// Status is the payment state of an expense or payment record.
	// Only the two declared values may ever be persisted.
	Status string

	// Project is the top-level unit of work. Every project is owned by
	// exactly one user and all access is scoped by (ID, UserID).
	Project struct {
		ID                string          `json:"id"`
		UserID            string          `json:"user_id"`
		Name              string          `json:"name"`
		Description       string          `json:"description"`
		ExpenseEstimation decimal.Decimal `json:"expense_estimation"`
		CreatedAt         time.Time       `json:"created_at"`
		UpdatedAt         time.Time       `json:"updated_at"`
	}

	// Budget is a named spending envelope scoped to one project.
	// TotalPaid is derived on read (sum of the budget's paid expenses)
	// and is never stored.
	Budget struct {
		ID              string          `json:"id"`
		ProjectID       string          `json:"project_id"`
		Name            string          `json:"name"`
		Description     *string         `json:"description"`
		EstimatedAmount decimal.Decimal `json:"estimated_amount"`
		CreatedAt       time.Time       `json:"created_at"`
		UpdatedAt       time.Time       `json:"updated_at"`
		TotalPaid       decimal.Decimal `json:"total_paid"`
	}

	// BudgetExpense is a dated monetary record against a budget.
	// ExpenseDate is a bare YYYY-MM-DD string; lexical order equals
	// chronological order, so it is never timezone-normalized.
	BudgetExpense struct {
		ID          string          `json:"id"`
		BudgetID    string          `json:"budget_id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		Status      Status          `json:"status"`
		ExpenseDate string          `json:"expense_date"`
		FilePath    *string         `json:"file_path,omitempty"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	// ProjectExpense is a monetary record scoped to (project, user)
	// directly rather than to a budget.
	ProjectExpense struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		ProjectID   string          `json:"project_id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		ExpenseDate string          `json:"expense_date"`
		Status      Status          `json:"status"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	// ProjectPayment records money paid toward a project.
	ProjectPayment struct {
		ID          string          `json:"id"`
		UserID      string          `json:"user_id"`
		ProjectID   string          `json:"project_id"`
		PaymentDate string          `json:"payment_date"`
		Amount      decimal.Decimal `json:"amount"`
		Status      Status          `json:"status"`
		CreatedAt   time.Time       `json:"created_at"`
		UpdatedAt   time.Time       `json:"updated_at"`
	}

	// Setting is a per-user key/value pair. Key is unique within a
	// user's scope.
	Setting struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Key    string `json:"key"`
		Value  string `json:"value"`
	}
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrEmptyName     = errors.New("name is required")
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Valid reports whether s is one of the closed set of statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// ValidDate reports whether s is a parseable YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Validate checks the fields required at creation time. Amount must be
// strictly positive; updates may later patch fields individually.
func (e BudgetExpense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if !ValidDate(e.ExpenseDate) {
		return ErrInvalidDate
	}
	return nil
}

func (e ProjectExpense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if !ValidDate(e.ExpenseDate) {
		return ErrInvalidDate
	}
	return nil
}

func (p ProjectPayment) Validate() error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if !ValidDate(p.PaymentDate) {
		return ErrInvalidDate
	}
	return nil
}
