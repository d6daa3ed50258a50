package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatusValid(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, true},
		{StatusPaid, true},
		{Status(""), false},
		{Status("PAID"), false},
		{Status("cancelled"), false},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid date", "2024-01-31", true},
		{"valid leap day", "2024-02-29", true},
		{"non-leap february 29", "2023-02-29", false},
		{"month out of range", "2024-13-01", false},
		{"day out of range", "2024-01-32", false},
		{"missing zero padding", "2024-1-5", false},
		{"slashes", "2024/01/05", false},
		{"with time component", "2024-01-05T00:00:00Z", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidDate(tt.input); got != tt.want {
				t.Errorf("ValidDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBudgetExpenseValidate(t *testing.T) {
	valid := BudgetExpense{
		Name:        "Tiles",
		Amount:      decimal.RequireFromString("120.50"),
		Status:      StatusPending,
		ExpenseDate: "2024-03-10",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid expense = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*BudgetExpense)
		wantErr error
	}{
		{"empty name", func(e *BudgetExpense) { e.Name = "  " }, ErrEmptyName},
		{"zero amount", func(e *BudgetExpense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(e *BudgetExpense) { e.Amount = decimal.RequireFromString("-1") }, ErrInvalidAmount},
		{"bad status", func(e *BudgetExpense) { e.Status = "open" }, ErrInvalidStatus},
		{"bad date", func(e *BudgetExpense) { e.ExpenseDate = "10/03/2024" }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProjectPaymentValidate(t *testing.T) {
	p := ProjectPayment{
		Amount:      decimal.NewFromInt(500),
		Status:      StatusPaid,
		PaymentDate: "2024-06-01",
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	p.PaymentDate = "2024-06-99"
	if err := p.Validate(); err != ErrInvalidDate {
		t.Errorf("Validate() = %v, want %v", err, ErrInvalidDate)
	}
}
