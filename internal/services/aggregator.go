// Package services holds the application logic that sits between the
// HTTP handlers and the storage layer.
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cantiere/internal/core"
)

// ExpenseSource is the slice of the storage layer the aggregator needs.
type ExpenseSource interface {
	BudgetsByProject(ctx context.Context, projectID string) ([]core.Budget, error)
	ExpensesByBudget(ctx context.Context, budgetID string) ([]core.BudgetExpense, error)
}

// Aggregator produces the cross-budget expense view for a project:
// every expense from every (optionally narrowed) budget, filtered,
// sorted and paginated in memory.
type Aggregator struct {
	src ExpenseSource
}

func NewAggregator(src ExpenseSource) *Aggregator {
	return &Aggregator{src: src}
}

// AggregateQuery carries the caller's filter, sort and pagination
// choices. Zero values mean "not set"; WithDefaults fills in the
// defaults before validation.
type AggregateQuery struct {
	Status      string
	Description string
	Name        string
	BudgetName  string
	BudgetID    string
	SortBy      string
	SortOrder   string
	StartDate   string
	EndDate     string
	Page        int
	PageSize    int
}

// ValidationError marks a query the caller got wrong, as opposed to an
// internal failure. Handlers map it to a 400.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

const (
	defaultSortBy   = "expense_date"
	defaultOrder    = "desc"
	defaultPageSize = 10
	maxPageSize     = 100
)

// textColumn returns the sortable text value of e for the given column.
// Amount is not here: it is compared numerically.
var textColumn = map[string]func(e *AggregatedExpense) string{
	"expense_date": func(e *AggregatedExpense) string { return e.ExpenseDate },
	"name":         func(e *AggregatedExpense) string { return e.Name },
	"status":       func(e *AggregatedExpense) string { return string(e.Status) },
	"description":  func(e *AggregatedExpense) string { return e.Description },
}

// WithDefaults returns a copy of q with unset fields filled in and the
// text filters lowercased, the same normalization the endpoint applies.
func (q AggregateQuery) WithDefaults() AggregateQuery {
	if q.SortBy == "" {
		q.SortBy = defaultSortBy
	}
	if q.SortOrder == "" {
		q.SortOrder = defaultOrder
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}
	q.Description = strings.ToLower(q.Description)
	q.Name = strings.ToLower(q.Name)
	q.BudgetName = strings.ToLower(q.BudgetName)
	return q
}

// Validate checks pagination first, then dates, then the sort pair, so
// a request wrong in several ways always gets the same error back.
func (q AggregateQuery) Validate() error {
	if q.Page < 1 {
		return validationErrorf("Invalid page number")
	}
	if q.PageSize < 1 || q.PageSize > maxPageSize {
		return validationErrorf("Invalid page size (must be between 1 and %d)", maxPageSize)
	}
	if (q.StartDate != "" && !core.ValidDate(q.StartDate)) || (q.EndDate != "" && !core.ValidDate(q.EndDate)) {
		return validationErrorf("Invalid date format. Use ISO format (YYYY-MM-DD)")
	}
	if q.SortBy != "amount" && textColumn[q.SortBy] == nil {
		return validationErrorf("Invalid sort column")
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return validationErrorf("Invalid sort order")
	}
	return nil
}

// BudgetRef is the snapshot of the owning budget attached to each
// aggregated expense.
type BudgetRef struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
}

// AggregatedExpense is a budget expense plus its budget snapshot.
type AggregatedExpense struct {
	core.BudgetExpense
	Budget BudgetRef `json:"budget"`
}

type DateRange struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// AppliedFilters echoes back what was actually applied, nulls for the
// filters the caller did not set. Text values come back lowercased.
type AppliedFilters struct {
	Status      *string   `json:"status"`
	Description *string   `json:"description"`
	Name        *string   `json:"name"`
	BudgetName  *string   `json:"budgetName"`
	BudgetID    *string   `json:"budgetId"`
	DateRange   DateRange `json:"dateRange"`
}

type Sorting struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type Pagination struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Metadata describes the full (pre-pagination) result set.
type Metadata struct {
	TotalCount  int             `json:"total_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Filters     AppliedFilters  `json:"filters"`
	Sorting     Sorting         `json:"sorting"`
	Pagination  Pagination      `json:"pagination"`
}

// AggregateResult is one page of expenses plus the metadata for the
// whole filtered set.
type AggregateResult struct {
	Data     []AggregatedExpense `json:"data"`
	Metadata Metadata            `json:"metadata"`
}

// Aggregate runs the whole pipeline: narrow budgets, fan out the
// expense fetches, filter, sort, total, paginate.
func (a *Aggregator) Aggregate(ctx context.Context, projectID string, q AggregateQuery) (*AggregateResult, error) {
	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	budgets, err := a.src.BudgetsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}

	// budgetId wins over budgetName and is matched against the full
	// budget list, not the name-narrowed one.
	narrowed := budgets
	if q.BudgetName != "" {
		narrowed = filterBudgets(budgets, func(b core.Budget) bool {
			return strings.Contains(strings.ToLower(b.Name), q.BudgetName)
		})
	}
	if q.BudgetID != "" {
		narrowed = filterBudgets(budgets, func(b core.Budget) bool {
			return b.ID == q.BudgetID
		})
	}

	all, err := a.collect(ctx, narrowed)
	if err != nil {
		return nil, err
	}

	all = applyFilters(all, q)
	sortExpenses(all, q.SortBy, q.SortOrder)

	totalAmount := decimal.Zero
	for i := range all {
		totalAmount = totalAmount.Add(all[i].Amount)
	}

	totalCount := len(all)
	totalPages := (totalCount + q.PageSize - 1) / q.PageSize

	start := (q.Page - 1) * q.PageSize
	if start > totalCount {
		start = totalCount
	}
	end := start + q.PageSize
	if end > totalCount {
		end = totalCount
	}
	page := all[start:end]
	if page == nil {
		page = []AggregatedExpense{}
	}

	return &AggregateResult{
		Data: page,
		Metadata: Metadata{
			TotalCount:  totalCount,
			TotalAmount: totalAmount,
			Filters: AppliedFilters{
				Status:      optional(q.Status),
				Description: optional(q.Description),
				Name:        optional(q.Name),
				BudgetName:  optional(q.BudgetName),
				BudgetID:    optional(q.BudgetID),
				DateRange: DateRange{
					StartDate: optional(q.StartDate),
					EndDate:   optional(q.EndDate),
				},
			},
			Sorting: Sorting{Column: q.SortBy, Order: q.SortOrder},
			Pagination: Pagination{
				Page:            q.Page,
				PageSize:        q.PageSize,
				TotalPages:      totalPages,
				HasNextPage:     q.Page < totalPages,
				HasPreviousPage: q.Page > 1,
			},
		},
	}, nil
}

// collect fetches every budget's expenses concurrently and flattens
// them in budget order, so the later stable sort sees a deterministic
// input.
func (a *Aggregator) collect(ctx context.Context, budgets []core.Budget) ([]AggregatedExpense, error) {
	results := make([][]AggregatedExpense, len(budgets))

	g, gctx := errgroup.WithContext(ctx)
	for i, b := range budgets {
		g.Go(func() error {
			expenses, err := a.src.ExpensesByBudget(gctx, b.ID)
			if err != nil {
				return fmt.Errorf("load expenses for budget %s: %w", b.ID, err)
			}
			agg := make([]AggregatedExpense, len(expenses))
			for j, e := range expenses {
				agg[j] = AggregatedExpense{
					BudgetExpense: e,
					Budget: BudgetRef{
						ID:              b.ID,
						Name:            b.Name,
						Description:     b.Description,
						EstimatedAmount: b.EstimatedAmount,
					},
				}
			}
			results[i] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []AggregatedExpense
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func filterBudgets(budgets []core.Budget, keep func(core.Budget) bool) []core.Budget {
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func applyFilters(all []AggregatedExpense, q AggregateQuery) []AggregatedExpense {
	out := all[:0]
	for _, e := range all {
		if q.Status != "" && string(e.Status) != q.Status {
			continue
		}
		if q.Description != "" && !strings.Contains(strings.ToLower(e.Description), q.Description) {
			continue
		}
		if q.Name != "" && !strings.Contains(strings.ToLower(e.Name), q.Name) {
			continue
		}
		// YYYY-MM-DD compares the same lexically and chronologically,
		// and both bounds are inclusive.
		if q.StartDate != "" && e.ExpenseDate < q.StartDate {
			continue
		}
		if q.EndDate != "" && e.ExpenseDate > q.EndDate {
			continue
		}
		out = append(out, e)
	}
	return out
}

// sortExpenses orders by the requested column. A record with no value
// for the column sorts after every record that has one, in both
// directions; ties keep their pre-sort order.
func sortExpenses(all []AggregatedExpense, column, order string) {
	desc := order == "desc"

	if column == "amount" {
		sort.SliceStable(all, func(i, j int) bool {
			c := all[i].Amount.Cmp(all[j].Amount)
			if desc {
				return c > 0
			}
			return c < 0
		})
		return
	}

	value := textColumn[column]
	sort.SliceStable(all, func(i, j int) bool {
		av, bv := value(&all[i]), value(&all[j])
		// Missing values pin to the end without the desc flip.
		if av == "" || bv == "" {
			return av != "" && bv == ""
		}
		c := strings.Compare(av, bv)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
