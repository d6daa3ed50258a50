package http

import (
	"net/http"
	"strconv"

	"cantiere/internal/services"
)

// parseAggregateQuery lifts the aggregator parameters out of the URL.
// It never rejects anything itself: unparseable or zero page numbers
// are forced negative so validation fails them with the right message.
func parseAggregateQuery(r *http.Request) services.AggregateQuery {
	q := r.URL.Query()

	out := services.AggregateQuery{
		Status:      q.Get("status"),
		Description: q.Get("description"),
		Name:        q.Get("name"),
		BudgetName:  q.Get("budgetName"),
		BudgetID:    q.Get("budgetId"),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
	}

	out.Page = parsePositive(q.Get("page"))
	out.PageSize = parsePositive(q.Get("pageSize"))

	return out
}

// parsePositive returns 0 for an absent value (meaning "use the
// default") and -1 for anything that is not a positive integer.
func parsePositive(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return -1
	}
	return n
}
