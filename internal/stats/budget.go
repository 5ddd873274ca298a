package stats

import (
	"sort"

	"dompet/internal/models"
)

// BudgetItem is a budget-bearing category with its utilization for a period.
type BudgetItem struct {
	Category   models.Category     `json:"category"`
	Limit      int64               `json:"limit"`
	Spent      int64               `json:"spent"`
	Remaining  int64               `json:"remaining"`
	Percentage int                 `json:"percentage"`
	Status     models.BudgetStatus `json:"status"`
}

// EvaluateBudgets returns one item per category, sorted by percentage
// descending with ties kept in input order. spent is keyed by category ID.
// A category without a positive limit yields percentage 0.
func EvaluateBudgets(categories []models.Category, spent map[string]int64) []BudgetItem {
	items := make([]BudgetItem, 0, len(categories))
	for _, category := range categories {
		var limit int64
		if category.BudgetLimit != nil && *category.BudgetLimit > 0 {
			limit = *category.BudgetLimit
		}
		s := spent[category.ID]
		pct := Percentage(s, limit)

		item := BudgetItem{
			Category:   category,
			Limit:      limit,
			Spent:      s,
			Percentage: pct,
			Status:     StatusFor(pct),
		}
		if limit > 0 {
			item.Remaining = limit - s
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Percentage > items[j].Percentage
	})
	return items
}
