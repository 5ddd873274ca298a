package stats

import (
	"sort"

	"dompet/internal/models"
)

// Uncategorized expense rows are grouped under this name with the default style.
const (
	UncategorizedName = "Uncategorized"
	DefaultColor      = "#6b7280"
	DefaultIcon       = "📦"
	MonthLabelLayout  = "Jan 2006"
)

// CategoryStat is the expense total of one category name within a period.
type CategoryStat struct {
	CategoryID *string `json:"category_id"`
	Name       string  `json:"name"`
	Amount     int64   `json:"amount"`
	Color      string  `json:"color"`
	Icon       string  `json:"icon"`
	Percentage int     `json:"percentage"`
}

// MonthlyStat is the income and expense of one calendar month within a period.
type MonthlyStat struct {
	Month   string `json:"month"`
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
	Savings int64  `json:"savings"`
}

// PeriodSummary is the aggregate of one reporting period.
type PeriodSummary struct {
	Range        DateRange      `json:"range"`
	TotalIncome  int64          `json:"total_income"`
	TotalExpense int64          `json:"total_expense"`
	Net          int64          `json:"net"`
	SavingsRate  int            `json:"savings_rate"`
	ByCategory   []CategoryStat `json:"by_category"`
	Monthly      []MonthlyStat  `json:"monthly"`

	// SpentByCategory holds expense totals keyed by category ID, for EvaluateBudgets.
	SpentByCategory map[string]int64 `json:"-"`
}

// AggregatePeriod reduces transactions already filtered to rng. ByCategory is
// sorted by amount descending with ties in encounter order. Monthly keeps the
// order in which each month was first seen, which is not necessarily
// chronological.
func AggregatePeriod(rng DateRange, txns []models.Transaction) PeriodSummary {
	summary := PeriodSummary{
		Range:           rng,
		ByCategory:      []CategoryStat{},
		Monthly:         []MonthlyStat{},
		SpentByCategory: map[string]int64{},
	}

	categoryIdx := map[string]int{}
	monthIdx := map[string]int{}

	for i := range txns {
		txn := &txns[i]

		switch txn.Type {
		case models.TransactionTypeIncome:
			summary.TotalIncome += txn.Amount
		case models.TransactionTypeExpense:
			summary.TotalExpense += txn.Amount

			name, color, icon := UncategorizedName, DefaultColor, DefaultIcon
			if txn.Category != nil {
				name = txn.Category.Name
				color = orDefault(txn.Category.Color, DefaultColor)
				icon = orDefault(txn.Category.Icon, DefaultIcon)
			}
			idx, ok := categoryIdx[name]
			if !ok {
				idx = len(summary.ByCategory)
				categoryIdx[name] = idx
				stat := CategoryStat{Name: name, Color: color, Icon: icon}
				if txn.Category != nil {
					id := txn.Category.ID
					stat.CategoryID = &id
				}
				summary.ByCategory = append(summary.ByCategory, stat)
			}
			summary.ByCategory[idx].Amount += txn.Amount

			if txn.CategoryID != nil {
				summary.SpentByCategory[*txn.CategoryID] += txn.Amount
			}
		default:
			continue
		}

		label := txn.Date.Format(MonthLabelLayout)
		idx, ok := monthIdx[label]
		if !ok {
			idx = len(summary.Monthly)
			monthIdx[label] = idx
			summary.Monthly = append(summary.Monthly, MonthlyStat{Month: label})
		}
		if txn.Type == models.TransactionTypeIncome {
			summary.Monthly[idx].Income += txn.Amount
		} else {
			summary.Monthly[idx].Expense += txn.Amount
		}
	}

	sort.SliceStable(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Amount > summary.ByCategory[j].Amount
	})
	for i := range summary.ByCategory {
		summary.ByCategory[i].Percentage = Percentage(summary.ByCategory[i].Amount, summary.TotalExpense)
	}
	for i := range summary.Monthly {
		summary.Monthly[i].Savings = summary.Monthly[i].Income - summary.Monthly[i].Expense
	}

	summary.Net = summary.TotalIncome - summary.TotalExpense
	summary.SavingsRate = Percentage(summary.Net, summary.TotalIncome)
	return summary
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
