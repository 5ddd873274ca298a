package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// Category represents a transaction category. BudgetLimit is a monthly limit
// and only applies to expense categories.
type Category struct {
	Base
	UserID      string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string       `gorm:"not null" json:"name"`
	Type        CategoryType `gorm:"not null" json:"type"`
	Icon        string       `json:"icon"`
	Color       string       `json:"color"`
	BudgetLimit *int64       `gorm:"type:bigint" json:"budget_limit"`
}

// HasBudget reports whether the category carries a usable budget limit.
func (c Category) HasBudget() bool {
	return c.Type == CategoryTypeExpense && c.BudgetLimit != nil && *c.BudgetLimit > 0
}
