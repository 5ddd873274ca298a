package models

// BudgetStatus is the utilization band of a budget.
type BudgetStatus string

const (
	BudgetStatusNormal  BudgetStatus = "normal"
	BudgetStatusWarning BudgetStatus = "warning"
	BudgetStatusOver    BudgetStatus = "over"
)

// BudgetAlert records the first time a category crossed a budget band in a month.
type BudgetAlert struct {
	Base
	UserID     string       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string       `gorm:"type:uuid;not null;uniqueIndex:idx_budget_alert_once" json:"category_id"`
	Month      string       `gorm:"size:7;not null;uniqueIndex:idx_budget_alert_once" json:"month"`
	Status     BudgetStatus `gorm:"not null;uniqueIndex:idx_budget_alert_once" json:"status"`
	Percentage int          `gorm:"not null" json:"percentage"`
	Spent      int64        `gorm:"type:bigint;not null" json:"spent"`
	Limit      int64        `gorm:"column:budget_limit;type:bigint;not null" json:"limit"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
