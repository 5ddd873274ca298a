package models

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeBank    AccountType = "bank"
	AccountTypeEWallet AccountType = "ewallet"
	AccountTypeCash    AccountType = "cash"
)

// Account represents a money container. Its current balance is never stored;
// it is derived from InitialBalance and the account's transactions.
type Account struct {
	Base
	UserID         string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string      `gorm:"not null" json:"name"`
	Type           AccountType `gorm:"not null" json:"type"`
	InitialBalance int64       `gorm:"type:bigint;not null;default:0" json:"initial_balance"`
	Icon           string      `json:"icon"`
}
