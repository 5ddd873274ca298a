package stats

import "dompet/internal/models"

// AccountBalance pairs an account with its computed current balance.
type AccountBalance struct {
	models.Account
	Balance int64 `json:"balance"`
}

// CalculateBalance returns the account's initial balance plus income minus
// expense over txns. Callers pass only the account's own transactions.
func CalculateBalance(account models.Account, txns []models.Transaction) int64 {
	balance := account.InitialBalance
	for i := range txns {
		balance += signedAmount(txns[i])
	}
	return balance
}

// AccountBalances computes every account's balance from one flat transaction
// set in a single pass. Transactions of accounts not in the list are ignored.
// The result follows the order of accounts.
func AccountBalances(accounts []models.Account, txns []models.Transaction) []AccountBalance {
	deltas := make(map[string]int64, len(accounts))
	for i := range txns {
		deltas[txns[i].AccountID] += signedAmount(txns[i])
	}

	balances := make([]AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balances = append(balances, AccountBalance{
			Account: account,
			Balance: account.InitialBalance + deltas[account.ID],
		})
	}
	return balances
}

// TotalBalance sums the balances.
func TotalBalance(balances []AccountBalance) int64 {
	var total int64
	for _, b := range balances {
		total += b.Balance
	}
	return total
}

// signedAmount is the transaction's effect on its account. Unknown types have none.
func signedAmount(txn models.Transaction) int64 {
	switch txn.Type {
	case models.TransactionTypeIncome:
		return txn.Amount
	case models.TransactionTypeExpense:
		return -txn.Amount
	default:
		return 0
	}
}
