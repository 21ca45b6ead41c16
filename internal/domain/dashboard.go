package domain

import "github.com/shopspring/decimal"

// AccountBalance is one wallet's snapshot as shown on the dashboard
type AccountBalance struct {
	AccountID int32           `json:"accountId"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
}

// DashboardSummary combines the current month's budget-vs-actual rollup
// with account balances
type DashboardSummary struct {
	Rollup       *BudgetRollup    `json:"rollup"`
	Accounts     []AccountBalance `json:"accounts"`
	TotalBalance decimal.Decimal  `json:"totalBalance"`
}
