package domain

// AccountCategory is the fundamental accounting classification of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "asset"
	Liability AccountCategory = "liability"
	Equity    AccountCategory = "equity"
	Revenue   AccountCategory = "revenue"
	Expense   AccountCategory = "expense"
)

// AccountCategories lists every category in reporting order.
var AccountCategories = []AccountCategory{Asset, Liability, Equity, Revenue, Expense}

// Valid reports whether c is one of the five categories.
func (c AccountCategory) Valid() bool {
	switch c {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalance returns the side that increases accounts of this category.
func (c AccountCategory) NormalBalance() NormalBalance {
	switch c {
	case Asset, Expense:
		return NormalDebit
	default:
		return NormalCredit
	}
}

// NormalBalance is the side (debit or credit) on which an account's balance grows.
type NormalBalance string

const (
	NormalDebit  NormalBalance = "debit"
	NormalCredit NormalBalance = "credit"
)

// Account represents one node of the chart of accounts.
type Account struct {
	AccountID     string          `json:"accountID"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Category      AccountCategory `json:"category"`
	NormalBalance NormalBalance   `json:"normalBalance"`
	Description   string          `json:"description"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// Balance converts a net debit amount (debits minus credits) into the account's
// balance on its normal side.
func (a Account) Balance(netDebit Money) Money {
	if a.NormalBalance == NormalCredit {
		return -netDebit
	}
	return netDebit
}

// AccountFilter narrows ListAccounts.
type AccountFilter struct {
	Category   AccountCategory
	ActiveOnly bool
}

// Matches reports whether a passes the filter.
func (f AccountFilter) Matches(a Account) bool {
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.ActiveOnly && !a.IsActive {
		return false
	}
	return true
}
