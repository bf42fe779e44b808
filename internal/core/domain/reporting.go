package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is an account's balance on its normal side as of a date.
type AccountBalance struct {
	AccountID     string        `json:"accountID"`
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	NormalBalance NormalBalance `json:"normalBalance"`
	AsOf          time.Time     `json:"asOf"`
	Balance       Money         `json:"balance"`
}

// TrialBalanceRow represents a single row in a trial balance report. Exactly one of
// Debit and Credit is nonzero unless the account balance is zero.
type TrialBalanceRow struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  AccountCategory `json:"category"`
	Debit     Money           `json:"debit"`
	Credit    Money           `json:"credit"`
}

// TrialBalance lists every account balance in debit/credit columns.
type TrialBalance struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  Money             `json:"totalDebit"`
	TotalCredit Money             `json:"totalCredit"`
}

// GeneralLedgerLine is a posted line with the account's running balance after it.
type GeneralLedgerLine struct {
	LedgerLine
	RunningBalance Money `json:"runningBalance"`
}

// GeneralLedgerDetail is the movement of one account over a period.
type GeneralLedgerDetail struct {
	Account        Account             `json:"account"`
	From           time.Time           `json:"from"`
	To             time.Time           `json:"to"`
	OpeningBalance Money               `json:"openingBalance"`
	Lines          []GeneralLedgerLine `json:"lines"`
	ClosingBalance Money               `json:"closingBalance"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID string `json:"accountID"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	NetAmount Money  `json:"netAmount"`
}

// PAndLReport represents a profit and loss report
type PAndLReport struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetProfit Money           `json:"netProfit"`
}

// BalanceSheetReport represents a balance sheet report. CurrentEarnings is revenue
// minus expenses to date, folded into equity so the report balances before closing.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	CurrentEarnings  Money           `json:"currentEarnings"`
	TotalAssets      Money           `json:"totalAssets"`
	TotalLiabilities Money           `json:"totalLiabilities"`
	TotalEquity      Money           `json:"totalEquity"`
}

// AgingBuckets splits an amount by days past due.
type AgingBuckets struct {
	Current    Money `json:"current"`
	Days1To30  Money `json:"days1To30"`
	Days31To60 Money `json:"days31To60"`
	Days61To90 Money `json:"days61To90"`
	Over90     Money `json:"over90"`
	Total      Money `json:"total"`
}

// Add places amount into the bucket for daysOverdue.
func (b *AgingBuckets) Add(daysOverdue int, amount Money) {
	switch {
	case daysOverdue <= 0:
		b.Current += amount
	case daysOverdue <= 30:
		b.Days1To30 += amount
	case daysOverdue <= 60:
		b.Days31To60 += amount
	case daysOverdue <= 90:
		b.Days61To90 += amount
	default:
		b.Over90 += amount
	}
	b.Total += amount
}

// Merge adds other into b.
func (b *AgingBuckets) Merge(other AgingBuckets) {
	b.Current += other.Current
	b.Days1To30 += other.Days1To30
	b.Days31To60 += other.Days31To60
	b.Days61To90 += other.Days61To90
	b.Over90 += other.Over90
	b.Total += other.Total
}

// AgedContactRow is one contact's open balance by age.
type AgedContactRow struct {
	ContactID   string `json:"contactID"`
	ContactName string `json:"contactName"`
	AgingBuckets
}

// AgingReport is an aged receivables or aged payables report.
type AgingReport struct {
	AsOf   time.Time        `json:"asOf"`
	Rows   []AgedContactRow `json:"rows"`
	Totals AgingBuckets     `json:"totals"`
}

// BalanceDrift is an account whose cached balance disagrees with a replay of the log.
type BalanceDrift struct {
	AccountID string `json:"accountID"`
	Code      string `json:"code"`
	Cached    Money  `json:"cached"`
	Replayed  Money  `json:"replayed"`
}

// ReconciliationReport compares the balance cache with the log.
type ReconciliationReport struct {
	EntriesReplayed int            `json:"entriesReplayed"`
	AccountsChecked int            `json:"accountsChecked"`
	Drifts          []BalanceDrift `json:"drifts"`
}

// Clean reports whether no drift was found.
func (r ReconciliationReport) Clean() bool { return len(r.Drifts) == 0 }

// LogVerification is the result of re-hashing the log.
type LogVerification struct {
	Entries        int    `json:"entries"`
	HeadHash       string `json:"headHash"`
	Valid          bool   `json:"valid"`
	BrokenSequence int64  `json:"brokenSequence,omitempty"`
	BrokenEntryID  string `json:"brokenEntryID,omitempty"`
}

// ControlAccountCheck compares a control account with the total of its sub-ledger.
type ControlAccountCheck struct {
	Name             string `json:"name"`
	AccountID        string `json:"accountID"`
	AccountCode      string `json:"accountCode"`
	LedgerBalance    Money  `json:"ledgerBalance"`
	SubledgerBalance Money  `json:"subledgerBalance"`
	Difference       Money  `json:"difference"`
}

// ControlAccountReport lists the control-account checks.
type ControlAccountReport struct {
	AsOf   time.Time             `json:"asOf"`
	Checks []ControlAccountCheck `json:"checks"`
}

// InventoryValuationRow is one product's stock and carrying value.
type InventoryValuationRow struct {
	ProductID       string          `json:"productID"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	ValuationMethod ValuationMethod `json:"valuationMethod"`
	Quantity        decimal.Decimal `json:"quantity"`
	AverageCost     Money           `json:"averageCost"`
	Value           Money           `json:"value"`
}

// InventoryValuationReport totals the valuation of every product.
type InventoryValuationReport struct {
	Rows       []InventoryValuationRow `json:"rows"`
	TotalValue Money                   `json:"totalValue"`
}
