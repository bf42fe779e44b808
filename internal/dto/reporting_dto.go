package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// TrialBalanceParams defines query parameters for the trial balance.
type TrialBalanceParams struct {
	AsOf        string `form:"asOf"`
	IncludeZero bool   `form:"includeZero"`
}

// PeriodParams defines a reporting period. Missing bounds are open.
type PeriodParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// AsOfParams defines a single reporting date; empty means today.
type AsOfParams struct {
	AsOf string `form:"asOf"`
}

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID string                 `json:"accountID"`
	Code      string                 `json:"code"`
	Name      string                 `json:"name"`
	Category  domain.AccountCategory `json:"category"`
	Debit     domain.Money           `json:"debit"`
	Credit    domain.Money           `json:"credit"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   string                    `json:"asOf"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  domain.Money `json:"debit"`
		Credit domain.Money `json:"credit"`
	} `json:"totals"`
}

// ToTrialBalanceResponse converts a domain.TrialBalance.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	resp := TrialBalanceResponse{
		AsOf: FormatDate(tb.AsOf),
		Rows: make([]TrialBalanceRowResponse, len(tb.Rows)),
	}
	for i, r := range tb.Rows {
		resp.Rows[i] = TrialBalanceRowResponse{
			AccountID: r.AccountID,
			Code:      r.Code,
			Name:      r.Name,
			Category:  r.Category,
			Debit:     r.Debit,
			Credit:    r.Credit,
		}
	}
	resp.Totals.Debit = tb.TotalDebit
	resp.Totals.Credit = tb.TotalCredit
	return resp
}

// GeneralLedgerLineResponse is one posted line with the running balance after it.
type GeneralLedgerLineResponse struct {
	EntryID        string       `json:"entryID"`
	EntryNumber    string       `json:"entryNumber"`
	JournalCode    string       `json:"journalCode"`
	EntryDate      string       `json:"entryDate"`
	LineNo         int          `json:"lineNo"`
	Description    string       `json:"description"`
	Debit          domain.Money `json:"debit"`
	Credit         domain.Money `json:"credit"`
	RunningBalance domain.Money `json:"runningBalance"`
}

// GeneralLedgerResponse represents the general ledger detail of one account.
type GeneralLedgerResponse struct {
	Account        AccountResponse             `json:"account"`
	From           string                      `json:"from,omitempty"`
	To             string                      `json:"to"`
	OpeningBalance domain.Money                `json:"openingBalance"`
	Lines          []GeneralLedgerLineResponse `json:"lines"`
	ClosingBalance domain.Money                `json:"closingBalance"`
}

// ToGeneralLedgerResponse converts a domain.GeneralLedgerDetail.
func ToGeneralLedgerResponse(d *domain.GeneralLedgerDetail) GeneralLedgerResponse {
	resp := GeneralLedgerResponse{
		Account:        ToAccountResponse(&d.Account),
		From:           FormatDate(d.From),
		To:             FormatDate(d.To),
		OpeningBalance: d.OpeningBalance,
		Lines:          make([]GeneralLedgerLineResponse, len(d.Lines)),
		ClosingBalance: d.ClosingBalance,
	}
	for i, l := range d.Lines {
		resp.Lines[i] = GeneralLedgerLineResponse{
			EntryID:        l.EntryID,
			EntryNumber:    l.EntryNumber,
			JournalCode:    l.JournalCode,
			EntryDate:      FormatDate(l.EntryDate),
			LineNo:         l.LineNo,
			Description:    l.Description,
			Debit:          l.Debit,
			Credit:         l.Credit,
			RunningBalance: l.RunningBalance,
		}
	}
	return resp
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID string       `json:"accountID"`
	Code      string       `json:"code"`
	Name      string       `json:"name"`
	Amount    domain.Money `json:"amount"`
}

func toAccountAmounts(amounts []domain.AccountAmount) ([]AccountAmountResponse, domain.Money) {
	res := make([]AccountAmountResponse, len(amounts))
	var total domain.Money
	for i, a := range amounts {
		res[i] = AccountAmountResponse{AccountID: a.AccountID, Code: a.Code, Name: a.Name, Amount: a.NetAmount}
		total += a.NetAmount
	}
	return res, total
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	FromDate string                  `json:"fromDate,omitempty"`
	ToDate   string                  `json:"toDate"`
	Revenue  []AccountAmountResponse `json:"revenue"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalRevenue  domain.Money `json:"totalRevenue"`
		TotalExpenses domain.Money `json:"totalExpenses"`
		NetProfit     domain.Money `json:"netProfit"`
	} `json:"summary"`
}

// ToProfitAndLossResponse converts a domain.PAndLReport.
func ToProfitAndLossResponse(r *domain.PAndLReport) ProfitAndLossResponse {
	resp := ProfitAndLossResponse{FromDate: FormatDate(r.From), ToDate: FormatDate(r.To)}
	resp.Revenue, resp.Summary.TotalRevenue = toAccountAmounts(r.Revenue)
	resp.Expenses, resp.Summary.TotalExpenses = toAccountAmounts(r.Expenses)
	resp.Summary.NetProfit = r.NetProfit
	return resp
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		CurrentEarnings  domain.Money `json:"currentEarnings"`
		TotalAssets      domain.Money `json:"totalAssets"`
		TotalLiabilities domain.Money `json:"totalLiabilities"`
		TotalEquity      domain.Money `json:"totalEquity"`
	} `json:"summary"`
}

// ToBalanceSheetResponse converts a domain.BalanceSheetReport.
func ToBalanceSheetResponse(r *domain.BalanceSheetReport) BalanceSheetResponse {
	resp := BalanceSheetResponse{AsOf: FormatDate(r.AsOf)}
	resp.Assets, _ = toAccountAmounts(r.Assets)
	resp.Liabilities, _ = toAccountAmounts(r.Liabilities)
	resp.Equity, _ = toAccountAmounts(r.Equity)
	resp.Summary.CurrentEarnings = r.CurrentEarnings
	resp.Summary.TotalAssets = r.TotalAssets
	resp.Summary.TotalLiabilities = r.TotalLiabilities
	resp.Summary.TotalEquity = r.TotalEquity
	return resp
}

// AgingReportResponse represents an aged receivables or payables report.
type AgingReportResponse struct {
	AsOf   string                  `json:"asOf"`
	Rows   []domain.AgedContactRow `json:"rows"`
	Totals domain.AgingBuckets     `json:"totals"`
}

// ToAgingReportResponse converts a domain.AgingReport.
func ToAgingReportResponse(r *domain.AgingReport) AgingReportResponse {
	rows := r.Rows
	if rows == nil {
		rows = []domain.AgedContactRow{}
	}
	return AgingReportResponse{AsOf: FormatDate(r.AsOf), Rows: rows, Totals: r.Totals}
}
