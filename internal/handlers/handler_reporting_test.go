package handlers_test

import (
	"net/http"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/stretchr/testify/mock"
)

func (suite *HandlerTestSuite) TestTrialBalance() {
	tb := &domain.TrialBalance{
		AsOf: date("2024-06-30"),
		Rows: []domain.TrialBalanceRow{
			{AccountID: "acc-cash", Code: "1000", Name: "Cash", Category: domain.Asset, Debit: 150000},
			{AccountID: "acc-rev", Code: "4000", Name: "Sales", Category: domain.Revenue, Credit: 150000},
			{AccountID: "acc-ar", Code: "1100", Name: "Accounts Receivable", Category: domain.Asset},
		},
		TotalDebit:  150000,
		TotalCredit: 150000,
	}
	suite.reporting.On("TrialBalance", mock.Anything, date("2024-06-30"), true).Return(tb, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance?asOf=2024-06-30&includeZero=true", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TrialBalanceResponse
	suite.decode(w, &resp)
	suite.Equal("2024-06-30", resp.AsOf)
	suite.Len(resp.Rows, 3)
	suite.Equal(resp.Totals.Debit, resp.Totals.Credit)
}

func (suite *HandlerTestSuite) TestTrialBalance_Halted() {
	suite.reporting.On("TrialBalance", mock.Anything, time.Time{}, false).
		Return(nil, apperrors.ErrConsistency).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/trial-balance", "")

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Equal(apperrors.ErrConsistency.Error(), suite.errorBody(w).Error)
}

func (suite *HandlerTestSuite) TestProfitAndLoss_BadPeriod() {
	w := suite.do(http.MethodGet, "/api/v1/reports/profit-and-loss?from=2024-13-01", "")

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("from", suite.errorBody(w).Field)
}

func (suite *HandlerTestSuite) TestProfitAndLoss() {
	report := &domain.PAndLReport{
		From:      date("2024-01-01"),
		To:        date("2024-06-30"),
		Revenue:   []domain.AccountAmount{{AccountID: "acc-rev", Code: "4000", Name: "Sales", NetAmount: 500000}},
		Expenses:  []domain.AccountAmount{{AccountID: "acc-rent", Code: "6000", Name: "Rent", NetAmount: 120000}},
		NetProfit: 380000,
	}
	suite.reporting.On("ProfitAndLoss", mock.Anything, date("2024-01-01"), date("2024-06-30")).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/profit-and-loss?from=2024-01-01&to=2024-06-30", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ProfitAndLossResponse
	suite.decode(w, &resp)
	suite.Equal(domain.Money(380000), resp.Summary.NetProfit)
	suite.Equal(domain.Money(500000), resp.Summary.TotalRevenue)
}

func (suite *HandlerTestSuite) TestAgedReceivables_DefaultsAsOf() {
	report := &domain.AgingReport{AsOf: date("2024-06-30")}
	suite.invoices.On("AgedReceivables", mock.Anything, time.Time{}).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/aged-receivables", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AgingReportResponse
	suite.decode(w, &resp)
	suite.NotNil(resp.Rows)
	suite.Empty(resp.Rows)
}

func (suite *HandlerTestSuite) TestAgedPayables() {
	row := domain.AgedContactRow{ContactID: "c-2", ContactName: "Paper Co"}
	row.Add(45, 80000)
	report := &domain.AgingReport{AsOf: date("2024-06-30"), Rows: []domain.AgedContactRow{row}, Totals: row.AgingBuckets}
	suite.invoices.On("AgedPayables", mock.Anything, date("2024-06-30")).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/aged-payables?asOf=2024-06-30", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.AgingReportResponse
	suite.decode(w, &resp)
	suite.Require().Len(resp.Rows, 1)
	suite.Equal(domain.Money(80000), resp.Rows[0].Days31To60)
	suite.Equal(domain.Money(80000), resp.Totals.Total)
}

func (suite *HandlerTestSuite) TestControlAccounts() {
	report := &domain.ControlAccountReport{
		AsOf: date("2024-06-30"),
		Checks: []domain.ControlAccountCheck{
			{Name: "receivables", AccountID: "acc-ar", AccountCode: "1100", LedgerBalance: 24500, SubledgerBalance: 24500},
		},
	}
	suite.reporting.On("ReconcileControlAccounts", mock.Anything, date("2024-06-30")).Return(report, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/reports/control-accounts?asOf=2024-06-30", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.ControlAccountReport
	suite.decode(w, &resp)
	suite.Require().Len(resp.Checks, 1)
	suite.Zero(resp.Checks[0].Difference)
}

func (suite *HandlerTestSuite) TestVerifyLog_Broken() {
	result := &domain.LogVerification{Entries: 12, Valid: false, BrokenSequence: 7, BrokenEntryID: "e7"}
	suite.reporting.On("VerifyLog", mock.Anything).Return(result, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/verify-log", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.LogVerification
	suite.decode(w, &resp)
	suite.False(resp.Valid)
	suite.Equal(int64(7), resp.BrokenSequence)
}

func (suite *HandlerTestSuite) TestReconcileBalances() {
	report := &domain.ReconciliationReport{
		EntriesReplayed: 40,
		AccountsChecked: 12,
		Drifts:          []domain.BalanceDrift{{AccountID: "acc-cash", Code: "1000", Cached: 1000, Replayed: 900}},
	}
	suite.reporting.On("ReconcileBalances", mock.Anything).Return(report, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/admin/reconcile-balances", "")

	suite.Equal(http.StatusOK, w.Code)
	var resp domain.ReconciliationReport
	suite.decode(w, &resp)
	suite.Equal(40, resp.EntriesReplayed)
	suite.Len(resp.Drifts, 1)
}
