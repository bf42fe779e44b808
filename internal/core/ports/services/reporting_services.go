package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingService defines the ledger queries. Every figure is derived from the log.
type ReportingService interface {
	// AccountBalance returns an account's balance on its normal side as of a date.
	AccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountBalance, error)

	// TrialBalance lists balances in debit/credit columns as of a date.
	TrialBalance(ctx context.Context, asOf time.Time, includeZero bool) (*domain.TrialBalance, error)

	// GeneralLedgerDetail lists an account's lines with running balance.
	GeneralLedgerDetail(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedgerDetail, error)

	// ProfitAndLoss generates a profit and loss report for a specific period
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error)

	// BalanceSheet generates a balance sheet report as of a specific date
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)

	// ReconcileBalances replays the log and compares it with the balance cache.
	ReconcileBalances(ctx context.Context) (*domain.ReconciliationReport, error)

	// VerifyLog recomputes the hash chain over the log.
	VerifyLog(ctx context.Context) (*domain.LogVerification, error)

	// ReconcileControlAccounts compares A/R, A/P and inventory control accounts with their sub-ledgers.
	ReconcileControlAccounts(ctx context.Context, asOf time.Time) (*domain.ControlAccountReport, error)
}
