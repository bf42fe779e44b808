package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its chart code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts lists accounts ordered by code.
	ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount adds an account to the chart.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive. Accounts carrying a balance are refused.
	DeactivateAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error)
}

// JournalRegistrySvc manages the journals entries are recorded in.
type JournalRegistrySvc interface {
	CreateJournal(ctx context.Context, req dto.CreateJournalRequest, userID string) (*domain.Journal, error)
	ListJournals(ctx context.Context) ([]domain.Journal, error)
}

// ChartSeederSvc imports a chart of accounts.
type ChartSeederSvc interface {
	// SeedChart creates the given journals and accounts, skipping codes that already exist.
	// It returns how many of each were created.
	SeedChart(ctx context.Context, accounts []dto.CreateAccountRequest, journals []dto.CreateJournalRequest, userID string) (int, int, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	JournalRegistrySvc
	ChartSeederSvc
}
