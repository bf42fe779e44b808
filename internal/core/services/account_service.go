package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	store portsrepo.TransactionManager
}

// NewAccountService creates the account registry service.
func NewAccountService(store portsrepo.TransactionManager, options ...ServiceOption) portssvc.AccountSvcFacade {
	return &accountService{BaseService: newBaseService(options...), store: store}
}

func (s *accountService) newAccount(req dto.CreateAccountRequest, userID string) (domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Account{}, apperrors.NewFieldError(apperrors.ErrValidation, "code", "required")
	}
	category := domain.AccountCategory(strings.ToLower(strings.TrimSpace(req.Category)))
	if !category.Valid() {
		return domain.Account{}, apperrors.NewFieldError(apperrors.ErrInvalidCategory, "category", "oneof=asset liability equity revenue expense")
	}
	return domain.Account{
		AccountID:     newID(),
		Code:          code,
		Name:          strings.TrimSpace(req.Name),
		Category:      category,
		NormalBalance: category.NormalBalance(),
		Description:   req.Description,
		IsActive:      true,
		AuditFields:   domain.NewAuditFields(userID, s.Now()),
	}, nil
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.newAccount(req, userID)
	if err != nil {
		return nil, err
	}
	err = s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		return tx.SaveAccount(ctx, account)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to save account", slog.String("code", account.Code))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Account created",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("category", string(account.Category)))
	return &account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		account, err = tx.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !account.IsActive {
			return nil
		}
		balances, err := tx.NetDebitBalances(ctx)
		if err != nil {
			return err
		}
		if net := balances[accountID]; net != 0 {
			return fmt.Errorf("%w: account %s balance is %s", apperrors.ErrAccountInUse, account.Code, account.Balance(net))
		}
		account.IsActive = false
		account.Touch(userID, s.Now())
		return tx.UpdateAccount(ctx, *account)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		account, err = tx.FindAccountByID(ctx, accountID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		account, err = tx.FindAccountByCode(ctx, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		accounts, err = tx.ListAccounts(ctx, filter)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) newJournal(req dto.CreateJournalRequest, userID string) (domain.Journal, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Journal{}, apperrors.NewFieldError(apperrors.ErrValidation, "code", "required")
	}
	journalType := domain.JournalType(req.Type)
	if !journalType.Valid() {
		return domain.Journal{}, apperrors.NewFieldError(apperrors.ErrValidation, "type", "oneof=general sales purchase cash bank")
	}
	return domain.Journal{
		Code:        code,
		Name:        req.Name,
		Type:        journalType,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}, nil
}

func (s *accountService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, userID string) (*domain.Journal, error) {
	journal, err := s.newJournal(req, userID)
	if err != nil {
		return nil, err
	}
	err = s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		return tx.SaveJournal(ctx, journal)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Journal created", slog.String("code", journal.Code))
	return &journal, nil
}

func (s *accountService) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	var journals []domain.Journal
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		journals, err = tx.ListJournals(ctx)
		return err
	})
	return journals, err
}

func (s *accountService) SeedChart(ctx context.Context, accounts []dto.CreateAccountRequest, journals []dto.CreateJournalRequest, userID string) (int, int, error) {
	var createdAccounts, createdJournals int
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		createdAccounts, createdJournals = 0, 0
		for _, req := range journals {
			journal, err := s.newJournal(req, userID)
			if err != nil {
				return fmt.Errorf("journal %s: %w", req.Code, err)
			}
			if _, err := tx.FindJournalByCode(ctx, journal.Code); err == nil {
				continue
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if err := tx.SaveJournal(ctx, journal); err != nil {
				return err
			}
			createdJournals++
		}
		for _, req := range accounts {
			account, err := s.newAccount(req, userID)
			if err != nil {
				return fmt.Errorf("account %s: %w", req.Code, err)
			}
			if _, err := tx.FindAccountByCode(ctx, account.Code); err == nil {
				continue
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if err := tx.SaveAccount(ctx, account); err != nil {
				return err
			}
			createdAccounts++
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to seed chart of accounts")
		return 0, 0, err
	}
	s.LogInfo(ctx, "Chart of accounts seeded",
		slog.Int("accounts_created", createdAccounts),
		slog.Int("journals_created", createdJournals))
	return createdAccounts, createdJournals, nil
}
