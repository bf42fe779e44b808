package kv

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func (t *ledgerTx) SaveAccount(ctx context.Context, account domain.Account) error {
	if _, taken := t.getString(BucketAccountCodes, account.Code); taken {
		return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicateCode, account.Code)
	}
	if err := t.putJSON(BucketAccounts, account.AccountID, account); err != nil {
		return err
	}
	return t.putString(BucketAccountCodes, account.Code, account.AccountID)
}

func (t *ledgerTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	existing, err := t.FindAccountByID(ctx, account.AccountID)
	if err != nil {
		return err
	}
	if existing.Code != account.Code {
		return fmt.Errorf("%w: account code cannot change", apperrors.ErrValidation)
	}
	return t.putJSON(BucketAccounts, account.AccountID, account)
}

func (t *ledgerTx) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	var account domain.Account
	found, err := t.getJSON(BucketAccounts, accountID, &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
	}
	return &account, nil
}

func (t *ledgerTx) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	id, ok := t.getString(BucketAccountCodes, code)
	if !ok {
		return nil, fmt.Errorf("%w: account code %s", apperrors.ErrNotFound, code)
	}
	return t.FindAccountByID(ctx, id)
}

func (t *ledgerTx) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	accounts := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		var account domain.Account
		found, err := t.getJSON(BucketAccounts, id, &account)
		if err != nil {
			return nil, err
		}
		if found {
			accounts[id] = account
		}
	}
	return accounts, nil
}

func (t *ledgerTx) ListAccounts(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	var accounts []domain.Account
	err := scanJSON(t, BucketAccounts, "", func(a domain.Account) (bool, error) {
		if filter.Matches(a) {
			accounts = append(accounts, a)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}
