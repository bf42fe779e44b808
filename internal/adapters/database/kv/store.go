package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

const dateKeyFormat = "20060102"

// Store adapts a Backend to the repository ports.
type Store struct {
	backend Backend
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

var _ portsrepo.LedgerStore = (*Store)(nil)

// Update runs fn in a read-write transaction.
func (s *Store) Update(ctx context.Context, fn func(tx portsrepo.LedgerTx) error) error {
	return s.backend.Update(ctx, func(tx Tx) error {
		return fn(&ledgerTx{tx: tx})
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx portsrepo.LedgerTx) error) error {
	return s.backend.View(ctx, func(tx Tx) error {
		return fn(&ledgerTx{tx: tx})
	})
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// ledgerTx implements portsrepo.LedgerTx over a Tx.
type ledgerTx struct {
	tx Tx
}

var _ portsrepo.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) getJSON(bucket, key string, v any) (bool, error) {
	data := t.tx.Get(bucket, []byte(key))
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	return nil
}

func (t *ledgerTx) putJSON(bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", bucket, key, err)
	}
	return t.tx.Put(bucket, []byte(key), data)
}

func (t *ledgerTx) getString(bucket, key string) (string, bool) {
	data := t.tx.Get(bucket, []byte(key))
	if data == nil {
		return "", false
	}
	return string(data), true
}

func (t *ledgerTx) putString(bucket, key, value string) error {
	return t.tx.Put(bucket, []byte(key), []byte(value))
}

// scanJSON decodes every value under prefix into a new T and passes it to fn.
func scanJSON[T any](t *ledgerTx, bucket, prefix string, fn func(v T) (bool, error)) error {
	return t.tx.Scan(bucket, []byte(prefix), nil, func(k, data []byte) (bool, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return false, fmt.Errorf("failed to decode %s/%s: %w", bucket, k, err)
		}
		return fn(v)
	})
}

func dateKey(t time.Time) string {
	return t.UTC().Format(dateKeyFormat)
}

func entryOrderKey(date time.Time, entryID string) string {
	return dateKey(date) + "|" + entryID
}

func accountLinePrefix(accountID string) string {
	return accountID + "|"
}

func accountLineKey(accountID string, date time.Time, entryID string, lineNo int) string {
	return fmt.Sprintf("%s|%s|%s|%06d", accountID, dateKey(date), entryID, lineNo)
}

func logKey(seq int64) string {
	return fmt.Sprintf("%020d", seq)
}

func movementKey(productID string, seq int64) string {
	return fmt.Sprintf("%s|%010d", productID, seq)
}
