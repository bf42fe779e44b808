// Package kv implements the ledger repositories on top of an ordered, bucketed
// key/value transaction. The memory and bbolt adapters provide the transaction.
package kv

import (
	"context"
)

// Bucket names.
const (
	BucketAccounts     = "accounts"
	BucketAccountCodes = "account_codes"
	BucketJournals     = "journals"
	BucketDrafts       = "drafts"
	BucketEntries      = "entries"
	BucketEntryOrder   = "entry_order"
	BucketLog          = "log"
	BucketAccountLines = "account_lines"
	BucketBalances     = "balances"
	BucketSequences    = "sequences"
	BucketMeta         = "meta"
	BucketContacts     = "contacts"
	BucketInvoices     = "invoices"
	BucketProducts     = "products"
	BucketProductSKUs  = "product_skus"
	BucketMovements    = "movements"
)

// Buckets lists every bucket a backend must provide.
var Buckets = []string{
	BucketAccounts, BucketAccountCodes, BucketJournals, BucketDrafts, BucketEntries,
	BucketEntryOrder, BucketLog, BucketAccountLines, BucketBalances, BucketSequences,
	BucketMeta, BucketContacts, BucketInvoices, BucketProducts, BucketProductSKUs,
	BucketMovements,
}

// Tx is one transaction over ordered buckets. Values returned by Get and passed to
// Scan callbacks are only valid until the transaction ends.
type Tx interface {
	Get(bucket string, key []byte) []byte
	Put(bucket string, key, value []byte) error
	Delete(bucket string, key []byte) error

	// Scan visits, in ascending byte order, the keys carrying prefix that are >= start
	// (start may be nil). fn returns false to stop early.
	Scan(bucket string, prefix, start []byte, fn func(k, v []byte) (bool, error)) error
}

// Backend runs Tx functions atomically. Update commits when fn returns nil.
type Backend interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
