package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// JournalReader defines read operations for journal definitions
type JournalReader interface {
	FindJournalByCode(ctx context.Context, code string) (*domain.Journal, error)
	ListJournals(ctx context.Context) ([]domain.Journal, error)
}

// JournalWriter defines write operations for journal definitions
type JournalWriter interface {
	// SaveJournal persists a new journal. A taken code yields apperrors.ErrDuplicateCode.
	SaveJournal(ctx context.Context, journal domain.Journal) error
}

// EntryReader defines read operations over drafts and the posted log.
type EntryReader interface {
	// FindEntryByID looks up a draft or a logged entry.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns up to limit entries passing filter that sort after the cursor,
	// ordered by entry date then entry ID. A nil cursor starts from the beginning.
	ListEntries(ctx context.Context, filter domain.EntryFilter, after *domain.EntryCursor, limit int) ([]domain.JournalEntry, error)

	// ListAccountLines reads the account index: posted lines of accountID dated within
	// [from, to] (zero bounds are open), ordered by date, entry ID and line number.
	ListAccountLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error)

	// ScanLog visits every logged entry in append order.
	ScanLog(ctx context.Context, fn func(entry domain.JournalEntry) error) error

	// LogHead returns the sequence and hash of the last appended entry.
	LogHead(ctx context.Context) (domain.LogHead, error)
}

// EntryWriter defines write operations over drafts and the posted log.
type EntryWriter interface {
	// SaveDraft inserts or replaces a draft. Entries already in the log are refused
	// with apperrors.ErrAppendOnly.
	SaveDraft(ctx context.Context, entry domain.JournalEntry) error

	// DeleteDraft removes a draft without trace.
	DeleteDraft(ctx context.Context, entryID string) error

	// AppendEntry adds a posted entry to the log, indexes its lines by account and
	// drops any draft with the same ID. entry.LogSequence must follow the log head.
	AppendEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkEntryVoided flips a posted entry to voided and links its reversal. No other
	// field of a logged entry can change.
	MarkEntryVoided(ctx context.Context, entryID, reversedByID, reason, actor string, at time.Time) error
}

// BalanceStore is the materialised projection of the log: net debit per account.
type BalanceStore interface {
	NetDebitBalances(ctx context.Context) (map[string]domain.Money, error)
	ApplyBalanceDeltas(ctx context.Context, deltas map[string]domain.Money) error
}

// SequenceAllocator hands out strictly increasing numbers per key, starting at 1.
type SequenceAllocator interface {
	NextSequence(ctx context.Context, key string) (int64, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	EntryReader
	EntryWriter
	BalanceStore
	SequenceAllocator
}
