package services

import (
	"context"
	"iter"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// EntryReaderSvc defines read operations for journal entries
type EntryReaderSvc interface {
	// GetEntry retrieves a draft or logged entry.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries returns one page of entries ordered by entry date then entry ID.
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// Entries lazily walks every entry passing filter, fetching pages on demand.
	Entries(ctx context.Context, filter domain.EntryFilter) iter.Seq2[domain.JournalEntry, error]
}

// EntryWriterSvc defines the draft lifecycle and posting operations
type EntryWriterSvc interface {
	CreateDraft(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error)
	UpdateDraft(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error)
	DiscardDraft(ctx context.Context, entryID string, userID string) error

	// PostEntry validates a draft and appends it to the log with its entry number.
	PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// VoidEntry appends a reversing entry and marks the original voided. It returns
	// the voided original and the reversal.
	VoidEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.JournalEntry, *domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-entry service interfaces
type JournalSvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
