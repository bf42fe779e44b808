package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

const entryIteratorPageSize = 100

type journalService struct {
	BaseService
	store  portsrepo.TransactionManager
	engine *PostingEngine
}

// NewJournalService creates the journal store and posting front end.
func NewJournalService(store portsrepo.TransactionManager, engine *PostingEngine, options ...ServiceOption) portssvc.JournalSvcFacade {
	return &journalService{BaseService: newBaseService(options...), store: store, engine: engine}
}

func (s *journalService) applyRequest(entry *domain.JournalEntry, req dto.CreateEntryRequest) error {
	date, err := dto.ParseDate("entryDate", req.EntryDate)
	if err != nil {
		return err
	}
	lines := make([]domain.JournalLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalLine{
			LineNo:      i + 1,
			AccountID:   strings.TrimSpace(l.AccountID),
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	entry.JournalCode = strings.ToUpper(strings.TrimSpace(req.JournalCode))
	entry.EntryDate = date
	entry.Description = req.Description
	entry.Reference = req.Reference
	entry.Lines = lines
	return nil
}

func requireJournal(ctx context.Context, tx portsrepo.LedgerTx, code string) error {
	if _, err := tx.FindJournalByCode(ctx, code); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewFieldError(apperrors.ErrUnknownJournal, "journalCode", code)
		}
		return err
	}
	return nil
}

func (s *journalService) CreateDraft(ctx context.Context, req dto.CreateEntryRequest, userID string) (*domain.JournalEntry, error) {
	entry := domain.JournalEntry{
		EntryID:     newID(),
		Status:      domain.EntryDraft,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	if err := s.applyRequest(&entry, req); err != nil {
		return nil, err
	}
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		if err := requireJournal(ctx, tx, entry.JournalCode); err != nil {
			return err
		}
		return tx.SaveDraft(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Draft entry created", slog.String("entry_id", entry.EntryID), slog.String("journal", entry.JournalCode))
	return &entry, nil
}

func (s *journalService) UpdateDraft(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		entry, err = tx.FindEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.EntryDraft {
			return fmt.Errorf("%w: entry %s is %s, only drafts can be edited", apperrors.ErrState, entryID, entry.Status)
		}
		if err := s.applyRequest(entry, req); err != nil {
			return err
		}
		if err := requireJournal(ctx, tx, entry.JournalCode); err != nil {
			return err
		}
		entry.Touch(userID, s.Now())
		return tx.SaveDraft(ctx, *entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *journalService) DiscardDraft(ctx context.Context, entryID string, userID string) error {
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		entry, err := tx.FindEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.EntryDraft {
			return fmt.Errorf("%w: entry %s is %s, only drafts can be discarded", apperrors.ErrState, entryID, entry.Status)
		}
		return tx.DeleteDraft(ctx, entryID)
	})
	if err != nil {
		return err
	}
	s.LogInfo(ctx, "Draft entry discarded", slog.String("entry_id", entryID), slog.String("user_id", userID))
	return nil
}

func (s *journalService) PostEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	var posted *domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		entry, err := tx.FindEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		posted, err = s.engine.Post(ctx, tx, *entry, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConsistency) {
			s.LogError(ctx, err, "Posting failed on a consistency check", slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return posted, nil
}

func (s *journalService) VoidEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.JournalEntry, *domain.JournalEntry, error) {
	var voided, reversal *domain.JournalEntry
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		entry, err := tx.FindEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry.OwnedBySubledger() {
			return fmt.Errorf("%w: entry %s was posted for %s %s; %s",
				apperrors.ErrState, entryID, entry.SourceType, entry.SourceID, entry.SourceType.Remedy())
		}
		voided, reversal, err = s.engine.Void(ctx, tx, entryID, reason, userID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return voided, reversal, nil
}

func (s *journalService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		entry, err = tx.FindEntryByID(ctx, entryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func entryFilterFromParams(params dto.ListEntriesParams) (domain.EntryFilter, error) {
	filter := domain.EntryFilter{
		JournalCode: strings.ToUpper(params.JournalCode),
		Status:      domain.EntryStatus(params.Status),
		AccountID:   params.AccountID,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, apperrors.NewFieldError(apperrors.ErrValidation, "status", "oneof=draft posted voided")
	}
	var err error
	if filter.From, err = dto.ParseOptionalDate("from", params.From); err != nil {
		return filter, err
	}
	if filter.To, err = dto.ParseOptionalDate("to", params.To); err != nil {
		return filter, err
	}
	return filter, nil
}

func (s *journalService) page(ctx context.Context, filter domain.EntryFilter, after *domain.EntryCursor, limit int) ([]domain.JournalEntry, bool, error) {
	var entries []domain.JournalEntry
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		entries, err = tx.ListEntries(ctx, filter, after, limit+1)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if len(entries) > limit {
		return entries[:limit], true, nil
	}
	return entries, false, nil
}

func (s *journalService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	filter, err := entryFilterFromParams(params)
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	var after *domain.EntryCursor
	if params.NextToken != "" {
		date, id, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, apperrors.NewFieldError(apperrors.ErrInvalidPageToken, "nextToken", err.Error())
		}
		after = &domain.EntryCursor{EntryDate: date, EntryID: id}
	}

	entries, more, err := s.page(ctx, filter, after, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries")
		return nil, err
	}

	resp := &dto.ListEntriesResponse{Entries: make([]dto.EntryResponse, len(entries))}
	for i := range entries {
		resp.Entries[i] = dto.ToEntryResponse(&entries[i])
	}
	if more {
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.EntryDate, last.EntryID)
		resp.NextToken = &token
	}
	return resp, nil
}

func (s *journalService) Entries(ctx context.Context, filter domain.EntryFilter) iter.Seq2[domain.JournalEntry, error] {
	return func(yield func(domain.JournalEntry, error) bool) {
		var after *domain.EntryCursor
		for {
			entries, more, err := s.page(ctx, filter, after, entryIteratorPageSize)
			if err != nil {
				yield(domain.JournalEntry{}, err)
				return
			}
			for _, e := range entries {
				if !yield(e, nil) {
					return
				}
			}
			if !more || len(entries) == 0 {
				return
			}
			last := entries[len(entries)-1]
			after = &domain.EntryCursor{EntryDate: domain.DateOnly(last.EntryDate), EntryID: last.EntryID}
		}
	}
}
