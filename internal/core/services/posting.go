package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

// PostingEngine is the only writer of the log. Every service that posts (manual
// entries, invoices, payments, stock movements) goes through one shared engine so
// the halt flag covers all of them.
type PostingEngine struct {
	BaseService

	mu       sync.RWMutex
	haltedBy error
}

// NewPostingEngine creates an engine in the running state.
func NewPostingEngine(options ...ServiceOption) *PostingEngine {
	return &PostingEngine{BaseService: newBaseService(options...)}
}

// Halted returns the consistency error that stopped the engine, or nil.
func (p *PostingEngine) Halted() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.haltedBy
}

// Halt stops all further posting. The first cause wins.
func (p *PostingEngine) Halt(ctx context.Context, cause error) error {
	p.mu.Lock()
	if p.haltedBy == nil {
		p.haltedBy = cause
	}
	p.mu.Unlock()
	p.LogError(ctx, cause, "Ledger consistency violated, posting halted")
	if errors.Is(cause, apperrors.ErrConsistency) {
		return cause
	}
	return fmt.Errorf("%w: %v", apperrors.ErrConsistency, cause)
}

func (p *PostingEngine) checkRunning() error {
	if cause := p.Halted(); cause != nil {
		return fmt.Errorf("%w: posting halted: %v", apperrors.ErrConsistency, cause)
	}
	return nil
}

// validate runs the posting checks that do not touch numbering.
func (p *PostingEngine) validate(ctx context.Context, tx portsrepo.LedgerTx, entry *domain.JournalEntry) error {
	if entry.Status != domain.EntryDraft {
		return fmt.Errorf("%w: entry %s is %s, only drafts can be posted", apperrors.ErrState, entry.EntryID, entry.Status)
	}
	if err := accounting.CheckNotEmpty(entry.Lines); err != nil {
		return err
	}

	accounts, err := tx.FindAccountsByIDs(ctx, entry.AccountIDs())
	if err != nil {
		return err
	}
	for i, l := range entry.Lines {
		field := fmt.Sprintf("lines[%d].accountID", i)
		acc, ok := accounts[l.AccountID]
		if !ok {
			return apperrors.NewFieldError(apperrors.ErrUnknownAccount, field, l.AccountID)
		}
		// A reversal must be able to clear an account that was deactivated after the original posted.
		if !acc.IsActive && !entry.IsReversal() {
			return apperrors.NewFieldError(apperrors.ErrInactiveAccount, field, acc.Code)
		}
	}

	if err := accounting.CheckLineShapes(entry.Lines); err != nil {
		return err
	}
	if err := accounting.CheckBalanced(entry.Lines); err != nil {
		return err
	}

	if _, err := tx.FindJournalByCode(ctx, entry.JournalCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewFieldError(apperrors.ErrUnknownJournal, "journalCode", entry.JournalCode)
		}
		return err
	}
	return nil
}

// Post validates entry and appends it to the log inside tx: it allocates the entry
// number, chains the hash, updates the balance cache and re-checks that net debits
// across all accounts still sum to zero.
func (p *PostingEngine) Post(ctx context.Context, tx portsrepo.LedgerTx, entry domain.JournalEntry, actor string) (*domain.JournalEntry, error) {
	if err := p.checkRunning(); err != nil {
		return nil, err
	}
	if err := p.validate(ctx, tx, &entry); err != nil {
		return nil, err
	}

	entry.EntryDate = domain.DateOnly(entry.EntryDate)
	year := entry.EntryDate.Year()
	seq, err := tx.NextSequence(ctx, domain.EntrySequenceKey(entry.JournalCode, year))
	if err != nil {
		return nil, err
	}
	head, err := tx.LogHead(ctx)
	if err != nil {
		return nil, err
	}

	now := p.Now()
	lines := make([]domain.JournalLine, len(entry.Lines))
	for i, l := range entry.Lines {
		l.LineNo = i + 1
		lines[i] = l
	}
	entry.Lines = lines
	entry.EntryNumber = domain.FormatEntryNumber(entry.JournalCode, year, seq)
	entry.Status = domain.EntryPosted
	entry.PostedAt = &now
	entry.PostedBy = actor
	entry.LogSequence = head.Sequence + 1
	entry.PrevHash = head.Hash
	entry.Touch(actor, now)
	entry.Hash = accounting.EntryHash(entry)

	if err := tx.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err := tx.ApplyBalanceDeltas(ctx, accounting.NetDebitDeltas(entry.Lines)); err != nil {
		return nil, err
	}
	if err := p.checkZeroSum(ctx, tx); err != nil {
		return nil, err
	}

	p.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.Int64("log_sequence", entry.LogSequence))
	return &entry, nil
}

func (p *PostingEngine) checkZeroSum(ctx context.Context, tx portsrepo.LedgerTx) error {
	balances, err := tx.NetDebitBalances(ctx)
	if err != nil {
		return err
	}
	if sum := accounting.SumNetDebits(balances); !sum.IsZero() {
		return p.Halt(ctx, fmt.Errorf("%w: net debits across all accounts sum to %s minor units", apperrors.ErrConsistency, sum))
	}
	return nil
}

// Void appends the reversal of a posted entry, dated today, and marks the original
// voided. Reversals themselves cannot be voided.
func (p *PostingEngine) Void(ctx context.Context, tx portsrepo.LedgerTx, entryID, reason, actor string) (*domain.JournalEntry, *domain.JournalEntry, error) {
	if err := p.checkRunning(); err != nil {
		return nil, nil, err
	}
	original, err := tx.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, nil, err
	}
	if original.Status != domain.EntryPosted {
		return nil, nil, fmt.Errorf("%w: entry %s is %s, only posted entries can be voided", apperrors.ErrState, entryID, original.Status)
	}
	if original.IsReversal() {
		return nil, nil, fmt.Errorf("%w: entry %s is a reversal and cannot be voided", apperrors.ErrState, entryID)
	}

	now := p.Now()
	reversal := domain.JournalEntry{
		EntryID:      newID(),
		JournalCode:  original.JournalCode,
		EntryDate:    domain.DateOnly(now),
		Description:  "Reversal of " + original.EntryNumber,
		Reference:    original.EntryNumber,
		Status:       domain.EntryDraft,
		Lines:        accounting.ReverseLines(original.Lines),
		ReversalOfID: original.EntryID,
		SourceType:   original.SourceType,
		SourceID:     original.SourceID,
		AuditFields:  domain.NewAuditFields(actor, now),
	}
	posted, err := p.Post(ctx, tx, reversal, actor)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.MarkEntryVoided(ctx, original.EntryID, posted.EntryID, reason, actor, now); err != nil {
		return nil, nil, err
	}
	voided, err := tx.FindEntryByID(ctx, original.EntryID)
	if err != nil {
		return nil, nil, err
	}

	p.LogInfo(ctx, "Journal entry voided",
		slog.String("entry_id", voided.EntryID),
		slog.String("reversal_id", posted.EntryID))
	return voided, posted, nil
}
