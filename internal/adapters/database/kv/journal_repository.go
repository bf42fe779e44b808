package kv

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

const headKey = "head"

func (t *ledgerTx) SaveJournal(ctx context.Context, journal domain.Journal) error {
	if t.tx.Get(BucketJournals, []byte(journal.Code)) != nil {
		return fmt.Errorf("%w: journal code %s", apperrors.ErrDuplicateCode, journal.Code)
	}
	return t.putJSON(BucketJournals, journal.Code, journal)
}

func (t *ledgerTx) FindJournalByCode(ctx context.Context, code string) (*domain.Journal, error) {
	var journal domain.Journal
	found, err := t.getJSON(BucketJournals, code, &journal)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, code)
	}
	return &journal, nil
}

func (t *ledgerTx) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	var journals []domain.Journal
	err := scanJSON(t, BucketJournals, "", func(j domain.Journal) (bool, error) {
		journals = append(journals, j)
		return true, nil
	})
	return journals, err
}

func (t *ledgerTx) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	for _, bucket := range []string{BucketEntries, BucketDrafts} {
		var entry domain.JournalEntry
		found, err := t.getJSON(bucket, entryID, &entry)
		if err != nil {
			return nil, err
		}
		if found {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
}

func (t *ledgerTx) ListEntries(ctx context.Context, filter domain.EntryFilter, after *domain.EntryCursor, limit int) ([]domain.JournalEntry, error) {
	var drafts []domain.JournalEntry
	if filter.Status == "" || filter.Status == domain.EntryDraft {
		err := scanJSON(t, BucketDrafts, "", func(e domain.JournalEntry) (bool, error) {
			if filter.Matches(e) && (after == nil || after.After(e)) {
				drafts = append(drafts, e)
			}
			return true, nil
		})
		if err != nil {
			return nil, err
		}
		sortEntries(drafts)
	}

	var logged []domain.JournalEntry
	if filter.Status != domain.EntryDraft {
		var start []byte
		if after != nil {
			start = []byte(entryOrderKey(after.EntryDate, after.EntryID))
		} else if !filter.From.IsZero() {
			start = []byte(dateKey(filter.From))
		}
		err := t.tx.Scan(BucketEntryOrder, nil, start, func(k, v []byte) (bool, error) {
			var e domain.JournalEntry
			found, err := t.getJSON(BucketEntries, string(v), &e)
			if err != nil {
				return false, err
			}
			if !found {
				return false, fmt.Errorf("%w: order index points at missing entry %s", apperrors.ErrConsistency, v)
			}
			if !filter.To.IsZero() && e.EntryDate.After(domain.DateOnly(filter.To)) {
				return false, nil
			}
			if (after == nil || after.After(e)) && filter.Matches(e) {
				logged = append(logged, e)
			}
			return limit <= 0 || len(logged) < limit, nil
		})
		if err != nil {
			return nil, err
		}
	}

	merged := mergeEntries(drafts, logged)
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func entryLess(a, b domain.JournalEntry) bool {
	da, db := domain.DateOnly(a.EntryDate), domain.DateOnly(b.EntryDate)
	if !da.Equal(db) {
		return da.Before(db)
	}
	return a.EntryID < b.EntryID
}

func sortEntries(entries []domain.JournalEntry) {
	sort.Slice(entries, func(i, j int) bool { return entryLess(entries[i], entries[j]) })
}

func mergeEntries(a, b []domain.JournalEntry) []domain.JournalEntry {
	merged := make([]domain.JournalEntry, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if entryLess(a[i], b[j]) {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

func (t *ledgerTx) ListAccountLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	prefix := accountLinePrefix(accountID)
	var start []byte
	if !from.IsZero() {
		start = []byte(prefix + dateKey(from))
	}
	var lines []domain.LedgerLine
	toKey := ""
	if !to.IsZero() {
		toKey = dateKey(to)
	}
	err := t.tx.Scan(BucketAccountLines, []byte(prefix), start, func(k, data []byte) (bool, error) {
		if toKey != "" && string(k[len(prefix):len(prefix)+len(dateKeyFormat)]) > toKey {
			return false, nil
		}
		var line domain.LedgerLine
		if err := decode(data, &line); err != nil {
			return false, err
		}
		lines = append(lines, line)
		return true, nil
	})
	return lines, err
}

func (t *ledgerTx) ScanLog(ctx context.Context, fn func(entry domain.JournalEntry) error) error {
	return t.tx.Scan(BucketLog, nil, nil, func(k, v []byte) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		var entry domain.JournalEntry
		found, err := t.getJSON(BucketEntries, string(v), &entry)
		if err != nil {
			return false, err
		}
		if !found {
			return false, fmt.Errorf("%w: log points at missing entry %s", apperrors.ErrConsistency, v)
		}
		return true, fn(entry)
	})
}

func (t *ledgerTx) LogHead(ctx context.Context) (domain.LogHead, error) {
	var head domain.LogHead
	_, err := t.getJSON(BucketMeta, headKey, &head)
	return head, err
}

func (t *ledgerTx) SaveDraft(ctx context.Context, entry domain.JournalEntry) error {
	if t.tx.Get(BucketEntries, []byte(entry.EntryID)) != nil {
		return fmt.Errorf("%w: entry %s", apperrors.ErrAppendOnly, entry.EntryID)
	}
	return t.putJSON(BucketDrafts, entry.EntryID, entry)
}

func (t *ledgerTx) DeleteDraft(ctx context.Context, entryID string) error {
	if t.tx.Get(BucketDrafts, []byte(entryID)) == nil {
		return fmt.Errorf("%w: draft %s", apperrors.ErrNotFound, entryID)
	}
	return t.tx.Delete(BucketDrafts, []byte(entryID))
}

func (t *ledgerTx) AppendEntry(ctx context.Context, entry domain.JournalEntry) error {
	if t.tx.Get(BucketEntries, []byte(entry.EntryID)) != nil {
		return fmt.Errorf("%w: entry %s", apperrors.ErrAppendOnly, entry.EntryID)
	}
	head, err := t.LogHead(ctx)
	if err != nil {
		return err
	}
	if entry.LogSequence != head.Sequence+1 {
		return fmt.Errorf("%w: log sequence %d does not follow head %d", apperrors.ErrConsistency, entry.LogSequence, head.Sequence)
	}

	if err := t.putJSON(BucketEntries, entry.EntryID, entry); err != nil {
		return err
	}
	if err := t.putString(BucketEntryOrder, entryOrderKey(entry.EntryDate, entry.EntryID), entry.EntryID); err != nil {
		return err
	}
	if err := t.putString(BucketLog, logKey(entry.LogSequence), entry.EntryID); err != nil {
		return err
	}
	for _, line := range domain.LedgerLinesFor(entry) {
		key := accountLineKey(line.AccountID, line.EntryDate, line.EntryID, line.LineNo)
		if err := t.putJSON(BucketAccountLines, key, line); err != nil {
			return err
		}
	}
	if t.tx.Get(BucketDrafts, []byte(entry.EntryID)) != nil {
		if err := t.tx.Delete(BucketDrafts, []byte(entry.EntryID)); err != nil {
			return err
		}
	}
	return t.putJSON(BucketMeta, headKey, domain.LogHead{Sequence: entry.LogSequence, Hash: entry.Hash})
}

func (t *ledgerTx) MarkEntryVoided(ctx context.Context, entryID, reversedByID, reason, actor string, at time.Time) error {
	var entry domain.JournalEntry
	found, err := t.getJSON(BucketEntries, entryID, &entry)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	if entry.Status != domain.EntryPosted {
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrState, entryID, entry.Status)
	}
	entry.Status = domain.EntryVoided
	entry.ReversedByID = reversedByID
	entry.VoidReason = reason
	entry.Touch(actor, at)
	return t.putJSON(BucketEntries, entryID, entry)
}

func (t *ledgerTx) NetDebitBalances(ctx context.Context) (map[string]domain.Money, error) {
	balances := make(map[string]domain.Money)
	err := t.tx.Scan(BucketBalances, nil, nil, func(k, v []byte) (bool, error) {
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return false, fmt.Errorf("failed to decode balance of %s: %w", k, err)
		}
		balances[string(k)] = domain.Money(n)
		return true, nil
	})
	return balances, err
}

func (t *ledgerTx) ApplyBalanceDeltas(ctx context.Context, deltas map[string]domain.Money) error {
	for accountID, delta := range deltas {
		var current int64
		if v := t.tx.Get(BucketBalances, []byte(accountID)); v != nil {
			n, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return fmt.Errorf("failed to decode balance of %s: %w", accountID, err)
			}
			current = n
		}
		sum, ok := domain.AddMoney(domain.Money(current), delta)
		if !ok {
			return apperrors.NewFieldError(apperrors.ErrAmountOutOfRange, "balance", accountID)
		}
		next := strconv.FormatInt(int64(sum), 10)
		if err := t.putString(BucketBalances, accountID, next); err != nil {
			return err
		}
	}
	return nil
}

func (t *ledgerTx) NextSequence(ctx context.Context, key string) (int64, error) {
	var current int64
	if v, ok := t.getString(BucketSequences, key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to decode sequence %s: %w", key, err)
		}
		current = n
	}
	current++
	if err := t.putString(BucketSequences, key, strconv.FormatInt(current, 10)); err != nil {
		return 0, err
	}
	return current, nil
}
