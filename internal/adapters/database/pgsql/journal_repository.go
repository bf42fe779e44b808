package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

const entryColumns = `entry_id, journal_code, entry_number, entry_date, description, reference, status,
	reversal_of_id, reversed_by_id, void_reason, source_type, source_id, posted_at, posted_by, log_sequence, prev_hash, hash,
	created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var (
		e   domain.JournalEntry
		seq *int64
	)
	err := row.Scan(
		&e.EntryID,
		&e.JournalCode,
		&e.EntryNumber,
		&e.EntryDate,
		&e.Description,
		&e.Reference,
		(*string)(&e.Status),
		&e.ReversalOfID,
		&e.ReversedByID,
		&e.VoidReason,
		(*string)(&e.SourceType),
		&e.SourceID,
		&e.PostedAt,
		&e.PostedBy,
		&seq,
		&e.PrevHash,
		&e.Hash,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if seq != nil {
		e.LogSequence = *seq
	}
	return e, err
}

func (r *pgxLedgerTx) SaveJournal(ctx context.Context, journal domain.Journal) error {
	query := `
		INSERT INTO journals (code, name, type, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.tx.Exec(ctx, query,
		journal.Code,
		journal.Name,
		string(journal.Type),
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: journal code %s", apperrors.ErrDuplicateCode, journal.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to save journal %s: %w", journal.Code, err)
	}
	return nil
}

const journalColumns = `code, name, type, created_at, created_by, last_updated_at, last_updated_by`

func scanJournal(row pgx.Row) (domain.Journal, error) {
	var j domain.Journal
	err := row.Scan(&j.Code, &j.Name, (*string)(&j.Type), &j.CreatedAt, &j.CreatedBy, &j.LastUpdatedAt, &j.LastUpdatedBy)
	return j, err
}

func (r *pgxLedgerTx) FindJournalByCode(ctx context.Context, code string) (*domain.Journal, error) {
	j, err := scanJournal(r.tx.QueryRow(ctx, `SELECT `+journalColumns+` FROM journals WHERE code = $1;`, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find journal %s: %w", code, err)
	}
	return &j, nil
}

func (r *pgxLedgerTx) ListJournals(ctx context.Context) ([]domain.Journal, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+journalColumns+` FROM journals ORDER BY code;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()
	var journals []domain.Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		journals = append(journals, j)
	}
	return journals, rows.Err()
}

// loadLines attaches lines to entries, in line order.
func (r *pgxLedgerTx) loadLines(ctx context.Context, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	index := make(map[string]int, len(entries))
	ids := make([]string, len(entries))
	for i, e := range entries {
		index[e.EntryID] = i
		ids[i] = e.EntryID
	}
	rows, err := r.tx.Query(ctx, `
		SELECT entry_id, line_no, account_id, description, debit, credit
		FROM journal_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_no;
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			entryID string
			l       domain.JournalLine
		)
		if err := rows.Scan(&entryID, &l.LineNo, &l.AccountID, &l.Description, (*int64)(&l.Debit), (*int64)(&l.Credit)); err != nil {
			return fmt.Errorf("failed to scan journal line: %w", err)
		}
		i := index[entryID]
		entries[i].Lines = append(entries[i].Lines, l)
	}
	return rows.Err()
}

func (r *pgxLedgerTx) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	e, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = $1;`, entryID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	entries := []domain.JournalEntry{e}
	if err := r.loadLines(ctx, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

func (r *pgxLedgerTx) ListEntries(ctx context.Context, filter domain.EntryFilter, after *domain.EntryCursor, limit int) ([]domain.JournalEntry, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.JournalCode != "" {
		where = append(where, "journal_code = "+arg(filter.JournalCode))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if !filter.From.IsZero() {
		where = append(where, "entry_date >= "+arg(domain.DateOnly(filter.From)))
	}
	if !filter.To.IsZero() {
		where = append(where, "entry_date <= "+arg(domain.DateOnly(filter.To)))
	}
	if filter.AccountID != "" {
		where = append(where, "EXISTS (SELECT 1 FROM journal_lines l WHERE l.entry_id = journal_entries.entry_id AND l.account_id = "+arg(filter.AccountID)+")")
	}
	if after != nil {
		where = append(where, fmt.Sprintf("(entry_date, entry_id) > (%s, %s)", arg(after.EntryDate), arg(after.EntryID)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY entry_date, entry_id"
	if limit > 0 {
		query += " LIMIT " + arg(limit)
	}

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	var entries []domain.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pgxLedgerTx) ListAccountLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	args := []any{accountID}
	query := `
		SELECT l.account_id, e.entry_id, e.entry_number, e.journal_code, e.entry_date, l.line_no,
			COALESCE(NULLIF(l.description, ''), e.description), l.debit, l.credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1 AND e.log_sequence IS NOT NULL`
	if !from.IsZero() {
		args = append(args, domain.DateOnly(from))
		query += fmt.Sprintf(" AND e.entry_date >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, domain.DateOnly(to))
		query += fmt.Sprintf(" AND e.entry_date <= $%d", len(args))
	}
	query += " ORDER BY e.entry_date, e.entry_id, l.line_no;"

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lines of account %s: %w", accountID, err)
	}
	defer rows.Close()
	var lines []domain.LedgerLine
	for rows.Next() {
		var l domain.LedgerLine
		if err := rows.Scan(&l.AccountID, &l.EntryID, &l.EntryNumber, &l.JournalCode, &l.EntryDate, &l.LineNo,
			&l.Description, (*int64)(&l.Debit), (*int64)(&l.Credit)); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

const logBatchSize = 500

func (r *pgxLedgerTx) ScanLog(ctx context.Context, fn func(entry domain.JournalEntry) error) error {
	var last int64
	for {
		rows, err := r.tx.Query(ctx, `
			SELECT `+entryColumns+` FROM journal_entries
			WHERE log_sequence > $1 ORDER BY log_sequence LIMIT $2;
		`, last, logBatchSize)
		if err != nil {
			return fmt.Errorf("failed to scan log: %w", err)
		}
		var batch []domain.JournalEntry
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan log entry: %w", err)
			}
			batch = append(batch, e)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := r.loadLines(ctx, batch); err != nil {
			return err
		}
		for _, e := range batch {
			if err := fn(e); err != nil {
				return err
			}
		}
		last = batch[len(batch)-1].LogSequence
	}
}

func (r *pgxLedgerTx) LogHead(ctx context.Context) (domain.LogHead, error) {
	var head domain.LogHead
	err := r.tx.QueryRow(ctx, `SELECT head_sequence, head_hash FROM ledger_head WHERE id = 1;`).Scan(&head.Sequence, &head.Hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.LogHead{}, nil
	}
	if err != nil {
		return head, fmt.Errorf("failed to read log head: %w", err)
	}
	return head, nil
}

func (r *pgxLedgerTx) insertEntry(ctx context.Context, e domain.JournalEntry) error {
	var seq *int64
	if e.LogSequence > 0 {
		seq = &e.LogSequence
	}
	_, err := r.tx.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`,
		e.EntryID, e.JournalCode, e.EntryNumber, domain.DateOnly(e.EntryDate), e.Description, e.Reference, string(e.Status),
		e.ReversalOfID, e.ReversedByID, e.VoidReason, string(e.SourceType), e.SourceID, e.PostedAt, e.PostedBy, seq, e.PrevHash, e.Hash,
		e.CreatedAt, e.CreatedBy, e.LastUpdatedAt, e.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", e.EntryID, err)
	}

	batch := &pgx.Batch{}
	for _, l := range e.Lines {
		batch.Queue(`
			INSERT INTO journal_lines (entry_id, line_no, account_id, description, debit, credit)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, e.EntryID, l.LineNo, l.AccountID, l.Description, int64(l.Debit), int64(l.Credit))
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert lines of entry %s: %w", e.EntryID, err)
	}
	return nil
}

// existingStatus returns the stored status of entryID, or "" when absent.
func (r *pgxLedgerTx) existingStatus(ctx context.Context, entryID string) (domain.EntryStatus, error) {
	var status string
	err := r.tx.QueryRow(ctx, `SELECT status FROM journal_entries WHERE entry_id = $1;`, entryID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status of entry %s: %w", entryID, err)
	}
	return domain.EntryStatus(status), nil
}

func (r *pgxLedgerTx) SaveDraft(ctx context.Context, entry domain.JournalEntry) error {
	status, err := r.existingStatus(ctx, entry.EntryID)
	if err != nil {
		return err
	}
	if status.InLedger() {
		return fmt.Errorf("%w: entry %s", apperrors.ErrAppendOnly, entry.EntryID)
	}
	if status == domain.EntryDraft {
		if err := r.DeleteDraft(ctx, entry.EntryID); err != nil {
			return err
		}
	}
	return r.insertEntry(ctx, entry)
}

func (r *pgxLedgerTx) DeleteDraft(ctx context.Context, entryID string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1 AND status = 'draft';`, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: draft %s", apperrors.ErrNotFound, entryID)
	}
	return nil
}

func (r *pgxLedgerTx) AppendEntry(ctx context.Context, entry domain.JournalEntry) error {
	status, err := r.existingStatus(ctx, entry.EntryID)
	if err != nil {
		return err
	}
	if status.InLedger() {
		return fmt.Errorf("%w: entry %s", apperrors.ErrAppendOnly, entry.EntryID)
	}
	head, err := r.LogHead(ctx)
	if err != nil {
		return err
	}
	if entry.LogSequence != head.Sequence+1 {
		return fmt.Errorf("%w: log sequence %d does not follow head %d", apperrors.ErrConsistency, entry.LogSequence, head.Sequence)
	}
	if status == domain.EntryDraft {
		if err := r.DeleteDraft(ctx, entry.EntryID); err != nil {
			return err
		}
	}
	if err := r.insertEntry(ctx, entry); err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
		INSERT INTO ledger_head (id, head_sequence, head_hash) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET head_sequence = EXCLUDED.head_sequence, head_hash = EXCLUDED.head_hash;
	`, entry.LogSequence, entry.Hash)
	if err != nil {
		return fmt.Errorf("failed to advance log head: %w", err)
	}
	return nil
}

func (r *pgxLedgerTx) MarkEntryVoided(ctx context.Context, entryID, reversedByID, reason, actor string, at time.Time) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = 'voided', reversed_by_id = $2, void_reason = $3, last_updated_by = $4, last_updated_at = $5
		WHERE entry_id = $1 AND status = 'posted';
	`, entryID, reversedByID, reason, actor, at)
	if err != nil {
		return fmt.Errorf("failed to void entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	status, err := r.existingStatus(ctx, entryID)
	if err != nil {
		return err
	}
	if status == "" {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	return fmt.Errorf("%w: entry %s is %s", apperrors.ErrState, entryID, status)
}

func (r *pgxLedgerTx) NetDebitBalances(ctx context.Context) (map[string]domain.Money, error) {
	rows, err := r.tx.Query(ctx, `SELECT account_id, net_debit FROM account_balances;`)
	if err != nil {
		return nil, fmt.Errorf("failed to read balances: %w", err)
	}
	defer rows.Close()
	balances := make(map[string]domain.Money)
	for rows.Next() {
		var (
			id  string
			net int64
		)
		if err := rows.Scan(&id, &net); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances[id] = domain.Money(net)
	}
	return balances, rows.Err()
}

func (r *pgxLedgerTx) ApplyBalanceDeltas(ctx context.Context, deltas map[string]domain.Money) error {
	batch := &pgx.Batch{}
	for accountID, delta := range deltas {
		batch.Queue(`
			INSERT INTO account_balances (account_id, net_debit) VALUES ($1, $2)
			ON CONFLICT (account_id) DO UPDATE SET net_debit = account_balances.net_debit + EXCLUDED.net_debit;
		`, accountID, int64(delta))
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.tx.SendBatch(ctx, batch).Close(); err != nil {
		if isNumericOutOfRange(err) {
			return apperrors.NewFieldError(apperrors.ErrAmountOutOfRange, "balance", "bigint")
		}
		return fmt.Errorf("failed to apply balance deltas: %w", err)
	}
	return nil
}

func (r *pgxLedgerTx) NextSequence(ctx context.Context, key string) (int64, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO sequences (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = sequences.value + 1
		RETURNING value;
	`, key).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate sequence %s: %w", key, err)
	}
	return next, nil
}
