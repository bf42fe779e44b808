package domain

import (
	"fmt"
	"time"
)

// JournalType groups journals by the kind of business event they record.
type JournalType string

const (
	GeneralJournal  JournalType = "general"
	SalesJournal    JournalType = "sales"
	PurchaseJournal JournalType = "purchase"
	CashJournal     JournalType = "cash"
	BankJournal     JournalType = "bank"
)

// Valid reports whether t is a known journal type.
func (t JournalType) Valid() bool {
	switch t {
	case GeneralJournal, SalesJournal, PurchaseJournal, CashJournal, BankJournal:
		return true
	}
	return false
}

// Journal is a book of original entry (GJ, SJ, PJ, ...). Entry numbers are scoped to it.
type Journal struct {
	Code string      `json:"code"`
	Name string      `json:"name"`
	Type JournalType `json:"type"`
	AuditFields
}

// EntryStatus is the lifecycle state of a journal entry.
type EntryStatus string

const (
	EntryDraft  EntryStatus = "draft"
	EntryPosted EntryStatus = "posted"
	EntryVoided EntryStatus = "voided"
)

// Valid reports whether s is a known status.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryDraft, EntryPosted, EntryVoided:
		return true
	}
	return false
}

// InLedger reports whether entries in this state are part of the append-only log.
// A voided entry stays in the log; its reversing entry cancels it out.
func (s EntryStatus) InLedger() bool {
	return s == EntryPosted || s == EntryVoided
}

// EntrySource names the sub-ledger document an entry was posted for.
type EntrySource string

const (
	SourceInvoice       EntrySource = "invoice"
	SourcePayment       EntrySource = "payment"
	SourceStockMovement EntrySource = "stock_movement"
)

// Remedy tells a caller how to cancel an entry owned by this source.
func (s EntrySource) Remedy() string {
	switch s {
	case SourceInvoice, SourcePayment:
		return "void the invoice instead"
	case SourceStockMovement:
		return "record a correcting stock movement instead"
	}
	return "use the owning document instead"
}

// JournalLine is one debit or credit of an entry.
type JournalLine struct {
	LineNo      int    `json:"lineNo"`
	AccountID   string `json:"accountID"`
	Description string `json:"description"`
	Debit       Money  `json:"debit"`
	Credit      Money  `json:"credit"`
}

// NetDebit is the line's effect expressed as debits minus credits.
func (l JournalLine) NetDebit() Money {
	return l.Debit - l.Credit
}

// JournalEntry is a dated set of lines recorded in one journal.
type JournalEntry struct {
	EntryID      string        `json:"entryID"`
	JournalCode  string        `json:"journalCode"`
	EntryNumber  string        `json:"entryNumber,omitempty"`
	EntryDate    time.Time     `json:"entryDate"`
	Description  string        `json:"description"`
	Reference    string        `json:"reference,omitempty"`
	Status       EntryStatus   `json:"status"`
	Lines        []JournalLine `json:"lines"`
	ReversalOfID string        `json:"reversalOfID,omitempty"`
	ReversedByID string        `json:"reversedByID,omitempty"`
	VoidReason   string        `json:"voidReason,omitempty"`
	SourceType   EntrySource   `json:"sourceType,omitempty"`
	SourceID     string        `json:"sourceID,omitempty"`
	PostedAt     *time.Time    `json:"postedAt,omitempty"`
	PostedBy     string        `json:"postedBy,omitempty"`
	LogSequence  int64         `json:"logSequence,omitempty"`
	PrevHash     string        `json:"prevHash,omitempty"`
	Hash         string        `json:"hash,omitempty"`
	AuditFields
}

// Totals sums both columns of the entry.
func (e JournalEntry) Totals() (debit, credit Money) {
	for _, l := range e.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}

// IsReversal reports whether e was generated to cancel another entry.
func (e JournalEntry) IsReversal() bool {
	return e.ReversalOfID != ""
}

// OwnedBySubledger reports whether e was posted for a sub-ledger document, which
// must then be voided through that document.
func (e JournalEntry) OwnedBySubledger() bool {
	return e.SourceType != ""
}

// AccountIDs returns the distinct accounts referenced by the entry, in line order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if l.AccountID == "" {
			continue
		}
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// FormatEntryNumber renders the human-facing number, e.g. GJ-2024-0001.
func FormatEntryNumber(journalCode string, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", journalCode, year, seq)
}

// EntrySequenceKey names the counter an entry number is drawn from.
func EntrySequenceKey(journalCode string, year int) string {
	return fmt.Sprintf("entry:%s:%d", journalCode, year)
}

// EntryFilter narrows ListEntries. Zero values mean "no constraint"; From and To are inclusive dates.
type EntryFilter struct {
	JournalCode string
	Status      EntryStatus
	AccountID   string
	From        time.Time
	To          time.Time
}

// Matches reports whether e passes the filter.
func (f EntryFilter) Matches(e JournalEntry) bool {
	if f.JournalCode != "" && e.JournalCode != f.JournalCode {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && e.EntryDate.Before(DateOnly(f.From)) {
		return false
	}
	if !f.To.IsZero() && e.EntryDate.After(DateOnly(f.To)) {
		return false
	}
	if f.AccountID != "" {
		found := false
		for _, l := range e.Lines {
			if l.AccountID == f.AccountID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// EntryCursor is the position after which the next page of entries starts.
type EntryCursor struct {
	EntryDate time.Time
	EntryID   string
}

// After reports whether e sorts strictly after the cursor (entry date, then entry ID).
func (c EntryCursor) After(e JournalEntry) bool {
	d := DateOnly(e.EntryDate)
	if !d.Equal(c.EntryDate) {
		return d.After(c.EntryDate)
	}
	return e.EntryID > c.EntryID
}

// LedgerLine is a posted line as seen from its account: the secondary index row.
type LedgerLine struct {
	AccountID   string    `json:"accountID"`
	EntryID     string    `json:"entryID"`
	EntryNumber string    `json:"entryNumber"`
	JournalCode string    `json:"journalCode"`
	EntryDate   time.Time `json:"entryDate"`
	LineNo      int       `json:"lineNo"`
	Description string    `json:"description"`
	Debit       Money     `json:"debit"`
	Credit      Money     `json:"credit"`
}

// LedgerLinesFor builds the index rows of a posted entry.
func LedgerLinesFor(e JournalEntry) []LedgerLine {
	lines := make([]LedgerLine, 0, len(e.Lines))
	for _, l := range e.Lines {
		desc := l.Description
		if desc == "" {
			desc = e.Description
		}
		lines = append(lines, LedgerLine{
			AccountID:   l.AccountID,
			EntryID:     e.EntryID,
			EntryNumber: e.EntryNumber,
			JournalCode: e.JournalCode,
			EntryDate:   e.EntryDate,
			LineNo:      l.LineNo,
			Description: desc,
			Debit:       l.Debit,
			Credit:      l.Credit,
		})
	}
	return lines
}

// LogHead is the tip of the append-only log.
type LogHead struct {
	Sequence int64  `json:"sequence"`
	Hash     string `json:"hash"`
}
