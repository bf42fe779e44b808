package accounting

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"golang.org/x/crypto/blake2b"
)

// EntryHash returns the BLAKE2b-256 digest chaining e to its predecessor. Only the
// fields frozen at posting take part, so voiding an entry later leaves its hash valid.
func EntryHash(e domain.JournalEntry) string {
	var b strings.Builder
	b.WriteString(e.PrevHash)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(e.LogSequence, 10))
	for _, field := range []string{
		e.EntryID,
		e.JournalCode,
		e.EntryNumber,
		e.EntryDate.UTC().Format("2006-01-02"),
		e.Description,
		e.Reference,
		e.ReversalOfID,
		string(e.SourceType),
		e.SourceID,
	} {
		b.WriteByte('\n')
		b.WriteString(strconv.Quote(field))
	}
	for _, l := range e.Lines {
		b.WriteByte('\n')
		b.WriteString(strconv.Itoa(l.LineNo))
		b.WriteByte('|')
		b.WriteString(l.AccountID)
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(int64(l.Debit), 10))
		b.WriteByte('|')
		b.WriteString(strconv.FormatInt(int64(l.Credit), 10))
		b.WriteByte('|')
		b.WriteString(strconv.Quote(l.Description))
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
