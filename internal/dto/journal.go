package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CreateJournalRequest defines a new book of original entry.
type CreateJournalRequest struct {
	Code string `json:"code" binding:"required,journalcode"`
	Name string `json:"name" binding:"required,max=100"`
	Type string `json:"type" binding:"required,oneof=general sales purchase cash bank"`
}

// JournalResponse defines the data returned for a journal.
type JournalResponse struct {
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Type      domain.JournalType `json:"type"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{Code: j.Code, Name: j.Name, Type: j.Type, CreatedAt: j.CreatedAt}
}

// ListJournalsResponse wraps the list of journals.
type ListJournalsResponse struct {
	Journals []JournalResponse `json:"journals"`
}

// JournalLineRequest is one line of a draft. Amounts are minor units. Drafts may
// leave AccountID empty; posting will refuse them.
type JournalLineRequest struct {
	AccountID   string       `json:"accountID"`
	Description string       `json:"description"`
	Debit       domain.Money `json:"debit"`
	Credit      domain.Money `json:"credit"`
}

// CreateEntryRequest defines a draft journal entry.
type CreateEntryRequest struct {
	JournalCode string               `json:"journalCode" binding:"required,journalcode"`
	EntryDate   string               `json:"entryDate" binding:"required"`
	Description string               `json:"description" binding:"max=500"`
	Reference   string               `json:"reference" binding:"max=100"`
	Lines       []JournalLineRequest `json:"lines" binding:"dive"`
}

// UpdateEntryRequest replaces the header and lines of a draft.
type UpdateEntryRequest = CreateEntryRequest

// VoidEntryRequest carries the reason recorded on the voided entry.
type VoidEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// JournalLineResponse defines the data returned for one entry line.
type JournalLineResponse struct {
	LineNo      int          `json:"lineNo"`
	AccountID   string       `json:"accountID"`
	Description string       `json:"description"`
	Debit       domain.Money `json:"debit"`
	Credit      domain.Money `json:"credit"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID      string                `json:"entryID"`
	JournalCode  string                `json:"journalCode"`
	EntryNumber  string                `json:"entryNumber,omitempty"`
	EntryDate    string                `json:"entryDate"`
	Description  string                `json:"description"`
	Reference    string                `json:"reference,omitempty"`
	Status       domain.EntryStatus    `json:"status"`
	Lines        []JournalLineResponse `json:"lines"`
	TotalDebit   domain.Money          `json:"totalDebit"`
	TotalCredit  domain.Money          `json:"totalCredit"`
	ReversalOfID string                `json:"reversalOfID,omitempty"`
	ReversedByID string                `json:"reversedByID,omitempty"`
	VoidReason   string                `json:"voidReason,omitempty"`
	SourceType   domain.EntrySource    `json:"sourceType,omitempty"`
	SourceID     string                `json:"sourceID,omitempty"`
	PostedAt     *time.Time            `json:"postedAt,omitempty"`
	Hash         string                `json:"hash,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	CreatedBy    string                `json:"createdBy"`
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	debit, credit := e.Totals()
	return EntryResponse{
		EntryID:      e.EntryID,
		JournalCode:  e.JournalCode,
		EntryNumber:  e.EntryNumber,
		EntryDate:    FormatDate(e.EntryDate),
		Description:  e.Description,
		Reference:    e.Reference,
		Status:       e.Status,
		Lines:        lines,
		TotalDebit:   debit,
		TotalCredit:  credit,
		ReversalOfID: e.ReversalOfID,
		ReversedByID: e.ReversedByID,
		VoidReason:   e.VoidReason,
		SourceType:   e.SourceType,
		SourceID:     e.SourceID,
		PostedAt:     e.PostedAt,
		Hash:         e.Hash,
		CreatedAt:    e.CreatedAt,
		CreatedBy:    e.CreatedBy,
	}
}

// VoidEntryResponse returns both sides of a void.
type VoidEntryResponse struct {
	Voided   EntryResponse `json:"voided"`
	Reversal EntryResponse `json:"reversal"`
}

// ListEntriesParams defines query parameters for listing entries.
type ListEntriesParams struct {
	JournalCode string `form:"journalCode"`
	Status      string `form:"status" binding:"omitempty,oneof=draft posted voided"`
	AccountID   string `form:"accountID"`
	From        string `form:"from"`
	To          string `form:"to"`
	Limit       int    `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken   string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
