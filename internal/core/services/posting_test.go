package services_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

func (s *LedgerTestSuite) TestPostEntry_CashSale() {
	entry := s.post("GJ", "2024-06-01", s.dr("1000", 1500), s.cr("4000", 1500))

	s.Equal(domain.EntryPosted, entry.Status)
	s.Equal("GJ-2024-0001", entry.EntryNumber)
	s.Equal(int64(1), entry.LogSequence)
	s.Empty(entry.PrevHash)
	s.Len(entry.Hash, 64)
	s.Require().NotNil(entry.PostedAt)
	s.Equal(s.now, *entry.PostedAt)

	s.Equal(domain.Money(1500), s.balance("1000"))
	s.Equal(domain.Money(1500), s.balance("4000"))

	tb, err := s.svc.Reporting.TrialBalance(s.ctx, time.Time{}, false)
	s.Require().NoError(err)
	s.Equal(domain.Money(1500), tb.TotalDebit)
	s.Equal(tb.TotalDebit, tb.TotalCredit)
	s.Len(tb.Rows, 2)

	second := s.post("GJ", "2024-06-02", s.dr("5100", 800), s.cr("1000", 800))
	s.Equal("GJ-2024-0002", second.EntryNumber)
	s.Equal(entry.Hash, second.PrevHash)
}

func (s *LedgerTestSuite) TestPostEntry_Rejections() {
	tests := []struct {
		name  string
		lines []dto.JournalLineRequest
		want  error
	}{
		{"unbalanced", []dto.JournalLineRequest{s.dr("1000", 1000), s.cr("4000", 900)}, apperrors.ErrUnbalancedEntry},
		{"empty", nil, apperrors.ErrEmptyEntry},
		{"all zero", []dto.JournalLineRequest{s.dr("1000", 0), s.cr("4000", 0)}, apperrors.ErrEmptyEntry},
		{"unknown account", []dto.JournalLineRequest{s.dr("1000", 100), {AccountID: "missing", Credit: 100}}, apperrors.ErrUnknownAccount},
		{"both sides", []dto.JournalLineRequest{{AccountID: s.id("1000"), Debit: 100, Credit: 100}, s.cr("4000", 0)}, apperrors.ErrMalformedLine},
		{"negative", []dto.JournalLineRequest{s.dr("1000", 100), s.cr("4000", -100)}, apperrors.ErrMalformedLine},
		{"line above maximum", []dto.JournalLineRequest{s.dr("1000", domain.MaxLineAmount+1), s.cr("4000", domain.MaxLineAmount+1)}, apperrors.ErrMalformedLine},
		{"debits wrap to zero", []dto.JournalLineRequest{s.dr("1000", math.MaxInt64), s.dr("5100", math.MaxInt64), s.dr("1000", 2)}, apperrors.ErrMalformedLine},
		{"column total out of range", []dto.JournalLineRequest{
			s.dr("1000", domain.MaxLineAmount), s.dr("1000", domain.MaxLineAmount), s.dr("1000", domain.MaxLineAmount),
			s.dr("1000", domain.MaxLineAmount), s.dr("1000", domain.MaxLineAmount), s.cr("4000", 5),
		}, apperrors.ErrUnbalancedEntry},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			draft := s.draft("GJ", "2024-06-01", tt.lines...)
			posted, err := s.svc.Journal.PostEntry(s.ctx, draft.EntryID, testUser)
			s.Nil(posted)
			s.ErrorIs(err, tt.want)
			s.ErrorIs(err, apperrors.ErrValidation)

			stored, err := s.svc.Journal.GetEntry(s.ctx, draft.EntryID)
			s.Require().NoError(err)
			s.Equal(domain.EntryDraft, stored.Status)
		})
	}

	s.Equal(domain.Money(0), s.balance("1000"))
	verification, err := s.svc.Reporting.VerifyLog(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, verification.Entries)
}

func (s *LedgerTestSuite) TestDraftLifecycle() {
	draft := s.draft("GJ", "2024-06-01", s.dr("1000", 100))

	updated, err := s.svc.Journal.UpdateDraft(s.ctx, draft.EntryID, dto.UpdateEntryRequest{
		JournalCode: "gj",
		EntryDate:   "2024-06-03",
		Description: "fixed",
		Lines:       []dto.JournalLineRequest{s.dr("1000", 100), s.cr("4000", 100)},
	}, testUser)
	s.Require().NoError(err)
	s.Equal("GJ", updated.JournalCode)
	s.Len(updated.Lines, 2)
	s.Equal(2, updated.Lines[1].LineNo)

	posted, err := s.svc.Journal.PostEntry(s.ctx, draft.EntryID, testUser)
	s.Require().NoError(err)

	_, err = s.svc.Journal.UpdateDraft(s.ctx, posted.EntryID, dto.UpdateEntryRequest{JournalCode: "GJ", EntryDate: "2024-06-03"}, testUser)
	s.ErrorIs(err, apperrors.ErrState)
	s.ErrorIs(s.svc.Journal.DiscardDraft(s.ctx, posted.EntryID, testUser), apperrors.ErrState)
	_, err = s.svc.Journal.PostEntry(s.ctx, posted.EntryID, testUser)
	s.ErrorIs(err, apperrors.ErrState)

	other := s.draft("GJ", "2024-06-01")
	s.Require().NoError(s.svc.Journal.DiscardDraft(s.ctx, other.EntryID, testUser))
	_, err = s.svc.Journal.GetEntry(s.ctx, other.EntryID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.svc.Journal.CreateDraft(s.ctx, dto.CreateEntryRequest{JournalCode: "XX", EntryDate: "2024-06-01"}, testUser)
	s.ErrorIs(err, apperrors.ErrUnknownJournal)
	_, err = s.svc.Journal.CreateDraft(s.ctx, dto.CreateEntryRequest{JournalCode: "GJ", EntryDate: "June 1st"}, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerTestSuite) TestVoidEntry_NetsToZero() {
	original := s.post("GJ", "2024-06-01", s.dr("1000", 1500), s.cr("4000", 1500))

	voided, reversal, err := s.svc.Journal.VoidEntry(s.ctx, original.EntryID, "keyed twice", testUser)
	s.Require().NoError(err)
	s.Equal(domain.EntryVoided, voided.Status)
	s.Equal(reversal.EntryID, voided.ReversedByID)
	s.Equal("keyed twice", voided.VoidReason)
	s.Equal(original.Hash, voided.Hash)

	s.Equal(original.EntryID, reversal.ReversalOfID)
	s.Equal("GJ-2024-0002", reversal.EntryNumber)
	s.Equal("Reversal of GJ-2024-0001", reversal.Description)
	s.Equal(domain.DateOnly(s.now), reversal.EntryDate)
	s.Equal(domain.Money(1500), reversal.Lines[0].Credit)

	s.Equal(domain.Money(0), s.balance("1000"))
	s.Equal(domain.Money(0), s.balance("4000"))

	_, _, err = s.svc.Journal.VoidEntry(s.ctx, original.EntryID, "again", testUser)
	s.ErrorIs(err, apperrors.ErrState)
	_, _, err = s.svc.Journal.VoidEntry(s.ctx, reversal.EntryID, "undo", testUser)
	s.ErrorIs(err, apperrors.ErrState)

	draft := s.draft("GJ", "2024-06-01", s.dr("1000", 1), s.cr("4000", 1))
	_, _, err = s.svc.Journal.VoidEntry(s.ctx, draft.EntryID, "draft", testUser)
	s.ErrorIs(err, apperrors.ErrState)
}

func (s *LedgerTestSuite) TestReversalPostsToDeactivatedAccount() {
	original := s.post("GJ", "2024-06-01", s.dr("5300", 400), s.cr("1000", 400))

	_, err := s.svc.Account.DeactivateAccount(s.ctx, s.id("5300"), testUser)
	s.ErrorIs(err, apperrors.ErrAccountInUse)

	s.post("GJ", "2024-06-02", s.dr("1000", 400), s.cr("5300", 400))
	account, err := s.svc.Account.DeactivateAccount(s.ctx, s.id("5300"), testUser)
	s.Require().NoError(err)
	s.False(account.IsActive)

	_, reversal, err := s.svc.Journal.VoidEntry(s.ctx, original.EntryID, "wrong account", testUser)
	s.Require().NoError(err)
	s.Equal(domain.EntryPosted, reversal.Status)
	s.Equal(domain.Money(-400), s.balance("5300"))

	draft := s.draft("GJ", "2024-06-03", s.dr("5300", 400), s.cr("1000", 400))
	_, err = s.svc.Journal.PostEntry(s.ctx, draft.EntryID, testUser)
	s.ErrorIs(err, apperrors.ErrInactiveAccount)
}

func (s *LedgerTestSuite) TestConcurrentPostingNumbersAreUnique() {
	const writers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]struct{}, writers)
		errs    []error
	)
	for i := 0; i < writers; i++ {
		draft := s.draft("SJ", "2024-06-10", s.dr("1000", domain.Money(100+i)), s.cr("4000", domain.Money(100+i)))
		wg.Add(1)
		go func(entryID string) {
			defer wg.Done()
			posted, err := s.svc.Journal.PostEntry(s.ctx, entryID, testUser)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[posted.EntryNumber] = struct{}{}
		}(draft.EntryID)
	}
	wg.Wait()

	s.Empty(errs)
	s.Len(numbers, writers)
	for i := 1; i <= writers; i++ {
		s.Contains(numbers, fmt.Sprintf("SJ-2024-%04d", i))
	}

	verification, err := s.svc.Reporting.VerifyLog(s.ctx)
	s.Require().NoError(err)
	s.True(verification.Valid)
	s.Equal(writers, verification.Entries)
}

func (s *LedgerTestSuite) TestEntryNumbersRestartPerJournalAndYear() {
	s.Equal("GJ-2023-0001", s.post("GJ", "2023-12-31", s.dr("1000", 1), s.cr("3000", 1)).EntryNumber)
	s.Equal("GJ-2024-0001", s.post("GJ", "2024-01-01", s.dr("1000", 1), s.cr("3000", 1)).EntryNumber)
	s.Equal("CJ-2024-0001", s.post("CJ", "2024-01-01", s.dr("1000", 1), s.cr("3000", 1)).EntryNumber)
	s.Equal("GJ-2024-0002", s.post("GJ", "2024-01-02", s.dr("1000", 1), s.cr("3000", 1)).EntryNumber)
}

func (s *LedgerTestSuite) TestListEntries_Paging() {
	var ids []string
	for day := 5; day >= 1; day-- {
		e := s.post("GJ", fmt.Sprintf("2024-06-%02d", day), s.dr("1000", 10), s.cr("4000", 10))
		ids = append([]string{e.EntryID}, ids...)
	}
	s.draft("GJ", "2024-06-03", s.dr("1000", 1))

	var (
		seen  []string
		token string
		pages int
	)
	for {
		resp, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{Status: "posted", Limit: 2, NextToken: token})
		s.Require().NoError(err)
		pages++
		for _, e := range resp.Entries {
			seen = append(seen, e.EntryID)
		}
		if resp.NextToken == nil {
			break
		}
		token = *resp.NextToken
	}
	s.Equal(ids, seen)
	s.Equal(3, pages)

	all, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{Limit: 50})
	s.Require().NoError(err)
	s.Len(all.Entries, 6)

	ranged, err := s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{From: "2024-06-02", To: "2024-06-03", Status: "posted", Limit: 50})
	s.Require().NoError(err)
	s.Len(ranged.Entries, 2)

	_, err = s.svc.Journal.ListEntries(s.ctx, dto.ListEntriesParams{NextToken: "%%%"})
	s.ErrorIs(err, apperrors.ErrInvalidPageToken)

	var walked []string
	for e, err := range s.svc.Journal.Entries(s.ctx, domain.EntryFilter{Status: domain.EntryPosted}) {
		s.Require().NoError(err)
		walked = append(walked, e.EntryID)
	}
	s.Equal(ids, walked)
}

func (s *LedgerTestSuite) TestHaltedEngineRefusesPosts() {
	draft := s.draft("GJ", "2024-06-01", s.dr("1000", 100), s.cr("4000", 100))

	err := s.engine.Halt(s.ctx, errors.New("checksum mismatch"))
	s.ErrorIs(err, apperrors.ErrConsistency)
	s.Require().Error(s.engine.Halted())

	_, err = s.svc.Journal.PostEntry(s.ctx, draft.EntryID, testUser)
	s.ErrorIs(err, apperrors.ErrConsistency)

	err = s.store.Update(s.ctx, func(tx portsrepo.LedgerTx) error {
		_, err := s.engine.Post(context.Background(), tx, *draft, testUser)
		return err
	})
	s.ErrorIs(err, apperrors.ErrConsistency)
}
