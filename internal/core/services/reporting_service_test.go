package services_test

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

func (s *LedgerTestSuite) seedActivity() {
	s.post("GJ", "2024-05-01", s.dr("1000", 500000), s.cr("3000", 500000))
	s.post("GJ", "2024-05-10", s.dr("1500", 120000), s.cr("1000", 120000))
	s.post("SJ", "2024-05-20", s.dr("1000", 80000), s.cr("4000", 80000))
	s.post("GJ", "2024-06-01", s.dr("5100", 30000), s.cr("1000", 30000))
	s.post("SJ", "2024-06-05", s.dr("1100", 45000), s.cr("4000", 45000))
}

func (s *LedgerTestSuite) TestTrialBalance() {
	s.seedActivity()

	first, err := s.svc.Reporting.TrialBalance(s.ctx, time.Time{}, false)
	s.Require().NoError(err)
	second, err := s.svc.Reporting.TrialBalance(s.ctx, time.Time{}, false)
	s.Require().NoError(err)
	s.Equal(first, second)

	s.Equal(first.TotalDebit, first.TotalCredit)
	s.Equal(domain.Money(625000), first.TotalDebit)
	codes := make([]string, len(first.Rows))
	for i, r := range first.Rows {
		codes[i] = r.Code
	}
	s.Equal([]string{"1000", "1100", "1500", "3000", "4000", "5100"}, codes)
	s.Equal(domain.Money(430000), first.Rows[0].Debit)
	s.Equal(domain.Money(125000), first.Rows[4].Credit)

	asOfMay, err := s.svc.Reporting.TrialBalance(s.ctx, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), false)
	s.Require().NoError(err)
	s.Equal(domain.Money(580000), asOfMay.TotalDebit)

	withZero, err := s.svc.Reporting.TrialBalance(s.ctx, time.Time{}, true)
	s.Require().NoError(err)
	s.Len(withZero.Rows, len(s.accounts))
	s.Equal(first.TotalDebit, withZero.TotalDebit)
}

func (s *LedgerTestSuite) TestAccountBalanceAndLedgerDetail() {
	s.seedActivity()

	b, err := s.svc.Reporting.AccountBalance(s.ctx, s.id("1000"), time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(domain.Money(380000), b.Balance)
	s.Equal(domain.NormalDebit, b.NormalBalance)

	detail, err := s.svc.Reporting.GeneralLedgerDetail(s.ctx, s.id("1000"),
		time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(domain.Money(500000), detail.OpeningBalance)
	s.Require().Len(detail.Lines, 3)
	s.Equal(domain.Money(380000), detail.Lines[0].RunningBalance)
	s.Equal(domain.Money(460000), detail.Lines[1].RunningBalance)
	s.Equal(domain.Money(430000), detail.Lines[2].RunningBalance)
	s.Equal(domain.Money(430000), detail.ClosingBalance)

	revenue, err := s.svc.Reporting.GeneralLedgerDetail(s.ctx, s.id("4000"), time.Time{}, time.Time{})
	s.Require().NoError(err)
	s.Equal(domain.Money(125000), revenue.ClosingBalance)

	_, err = s.svc.Reporting.GeneralLedgerDetail(s.ctx, s.id("1000"),
		time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Reporting.AccountBalance(s.ctx, "missing", time.Time{})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerTestSuite) TestProfitAndLossAndBalanceSheet() {
	s.seedActivity()

	pl, err := s.svc.Reporting.ProfitAndLoss(s.ctx, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	s.Require().NoError(err)
	s.Require().Len(pl.Revenue, 1)
	s.Equal(domain.Money(45000), pl.Revenue[0].NetAmount)
	s.Require().Len(pl.Expenses, 1)
	s.Equal(domain.Money(15000), pl.NetProfit)

	bs, err := s.svc.Reporting.BalanceSheet(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Equal(domain.Money(595000), bs.TotalAssets)
	s.Equal(domain.Money(0), bs.TotalLiabilities)
	s.Equal(domain.Money(95000), bs.CurrentEarnings)
	s.Equal(bs.TotalAssets, bs.TotalLiabilities+bs.TotalEquity)
}

func (s *LedgerTestSuite) TestReconcileAndVerifyCleanLedger() {
	s.seedActivity()

	rec, err := s.svc.Reporting.ReconcileBalances(s.ctx)
	s.Require().NoError(err)
	s.True(rec.Clean())
	s.Equal(5, rec.EntriesReplayed)

	verification, err := s.svc.Reporting.VerifyLog(s.ctx)
	s.Require().NoError(err)
	s.True(verification.Valid)
	s.Equal(5, verification.Entries)
	s.Len(verification.HeadHash, 64)
}

// appendRaw writes straight to the log, skipping the posting checks.
func (s *LedgerTestSuite) appendRaw(lines []domain.JournalLine, hash func(domain.JournalEntry) string) domain.JournalEntry {
	var entry domain.JournalEntry
	err := s.store.Update(s.ctx, func(tx portsrepo.LedgerTx) error {
		head, err := tx.LogHead(s.ctx)
		if err != nil {
			return err
		}
		entry = domain.JournalEntry{
			EntryID:     "raw-entry",
			JournalCode: "GJ",
			EntryNumber: "GJ-2024-9999",
			EntryDate:   time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
			Status:      domain.EntryPosted,
			Lines:       lines,
			LogSequence: head.Sequence + 1,
			PrevHash:    head.Hash,
		}
		entry.Hash = hash(entry)
		return tx.AppendEntry(s.ctx, entry)
	})
	s.Require().NoError(err)
	return entry
}

func (s *LedgerTestSuite) TestCorruptedLedgerHaltsPosting() {
	s.seedActivity()
	raw := s.appendRaw([]domain.JournalLine{
		{LineNo: 1, AccountID: s.id("1000"), Debit: 1000},
		{LineNo: 2, AccountID: s.id("4000"), Credit: 900},
	}, accounting.EntryHash)

	rec, err := s.svc.Reporting.ReconcileBalances(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rec.Drifts, 2)
	s.Equal("1000", rec.Drifts[0].Code)
	s.Equal(rec.Drifts[0].Cached+1000, rec.Drifts[0].Replayed)

	verification, err := s.svc.Reporting.VerifyLog(s.ctx)
	s.Require().NoError(err)
	s.True(verification.Valid, "the chain itself is intact")

	_, err = s.svc.Reporting.TrialBalance(s.ctx, time.Time{}, false)
	s.ErrorIs(err, apperrors.ErrConsistency)
	s.Require().Error(s.engine.Halted())

	draft := s.draft("GJ", "2024-06-15", s.dr("1000", 1), s.cr("4000", 1))
	_, err = s.svc.Journal.PostEntry(s.ctx, draft.EntryID, testUser)
	s.ErrorIs(err, apperrors.ErrConsistency)
	s.NotEmpty(raw.Hash)
}

func (s *LedgerTestSuite) TestVerifyLogDetectsTampering() {
	s.seedActivity()
	raw := s.appendRaw([]domain.JournalLine{
		{LineNo: 1, AccountID: s.id("1000"), Debit: 1000},
		{LineNo: 2, AccountID: s.id("4000"), Credit: 1000},
	}, func(domain.JournalEntry) string { return "forged" })

	verification, err := s.svc.Reporting.VerifyLog(s.ctx)
	s.Require().NoError(err)
	s.False(verification.Valid)
	s.Equal(raw.LogSequence, verification.BrokenSequence)
	s.Equal(raw.EntryID, verification.BrokenEntryID)
	s.Equal(5, verification.Entries)
}
