package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

var errStopScan = errors.New("stop scan")

type reportingService struct {
	BaseService
	store  portsrepo.TransactionManager
	engine *PostingEngine
	policy config.LedgerPolicy
}

// NewReportingService creates the ledger query service.
func NewReportingService(store portsrepo.TransactionManager, engine *PostingEngine, policy config.LedgerPolicy, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{BaseService: newBaseService(options...), store: store, engine: engine, policy: policy}
}

func (s *reportingService) asOfOrToday(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return domain.DateOnly(s.Now())
	}
	return domain.DateOnly(asOf)
}

// netDebit sums an account's posted lines dated within [from, to].
func netDebit(ctx context.Context, tx portsrepo.LedgerTx, accountID string, from, to time.Time) (domain.Money, error) {
	lines, err := tx.ListAccountLines(ctx, accountID, from, to)
	if err != nil {
		return 0, err
	}
	var net domain.Money
	for _, l := range lines {
		net += l.Debit - l.Credit
	}
	return net, nil
}

func (s *reportingService) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountBalance, error) {
	asOf = s.asOfOrToday(asOf)
	var result *domain.AccountBalance
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		account, err := tx.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		net, err := netDebit(ctx, tx, accountID, time.Time{}, asOf)
		if err != nil {
			return err
		}
		result = &domain.AccountBalance{
			AccountID:     account.AccountID,
			Code:          account.Code,
			Name:          account.Name,
			NormalBalance: account.NormalBalance,
			AsOf:          asOf,
			Balance:       account.Balance(net),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time, includeZero bool) (*domain.TrialBalance, error) {
	asOf = s.asOfOrToday(asOf)
	tb := &domain.TrialBalance{AsOf: asOf, Rows: []domain.TrialBalanceRow{}}
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		accounts, err := tx.ListAccounts(ctx, domain.AccountFilter{})
		if err != nil {
			return err
		}
		for _, acc := range accounts {
			net, err := netDebit(ctx, tx, acc.AccountID, time.Time{}, asOf)
			if err != nil {
				return err
			}
			if net == 0 && !(includeZero && acc.IsActive) {
				continue
			}
			row := domain.TrialBalanceRow{
				AccountID: acc.AccountID,
				Code:      acc.Code,
				Name:      acc.Name,
				Category:  acc.Category,
			}
			if net > 0 {
				row.Debit = net
			} else {
				row.Credit = -net
			}
			tb.Rows = append(tb.Rows, row)
			tb.TotalDebit += row.Debit
			tb.TotalCredit += row.Credit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if tb.TotalDebit != tb.TotalCredit {
		cause := fmt.Errorf("%w: trial balance as of %s does not balance: debits %s, credits %s",
			apperrors.ErrConsistency, asOf.Format("2006-01-02"), tb.TotalDebit, tb.TotalCredit)
		return nil, s.engine.Halt(ctx, cause)
	}
	return tb, nil
}

func (s *reportingService) GeneralLedgerDetail(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedgerDetail, error) {
	to = s.asOfOrToday(to)
	if !from.IsZero() {
		from = domain.DateOnly(from)
		if from.After(to) {
			return nil, apperrors.NewFieldError(apperrors.ErrValidation, "from", "must not be after to")
		}
	}
	var detail *domain.GeneralLedgerDetail
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		account, err := tx.FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		var opening domain.Money
		if !from.IsZero() {
			net, err := netDebit(ctx, tx, accountID, time.Time{}, from.AddDate(0, 0, -1))
			if err != nil {
				return err
			}
			opening = account.Balance(net)
		}
		lines, err := tx.ListAccountLines(ctx, accountID, from, to)
		if err != nil {
			return err
		}
		detail = &domain.GeneralLedgerDetail{
			Account:        *account,
			From:           from,
			To:             to,
			OpeningBalance: opening,
			Lines:          make([]domain.GeneralLedgerLine, 0, len(lines)),
		}
		running := opening
		for _, l := range lines {
			running += account.Balance(l.Debit - l.Credit)
			detail.Lines = append(detail.Lines, domain.GeneralLedgerLine{LedgerLine: l, RunningBalance: running})
		}
		detail.ClosingBalance = running
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// categoryAmounts lists the nonzero normal-side balances of every account in
// category over [from, to], ordered by code.
func categoryAmounts(ctx context.Context, tx portsrepo.LedgerTx, category domain.AccountCategory, from, to time.Time) ([]domain.AccountAmount, domain.Money, error) {
	accounts, err := tx.ListAccounts(ctx, domain.AccountFilter{Category: category})
	if err != nil {
		return nil, 0, err
	}
	amounts := []domain.AccountAmount{}
	var total domain.Money
	for _, acc := range accounts {
		net, err := netDebit(ctx, tx, acc.AccountID, from, to)
		if err != nil {
			return nil, 0, err
		}
		if net == 0 {
			continue
		}
		amount := acc.Balance(net)
		amounts = append(amounts, domain.AccountAmount{AccountID: acc.AccountID, Code: acc.Code, Name: acc.Name, NetAmount: amount})
		total += amount
	}
	return amounts, total, nil
}

func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error) {
	to = s.asOfOrToday(to)
	if !from.IsZero() {
		from = domain.DateOnly(from)
		if from.After(to) {
			return nil, apperrors.NewFieldError(apperrors.ErrValidation, "from", "must not be after to")
		}
	}
	report := &domain.PAndLReport{From: from, To: to}
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		revenue, totalRevenue, err := categoryAmounts(ctx, tx, domain.Revenue, from, to)
		if err != nil {
			return err
		}
		expenses, totalExpenses, err := categoryAmounts(ctx, tx, domain.Expense, from, to)
		if err != nil {
			return err
		}
		report.Revenue = revenue
		report.Expenses = expenses
		report.NetProfit = totalRevenue - totalExpenses
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	asOf = s.asOfOrToday(asOf)
	report := &domain.BalanceSheetReport{AsOf: asOf}
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		if report.Assets, report.TotalAssets, err = categoryAmounts(ctx, tx, domain.Asset, time.Time{}, asOf); err != nil {
			return err
		}
		if report.Liabilities, report.TotalLiabilities, err = categoryAmounts(ctx, tx, domain.Liability, time.Time{}, asOf); err != nil {
			return err
		}
		var equity domain.Money
		if report.Equity, equity, err = categoryAmounts(ctx, tx, domain.Equity, time.Time{}, asOf); err != nil {
			return err
		}
		_, revenue, err := categoryAmounts(ctx, tx, domain.Revenue, time.Time{}, asOf)
		if err != nil {
			return err
		}
		_, expenses, err := categoryAmounts(ctx, tx, domain.Expense, time.Time{}, asOf)
		if err != nil {
			return err
		}
		report.CurrentEarnings = revenue - expenses
		report.TotalEquity = equity + report.CurrentEarnings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportingService) ReconcileBalances(ctx context.Context) (*domain.ReconciliationReport, error) {
	report := &domain.ReconciliationReport{Drifts: []domain.BalanceDrift{}}
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		replayed := make(map[string]domain.Money)
		err := tx.ScanLog(ctx, func(e domain.JournalEntry) error {
			report.EntriesReplayed++
			for id, delta := range accounting.NetDebitDeltas(e.Lines) {
				replayed[id] += delta
			}
			return nil
		})
		if err != nil {
			return err
		}
		cached, err := tx.NetDebitBalances(ctx)
		if err != nil {
			return err
		}

		ids := make(map[string]struct{}, len(cached)+len(replayed))
		for id := range cached {
			ids[id] = struct{}{}
		}
		for id := range replayed {
			ids[id] = struct{}{}
		}
		idList := make([]string, 0, len(ids))
		for id := range ids {
			idList = append(idList, id)
		}
		accounts, err := tx.FindAccountsByIDs(ctx, idList)
		if err != nil {
			return err
		}

		report.AccountsChecked = len(idList)
		for _, id := range idList {
			if cached[id] == replayed[id] {
				continue
			}
			report.Drifts = append(report.Drifts, domain.BalanceDrift{
				AccountID: id,
				Code:      accounts[id].Code,
				Cached:    cached[id],
				Replayed:  replayed[id],
			})
		}
		sort.Slice(report.Drifts, func(i, j int) bool { return report.Drifts[i].Code < report.Drifts[j].Code })
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Clean() {
		s.LogWarn(ctx, "Balance cache drifted from the log", slog.Int("drifted_accounts", len(report.Drifts)))
	}
	return report, nil
}

func (s *reportingService) VerifyLog(ctx context.Context) (*domain.LogVerification, error) {
	result := &domain.LogVerification{Valid: true}
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var (
			prevSeq  int64
			prevHash string
		)
		err := tx.ScanLog(ctx, func(e domain.JournalEntry) error {
			if e.LogSequence != prevSeq+1 || e.PrevHash != prevHash || accounting.EntryHash(e) != e.Hash {
				result.Valid = false
				result.BrokenSequence = e.LogSequence
				result.BrokenEntryID = e.EntryID
				return errStopScan
			}
			result.Entries++
			prevSeq, prevHash = e.LogSequence, e.Hash
			result.HeadHash = e.Hash
			return nil
		})
		if err != nil && !errors.Is(err, errStopScan) {
			return err
		}
		if !result.Valid {
			return nil
		}
		head, err := tx.LogHead(ctx)
		if err != nil {
			return err
		}
		if head.Sequence != prevSeq || head.Hash != prevHash {
			result.Valid = false
			result.BrokenSequence = head.Sequence
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		s.LogWarn(ctx, "Hash chain verification failed",
			slog.Int64("sequence", result.BrokenSequence),
			slog.String("entry_id", result.BrokenEntryID))
	}
	return result, nil
}

func (s *reportingService) ReconcileControlAccounts(ctx context.Context, asOf time.Time) (*domain.ControlAccountReport, error) {
	asOf = s.asOfOrToday(asOf)
	report := &domain.ControlAccountReport{AsOf: asOf, Checks: []domain.ControlAccountCheck{}}
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		invoices, err := tx.ListInvoices(ctx, domain.InvoiceFilter{})
		if err != nil {
			return err
		}
		var receivables, payables domain.Money
		for _, inv := range invoices {
			outstanding := outstandingAt(inv, asOf)
			if inv.Type.Receivable() {
				receivables += outstanding
			} else {
				payables += outstanding
			}
		}

		for _, c := range []struct {
			name      string
			code      string
			subledger domain.Money
		}{
			{"accounts_receivable", s.policy.ReceivableAccountCode, receivables},
			{"accounts_payable", s.policy.PayableAccountCode, payables},
		} {
			check, err := controlCheck(ctx, tx, c.name, c.code, c.subledger, asOf)
			if err != nil {
				return err
			}
			report.Checks = append(report.Checks, check)
		}

		products, err := tx.ListProducts(ctx)
		if err != nil {
			return err
		}
		byAccount := make(map[string]domain.Money)
		var order []string
		for _, p := range products {
			movements, err := tx.ListMovements(ctx, p.ProductID)
			if err != nil {
				return err
			}
			if _, seen := byAccount[p.InventoryAccountID]; !seen {
				order = append(order, p.InventoryAccountID)
			}
			byAccount[p.InventoryAccountID] += inventoryValueAt(movements, asOf)
		}
		for _, accountID := range order {
			account, err := tx.FindAccountByID(ctx, accountID)
			if err != nil {
				return err
			}
			check, err := controlCheck(ctx, tx, "inventory", account.Code, byAccount[accountID], asOf)
			if err != nil {
				return err
			}
			report.Checks = append(report.Checks, check)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, c := range report.Checks {
		if c.Difference != 0 {
			s.LogWarn(ctx, "Control account out of agreement with sub-ledger",
				slog.String("control", c.Name),
				slog.String("account_code", c.AccountCode),
				slog.String("difference", c.Difference.String()))
		}
	}
	return report, nil
}

func controlCheck(ctx context.Context, tx portsrepo.LedgerTx, name, code string, subledger domain.Money, asOf time.Time) (domain.ControlAccountCheck, error) {
	account, err := tx.FindAccountByCode(ctx, code)
	if err != nil {
		return domain.ControlAccountCheck{}, fmt.Errorf("control account %s: %w", code, err)
	}
	net, err := netDebit(ctx, tx, account.AccountID, time.Time{}, asOf)
	if err != nil {
		return domain.ControlAccountCheck{}, err
	}
	balance := account.Balance(net)
	return domain.ControlAccountCheck{
		Name:             name,
		AccountID:        account.AccountID,
		AccountCode:      account.Code,
		LedgerBalance:    balance,
		SubledgerBalance: subledger,
		Difference:       balance - subledger,
	}, nil
}

// outstandingAt is the signed control-account contribution of inv on asOf: the
// amount issued less payments dated up to asOf, negative for credit notes. Drafts
// and documents voided on or before asOf contribute nothing.
func outstandingAt(inv domain.Invoice, asOf time.Time) domain.Money {
	switch inv.Status {
	case domain.InvoiceDraft:
		return 0
	case domain.InvoiceVoided:
		if inv.EntryID == "" || !domain.DateOnly(inv.LastUpdatedAt).After(asOf) {
			return 0
		}
	}
	if domain.DateOnly(inv.InvoiceDate).After(asOf) {
		return 0
	}
	due := inv.TotalAmount
	for _, p := range inv.Payments {
		if !domain.DateOnly(p.PaymentDate).After(asOf) {
			due -= p.Amount
		}
	}
	return due * inv.Type.ControlSign()
}

// inventoryValueAt replays a product's movements dated up to asOf.
func inventoryValueAt(movements []domain.StockMovement, asOf time.Time) domain.Money {
	var value domain.Money
	for _, m := range movements {
		if domain.DateOnly(m.MovementDate).After(asOf) {
			continue
		}
		if m.Kind == domain.MovementReceipt {
			value += m.TotalCost - m.Variance
		} else {
			value -= m.TotalCost
		}
	}
	return value
}
