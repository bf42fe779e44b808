package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/shopspring/decimal"
)

type invoiceService struct {
	BaseService
	store  portsrepo.TransactionManager
	engine *PostingEngine
	policy config.LedgerPolicy
}

// NewInvoiceService creates the A/R and A/P sub-ledger.
func NewInvoiceService(store portsrepo.TransactionManager, engine *PostingEngine, policy config.LedgerPolicy, options ...ServiceOption) portssvc.InvoiceSvcFacade {
	return &invoiceService{BaseService: newBaseService(options...), store: store, engine: engine, policy: policy}
}

// accountByCode resolves a configured control account.
func accountByCode(ctx context.Context, tx portsrepo.LedgerTx, code string) (*domain.Account, error) {
	acc, err := tx.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewFieldError(apperrors.ErrUnknownAccount, "accountCode", code)
		}
		return nil, err
	}
	return acc, nil
}

// activeAccount loads accountID and requires it to be open for posting.
func activeAccount(ctx context.Context, tx portsrepo.LedgerTx, field, accountID string) (*domain.Account, error) {
	acc, err := tx.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewFieldError(apperrors.ErrUnknownAccount, field, accountID)
		}
		return nil, err
	}
	if !acc.IsActive {
		return nil, apperrors.NewFieldError(apperrors.ErrInactiveAccount, field, acc.Code)
	}
	return acc, nil
}

// priceLines validates the request lines and computes amounts and tax.
func (s *invoiceService) priceLines(ctx context.Context, tx portsrepo.LedgerTx, reqLines []dto.InvoiceLineRequest) ([]domain.InvoiceLine, error) {
	lines := make([]domain.InvoiceLine, len(reqLines))
	for i, l := range reqLines {
		field := fmt.Sprintf("lines[%d]", i)
		accountID := strings.TrimSpace(l.AccountID)
		if _, err := activeAccount(ctx, tx, field+".accountID", accountID); err != nil {
			return nil, err
		}
		qty := l.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		if !qty.IsPositive() {
			return nil, apperrors.NewFieldError(apperrors.ErrValidation, field+".quantity", "gt=0")
		}
		if l.UnitPrice < 0 {
			return nil, apperrors.NewFieldError(apperrors.ErrValidation, field+".unitPrice", "gte=0")
		}
		amount := domain.MultiplyMoney(l.UnitPrice, qty)
		taxCode := strings.ToUpper(strings.TrimSpace(l.TaxCode))
		var tax domain.Money
		if taxCode != "" {
			rate, ok := s.policy.TaxRates[taxCode]
			if !ok {
				return nil, apperrors.NewFieldError(apperrors.ErrUnknownTaxCode, field+".taxCode", taxCode)
			}
			tax = domain.MultiplyMoney(amount, rate)
		}
		lines[i] = domain.InvoiceLine{
			LineNo:      i + 1,
			Description: l.Description,
			AccountID:   accountID,
			Quantity:    qty,
			UnitPrice:   l.UnitPrice,
			TaxCode:     taxCode,
			LineAmount:  amount,
			TaxAmount:   tax,
		}
	}
	return lines, nil
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error) {
	invoiceType := domain.InvoiceType(strings.ToLower(req.Type))
	if !invoiceType.Valid() {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "type", "oneof=sale purchase credit_note_sale credit_note_purchase")
	}
	invoiceDate, err := dto.ParseDate("invoiceDate", req.InvoiceDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := dto.ParseDate("dueDate", req.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate.Before(invoiceDate) {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "dueDate", "gtefield=invoiceDate")
	}
	if len(req.Lines) == 0 {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "lines", "min=1")
	}

	var invoice domain.Invoice
	err = s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		contact, err := tx.FindContactByID(ctx, req.ContactID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewFieldError(apperrors.ErrValidation, "contactID", "unknown contact")
			}
			return err
		}
		if invoiceType.Receivable() && !contact.Type.CanBeInvoiced() {
			return apperrors.NewFieldError(apperrors.ErrValidation, "contactID", fmt.Sprintf("%s contacts cannot be invoiced", contact.Type))
		}
		if !invoiceType.Receivable() && !contact.Type.CanBill() {
			return apperrors.NewFieldError(apperrors.ErrValidation, "contactID", fmt.Sprintf("%s contacts cannot bill", contact.Type))
		}

		lines, err := s.priceLines(ctx, tx, req.Lines)
		if err != nil {
			return err
		}
		var subtotal, taxTotal domain.Money
		for _, l := range lines {
			subtotal += l.LineAmount
			taxTotal += l.TaxAmount
		}
		if subtotal+taxTotal == 0 {
			return apperrors.NewFieldError(apperrors.ErrEmptyEntry, "lines", "total must not be zero")
		}

		seq, err := tx.NextSequence(ctx, domain.InvoiceSequenceKey(invoiceType, invoiceDate.Year()))
		if err != nil {
			return err
		}
		invoice = domain.Invoice{
			InvoiceID:     newID(),
			InvoiceNumber: domain.FormatInvoiceNumber(invoiceType, invoiceDate.Year(), seq),
			Type:          invoiceType,
			ContactID:     contact.ContactID,
			InvoiceDate:   invoiceDate,
			DueDate:       dueDate,
			Reference:     req.Reference,
			Lines:         lines,
			Subtotal:      subtotal,
			TaxTotal:      taxTotal,
			TotalAmount:   subtotal + taxTotal,
			AmountDue:     subtotal + taxTotal,
			Status:        domain.InvoiceDraft,
			Payments:      []domain.Payment{},
			AuditFields:   domain.NewAuditFields(userID, s.Now()),
		}
		if req.Issue {
			return s.issue(ctx, tx, &invoice, userID)
		}
		return tx.SaveInvoice(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Invoice created",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_number", invoice.InvoiceNumber),
		slog.String("status", string(invoice.Status)))
	return &invoice, nil
}

// issuanceLines builds the control-account entry. A sale debits A/R and credits
// revenue and tax payable; a purchase debits the line accounts and tax receivable
// and credits A/P. Credit notes post the same lines inverted.
func (s *invoiceService) issuanceLines(ctx context.Context, tx portsrepo.LedgerTx, inv *domain.Invoice) ([]domain.JournalLine, error) {
	controlCode, taxCode := s.policy.ReceivableAccountCode, s.policy.TaxPayableAccountCode
	if !inv.Type.Receivable() {
		controlCode, taxCode = s.policy.PayableAccountCode, s.policy.TaxReceivableAccountCode
	}
	control, err := accountByCode(ctx, tx, controlCode)
	if err != nil {
		return nil, err
	}

	// Lines are built in the sale orientation (control debited) and flipped for purchases.
	lines := []domain.JournalLine{{AccountID: control.AccountID, Description: inv.InvoiceNumber, Debit: inv.TotalAmount}}
	for _, l := range inv.Lines {
		if l.LineAmount == 0 {
			continue
		}
		lines = append(lines, domain.JournalLine{AccountID: l.AccountID, Description: l.Description, Credit: l.LineAmount})
	}
	if inv.TaxTotal != 0 {
		taxAccount, err := accountByCode(ctx, tx, taxCode)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.JournalLine{AccountID: taxAccount.AccountID, Description: "Tax on " + inv.InvoiceNumber, Credit: inv.TaxTotal})
	}

	// Sale: as built. Purchase and sale credit note: flipped. Purchase credit note: as built.
	flip := !inv.Type.Receivable()
	if inv.Type.CreditNote() {
		flip = !flip
	}
	if flip {
		for i := range lines {
			lines[i].Debit, lines[i].Credit = lines[i].Credit, lines[i].Debit
		}
	}
	return lines, nil
}

func (s *invoiceService) issue(ctx context.Context, tx portsrepo.LedgerTx, inv *domain.Invoice, userID string) error {
	if inv.Status != domain.InvoiceDraft {
		return fmt.Errorf("%w: invoice %s is %s, only drafts can be issued", apperrors.ErrState, inv.InvoiceNumber, inv.Status)
	}
	lines, err := s.issuanceLines(ctx, tx, inv)
	if err != nil {
		return err
	}
	journal := s.policy.SalesJournal
	if !inv.Type.Receivable() {
		journal = s.policy.PurchaseJournal
	}
	now := s.Now()
	posted, err := s.engine.Post(ctx, tx, domain.JournalEntry{
		EntryID:     newID(),
		JournalCode: journal,
		EntryDate:   inv.InvoiceDate,
		Description: fmt.Sprintf("%s %s", inv.Type.NumberPrefix(), inv.InvoiceNumber),
		Reference:   inv.InvoiceNumber,
		Status:      domain.EntryDraft,
		Lines:       lines,
		SourceType:  domain.SourceInvoice,
		SourceID:    inv.InvoiceID,
		AuditFields: domain.NewAuditFields(userID, now),
	}, userID)
	if err != nil {
		return err
	}
	inv.Status = domain.InvoiceSent
	inv.EntryID = posted.EntryID
	inv.AmountDue = inv.TotalAmount - inv.AmountPaid()
	inv.Touch(userID, now)
	return tx.SaveInvoice(ctx, *inv)
}

func (s *invoiceService) IssueInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		invoice, err = tx.FindInvoiceByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		return s.issue(ctx, tx, invoice, userID)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Invoice issued",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("entry_id", invoice.EntryID))
	return invoice, nil
}

// paymentLines moves cash against the control account: customers pay in and
// vendors are paid out, with refunds on credit notes going the other way.
func paymentLines(inv *domain.Invoice, cashAccountID, controlAccountID string, amount domain.Money) []domain.JournalLine {
	cashIn := inv.Type == domain.SaleInvoice || inv.Type == domain.PurchaseCreditNote
	if cashIn {
		return []domain.JournalLine{
			{AccountID: cashAccountID, Description: inv.InvoiceNumber, Debit: amount},
			{AccountID: controlAccountID, Description: inv.InvoiceNumber, Credit: amount},
		}
	}
	return []domain.JournalLine{
		{AccountID: controlAccountID, Description: inv.InvoiceNumber, Debit: amount},
		{AccountID: cashAccountID, Description: inv.InvoiceNumber, Credit: amount},
	}
}

func (s *invoiceService) RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest, userID string) (*domain.Invoice, error) {
	if req.Amount <= 0 {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "amount", "gt=0")
	}
	paymentDate, err := dto.ParseDate("paymentDate", req.PaymentDate)
	if err != nil {
		return nil, err
	}

	var invoice *domain.Invoice
	err = s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		invoice, err = tx.FindInvoiceByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !invoice.Open() {
			return fmt.Errorf("%w: invoice %s is %s and has nothing due", apperrors.ErrState, invoice.InvoiceNumber, invoice.Status)
		}
		if req.Amount > invoice.AmountDue && !s.policy.AllowOverpayment {
			return fmt.Errorf("%w: paying %s against %s due on %s", apperrors.ErrOverpayment, req.Amount, invoice.AmountDue, invoice.InvoiceNumber)
		}

		var cash *domain.Account
		if req.CashAccountID != "" {
			cash, err = activeAccount(ctx, tx, "cashAccountID", req.CashAccountID)
		} else {
			cash, err = accountByCode(ctx, tx, s.policy.CashAccountCode)
		}
		if err != nil {
			return err
		}
		controlCode := s.policy.ReceivableAccountCode
		if !invoice.Type.Receivable() {
			controlCode = s.policy.PayableAccountCode
		}
		control, err := accountByCode(ctx, tx, controlCode)
		if err != nil {
			return err
		}

		now := s.Now()
		paymentID := newID()
		posted, err := s.engine.Post(ctx, tx, domain.JournalEntry{
			EntryID:     newID(),
			JournalCode: s.policy.CashJournal,
			EntryDate:   paymentDate,
			Description: "Payment " + invoice.InvoiceNumber,
			Reference:   invoice.InvoiceNumber,
			Status:      domain.EntryDraft,
			Lines:       paymentLines(invoice, cash.AccountID, control.AccountID, req.Amount),
			SourceType:  domain.SourcePayment,
			SourceID:    paymentID,
			AuditFields: domain.NewAuditFields(userID, now),
		}, userID)
		if err != nil {
			return err
		}

		invoice.Payments = append(invoice.Payments, domain.Payment{
			PaymentID:     paymentID,
			Amount:        req.Amount,
			PaymentDate:   paymentDate,
			CashAccountID: cash.AccountID,
			EntryID:       posted.EntryID,
			Reference:     req.Reference,
			CreatedAt:     now,
			CreatedBy:     userID,
		})
		invoice.AmountDue -= req.Amount
		if invoice.AmountDue <= 0 {
			invoice.Status = domain.InvoicePaid
		} else {
			invoice.Status = domain.InvoicePartial
		}
		invoice.Touch(userID, now)
		return tx.SaveInvoice(ctx, *invoice)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Payment recorded",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("amount", req.Amount.String()),
		slog.String("status", string(invoice.Status)))
	return invoice, nil
}

func (s *invoiceService) VoidInvoice(ctx context.Context, invoiceID string, reason string, userID string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		invoice, err = tx.FindInvoiceByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		switch invoice.Status {
		case domain.InvoicePaid, domain.InvoiceVoided:
			return fmt.Errorf("%w: invoice %s is %s and cannot be voided", apperrors.ErrState, invoice.InvoiceNumber, invoice.Status)
		case domain.InvoiceDraft:
		default:
			if _, _, err := s.engine.Void(ctx, tx, invoice.EntryID, reason, userID); err != nil {
				return err
			}
			for _, p := range invoice.Payments {
				if _, _, err := s.engine.Void(ctx, tx, p.EntryID, reason, userID); err != nil {
					return err
				}
			}
		}
		invoice.Status = domain.InvoiceVoided
		invoice.AmountDue = 0
		invoice.VoidReason = reason
		invoice.Touch(userID, s.Now())
		return tx.SaveInvoice(ctx, *invoice)
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Invoice voided", slog.String("invoice_id", invoiceID))
	return invoice, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		invoice, err = tx.FindInvoiceByID(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	if filter.AsOf.IsZero() {
		filter.AsOf = s.Now()
	}
	var invoices []domain.Invoice
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		invoices, err = tx.ListInvoices(ctx, filter)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list invoices")
		return nil, err
	}
	return invoices, nil
}

func (s *invoiceService) AgedReceivables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error) {
	return s.aging(ctx, true, asOf)
}

func (s *invoiceService) AgedPayables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error) {
	return s.aging(ctx, false, asOf)
}

// aging buckets the outstanding amount of every document on one side of the
// sub-ledger by days past due, per contact. Credit notes count negative.
func (s *invoiceService) aging(ctx context.Context, receivable bool, asOf time.Time) (*domain.AgingReport, error) {
	if asOf.IsZero() {
		asOf = s.Now()
	}
	asOf = domain.DateOnly(asOf)
	report := &domain.AgingReport{AsOf: asOf, Rows: []domain.AgedContactRow{}}
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		invoices, err := tx.ListInvoices(ctx, domain.InvoiceFilter{Receivable: &receivable})
		if err != nil {
			return err
		}
		rows := make(map[string]*domain.AgedContactRow)
		for _, inv := range invoices {
			outstanding := outstandingAt(inv, asOf)
			if outstanding == 0 {
				continue
			}
			row, ok := rows[inv.ContactID]
			if !ok {
				contact, err := tx.FindContactByID(ctx, inv.ContactID)
				if err != nil {
					return err
				}
				row = &domain.AgedContactRow{ContactID: contact.ContactID, ContactName: contact.Name}
				rows[inv.ContactID] = row
			}
			row.Add(inv.DaysOverdue(asOf), outstanding)
		}
		for _, row := range rows {
			report.Rows = append(report.Rows, *row)
			report.Totals.Merge(row.AgingBuckets)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		a, b := strings.ToLower(report.Rows[i].ContactName), strings.ToLower(report.Rows[j].ContactName)
		if a != b {
			return a < b
		}
		return report.Rows[i].ContactID < report.Rows[j].ContactID
	})
	return report, nil
}
