package services_test

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

func (s *LedgerTestSuite) saleRequest(contactID, date, due string, issue bool) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		Type:        string(domain.SaleInvoice),
		ContactID:   contactID,
		InvoiceDate: date,
		DueDate:     due,
		Issue:       issue,
		Lines: []dto.InvoiceLineRequest{
			{Description: "Consulting", AccountID: s.id("4000"), Quantity: decimal.NewFromInt(2), UnitPrice: 10000, TaxCode: "gst10"},
			{Description: "Travel", AccountID: s.id("4000"), UnitPrice: 2500},
		},
	}
}

func (s *LedgerTestSuite) billRequest(contactID, date, due string) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		Type:        string(domain.PurchaseInvoice),
		ContactID:   contactID,
		InvoiceDate: date,
		DueDate:     due,
		Issue:       true,
		Lines: []dto.InvoiceLineRequest{
			{Description: "Office supplies", AccountID: s.id("5300"), UnitPrice: 10000, TaxCode: "GST5"},
		},
	}
}

func (s *LedgerTestSuite) pay(invoiceID string, amount domain.Money, date string) (*domain.Invoice, error) {
	return s.svc.Invoice.RecordPayment(s.ctx, invoiceID, dto.RecordPaymentRequest{Amount: amount, PaymentDate: date}, testUser)
}

func (s *LedgerTestSuite) TestInvoicePaidInFull() {
	customer := s.contact("Acme Ltd", domain.Customer)

	inv, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true), testUser)
	s.Require().NoError(err)
	s.Equal("INV-2024-0001", inv.InvoiceNumber)
	s.Equal(domain.InvoiceSent, inv.Status)
	s.Equal(domain.Money(22500), inv.Subtotal)
	s.Equal(domain.Money(2000), inv.TaxTotal)
	s.Equal(domain.Money(24500), inv.TotalAmount)
	s.Equal(domain.Money(24500), inv.AmountDue)
	s.True(inv.Lines[1].Quantity.Equal(decimal.NewFromInt(1)))
	s.NotEmpty(inv.EntryID)

	entry, err := s.svc.Journal.GetEntry(s.ctx, inv.EntryID)
	s.Require().NoError(err)
	s.Equal("SJ", entry.JournalCode)
	s.Equal(inv.InvoiceNumber, entry.Reference)

	s.Equal(domain.Money(24500), s.balance("1100"))
	s.Equal(domain.Money(22500), s.balance("4000"))
	s.Equal(domain.Money(2000), s.balance("2200"))

	paid, err := s.pay(inv.InvoiceID, 24500, "2024-06-10")
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, paid.Status)
	s.Equal(domain.Money(0), paid.AmountDue)
	s.Require().Len(paid.Payments, 1)
	s.Equal(s.id("1000"), paid.Payments[0].CashAccountID)

	s.Equal(domain.Money(0), s.balance("1100"))
	s.Equal(domain.Money(24500), s.balance("1000"))

	_, err = s.pay(inv.InvoiceID, 1, "2024-06-11")
	s.ErrorIs(err, apperrors.ErrState)
	_, err = s.svc.Invoice.VoidInvoice(s.ctx, inv.InvoiceID, "too late", testUser)
	s.ErrorIs(err, apperrors.ErrState)
}

func (s *LedgerTestSuite) TestOverpaymentRejected() {
	customer := s.contact("Acme Ltd", domain.Customer)
	inv, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true), testUser)
	s.Require().NoError(err)

	_, err = s.pay(inv.InvoiceID, 30000, "2024-06-10")
	s.ErrorIs(err, apperrors.ErrOverpayment)
	s.ErrorIs(err, apperrors.ErrConflict)

	stored, err := s.svc.Invoice.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceSent, stored.Status)
	s.Equal(domain.Money(24500), stored.AmountDue)
	s.Empty(stored.Payments)
	s.Equal(domain.Money(0), s.balance("1000"))

	partial, err := s.pay(inv.InvoiceID, 10000, "2024-06-10")
	s.Require().NoError(err)
	s.Equal(domain.InvoicePartial, partial.Status)
	s.Equal(domain.Money(14500), partial.AmountDue)

	_, err = s.pay(inv.InvoiceID, 0, "2024-06-10")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerTestSuite) TestOverpaymentAllowedByPolicy() {
	policy := s.policy
	policy.AllowOverpayment = true
	invoices := services.NewInvoiceService(s.store, s.engine, policy)

	customer := s.contact("Acme Ltd", domain.Customer)
	inv, err := invoices.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true), testUser)
	s.Require().NoError(err)

	paid, err := invoices.RecordPayment(s.ctx, inv.InvoiceID, dto.RecordPaymentRequest{Amount: 30000, PaymentDate: "2024-06-10"}, testUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePaid, paid.Status)
	s.Equal(domain.Money(-5500), paid.AmountDue)
	s.Equal(domain.Money(-5500), s.balance("1100"))
}

func (s *LedgerTestSuite) TestInvoiceDraftThenIssue() {
	customer := s.contact("Acme Ltd", domain.Customer)
	inv, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", false), testUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceDraft, inv.Status)
	s.Empty(inv.EntryID)
	s.Equal(domain.Money(0), s.balance("1100"))

	_, err = s.pay(inv.InvoiceID, 100, "2024-06-10")
	s.ErrorIs(err, apperrors.ErrState)

	issued, err := s.svc.Invoice.IssueInvoice(s.ctx, inv.InvoiceID, testUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceSent, issued.Status)
	s.Equal(domain.Money(24500), s.balance("1100"))

	_, err = s.svc.Invoice.IssueInvoice(s.ctx, inv.InvoiceID, testUser)
	s.ErrorIs(err, apperrors.ErrState)

	second, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-02", "2024-06-30", false), testUser)
	s.Require().NoError(err)
	s.Equal("INV-2024-0002", second.InvoiceNumber)
	voided, err := s.svc.Invoice.VoidInvoice(s.ctx, second.InvoiceID, "duplicate", testUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceVoided, voided.Status)
}

func (s *LedgerTestSuite) TestCreateInvoiceValidation() {
	customer := s.contact("Acme Ltd", domain.Customer)
	vendor := s.contact("Paper Supplies", domain.Vendor)

	_, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(vendor.ContactID, "2024-06-01", "2024-06-30", true), testUser)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-05-30", true), testUser)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest("missing", "2024-06-01", "2024-06-30", true), testUser)
	s.ErrorIs(err, apperrors.ErrValidation)

	req := s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true)
	req.Lines[0].TaxCode = "VAT20"
	_, err = s.svc.Invoice.CreateInvoice(s.ctx, req, testUser)
	s.ErrorIs(err, apperrors.ErrUnknownTaxCode)

	req = s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true)
	req.Lines[1].AccountID = "missing"
	_, err = s.svc.Invoice.CreateInvoice(s.ctx, req, testUser)
	s.ErrorIs(err, apperrors.ErrUnknownAccount)
	fe, ok := apperrors.AsFieldError(err)
	s.Require().True(ok)
	s.Equal("lines[1].accountID", fe.Field)

	req = s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true)
	req.Lines[0].Quantity = decimal.NewFromInt(-1)
	_, err = s.svc.Invoice.CreateInvoice(s.ctx, req, testUser)
	s.ErrorIs(err, apperrors.ErrValidation)

	invoices, err := s.svc.Invoice.ListInvoices(s.ctx, domain.InvoiceFilter{})
	s.Require().NoError(err)
	s.Empty(invoices)
	s.Equal(domain.Money(0), s.balance("1100"))
}

func (s *LedgerTestSuite) TestPurchaseBillAndCreditNote() {
	vendor := s.contact("Paper Supplies", domain.Vendor)
	bill, err := s.svc.Invoice.CreateInvoice(s.ctx, s.billRequest(vendor.ContactID, "2024-06-01", "2024-06-30"), testUser)
	s.Require().NoError(err)
	s.Equal("BILL-2024-0001", bill.InvoiceNumber)
	s.Equal(domain.Money(10500), bill.TotalAmount)
	s.Equal(domain.Money(10500), s.balance("2000"))
	s.Equal(domain.Money(10000), s.balance("5300"))
	s.Equal(domain.Money(500), s.balance("1300"))

	entry, err := s.svc.Journal.GetEntry(s.ctx, bill.EntryID)
	s.Require().NoError(err)
	s.Equal("PJ", entry.JournalCode)

	_, err = s.pay(bill.InvoiceID, 10500, "2024-06-20")
	s.Require().NoError(err)
	s.Equal(domain.Money(0), s.balance("2000"))
	s.Equal(domain.Money(-10500), s.balance("1000"))

	customer := s.contact("Acme Ltd", domain.Customer)
	_, err = s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true), testUser)
	s.Require().NoError(err)

	note, err := s.svc.Invoice.CreateInvoice(s.ctx, dto.CreateInvoiceRequest{
		Type:        string(domain.SaleCreditNote),
		ContactID:   customer.ContactID,
		InvoiceDate: "2024-06-05",
		DueDate:     "2024-06-05",
		Issue:       true,
		Lines:       []dto.InvoiceLineRequest{{Description: "Goodwill", AccountID: s.id("4000"), UnitPrice: 2000}},
	}, testUser)
	s.Require().NoError(err)
	s.Equal("CN-2024-0001", note.InvoiceNumber)
	s.Equal(domain.Money(22500), s.balance("1100"))
	s.Equal(domain.Money(20500), s.balance("4000"))

	_, err = s.pay(note.InvoiceID, 2000, "2024-06-06")
	s.Require().NoError(err)
	s.Equal(domain.Money(24500), s.balance("1100"))
	s.Equal(domain.Money(-12500), s.balance("1000"))
}

func (s *LedgerTestSuite) TestVoidInvoiceReversesIssueAndPayments() {
	customer := s.contact("Acme Ltd", domain.Customer)
	inv, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true), testUser)
	s.Require().NoError(err)
	partial, err := s.pay(inv.InvoiceID, 10000, "2024-06-10")
	s.Require().NoError(err)

	voided, err := s.svc.Invoice.VoidInvoice(s.ctx, inv.InvoiceID, "wrong customer", testUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceVoided, voided.Status)
	s.Equal(domain.Money(0), voided.AmountDue)
	s.Equal("wrong customer", voided.VoidReason)

	for _, code := range []string{"1000", "1100", "2200", "4000"} {
		s.Equal(domain.Money(0), s.balance(code), code)
	}
	for _, id := range []string{inv.EntryID, partial.Payments[0].EntryID} {
		e, err := s.svc.Journal.GetEntry(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.EntryVoided, e.Status)
	}

	_, err = s.svc.Invoice.VoidInvoice(s.ctx, inv.InvoiceID, "again", testUser)
	s.ErrorIs(err, apperrors.ErrState)

	report, err := s.svc.Reporting.ReconcileControlAccounts(s.ctx, time.Time{})
	s.Require().NoError(err)
	for _, c := range report.Checks {
		s.Equal(domain.Money(0), c.Difference, c.Name)
	}
}

func (s *LedgerTestSuite) TestSubledgerEntriesVoidOnlyThroughOwner() {
	customer := s.contact("Acme Ltd", domain.Customer)
	inv, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-06-30", true), testUser)
	s.Require().NoError(err)
	paid, err := s.pay(inv.InvoiceID, 10000, "2024-06-10")
	s.Require().NoError(err)
	payment := paid.Payments[0]
	p := s.product("OWN-1", domain.FIFO, 0)
	movement, _ := s.receive(p.ProductID, 3, 100, "2024-06-02")

	for _, tc := range []struct {
		entryID    string
		sourceType domain.EntrySource
		sourceID   string
	}{
		{inv.EntryID, domain.SourceInvoice, inv.InvoiceID},
		{payment.EntryID, domain.SourcePayment, payment.PaymentID},
		{movement.EntryID, domain.SourceStockMovement, movement.MovementID},
	} {
		s.Run(string(tc.sourceType), func() {
			entry, err := s.svc.Journal.GetEntry(s.ctx, tc.entryID)
			s.Require().NoError(err)
			s.Equal(tc.sourceType, entry.SourceType)
			s.Equal(tc.sourceID, entry.SourceID)

			voided, reversal, err := s.svc.Journal.VoidEntry(s.ctx, tc.entryID, "bypass", testUser)
			s.ErrorIs(err, apperrors.ErrState)
			s.Nil(voided)
			s.Nil(reversal)

			entry, err = s.svc.Journal.GetEntry(s.ctx, tc.entryID)
			s.Require().NoError(err)
			s.Equal(domain.EntryPosted, entry.Status)
		})
	}

	stored, err := s.svc.Invoice.GetInvoice(s.ctx, inv.InvoiceID)
	s.Require().NoError(err)
	s.Equal(domain.InvoicePartial, stored.Status)
	s.Equal(domain.Money(14500), stored.AmountDue)

	report, err := s.svc.Reporting.ReconcileControlAccounts(s.ctx, time.Time{})
	s.Require().NoError(err)
	for _, c := range report.Checks {
		s.Equal(domain.Money(0), c.Difference, c.Name)
	}

	voidedInvoice, err := s.svc.Invoice.VoidInvoice(s.ctx, inv.InvoiceID, "wrong customer", testUser)
	s.Require().NoError(err)
	s.Equal(domain.InvoiceVoided, voidedInvoice.Status)
	entry, err := s.svc.Journal.GetEntry(s.ctx, inv.EntryID)
	s.Require().NoError(err)
	s.Equal(domain.EntryVoided, entry.Status)
	reversal, err := s.svc.Journal.GetEntry(s.ctx, entry.ReversedByID)
	s.Require().NoError(err)
	s.Equal(domain.SourceInvoice, reversal.SourceType)
	s.Equal(inv.InvoiceID, reversal.SourceID)
}

func (s *LedgerTestSuite) TestAgingAndControlAccounts() {
	customer := s.contact("Acme Ltd", domain.Customer)
	vendor := s.contact("Paper Supplies", domain.Vendor)

	old, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-04-01", "2024-04-15", true), testUser)
	s.Require().NoError(err)
	current, err := s.svc.Invoice.CreateInvoice(s.ctx, s.saleRequest(customer.ContactID, "2024-06-01", "2024-07-01", true), testUser)
	s.Require().NoError(err)
	_, err = s.pay(current.InvoiceID, 5000, "2024-06-05")
	s.Require().NoError(err)
	_, err = s.svc.Invoice.CreateInvoice(s.ctx, s.billRequest(vendor.ContactID, "2024-05-01", "2024-05-31"), testUser)
	s.Require().NoError(err)

	ar, err := s.svc.Invoice.AgedReceivables(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(ar.Rows, 1)
	s.Equal("Acme Ltd", ar.Rows[0].ContactName)
	s.Equal(domain.Money(24500), ar.Rows[0].Days61To90)
	s.Equal(domain.Money(19500), ar.Rows[0].Current)
	s.Equal(domain.Money(44000), ar.Totals.Total)

	ap, err := s.svc.Invoice.AgedPayables(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(ap.Rows, 1)
	s.Equal(domain.Money(10500), ap.Rows[0].Days1To30)

	earlier, err := s.svc.Invoice.AgedReceivables(s.ctx, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(domain.Money(24500), earlier.Totals.Days1To30)
	s.Equal(domain.Money(24500), earlier.Totals.Total)

	overdue, err := s.svc.Invoice.ListInvoices(s.ctx, domain.InvoiceFilter{Status: domain.InvoiceOverdue})
	s.Require().NoError(err)
	s.Require().Len(overdue, 2)
	s.Equal(old.InvoiceID, overdue[0].InvoiceID)

	receivable := true
	sales, err := s.svc.Invoice.ListInvoices(s.ctx, domain.InvoiceFilter{Receivable: &receivable})
	s.Require().NoError(err)
	s.Len(sales, 2)

	report, err := s.svc.Reporting.ReconcileControlAccounts(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(report.Checks, 2)
	s.Equal("accounts_receivable", report.Checks[0].Name)
	s.Equal(domain.Money(44000), report.Checks[0].LedgerBalance)
	s.Equal(domain.Money(44000), report.Checks[0].SubledgerBalance)
	s.Equal(domain.Money(10500), report.Checks[1].SubledgerBalance)
	for _, c := range report.Checks {
		s.Equal(domain.Money(0), c.Difference, c.Name)
	}

	s.post("GJ", "2024-06-14", s.dr("1100", 700), s.cr("4000", 700))
	report, err = s.svc.Reporting.ReconcileControlAccounts(s.ctx, time.Time{})
	s.Require().NoError(err)
	s.Equal(domain.Money(700), report.Checks[0].Difference)
}
