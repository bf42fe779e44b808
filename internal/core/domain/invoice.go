package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes receivable and payable documents.
type InvoiceType string

const (
	SaleInvoice        InvoiceType = "sale"
	PurchaseInvoice    InvoiceType = "purchase"
	SaleCreditNote     InvoiceType = "credit_note_sale"
	PurchaseCreditNote InvoiceType = "credit_note_purchase"
)

// Valid reports whether t is a known invoice type.
func (t InvoiceType) Valid() bool {
	switch t {
	case SaleInvoice, PurchaseInvoice, SaleCreditNote, PurchaseCreditNote:
		return true
	}
	return false
}

// Receivable reports whether the document belongs to the A/R sub-ledger.
func (t InvoiceType) Receivable() bool {
	return t == SaleInvoice || t == SaleCreditNote
}

// CreditNote reports whether the document reduces a balance instead of raising one.
func (t InvoiceType) CreditNote() bool {
	return t == SaleCreditNote || t == PurchaseCreditNote
}

// NumberPrefix is the document-number prefix for the type.
func (t InvoiceType) NumberPrefix() string {
	switch t {
	case SaleInvoice:
		return "INV"
	case PurchaseInvoice:
		return "BILL"
	case SaleCreditNote:
		return "CN"
	default:
		return "DN"
	}
}

// ControlSign is +1 when the document increases its control account (A/R or A/P)
// and -1 for credit notes.
func (t InvoiceType) ControlSign() Money {
	if t.CreditNote() {
		return -1
	}
	return 1
}

// FormatInvoiceNumber renders e.g. INV-2024-0088.
func FormatInvoiceNumber(t InvoiceType, year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", t.NumberPrefix(), year, seq)
}

// InvoiceSequenceKey names the counter an invoice number is drawn from.
func InvoiceSequenceKey(t InvoiceType, year int) string {
	return fmt.Sprintf("invoice:%s:%d", t.NumberPrefix(), year)
}

// InvoiceStatus is the lifecycle state of a sub-ledger document.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoiceVoided  InvoiceStatus = "voided"
)

// InvoiceLine is a priced line. LineAmount and TaxAmount are fixed at issue.
type InvoiceLine struct {
	LineNo      int             `json:"lineNo"`
	Description string          `json:"description"`
	AccountID   string          `json:"accountID"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   Money           `json:"unitPrice"`
	TaxCode     string          `json:"taxCode,omitempty"`
	LineAmount  Money           `json:"lineAmount"`
	TaxAmount   Money           `json:"taxAmount"`
}

// Payment is cash applied against a document.
type Payment struct {
	PaymentID     string    `json:"paymentID"`
	Amount        Money     `json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
	CashAccountID string    `json:"cashAccountID"`
	EntryID       string    `json:"entryID"`
	Reference     string    `json:"reference,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
}

// Invoice is a sale invoice, purchase bill or credit note.
type Invoice struct {
	InvoiceID     string        `json:"invoiceID"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Type          InvoiceType   `json:"type"`
	ContactID     string        `json:"contactID"`
	InvoiceDate   time.Time     `json:"invoiceDate"`
	DueDate       time.Time     `json:"dueDate"`
	Reference     string        `json:"reference,omitempty"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      Money         `json:"subtotal"`
	TaxTotal      Money         `json:"taxTotal"`
	TotalAmount   Money         `json:"totalAmount"`
	AmountDue     Money         `json:"amountDue"`
	Status        InvoiceStatus `json:"status"`
	EntryID       string        `json:"entryID,omitempty"`
	Payments      []Payment     `json:"payments"`
	VoidReason    string        `json:"voidReason,omitempty"`
	AuditFields
}

// AmountPaid sums every recorded payment.
func (inv Invoice) AmountPaid() Money {
	var paid Money
	for _, p := range inv.Payments {
		paid += p.Amount
	}
	return paid
}

// Open reports whether the document is issued and still carries an amount due.
func (inv Invoice) Open() bool {
	return (inv.Status == InvoiceSent || inv.Status == InvoicePartial) && inv.AmountDue > 0
}

// EffectiveStatus derives overdue from the stored status: an open document whose
// due date lies before asOf is overdue.
func (inv Invoice) EffectiveStatus(asOf time.Time) InvoiceStatus {
	if inv.Open() && DateOnly(inv.DueDate).Before(DateOnly(asOf)) {
		return InvoiceOverdue
	}
	return inv.Status
}

// DaysOverdue counts whole days past due at asOf; zero when not yet due.
func (inv Invoice) DaysOverdue(asOf time.Time) int {
	d := int(DateOnly(asOf).Sub(DateOnly(inv.DueDate)).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// InvoiceFilter narrows ListInvoices. Status may be "overdue", which is derived at AsOf.
type InvoiceFilter struct {
	Type       InvoiceType
	Receivable *bool
	Status     InvoiceStatus
	ContactID  string
	AsOf       time.Time
}

// Matches reports whether inv passes the filter.
func (f InvoiceFilter) Matches(inv Invoice) bool {
	if f.Type != "" && inv.Type != f.Type {
		return false
	}
	if f.Receivable != nil && inv.Type.Receivable() != *f.Receivable {
		return false
	}
	if f.ContactID != "" && inv.ContactID != f.ContactID {
		return false
	}
	if f.Status != "" && inv.EffectiveStatus(f.AsOf) != f.Status {
		return false
	}
	return true
}
