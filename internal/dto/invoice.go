package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// InvoiceLineRequest is one priced line. AccountID is the revenue (sale side) or
// expense/asset (purchase side) account; Quantity defaults to 1.
type InvoiceLineRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	AccountID   string          `json:"accountID" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   domain.Money    `json:"unitPrice"`
	TaxCode     string          `json:"taxCode" binding:"max=20"`
}

// CreateInvoiceRequest defines a draft invoice, bill or credit note. With Issue set
// the document is issued in the same call.
type CreateInvoiceRequest struct {
	Type        string               `json:"type" binding:"required,oneof=sale purchase credit_note_sale credit_note_purchase"`
	ContactID   string               `json:"contactID" binding:"required"`
	InvoiceDate string               `json:"invoiceDate" binding:"required"`
	DueDate     string               `json:"dueDate" binding:"required"`
	Reference   string               `json:"reference" binding:"max=100"`
	Lines       []InvoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
	Issue       bool                 `json:"issue"`
}

// RecordPaymentRequest applies cash to a document. CashAccountID defaults to the
// configured cash account.
type RecordPaymentRequest struct {
	Amount        domain.Money `json:"amount" binding:"required"`
	PaymentDate   string       `json:"paymentDate" binding:"required"`
	CashAccountID string       `json:"cashAccountID"`
	Reference     string       `json:"reference" binding:"max=100"`
}

// VoidInvoiceRequest carries the reason recorded on the voided document.
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// InvoiceLineResponse defines the data returned for an invoice line.
type InvoiceLineResponse struct {
	LineNo      int             `json:"lineNo"`
	Description string          `json:"description"`
	AccountID   string          `json:"accountID"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   domain.Money    `json:"unitPrice"`
	TaxCode     string          `json:"taxCode,omitempty"`
	LineAmount  domain.Money    `json:"lineAmount"`
	TaxAmount   domain.Money    `json:"taxAmount"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID     string       `json:"paymentID"`
	Amount        domain.Money `json:"amount"`
	PaymentDate   string       `json:"paymentDate"`
	CashAccountID string       `json:"cashAccountID"`
	EntryID       string       `json:"entryID"`
	Reference     string       `json:"reference,omitempty"`
}

// InvoiceResponse defines the data returned for an invoice. Status is the effective
// status on the day of the request, so overdue documents read as overdue.
type InvoiceResponse struct {
	InvoiceID     string                `json:"invoiceID"`
	InvoiceNumber string                `json:"invoiceNumber"`
	Type          domain.InvoiceType    `json:"type"`
	ContactID     string                `json:"contactID"`
	InvoiceDate   string                `json:"invoiceDate"`
	DueDate       string                `json:"dueDate"`
	Reference     string                `json:"reference,omitempty"`
	Lines         []InvoiceLineResponse `json:"lines"`
	Subtotal      domain.Money          `json:"subtotal"`
	TaxTotal      domain.Money          `json:"taxTotal"`
	TotalAmount   domain.Money          `json:"totalAmount"`
	AmountPaid    domain.Money          `json:"amountPaid"`
	AmountDue     domain.Money          `json:"amountDue"`
	Status        domain.InvoiceStatus  `json:"status"`
	EntryID       string                `json:"entryID,omitempty"`
	Payments      []PaymentResponse     `json:"payments"`
	VoidReason    string                `json:"voidReason,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// ToInvoiceResponse converts a domain.Invoice, deriving the status at asOf.
func ToInvoiceResponse(inv *domain.Invoice, asOf time.Time) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			LineNo:      l.LineNo,
			Description: l.Description,
			AccountID:   l.AccountID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxCode:     l.TaxCode,
			LineAmount:  l.LineAmount,
			TaxAmount:   l.TaxAmount,
		}
	}
	payments := make([]PaymentResponse, len(inv.Payments))
	for i, p := range inv.Payments {
		payments[i] = PaymentResponse{
			PaymentID:     p.PaymentID,
			Amount:        p.Amount,
			PaymentDate:   FormatDate(p.PaymentDate),
			CashAccountID: p.CashAccountID,
			EntryID:       p.EntryID,
			Reference:     p.Reference,
		}
	}
	return InvoiceResponse{
		InvoiceID:     inv.InvoiceID,
		InvoiceNumber: inv.InvoiceNumber,
		Type:          inv.Type,
		ContactID:     inv.ContactID,
		InvoiceDate:   FormatDate(inv.InvoiceDate),
		DueDate:       FormatDate(inv.DueDate),
		Reference:     inv.Reference,
		Lines:         lines,
		Subtotal:      inv.Subtotal,
		TaxTotal:      inv.TaxTotal,
		TotalAmount:   inv.TotalAmount,
		AmountPaid:    inv.AmountPaid(),
		AmountDue:     inv.AmountDue,
		Status:        inv.EffectiveStatus(asOf),
		EntryID:       inv.EntryID,
		Payments:      payments,
		VoidReason:    inv.VoidReason,
		CreatedAt:     inv.CreatedAt,
	}
}

// ListInvoicesParams defines query parameters for listing invoices. Tab mirrors the
// invoice list tabs: all, sale, purchase, paid, overdue.
type ListInvoicesParams struct {
	Tab       string `form:"tab" binding:"omitempty,oneof=all sale purchase paid overdue"`
	Type      string `form:"type" binding:"omitempty,oneof=sale purchase credit_note_sale credit_note_purchase"`
	Status    string `form:"status" binding:"omitempty,oneof=draft sent partial paid overdue voided"`
	ContactID string `form:"contactID"`
	AsOf      string `form:"asOf"`
}

// ListInvoicesResponse wraps the list of invoices.
type ListInvoicesResponse struct {
	Invoices []InvoiceResponse `json:"invoices"`
}

// Filter converts the query into a domain.InvoiceFilter. The paid and overdue tabs
// take precedence over Status.
func (p ListInvoicesParams) Filter() (domain.InvoiceFilter, error) {
	asOf, err := ParseOptionalDate("asOf", p.AsOf)
	if err != nil {
		return domain.InvoiceFilter{}, err
	}
	filter := domain.InvoiceFilter{
		Type:      domain.InvoiceType(p.Type),
		Status:    domain.InvoiceStatus(p.Status),
		ContactID: p.ContactID,
		AsOf:      asOf,
	}
	switch p.Tab {
	case "sale":
		receivable := true
		filter.Receivable = &receivable
	case "purchase":
		receivable := false
		filter.Receivable = &receivable
	case "paid":
		filter.Status = domain.InvoicePaid
	case "overdue":
		filter.Status = domain.InvoiceOverdue
	}
	return filter, nil
}
