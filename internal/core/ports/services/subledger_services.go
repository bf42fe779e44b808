package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// ContactSvcFacade manages customers, vendors and employees.
type ContactSvcFacade interface {
	CreateContact(ctx context.Context, req dto.CreateContactRequest, userID string) (*domain.Contact, error)
	GetContact(ctx context.Context, contactID string) (*domain.Contact, error)
	ListContacts(ctx context.Context, contactType domain.ContactType) ([]domain.Contact, error)
}

// InvoiceSvcFacade is the A/R and A/P sub-ledger.
type InvoiceSvcFacade interface {
	// CreateInvoice records a numbered draft, issuing it too when req.Issue is set.
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, userID string) (*domain.Invoice, error)

	// IssueInvoice posts the control-account entry and moves the document to sent.
	IssueInvoice(ctx context.Context, invoiceID string, userID string) (*domain.Invoice, error)

	// RecordPayment applies cash and posts the payment entry.
	RecordPayment(ctx context.Context, invoiceID string, req dto.RecordPaymentRequest, userID string) (*domain.Invoice, error)

	// VoidInvoice reverses the issuance and payment entries of a non-paid document.
	VoidInvoice(ctx context.Context, invoiceID string, reason string, userID string) (*domain.Invoice, error)

	GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)

	AgedReceivables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error)
	AgedPayables(ctx context.Context, asOf time.Time) (*domain.AgingReport, error)
}

// InventorySvcFacade is the inventory valuation sub-ledger.
type InventorySvcFacade interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest, userID string) (*domain.Product, error)
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error)

	// SetValuationMethod is refused once the product has stock history.
	SetValuationMethod(ctx context.Context, productID string, req dto.SetValuationMethodRequest, userID string) (*domain.Product, error)

	ReceiveStock(ctx context.Context, productID string, req dto.StockReceiptRequest, userID string) (*domain.StockMovement, *domain.Product, error)
	IssueStock(ctx context.Context, productID string, req dto.StockIssueRequest, userID string) (*domain.StockMovement, *domain.Product, error)

	InventoryValuation(ctx context.Context) (*domain.InventoryValuationReport, error)
}
