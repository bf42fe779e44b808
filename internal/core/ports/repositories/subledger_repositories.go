package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ContactRepository stores counterparties.
type ContactRepository interface {
	SaveContact(ctx context.Context, contact domain.Contact) error
	FindContactByID(ctx context.Context, contactID string) (*domain.Contact, error)
	// ListContacts returns contacts ordered by name; an empty type lists all.
	ListContacts(ctx context.Context, contactType domain.ContactType) ([]domain.Contact, error)
}

// InvoiceRepository stores sub-ledger documents.
type InvoiceRepository interface {
	// SaveInvoice inserts or replaces an invoice.
	SaveInvoice(ctx context.Context, invoice domain.Invoice) error
	FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)
	// ListInvoices returns invoices ordered by invoice date then number.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error)
}

// ProductRepository stores inventory items and their movements.
type ProductRepository interface {
	// SaveProduct persists a new product. A taken SKU yields apperrors.ErrDuplicateCode.
	SaveProduct(ctx context.Context, product domain.Product) error
	UpdateProduct(ctx context.Context, product domain.Product) error
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)
	// ListProducts returns products ordered by SKU.
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SaveMovement(ctx context.Context, movement domain.StockMovement) error
	// ListMovements returns a product's movements in the order they were recorded.
	ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error)
}
