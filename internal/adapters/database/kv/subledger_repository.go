package kv

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func (t *ledgerTx) SaveContact(ctx context.Context, contact domain.Contact) error {
	return t.putJSON(BucketContacts, contact.ContactID, contact)
}

func (t *ledgerTx) FindContactByID(ctx context.Context, contactID string) (*domain.Contact, error) {
	var contact domain.Contact
	found, err := t.getJSON(BucketContacts, contactID, &contact)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: contact %s", apperrors.ErrNotFound, contactID)
	}
	return &contact, nil
}

func (t *ledgerTx) ListContacts(ctx context.Context, contactType domain.ContactType) ([]domain.Contact, error) {
	var contacts []domain.Contact
	err := scanJSON(t, BucketContacts, "", func(c domain.Contact) (bool, error) {
		if contactType == "" || c.Type == contactType {
			contacts = append(contacts, c)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(contacts, func(i, j int) bool {
		return strings.ToLower(contacts[i].Name) < strings.ToLower(contacts[j].Name)
	})
	return contacts, nil
}

func (t *ledgerTx) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	return t.putJSON(BucketInvoices, invoice.InvoiceID, invoice)
}

func (t *ledgerTx) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	found, err := t.getJSON(BucketInvoices, invoiceID, &invoice)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	return &invoice, nil
}

func (t *ledgerTx) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := scanJSON(t, BucketInvoices, "", func(inv domain.Invoice) (bool, error) {
		if filter.Matches(inv) {
			invoices = append(invoices, inv)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if !a.InvoiceDate.Equal(b.InvoiceDate) {
			return a.InvoiceDate.Before(b.InvoiceDate)
		}
		return a.InvoiceNumber < b.InvoiceNumber
	})
	return invoices, nil
}

func (t *ledgerTx) SaveProduct(ctx context.Context, product domain.Product) error {
	if _, taken := t.getString(BucketProductSKUs, product.SKU); taken {
		return fmt.Errorf("%w: sku %s", apperrors.ErrDuplicateCode, product.SKU)
	}
	if err := t.putJSON(BucketProducts, product.ProductID, product); err != nil {
		return err
	}
	return t.putString(BucketProductSKUs, product.SKU, product.ProductID)
}

func (t *ledgerTx) UpdateProduct(ctx context.Context, product domain.Product) error {
	existing, err := t.FindProductByID(ctx, product.ProductID)
	if err != nil {
		return err
	}
	if existing.SKU != product.SKU {
		return fmt.Errorf("%w: sku cannot change", apperrors.ErrValidation)
	}
	return t.putJSON(BucketProducts, product.ProductID, product)
}

func (t *ledgerTx) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	found, err := t.getJSON(BucketProducts, productID, &product)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}
	return &product, nil
}

func (t *ledgerTx) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := scanJSON(t, BucketProducts, "", func(p domain.Product) (bool, error) {
		products = append(products, p)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(products, func(i, j int) bool { return products[i].SKU < products[j].SKU })
	return products, nil
}

func (t *ledgerTx) SaveMovement(ctx context.Context, movement domain.StockMovement) error {
	key := movementKey(movement.ProductID, movement.Sequence)
	if t.tx.Get(BucketMovements, []byte(key)) != nil {
		return fmt.Errorf("%w: movement %d of product %s", apperrors.ErrAppendOnly, movement.Sequence, movement.ProductID)
	}
	return t.putJSON(BucketMovements, key, movement)
}

func (t *ledgerTx) ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	err := scanJSON(t, BucketMovements, productID+"|", func(m domain.StockMovement) (bool, error) {
		movements = append(movements, m)
		return true, nil
	})
	return movements, err
}
