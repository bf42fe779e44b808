package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

func (r *pgxLedgerTx) SaveContact(ctx context.Context, contact domain.Contact) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO contacts (contact_id, name, type, email, phone, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (contact_id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`,
		contact.ContactID, contact.Name, string(contact.Type), contact.Email, contact.Phone,
		contact.CreatedAt, contact.CreatedBy, contact.LastUpdatedAt, contact.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save contact %s: %w", contact.ContactID, err)
	}
	return nil
}

const contactColumns = `contact_id, name, type, email, phone, created_at, created_by, last_updated_at, last_updated_by`

func scanContact(row pgx.Row) (domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ContactID, &c.Name, (*string)(&c.Type), &c.Email, &c.Phone,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy)
	return c, err
}

func (r *pgxLedgerTx) FindContactByID(ctx context.Context, contactID string) (*domain.Contact, error) {
	c, err := scanContact(r.tx.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE contact_id = $1;`, contactID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: contact %s", apperrors.ErrNotFound, contactID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find contact %s: %w", contactID, err)
	}
	return &c, nil
}

func (r *pgxLedgerTx) ListContacts(ctx context.Context, contactType domain.ContactType) ([]domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`
	var args []any
	if contactType != "" {
		query += ` WHERE type = $1`
		args = append(args, string(contactType))
	}
	query += ` ORDER BY lower(name);`
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()
	var contacts []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *pgxLedgerTx) SaveInvoice(ctx context.Context, inv domain.Invoice) error {
	lines, err := json.Marshal(inv.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode lines of invoice %s: %w", inv.InvoiceID, err)
	}
	payments, err := json.Marshal(inv.Payments)
	if err != nil {
		return fmt.Errorf("failed to encode payments of invoice %s: %w", inv.InvoiceID, err)
	}
	_, err = r.tx.Exec(ctx, `
		INSERT INTO invoices (invoice_id, invoice_number, type, contact_id, invoice_date, due_date, reference,
			lines, subtotal, tax_total, total_amount, amount_due, status, entry_id, payments, void_reason,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (invoice_id) DO UPDATE SET
			contact_id = EXCLUDED.contact_id,
			invoice_date = EXCLUDED.invoice_date,
			due_date = EXCLUDED.due_date,
			reference = EXCLUDED.reference,
			lines = EXCLUDED.lines,
			subtotal = EXCLUDED.subtotal,
			tax_total = EXCLUDED.tax_total,
			total_amount = EXCLUDED.total_amount,
			amount_due = EXCLUDED.amount_due,
			status = EXCLUDED.status,
			entry_id = EXCLUDED.entry_id,
			payments = EXCLUDED.payments,
			void_reason = EXCLUDED.void_reason,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`,
		inv.InvoiceID, inv.InvoiceNumber, string(inv.Type), inv.ContactID, domain.DateOnly(inv.InvoiceDate), domain.DateOnly(inv.DueDate), inv.Reference,
		lines, int64(inv.Subtotal), int64(inv.TaxTotal), int64(inv.TotalAmount), int64(inv.AmountDue), string(inv.Status), inv.EntryID, payments, inv.VoidReason,
		inv.CreatedAt, inv.CreatedBy, inv.LastUpdatedAt, inv.LastUpdatedBy,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: invoice number %s", apperrors.ErrDuplicateCode, inv.InvoiceNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", inv.InvoiceID, err)
	}
	return nil
}

const invoiceColumns = `invoice_id, invoice_number, type, contact_id, invoice_date, due_date, reference,
	lines, subtotal, tax_total, total_amount, amount_due, status, entry_id, payments, void_reason,
	created_at, created_by, last_updated_at, last_updated_by`

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var (
		inv            domain.Invoice
		lines, payment []byte
	)
	err := row.Scan(
		&inv.InvoiceID, &inv.InvoiceNumber, (*string)(&inv.Type), &inv.ContactID, &inv.InvoiceDate, &inv.DueDate, &inv.Reference,
		&lines, (*int64)(&inv.Subtotal), (*int64)(&inv.TaxTotal), (*int64)(&inv.TotalAmount), (*int64)(&inv.AmountDue),
		(*string)(&inv.Status), &inv.EntryID, &payment, &inv.VoidReason,
		&inv.CreatedAt, &inv.CreatedBy, &inv.LastUpdatedAt, &inv.LastUpdatedBy,
	)
	if err != nil {
		return inv, err
	}
	if err := json.Unmarshal(lines, &inv.Lines); err != nil {
		return inv, fmt.Errorf("failed to decode lines of invoice %s: %w", inv.InvoiceID, err)
	}
	if err := json.Unmarshal(payment, &inv.Payments); err != nil {
		return inv, fmt.Errorf("failed to decode payments of invoice %s: %w", inv.InvoiceID, err)
	}
	return inv, nil
}

func (r *pgxLedgerTx) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1;`, invoiceID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return &inv, nil
}

// ListInvoices pushes the stored-column filters into SQL; the derived overdue
// status is applied in Go.
func (r *pgxLedgerTx) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.ContactID != "" {
		args = append(args, filter.ContactID)
		where = append(where, fmt.Sprintf("contact_id = $%d", len(args)))
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY invoice_date, invoice_number;"

	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()
	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		if filter.Matches(inv) {
			invoices = append(invoices, inv)
		}
	}
	return invoices, rows.Err()
}

const productColumns = `product_id, sku, name, category, valuation_method, standard_cost, sale_price,
	inventory_account_id, cogs_account_id, position, movement_count,
	created_at, created_by, last_updated_at, last_updated_by`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p        domain.Product
		position []byte
	)
	err := row.Scan(
		&p.ProductID, &p.SKU, &p.Name, &p.Category, (*string)(&p.ValuationMethod), (*int64)(&p.StandardCost), (*int64)(&p.SalePrice),
		&p.InventoryAccountID, &p.COGSAccountID, &position, &p.MovementCount,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(position, &p.Position); err != nil {
		return p, fmt.Errorf("failed to decode position of product %s: %w", p.ProductID, err)
	}
	return p, nil
}

func (r *pgxLedgerTx) SaveProduct(ctx context.Context, p domain.Product) error {
	position, err := json.Marshal(p.Position)
	if err != nil {
		return fmt.Errorf("failed to encode position of product %s: %w", p.ProductID, err)
	}
	_, err = r.tx.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`,
		p.ProductID, p.SKU, p.Name, p.Category, string(p.ValuationMethod), int64(p.StandardCost), int64(p.SalePrice),
		p.InventoryAccountID, p.COGSAccountID, position, p.MovementCount,
		p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: sku %s", apperrors.ErrDuplicateCode, p.SKU)
	}
	if err != nil {
		return fmt.Errorf("failed to save product %s: %w", p.ProductID, err)
	}
	return nil
}

func (r *pgxLedgerTx) UpdateProduct(ctx context.Context, p domain.Product) error {
	position, err := json.Marshal(p.Position)
	if err != nil {
		return fmt.Errorf("failed to encode position of product %s: %w", p.ProductID, err)
	}
	tag, err := r.tx.Exec(ctx, `
		UPDATE products SET
			name = $2, category = $3, valuation_method = $4, standard_cost = $5, sale_price = $6,
			inventory_account_id = $7, cogs_account_id = $8, position = $9, movement_count = $10,
			last_updated_at = $11, last_updated_by = $12
		WHERE product_id = $1 AND sku = $13;
	`,
		p.ProductID, p.Name, p.Category, string(p.ValuationMethod), int64(p.StandardCost), int64(p.SalePrice),
		p.InventoryAccountID, p.COGSAccountID, position, p.MovementCount,
		p.LastUpdatedAt, p.LastUpdatedBy, p.SKU,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ProductID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", apperrors.ErrNotFound, p.ProductID)
	}
	return nil
}

func (r *pgxLedgerTx) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := scanProduct(r.tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = $1;`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %s", apperrors.ErrNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", productID, err)
	}
	return &p, nil
}

func (r *pgxLedgerTx) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY sku;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()
	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *pgxLedgerTx) SaveMovement(ctx context.Context, m domain.StockMovement) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO stock_movements (movement_id, product_id, sequence, kind, quantity, unit_cost, total_cost,
			variance, movement_date, entry_id, reference, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`,
		m.MovementID, m.ProductID, m.Sequence, string(m.Kind), m.Quantity, int64(m.UnitCost), int64(m.TotalCost),
		int64(m.Variance), domain.DateOnly(m.MovementDate), m.EntryID, m.Reference, m.CreatedAt, m.CreatedBy,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: movement %d of product %s", apperrors.ErrAppendOnly, m.Sequence, m.ProductID)
	}
	if err != nil {
		return fmt.Errorf("failed to save movement %s: %w", m.MovementID, err)
	}
	return nil
}

func (r *pgxLedgerTx) ListMovements(ctx context.Context, productID string) ([]domain.StockMovement, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT movement_id, product_id, sequence, kind, quantity, unit_cost, total_cost, variance,
			movement_date, entry_id, reference, created_at, created_by
		FROM stock_movements WHERE product_id = $1 ORDER BY sequence;
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements of product %s: %w", productID, err)
	}
	defer rows.Close()
	var movements []domain.StockMovement
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(&m.MovementID, &m.ProductID, &m.Sequence, (*string)(&m.Kind), &m.Quantity,
			(*int64)(&m.UnitCost), (*int64)(&m.TotalCost), (*int64)(&m.Variance),
			&m.MovementDate, &m.EntryID, &m.Reference, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
