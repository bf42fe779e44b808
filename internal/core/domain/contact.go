package domain

// ContactType classifies a counterparty.
type ContactType string

const (
	Customer ContactType = "customer"
	Vendor   ContactType = "vendor"
	Both     ContactType = "both"
	Employee ContactType = "employee"
)

// Valid reports whether t is a known contact type.
func (t ContactType) Valid() bool {
	switch t {
	case Customer, Vendor, Both, Employee:
		return true
	}
	return false
}

// CanBeInvoiced reports whether sales documents may be raised against the contact.
func (t ContactType) CanBeInvoiced() bool {
	return t == Customer || t == Both
}

// CanBill reports whether purchase documents may be recorded from the contact.
func (t ContactType) CanBill() bool {
	return t == Vendor || t == Both || t == Employee
}

// Contact is a customer, vendor or employee referenced by sub-ledger documents.
type Contact struct {
	ContactID string      `json:"contactID"`
	Name      string      `json:"name"`
	Type      ContactType `json:"type"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	AuditFields
}
