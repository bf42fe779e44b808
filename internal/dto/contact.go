package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CreateContactRequest defines a new customer, vendor or employee.
type CreateContactRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Type  string `json:"type" binding:"required,oneof=customer vendor both employee"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"max=50"`
}

// ContactResponse defines the data returned for a contact.
type ContactResponse struct {
	ContactID string             `json:"contactID"`
	Name      string             `json:"name"`
	Type      domain.ContactType `json:"type"`
	Email     string             `json:"email,omitempty"`
	Phone     string             `json:"phone,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// ToContactResponse converts a domain.Contact.
func ToContactResponse(c *domain.Contact) ContactResponse {
	return ContactResponse{
		ContactID: c.ContactID,
		Name:      c.Name,
		Type:      c.Type,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}

// ListContactsParams defines query parameters for listing contacts.
type ListContactsParams struct {
	Type string `form:"type" binding:"omitempty,oneof=customer vendor both employee"`
}

// ListContactsResponse wraps the list of contacts.
type ListContactsResponse struct {
	Contacts []ContactResponse `json:"contacts"`
}
