package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

type contactService struct {
	BaseService
	store portsrepo.TransactionManager
}

// NewContactService creates the counterparty registry.
func NewContactService(store portsrepo.TransactionManager, options ...ServiceOption) portssvc.ContactSvcFacade {
	return &contactService{BaseService: newBaseService(options...), store: store}
}

func (s *contactService) CreateContact(ctx context.Context, req dto.CreateContactRequest, userID string) (*domain.Contact, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "name", "required")
	}
	contactType := domain.ContactType(strings.ToLower(req.Type))
	if !contactType.Valid() {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "type", "oneof=customer vendor both employee")
	}
	contact := domain.Contact{
		ContactID:   newID(),
		Name:        name,
		Type:        contactType,
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}
	err := s.store.Update(ctx, func(tx portsrepo.LedgerTx) error {
		return tx.SaveContact(ctx, contact)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save contact")
		return nil, err
	}
	s.LogInfo(ctx, "Contact created", slog.String("contact_id", contact.ContactID), slog.String("type", string(contact.Type)))
	return &contact, nil
}

func (s *contactService) GetContact(ctx context.Context, contactID string) (*domain.Contact, error) {
	var contact *domain.Contact
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		contact, err = tx.FindContactByID(ctx, contactID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find contact", slog.String("contact_id", contactID))
		}
		return nil, err
	}
	return contact, nil
}

func (s *contactService) ListContacts(ctx context.Context, contactType domain.ContactType) ([]domain.Contact, error) {
	if contactType != "" && !contactType.Valid() {
		return nil, apperrors.NewFieldError(apperrors.ErrValidation, "type", "oneof=customer vendor both employee")
	}
	var contacts []domain.Contact
	err := s.store.View(ctx, func(tx portsrepo.LedgerTx) error {
		var err error
		contacts, err = tx.ListContacts(ctx, contactType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contacts, nil
}
