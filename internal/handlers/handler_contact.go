package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type contactHandler struct {
	contactService portssvc.ContactSvcFacade
}

// RegisterContactRoutes registers routes related to customers, vendors and employees.
func RegisterContactRoutes(rg *gin.RouterGroup, contactService portssvc.ContactSvcFacade) {
	h := &contactHandler{contactService: contactService}

	contacts := rg.Group("/contacts")
	{
		contacts.POST("", h.createContact)
		contacts.GET("", h.listContacts)
		contacts.GET("/:contactID", h.getContact)
	}
}

// createContact godoc
// @Summary Create a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body dto.CreateContactRequest true "Contact details"
// @Success 201 {object} dto.ContactResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create contact"
// @Security BearerAuth
// @Router /contacts [post]
func (h *contactHandler) createContact(c *gin.Context) {
	var req dto.CreateContactRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	contact, err := h.contactService.CreateContact(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create contact")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Contact created", slog.String("contact_id", contact.ContactID))
	c.JSON(http.StatusCreated, dto.ToContactResponse(contact))
}

// getContact godoc
// @Summary Get a contact
// @Tags contacts
// @Produce json
// @Param contactID path string true "Contact ID"
// @Success 200 {object} dto.ContactResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Contact not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve contact"
// @Security BearerAuth
// @Router /contacts/{contactID} [get]
func (h *contactHandler) getContact(c *gin.Context) {
	contact, err := h.contactService.GetContact(c.Request.Context(), c.Param("contactID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve contact")
		return
	}
	c.JSON(http.StatusOK, dto.ToContactResponse(contact))
}

// listContacts godoc
// @Summary List contacts
// @Tags contacts
// @Produce json
// @Param type query string false "Contact type" Enums(customer, vendor, both, employee)
// @Success 200 {object} dto.ListContactsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list contacts"
// @Security BearerAuth
// @Router /contacts [get]
func (h *contactHandler) listContacts(c *gin.Context) {
	var params dto.ListContactsParams
	if !bindQuery(c, &params) {
		return
	}

	contacts, err := h.contactService.ListContacts(c.Request.Context(), domain.ContactType(params.Type))
	if err != nil {
		respondError(c, err, "Failed to list contacts")
		return
	}
	resp := dto.ListContactsResponse{Contacts: make([]dto.ContactResponse, len(contacts))}
	for i := range contacts {
		resp.Contacts[i] = dto.ToContactResponse(&contacts[i])
	}
	c.JSON(http.StatusOK, resp)
}
