package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler serves the receivables and payables sub-ledger.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

// RegisterInvoiceRoutes registers routes related to invoices, bills and credit notes.
func RegisterInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := &invoiceHandler{invoiceService: invoiceService}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:invoiceID", h.getInvoice)
		invoices.POST("/:invoiceID/issue", h.issueInvoice)
		invoices.POST("/:invoiceID/payments", h.recordPayment)
		invoices.POST("/:invoiceID/void", h.voidInvoice)
	}
}

// today is the date overdue status is derived at when the request names none.
func today() time.Time {
	return time.Now().UTC()
}

// createInvoice godoc
// @Summary Create an invoice
// @Description Records a numbered draft invoice, bill or credit note. With issue=true it is posted in the same call.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input, unknown account or tax code"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create invoice"
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create invoice")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Invoice created",
		slog.String("invoice_id", invoice.InvoiceID), slog.String("invoice_number", invoice.InvoiceNumber))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice, today()))
}

// listInvoices godoc
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Param tab query string false "List tab" Enums(all, sale, purchase, paid, overdue)
// @Param type query string false "Document type" Enums(sale, purchase, credit_note_sale, credit_note_purchase)
// @Param status query string false "Status" Enums(draft, sent, partial, paid, overdue, voided)
// @Param contactID query string false "Contact ID"
// @Param asOf query string false "Date overdue is derived at (YYYY-MM-DD)"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	var params dto.ListInvoicesParams
	if !bindQuery(c, &params) {
		return
	}
	filter, err := params.Filter()
	if err != nil {
		respondError(c, err, "Invalid query parameters")
		return
	}
	asOf := filter.AsOf
	if asOf.IsZero() {
		asOf = today()
	}

	invoices, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list invoices")
		return
	}
	resp := dto.ListInvoicesResponse{Invoices: make([]dto.InvoiceResponse, len(invoices))}
	for i := range invoices {
		resp.Invoices[i] = dto.ToInvoiceResponse(&invoices[i], asOf)
	}
	c.JSON(http.StatusOK, resp)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve invoice"
// @Security BearerAuth
// @Router /invoices/{invoiceID} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, today()))
}

// issueInvoice godoc
// @Summary Issue a draft invoice
// @Description Posts the control-account entry and moves the document to sent
// @Tags invoices
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Document cannot be posted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice is not a draft"
// @Failure 500 {object} dto.ErrorResponse "Failed to issue invoice"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/issue [post]
func (h *invoiceHandler) issueInvoice(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	invoice, err := h.invoiceService.IssueInvoice(c.Request.Context(), c.Param("invoiceID"), actor)
	if err != nil {
		respondError(c, err, "Failed to issue invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, today()))
}

// recordPayment godoc
// @Summary Record a payment
// @Description Applies cash to an open document and posts the payment entry
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or cash account"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Overpayment or document not open"
// @Failure 500 {object} dto.ErrorResponse "Failed to record payment"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/payments [post]
func (h *invoiceHandler) recordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), c.Param("invoiceID"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Payment recorded",
		slog.String("invoice_id", invoice.InvoiceID), slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, today()))
}

// voidInvoice godoc
// @Summary Void an invoice
// @Description Reverses the issuance and payment entries of a document that is not fully paid
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoiceID path string true "Invoice ID"
// @Param void body dto.VoidInvoiceRequest true "Reason"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} dto.ErrorResponse "Missing reason"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Invoice is paid or already voided"
// @Failure 500 {object} dto.ErrorResponse "Failed to void invoice"
// @Security BearerAuth
// @Router /invoices/{invoiceID}/void [post]
func (h *invoiceHandler) voidInvoice(c *gin.Context) {
	var req dto.VoidInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	invoice, err := h.invoiceService.VoidInvoice(c.Request.Context(), c.Param("invoiceID"), req.Reason, actor)
	if err != nil {
		respondError(c, err, "Failed to void invoice")
		return
	}
	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice, today()))
}
