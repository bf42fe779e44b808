package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for journal entries: the draft lifecycle,
// posting and voiding.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// RegisterEntryRoutes registers routes related to journal entries.
func RegisterEntryRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createDraft)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID", h.updateDraft)
		entries.DELETE("/:entryID", h.discardDraft)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/void", h.voidEntry)
	}
}

// createDraft godoc
// @Summary Create a draft entry
// @Description Records an editable draft. Drafts never affect balances; they may be incomplete.
// @Tags entries
// @Accept json
// @Produce json
// @Param entry body dto.CreateEntryRequest true "Draft header and lines"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or unknown journal"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to create draft"
// @Security BearerAuth
// @Router /entries [post]
func (h *journalHandler) createDraft(c *gin.Context) {
	var req dto.CreateEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	entry, err := h.journalService.CreateDraft(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create draft")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Draft entry created", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Lists drafts and logged entries ordered by entry date then ID, one page at a time
// @Tags entries
// @Produce json
// @Param journalCode query string false "Journal code"
// @Param status query string false "Entry status" Enums(draft, posted, voided)
// @Param accountID query string false "Only entries touching this account"
// @Param from query string false "First entry date (YYYY-MM-DD)"
// @Param to query string false "Last entry date (YYYY-MM-DD)"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list entries"
// @Security BearerAuth
// @Router /entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if !bindQuery(c, &params) {
		return
	}

	resp, err := h.journalService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getEntry godoc
// @Summary Get a journal entry
// @Tags entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve entry"
// @Security BearerAuth
// @Router /entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.journalService.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// updateDraft godoc
// @Summary Update a draft entry
// @Description Replaces the header and lines of a draft. Posted entries are immutable.
// @Tags entries
// @Accept json
// @Produce json
// @Param entryID path string true "Entry ID"
// @Param entry body dto.UpdateEntryRequest true "Draft header and lines"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not a draft"
// @Failure 500 {object} dto.ErrorResponse "Failed to update draft"
// @Security BearerAuth
// @Router /entries/{entryID} [put]
func (h *journalHandler) updateDraft(c *gin.Context) {
	var req dto.UpdateEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	entry, err := h.journalService.UpdateDraft(c.Request.Context(), c.Param("entryID"), req, actor)
	if err != nil {
		respondError(c, err, "Failed to update draft")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// discardDraft godoc
// @Summary Discard a draft entry
// @Tags entries
// @Param entryID path string true "Entry ID"
// @Success 204 "No Content"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not a draft"
// @Failure 500 {object} dto.ErrorResponse "Failed to discard draft"
// @Security BearerAuth
// @Router /entries/{entryID} [delete]
func (h *journalHandler) discardDraft(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if err := h.journalService.DiscardDraft(c.Request.Context(), c.Param("entryID"), actor); err != nil {
		respondError(c, err, "Failed to discard draft")
		return
	}
	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft entry
// @Description Validates the draft, assigns its entry number and appends it to the ledger
// @Tags entries
// @Produce json
// @Param entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} dto.ErrorResponse "Unbalanced, empty or malformed entry"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not a draft"
// @Failure 500 {object} dto.ErrorResponse "Failed to post entry"
// @Security BearerAuth
// @Router /entries/{entryID}/post [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("entry_id", c.Param("entryID")))
	logger.Info("Received request to post entry")

	entry, err := h.journalService.PostEntry(c.Request.Context(), c.Param("entryID"), actor)
	if err != nil {
		respondError(c, err, "Failed to post entry")
		return
	}
	logger.Info("Entry posted", slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// voidEntry godoc
// @Summary Void a posted entry
// @Description Appends a reversing entry dated today and marks the original voided
// @Tags entries
// @Accept json
// @Produce json
// @Param entryID path string true "Entry ID"
// @Param void body dto.VoidEntryRequest true "Reason"
// @Success 200 {object} dto.VoidEntryResponse
// @Failure 400 {object} dto.ErrorResponse "Missing reason"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Entry not found"
// @Failure 409 {object} dto.ErrorResponse "Entry is not posted or is itself a reversal"
// @Failure 500 {object} dto.ErrorResponse "Failed to void entry"
// @Security BearerAuth
// @Router /entries/{entryID}/void [post]
func (h *journalHandler) voidEntry(c *gin.Context) {
	var req dto.VoidEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	voided, reversal, err := h.journalService.VoidEntry(c.Request.Context(), c.Param("entryID"), req.Reason, actor)
	if err != nil {
		respondError(c, err, "Failed to void entry")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Entry voided",
		slog.String("entry_id", voided.EntryID), slog.String("reversal_id", reversal.EntryID))
	c.JSON(http.StatusOK, dto.VoidEntryResponse{
		Voided:   dto.ToEntryResponse(voided),
		Reversal: dto.ToEntryResponse(reversal),
	})
}
