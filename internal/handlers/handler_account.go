package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountCodePrefix lets clients address an account by chart code, e.g. /accounts/code:1000.
const accountCodePrefix = "code:"

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService   portssvc.AccountSvcFacade
	reportingService portssvc.ReportingService
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, rs portssvc.ReportingService) *accountHandler {
	return &accountHandler{
		accountService:   as,
		reportingService: rs,
	}
}

// RegisterAccountRoutes registers routes related to accounts and journals.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, reportingService portssvc.ReportingService) {
	h := newAccountHandler(accountService, reportingService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.POST("/:accountID/deactivate", h.deactivateAccount)
		accounts.GET("/:accountID/balance", h.getAccountBalance)
		accounts.GET("/:accountID/ledger", h.getGeneralLedger)
	}

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createJournal)
		journals.GET("", h.listJournals)
	}
}

// resolveAccount loads the account named by the :accountID path parameter, which
// may be an ID or code:<code>. It writes the error response itself.
func (h *accountHandler) resolveAccount(c *gin.Context) (*domain.Account, bool) {
	ref := c.Param("accountID")
	var (
		account *domain.Account
		err     error
	)
	if code, ok := strings.CutPrefix(ref, accountCodePrefix); ok {
		account, err = h.accountService.GetAccountByCode(c.Request.Context(), code)
	} else {
		account, err = h.accountService.GetAccountByID(c.Request.Context(), ref)
	}
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return nil, false
	}
	return account, true
}

// createAccount godoc
// @Summary Create a new account
// @Description Adds an account to the chart. The normal balance follows from the category.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or category"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Duplicate account code"
// @Failure 500 {object} dto.ErrorResponse "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("category", req.Category))

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account
// @Description Retrieves an account by ID, or by chart code using code:<code>
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID or code:<code>"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, ok := h.resolveAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists the chart of accounts ordered by code
// @Tags accounts
// @Produce  json
// @Param   category query string false "Filter by category" Enums(asset, liability, equity, revenue, expense)
// @Param   activeOnly query bool false "Only active accounts"
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	var params dto.ListAccountsParams
	if !bindQuery(c, &params) {
		return
	}
	filter := domain.AccountFilter{
		Category:   domain.AccountCategory(strings.ToLower(params.Category)),
		ActiveOnly: params.ActiveOnly,
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive. Accounts with a nonzero balance are refused.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID or code:<code>"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Account carries a balance or is already inactive"
// @Failure 500 {object} dto.ErrorResponse "Failed to deactivate account"
// @Security BearerAuth
// @Router /accounts/{accountID}/deactivate [post]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	target, ok := h.resolveAccount(c)
	if !ok {
		return
	}
	actor := middleware.ActorFromContext(c)

	account, err := h.accountService.DeactivateAccount(c.Request.Context(), target.AccountID, actor)
	if err != nil {
		respondError(c, err, "Failed to deactivate account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountBalance godoc
// @Summary Get account balance
// @Description Returns the balance on the account's normal side as of a date
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID or code:<code>"
// @Param asOf query string false "Balance date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to calculate balance"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance [get]
func (h *accountHandler) getAccountBalance(c *gin.Context) {
	asOf, ok := queryDate(c, "asOf")
	if !ok {
		return
	}
	account, ok := h.resolveAccount(c)
	if !ok {
		return
	}

	balance, err := h.reportingService.AccountBalance(c.Request.Context(), account.AccountID, asOf)
	if err != nil {
		respondError(c, err, "Failed to calculate balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(balance))
}

// getGeneralLedger godoc
// @Summary Get general ledger detail
// @Description Lists an account's posted lines in a period with opening, running and closing balances
// @Tags accounts
// @Produce json
// @Param accountID path string true "Account ID or code:<code>"
// @Param from query string false "Period start (YYYY-MM-DD)"
// @Param to query string false "Period end (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.GeneralLedgerResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate ledger detail"
// @Security BearerAuth
// @Router /accounts/{accountID}/ledger [get]
func (h *accountHandler) getGeneralLedger(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	account, ok := h.resolveAccount(c)
	if !ok {
		return
	}

	detail, err := h.reportingService.GeneralLedgerDetail(c.Request.Context(), account.AccountID, from, to)
	if err != nil {
		respondError(c, err, "Failed to generate ledger detail")
		return
	}
	c.JSON(http.StatusOK, dto.ToGeneralLedgerResponse(detail))
}

// createJournal godoc
// @Summary Create a journal
// @Description Adds a book of original entry, e.g. a second bank journal
// @Tags journals
// @Accept json
// @Produce json
// @Param journal body dto.CreateJournalRequest true "Journal details"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Duplicate journal code"
// @Failure 500 {object} dto.ErrorResponse "Failed to create journal"
// @Security BearerAuth
// @Router /journals [post]
func (h *accountHandler) createJournal(c *gin.Context) {
	var req dto.CreateJournalRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)

	journal, err := h.accountService.CreateJournal(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "Failed to create journal")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Journal created", slog.String("journal_code", journal.Code))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journals
// @Tags journals
// @Produce json
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list journals"
// @Security BearerAuth
// @Router /journals [get]
func (h *accountHandler) listJournals(c *gin.Context) {
	journals, err := h.accountService.ListJournals(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list journals")
		return
	}
	resp := dto.ListJournalsResponse{Journals: make([]dto.JournalResponse, len(journals))}
	for i := range journals {
		resp.Journals[i] = dto.ToJournalResponse(&journals[i])
	}
	c.JSON(http.StatusOK, resp)
}
