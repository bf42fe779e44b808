package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
	invoiceService   portssvc.InvoiceSvcFacade
	inventoryService portssvc.InventorySvcFacade
}

// RegisterReportingRoutes registers the report and ledger maintenance routes.
func RegisterReportingRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &reportingHandler{
		reportingService: services.Reporting,
		invoiceService:   services.Invoice,
		inventoryService: services.Inventory,
	}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
		reports.GET("/balance-sheet", h.getBalanceSheet)
		reports.GET("/aged-receivables", h.getAgedReceivables)
		reports.GET("/aged-payables", h.getAgedPayables)
		reports.GET("/inventory-valuation", h.getInventoryValuation)
		reports.GET("/control-accounts", h.getControlAccounts)
	}

	admin := rg.Group("/admin")
	{
		admin.POST("/reconcile-balances", h.reconcileBalances)
		admin.POST("/verify-log", h.verifyLog)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every account balance in debit and credit columns as of a date
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Param includeZero query bool false "Include active accounts with a zero balance"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	var params dto.TrialBalanceParams
	if !bindQuery(c, &params) {
		return
	}
	asOf, err := dto.ParseOptionalDate("asOf", params.AsOf)
	if err != nil {
		respondError(c, err, "Invalid date parameter")
		return
	}

	tb, err := h.reportingService.TrialBalance(c.Request.Context(), asOf, params.IncludeZero)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}

// getProfitAndLoss godoc
// @Summary Generate profit and loss report
// @Tags reports
// @Produce json
// @Param from query string false "Period start (YYYY-MM-DD)"
// @Param to query string false "Period end (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ProfitAndLossResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err, "Failed to generate profit and loss")
		return
	}
	c.JSON(http.StatusOK, dto.ToProfitAndLossResponse(report))
}

// getBalanceSheet godoc
// @Summary Generate balance sheet report
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/balance-sheet [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	asOf, ok := queryDate(c, "asOf")
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate balance sheet")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report))
}

// getAgedReceivables godoc
// @Summary Aged receivables
// @Description Outstanding customer balances by contact, bucketed by days past due
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.AgingReportResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/aged-receivables [get]
func (h *reportingHandler) getAgedReceivables(c *gin.Context) {
	asOf, ok := queryDate(c, "asOf")
	if !ok {
		return
	}
	report, err := h.invoiceService.AgedReceivables(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate aged receivables")
		return
	}
	c.JSON(http.StatusOK, dto.ToAgingReportResponse(report))
}

// getAgedPayables godoc
// @Summary Aged payables
// @Description Outstanding vendor balances by contact, bucketed by days past due
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.AgingReportResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/aged-payables [get]
func (h *reportingHandler) getAgedPayables(c *gin.Context) {
	asOf, ok := queryDate(c, "asOf")
	if !ok {
		return
	}
	report, err := h.invoiceService.AgedPayables(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to generate aged payables")
		return
	}
	c.JSON(http.StatusOK, dto.ToAgingReportResponse(report))
}

// getInventoryValuation godoc
// @Summary Inventory valuation
// @Tags reports
// @Produce json
// @Success 200 {object} domain.InventoryValuationReport
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/inventory-valuation [get]
func (h *reportingHandler) getInventoryValuation(c *gin.Context) {
	report, err := h.inventoryService.InventoryValuation(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to generate inventory valuation")
		return
	}
	c.JSON(http.StatusOK, report)
}

// getControlAccounts godoc
// @Summary Control account reconciliation
// @Description Compares the receivable, payable and inventory control accounts with their sub-ledgers
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} domain.ControlAccountReport
// @Failure 400 {object} dto.ErrorResponse "Invalid date"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/control-accounts [get]
func (h *reportingHandler) getControlAccounts(c *gin.Context) {
	asOf, ok := queryDate(c, "asOf")
	if !ok {
		return
	}
	report, err := h.reportingService.ReconcileControlAccounts(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to reconcile control accounts")
		return
	}
	c.JSON(http.StatusOK, report)
}

// reconcileBalances godoc
// @Summary Reconcile cached balances
// @Description Replays the log and reports accounts whose cached balance drifted
// @Tags admin
// @Produce json
// @Success 200 {object} domain.ReconciliationReport
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to reconcile balances"
// @Security BearerAuth
// @Router /admin/reconcile-balances [post]
func (h *reportingHandler) reconcileBalances(c *gin.Context) {
	report, err := h.reportingService.ReconcileBalances(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to reconcile balances")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Balances reconciled",
		slog.Int("entries", report.EntriesReplayed), slog.Int("drifts", len(report.Drifts)))
	c.JSON(http.StatusOK, report)
}

// verifyLog godoc
// @Summary Verify the ledger log
// @Description Recomputes the hash chain over every logged entry
// @Tags admin
// @Produce json
// @Success 200 {object} domain.LogVerification
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to verify log"
// @Security BearerAuth
// @Router /admin/verify-log [post]
func (h *reportingHandler) verifyLog(c *gin.Context) {
	result, err := h.reportingService.VerifyLog(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to verify log")
		return
	}
	if !result.Valid {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Ledger log hash chain broken",
			slog.Int64("sequence", result.BrokenSequence), slog.String("entry_id", result.BrokenEntryID))
	}
	c.JSON(http.StatusOK, result)
}
