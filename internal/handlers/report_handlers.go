package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"resto_pos_backend/internal/services"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves the back-office sales reports.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// parseDateRange reads from/to query params ("2006-01-02"). Defaults to the
// last 30 days when absent. The end date is exclusive at the following midnight.
func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'from' date: %w", err)
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid 'to' date: %w", err)
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("'to' must be after 'from'")
	}
	return from, to, nil
}

// GetSalesSummary handles GET /reports/sales.
func (h *ReportHandler) GetSalesSummary(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		return
	}

	rows, err := h.reportService.GetSalesSummary(from, to)
	if err != nil {
		utils.LogError(err, "GetSalesSummary: Error from reportService.GetSalesSummary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build sales summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// GetTopProducts handles GET /reports/top-products.
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		return
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid limit; must be between 1 and 100.", ""))
			return
		}
		limit = parsed
	}

	rows, err := h.reportService.GetTopProducts(from, to, limit)
	if err != nil {
		utils.LogError(err, "GetTopProducts: Error from reportService.GetTopProducts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build top products report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// ExportSales handles GET /reports/sales/export and streams an xlsx workbook.
func (h *ReportHandler) ExportSales(c *gin.Context) {
	from, to, err := parseDateRange(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		return
	}

	workbook, err := h.reportService.BuildSalesWorkbook(from, to)
	if err != nil {
		utils.LogError(err, "ExportSales: Error from reportService.BuildSalesWorkbook")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build sales export.", "Internal error"))
		return
	}
	defer workbook.Close()

	fileName := fmt.Sprintf("sales_%s_%s.xlsx", from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := workbook.Write(c.Writer); err != nil {
		utils.LogError(err, "ExportSales: Failed to stream workbook")
	}
}
