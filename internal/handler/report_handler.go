package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"easset/internal/middleware"
	"easset/internal/model"
	"easset/internal/service"
	"easset/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounting := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting)

	reports := router.Group("/api/reports")
	{
		reports.GET("/tracking", accounting, h.ManagementTracking)
		reports.GET("/stocktake/:plantId/:year", accounting, h.StocktakeReport)
		reports.GET("/stocktake/:plantId/:year/export", accounting, h.ExportStocktakeCsv)
	}
}

// ManagementTracking returns all requests with their flattened approval trail
// @Summary      Management tracking report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        type    query     string  false  "Request type (DEMOLISH, TRANSFER)"
// @Param        status  query     string  false  "Filter by status"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/reports/tracking [get]
func (h *ReportHandler) ManagementTracking(c *gin.Context) {
	rows, err := h.reportService.ManagementTracking(c.Request.Context(), c.Query("type"), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"rows": rows, "total": len(rows)}))
}

func (h *ReportHandler) reportFilter(c *gin.Context) (string, int, service.StocktakeReportFilter, bool) {
	plantID := c.Param("plantId")
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid stocktake year"))
		return "", 0, service.StocktakeReportFilter{}, false
	}

	filter := service.StocktakeReportFilter{
		StatusCode:     c.Query("status"),
		CostCenterName: c.Query("cost_center"),
		ComparePrev:    c.Query("compare_prev") == "true",
	}
	return plantID, year, filter, true
}

// StocktakeReport returns the filtered stocktake report rows
// @Summary      Stocktake report
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        plantId       path      string  true   "Plant ID"
// @Param        year          path      int     true   "Stocktake year"
// @Param        status        query     string  false  "Filter by count status"
// @Param        cost_center   query     string  false  "Filter by cost center"
// @Param        compare_prev  query     bool    false  "Include previous-year status"
// @Success      200           {object}  response.Response{data=object}
// @Router       /api/reports/stocktake/{plantId}/{year} [get]
func (h *ReportHandler) StocktakeReport(c *gin.Context) {
	plantID, year, filter, ok := h.reportFilter(c)
	if !ok {
		return
	}

	rows, err := h.reportService.StocktakeReport(c.Request.Context(), plantID, year, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"rows": rows, "total": len(rows)}))
}

// ExportStocktakeCsv streams the report as a CSV download
func (h *ReportHandler) ExportStocktakeCsv(c *gin.Context) {
	plantID, year, filter, ok := h.reportFilter(c)
	if !ok {
		return
	}

	content, err := h.reportService.ExportStocktakeCsv(c.Request.Context(), plantID, year, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	fileName := fmt.Sprintf("stocktake-%s-%d-%s.csv", plantID, year, time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv", content)
}
