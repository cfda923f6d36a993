package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"easset/internal/middleware"
	"easset/internal/model"
	"easset/internal/service"
	"easset/pkg/response"

	"github.com/gin-gonic/gin"
)

type StocktakeHandler struct {
	stocktakeService service.StocktakeService
}

func NewStocktakeHandler(stocktakeService service.StocktakeService) *StocktakeHandler {
	return &StocktakeHandler{stocktakeService: stocktakeService}
}

func (h *StocktakeHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting, model.RoleStaff)
	accounting := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting)

	stocktake := router.Group("/api/stocktake/:plantId/:year")
	{
		stocktake.GET("", anyRole, h.Workspace)
		stocktake.GET("/records", anyRole, h.ListRecords)
		stocktake.POST("/records", anyRole, h.UpsertRecord)
		stocktake.PUT("/records/accounting-status", accounting, h.SetAccountingStatus)

		stocktake.POST("/import/counts", anyRole, h.ImportCounts)
		stocktake.POST("/import/accounting", accounting, h.ImportAccounting)

		stocktake.POST("/report-generated", accounting, h.MarkReportGenerated)
		stocktake.POST("/close", accounting, h.CloseYear)
		stocktake.POST("/carry-forward", accounting, h.CarryForward)

		stocktake.GET("/participants", anyRole, h.ListParticipants)
		stocktake.POST("/participants", anyRole, h.AddParticipant)
		stocktake.GET("/meeting-docs", anyRole, h.ListMeetingDocs)
		stocktake.POST("/meeting-docs", anyRole, h.AddMeetingDoc)
	}

	router.DELETE("/api/stocktake-participants/:id", anyRole, h.RemoveParticipant)
}

func (h *StocktakeHandler) plantYear(c *gin.Context) (string, int, bool) {
	plantID := c.Param("plantId")
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > time.Now().Year()+1 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid stocktake year"))
		return "", 0, false
	}
	return plantID, year, true
}

// Workspace returns the year config, status counts and the three review tabs
// @Summary      Stocktake workspace
// @Tags         stocktake
// @Security     BearerAuth
// @Produce      json
// @Param        plantId  path      string  true  "Plant ID"
// @Param        year     path      int     true  "Stocktake year"
// @Success      200      {object}  response.Response{data=service.StocktakeWorkspace}
// @Router       /api/stocktake/{plantId}/{year} [get]
func (h *StocktakeHandler) Workspace(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	workspace, err := h.stocktakeService.Workspace(c.Request.Context(), plantID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, workspace))
}

func (h *StocktakeHandler) ListRecords(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	records, err := h.stocktakeService.ListRecords(c.Request.Context(), plantID, year, c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"records": records, "total": len(records)}))
}

// UpsertRecord applies one count to the (plant, year, assetNo) slot
// @Summary      Record a count
// @Tags         stocktake
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        plantId  path      string                      true  "Plant ID"
// @Param        year     path      int                         true  "Stocktake year"
// @Param        payload  body      service.UpsertCountRequest  true  "Count Payload"
// @Success      200      {object}  response.Response{data=model.StocktakeRecord}
// @Failure      400      {object}  response.Response
// @Router       /api/stocktake/{plantId}/{year}/records [post]
func (h *StocktakeHandler) UpsertRecord(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	var req service.UpsertCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.stocktakeService.UpsertRecord(c.Request.Context(), plantID, year, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

func (h *StocktakeHandler) SetAccountingStatus(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	var req service.AccountingReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.stocktakeService.SetAccountingStatus(c.Request.Context(), plantID, year, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// ImportCounts ingests a count CSV. Per-line failures are reported in the
// result; a wholesale rejection comes back with imported=0.
// @Summary      Import count CSV
// @Tags         stocktake
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        plantId  path      string  true  "Plant ID"
// @Param        year     path      int     true  "Stocktake year"
// @Param        file     formData  file    true  "Count CSV file"
// @Success      200      {object}  response.Response{data=service.CsvImportResult}
// @Router       /api/stocktake/{plantId}/{year}/import/counts [post]
func (h *StocktakeHandler) ImportCounts(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	content, actorName, ok := readUploadedFile(c)
	if !ok {
		return
	}

	result, err := h.stocktakeService.ImportCountCsv(c.Request.Context(), plantID, year, actorName, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *StocktakeHandler) ImportAccounting(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	content, actorName, ok := readUploadedFile(c)
	if !ok {
		return
	}

	result, err := h.stocktakeService.ImportAccountingCsv(c.Request.Context(), plantID, year, actorName, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// readUploadedFile pulls the "file" form part and the "actor_name" field.
func readUploadedFile(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload"))
		return nil, "", false
	}
	actorName := c.PostForm("actor_name")
	if actorName == "" {
		actorName = "System Import"
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to open uploaded file"))
		return nil, "", false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read uploaded file"))
		return nil, "", false
	}
	return content, actorName, true
}

func (h *StocktakeHandler) MarkReportGenerated(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	config, err := h.stocktakeService.MarkReportGenerated(c.Request.Context(), plantID, year)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, config))
}

// CloseYear closes the plant-year campaign. Requires the report to be generated first.
// @Summary      Close stocktake year
// @Tags         stocktake
// @Security     BearerAuth
// @Produce      json
// @Param        plantId  path      string  true  "Plant ID"
// @Param        year     path      int     true  "Stocktake year"
// @Success      200      {object}  response.Response{data=model.StocktakeYearConfig}
// @Failure      400      {object}  response.Response
// @Router       /api/stocktake/{plantId}/{year}/close [post]
func (h *StocktakeHandler) CloseYear(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	var req struct {
		ActorName string `json:"actor_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	config, err := h.stocktakeService.CloseYear(c.Request.Context(), plantID, year, req.ActorName)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, config))
}

func (h *StocktakeHandler) CarryForward(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	var req struct {
		ActorName string `json:"actor_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	carried, err := h.stocktakeService.CarryPendingToNextYear(c.Request.Context(), plantID, year, req.ActorName)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"carried": carried, "to_year": year + 1}))
}

func (h *StocktakeHandler) ListParticipants(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	participants, err := h.stocktakeService.ListParticipants(c.Request.Context(), plantID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"participants": participants}))
}

func (h *StocktakeHandler) AddParticipant(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	var req service.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	participant, err := h.stocktakeService.AddParticipant(c.Request.Context(), plantID, year, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, participant))
}

func (h *StocktakeHandler) RemoveParticipant(c *gin.Context) {
	if err := h.stocktakeService.RemoveParticipant(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"removed": true}))
}

func (h *StocktakeHandler) ListMeetingDocs(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	docs, err := h.stocktakeService.ListMeetingDocs(c.Request.Context(), plantID, year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"meeting_docs": docs}))
}

func (h *StocktakeHandler) AddMeetingDoc(c *gin.Context) {
	plantID, year, ok := h.plantYear(c)
	if !ok {
		return
	}

	var req struct {
		FileName string `json:"file_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.stocktakeService.AddMeetingDoc(c.Request.Context(), plantID, year, req.FileName)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}
