package handler

import (
	"net/http"

	"easset/internal/middleware"
	"easset/internal/model"
	"easset/internal/service"
	"easset/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	assetService service.AssetService
}

func NewAssetHandler(assetService service.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting, model.RoleStaff)
	accounting := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting)

	assets := router.Group("/api/assets")
	{
		assets.GET("", anyRole, h.List)
		assets.GET("/options", anyRole, h.Options)
		assets.GET("/metrics", anyRole, h.Metrics)
		assets.GET("/sap-mismatches", accounting, h.SapMismatches)
		assets.GET("/:id", anyRole, h.Get)
		assets.POST("/:id/images", anyRole, h.AddImages)
		assets.PUT("/:id", accounting, h.UpdateFields)
	}
}

// List returns assets filtered by view mode and keyword
// @Summary      List assets
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Param        view     query     string  false  "View mode (all, no-image, sap-gap)"
// @Param        keyword  query     string  false  "Search in asset no, name and cost center"
// @Success      200      {object}  response.Response{data=object}
// @Router       /api/assets [get]
func (h *AssetHandler) List(c *gin.Context) {
	view := c.DefaultQuery("view", service.AssetViewAll)

	assets, err := h.assetService.List(c.Request.Context(), view, c.Query("keyword"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"assets": assets, "total": len(assets)}))
}

func (h *AssetHandler) Options(c *gin.Context) {
	options, err := h.assetService.Options(c.Request.Context(), c.Query("cost_center"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"options": options}))
}

// Metrics returns dashboard counters for the asset master
// @Summary      Asset metrics
// @Tags         assets
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.AssetMetrics}
// @Router       /api/assets/metrics [get]
func (h *AssetHandler) Metrics(c *gin.Context) {
	metrics, err := h.assetService.Metrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, metrics))
}

func (h *AssetHandler) SapMismatches(c *gin.Context) {
	rows, err := h.assetService.SapMismatches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"mismatches": rows, "total": len(rows)}))
}

func (h *AssetHandler) Get(c *gin.Context) {
	detail, err := h.assetService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

func (h *AssetHandler) AddImages(c *gin.Context) {
	var req struct {
		FileNames []string `json:"file_names" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	images, err := h.assetService.AddImages(c.Request.Context(), c.Param("id"), req.FileNames)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"images": images}))
}

func (h *AssetHandler) UpdateFields(c *gin.Context) {
	var req service.UpdateAssetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	asset, err := h.assetService.UpdateFields(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, asset))
}
