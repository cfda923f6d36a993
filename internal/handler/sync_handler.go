package handler

import (
	"net/http"

	"easset/internal/middleware"
	"easset/internal/model"
	"easset/internal/service"
	"easset/pkg/response"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncService service.SyncService
}

func NewSyncHandler(syncService service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounting := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting)

	sync := router.Group("/api/sync-outbox")
	{
		sync.GET("", accounting, h.ListSync)
		sync.PUT("/:id/result", accounting, h.MarkSyncResult)
	}

	emails := router.Group("/api/email-outbox")
	{
		emails.GET("", accounting, h.ListEmail)
		emails.PUT("/:id/sent", accounting, h.MarkEmailSent)
	}
}

// ListSync returns the SAP sync outbox, newest first
// @Summary      List sync outbox
// @Tags         sync
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/sync-outbox [get]
func (h *SyncHandler) ListSync(c *gin.Context) {
	entries, err := h.syncService.ListSync(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"entries": entries, "total": len(entries)}))
}

// MarkSyncResult records the outcome of a sync attempt
// @Summary      Mark sync result
// @Tags         sync
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Sync Entry ID"
// @Param        payload  body      service.MarkSyncResultRequest  true  "Sync Result Payload"
// @Success      200      {object}  response.Response{data=model.SapSyncOutbox}
// @Failure      400      {object}  response.Response
// @Router       /api/sync-outbox/{id}/result [put]
func (h *SyncHandler) MarkSyncResult(c *gin.Context) {
	var req service.MarkSyncResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.syncService.MarkSyncResult(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

func (h *SyncHandler) ListEmail(c *gin.Context) {
	entries, err := h.syncService.ListEmail(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"entries": entries, "total": len(entries)}))
}

func (h *SyncHandler) MarkEmailSent(c *gin.Context) {
	entry, err := h.syncService.MarkEmailSent(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}
