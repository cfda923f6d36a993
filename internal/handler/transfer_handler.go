package handler

import (
	"errors"
	"net/http"

	"easset/internal/middleware"
	"easset/internal/model"
	"easset/internal/service"
	"easset/pkg/pagination"
	"easset/pkg/response"

	"github.com/gin-gonic/gin"
)

type TransferHandler struct {
	transferService service.TransferService
}

func NewTransferHandler(transferService service.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

func (h *TransferHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting, model.RoleStaff)
	approver := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting)

	transfers := router.Group("/api/transfer-requests")
	{
		transfers.POST("", anyRole, h.CreateDraft)
		transfers.GET("", anyRole, h.List)
		transfers.GET("/:id", anyRole, h.Get)
		transfers.PUT("/:id", anyRole, h.UpdateDraftMeta)
		transfers.DELETE("/:id", anyRole, h.DeleteDraft)

		transfers.POST("/:id/items", anyRole, h.AddItem)
		transfers.DELETE("/:id/items/:itemId", anyRole, h.RemoveItem)
		transfers.POST("/:id/attachments", anyRole, h.AddAttachment)
		transfers.DELETE("/:id/attachments", anyRole, h.RemoveAttachment)

		transfers.GET("/:id/submission-check", anyRole, h.CheckSubmission)
		transfers.POST("/:id/submit", anyRole, h.Submit)
		transfers.POST("/:id/return-to-draft", anyRole, h.ReturnToDraft)
		transfers.POST("/:id/action", approver, h.ActionApproval)
	}
}

// CreateDraft opens a new transfer request in DRAFT
// @Summary      Create transfer draft
// @Tags         transfers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTransferDraftRequest  true  "Create Draft Payload"
// @Success      201      {object}  response.Response{data=model.TransferRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/transfer-requests [post]
func (h *TransferHandler) CreateDraft(c *gin.Context) {
	var req service.CreateTransferDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.transferService.CreateDraft(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// List returns a paginated list of transfer requests
// @Summary      List transfer requests
// @Tags         transfers
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /api/transfer-requests [get]
func (h *TransferHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	summaries, total, err := h.transferService.List(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"requests": summaries,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

func (h *TransferHandler) Get(c *gin.Context) {
	detail, err := h.transferService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

func (h *TransferHandler) UpdateDraftMeta(c *gin.Context) {
	var req service.UpdateTransferDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.transferService.UpdateDraftMeta(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"updated": true}))
}

func (h *TransferHandler) DeleteDraft(c *gin.Context) {
	if err := h.transferService.DeleteDraft(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

func (h *TransferHandler) AddItem(c *gin.Context) {
	var req service.AddTransferItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.transferService.AddItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

func (h *TransferHandler) RemoveItem(c *gin.Context) {
	if err := h.transferService.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"removed": true}))
}

func (h *TransferHandler) AddAttachment(c *gin.Context) {
	var req struct {
		FileName string `json:"file_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	attachments, err := h.transferService.AddAttachment(c.Request.Context(), c.Param("id"), req.FileName)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"attachments": attachments}))
}

func (h *TransferHandler) RemoveAttachment(c *gin.Context) {
	var req struct {
		FileName string `json:"file_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.transferService.RemoveAttachment(c.Request.Context(), c.Param("id"), req.FileName); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"removed": true}))
}

func (h *TransferHandler) CheckSubmission(c *gin.Context) {
	issues, err := h.transferService.CheckSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"can_submit": len(issues) == 0,
		"issues":     issues,
	}))
}

// Submit moves a DRAFT transfer into its approval flow
// @Summary      Submit transfer request
// @Tags         transfers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Transfer Request ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      422  {object}  response.Response
// @Router       /api/transfer-requests/{id}/submit [post]
func (h *TransferHandler) Submit(c *gin.Context) {
	if err := h.transferService.Submit(c.Request.Context(), c.Param("id")); err != nil {
		var gateErr *service.SubmissionGateError
		if errors.As(err, &gateErr) {
			c.JSON(http.StatusUnprocessableEntity, response.Response{
				Status:     "error",
				StatusCode: http.StatusUnprocessableEntity,
				Data:       gin.H{"issues": gateErr.Issues},
				Error:      "submission blocked",
			})
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"submitted": true}))
}

func (h *TransferHandler) ReturnToDraft(c *gin.Context) {
	var req struct {
		ActorName string `json:"actor_name" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.transferService.ReturnToDraft(c.Request.Context(), c.Param("id"), req.ActorName, req.Reason); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"returned": true}))
}

func (h *TransferHandler) ActionApproval(c *gin.Context) {
	var req service.ApprovalActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.transferService.ActionApproval(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"actioned": true}))
}
