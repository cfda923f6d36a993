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

type DemolishHandler struct {
	demolishService service.DemolishService
}

func NewDemolishHandler(demolishService service.DemolishService) *DemolishHandler {
	return &DemolishHandler{demolishService: demolishService}
}

func (h *DemolishHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting, model.RoleStaff)
	approver := middleware.RequireRole(model.RoleAdmin, model.RoleAccounting)

	demolish := router.Group("/api/demolish-requests")
	{
		demolish.POST("", anyRole, h.CreateDraft)
		demolish.GET("", anyRole, h.List)
		demolish.GET("/:id", anyRole, h.Get)
		demolish.DELETE("/:id", anyRole, h.DeleteDraft)

		demolish.POST("/:id/items", anyRole, h.UpsertItem)
		demolish.DELETE("/:id/items/:itemId", anyRole, h.RemoveItem)
		demolish.POST("/:id/items/:itemId/images", anyRole, h.AddItemImages)
		demolish.PUT("/:id/items/:itemId/existing-image", anyRole, h.MarkItemExistingImage)
		demolish.POST("/:id/documents", anyRole, h.AttachDocument)
		demolish.DELETE("/:id/documents/:docId", anyRole, h.RemoveDocument)

		demolish.GET("/:id/submission-check", anyRole, h.CheckSubmission)
		demolish.POST("/:id/submit", anyRole, h.Submit)
		demolish.POST("/:id/return-to-draft", anyRole, h.ReturnToDraft)
		demolish.POST("/:id/action", approver, h.ActionApproval)
		demolish.POST("/:id/receive", approver, h.Receive)
	}
}

// CreateDraft opens a new demolish request in DRAFT
// @Summary      Create demolish draft
// @Tags         demolish
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDemolishDraftRequest  true  "Create Draft Payload"
// @Success      201      {object}  response.Response{data=model.DemolishRequest}
// @Failure      400      {object}  response.Response
// @Router       /api/demolish-requests [post]
func (h *DemolishHandler) CreateDraft(c *gin.Context) {
	var req service.CreateDemolishDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	request, err := h.demolishService.CreateDraft(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, request))
}

// List returns a paginated list of demolish requests
// @Summary      List demolish requests
// @Tags         demolish
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (DRAFT, SUBMITTED, PENDING, APPROVED, REJECTED, RECEIVED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/demolish-requests [get]
func (h *DemolishHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	summaries, total, err := h.demolishService.List(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
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

// Get returns a demolish request with items, documents and approval history
// @Summary      Get demolish request
// @Tags         demolish
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Demolish Request ID"
// @Success      200  {object}  response.Response{data=service.DemolishDetail}
// @Failure      404  {object}  response.Response
// @Router       /api/demolish-requests/{id} [get]
func (h *DemolishHandler) Get(c *gin.Context) {
	detail, err := h.demolishService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

func (h *DemolishHandler) DeleteDraft(c *gin.Context) {
	if err := h.demolishService.DeleteDraft(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

func (h *DemolishHandler) UpsertItem(c *gin.Context) {
	var req service.UpsertDemolishItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.demolishService.UpsertItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

func (h *DemolishHandler) RemoveItem(c *gin.Context) {
	if err := h.demolishService.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"removed": true}))
}

func (h *DemolishHandler) AddItemImages(c *gin.Context) {
	var req struct {
		FileNames []string `json:"file_names" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	images, err := h.demolishService.AddItemImages(c.Request.Context(), c.Param("id"), c.Param("itemId"), req.FileNames)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"images": images}))
}

func (h *DemolishHandler) MarkItemExistingImage(c *gin.Context) {
	var req struct {
		HasExistingImage bool `json:"has_existing_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.demolishService.MarkItemExistingImage(c.Request.Context(), c.Param("id"), c.Param("itemId"), req.HasExistingImage); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"updated": true}))
}

func (h *DemolishHandler) AttachDocument(c *gin.Context) {
	var req service.AttachDemolishDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.demolishService.AttachDocument(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"attached": true}))
}

func (h *DemolishHandler) RemoveDocument(c *gin.Context) {
	if err := h.demolishService.RemoveDocument(c.Request.Context(), c.Param("id"), c.Param("docId")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"removed": true}))
}

// CheckSubmission reports every unmet submission condition without mutating anything
// @Summary      Check demolish submission readiness
// @Tags         demolish
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Demolish Request ID"
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/demolish-requests/{id}/submission-check [get]
func (h *DemolishHandler) CheckSubmission(c *gin.Context) {
	issues, err := h.demolishService.CheckSubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"can_submit": len(issues) == 0,
		"issues":     issues,
	}))
}

// Submit moves a DRAFT request into its approval flow
// @Summary      Submit demolish request
// @Tags         demolish
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Demolish Request ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      422  {object}  response.Response
// @Router       /api/demolish-requests/{id}/submit [post]
func (h *DemolishHandler) Submit(c *gin.Context) {
	if err := h.demolishService.Submit(c.Request.Context(), c.Param("id")); err != nil {
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

func (h *DemolishHandler) ReturnToDraft(c *gin.Context) {
	var req struct {
		ActorName string `json:"actor_name" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.demolishService.ReturnToDraft(c.Request.Context(), c.Param("id"), req.ActorName, req.Reason); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"returned": true}))
}

// ActionApproval records an APPROVE or REJECT on the active step
// @Summary      Action demolish approval step
// @Tags         demolish
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Demolish Request ID"
// @Param        payload  body      service.ApprovalActionRequest  true  "Approval Action Payload"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/demolish-requests/{id}/action [post]
func (h *DemolishHandler) ActionApproval(c *gin.Context) {
	var req service.ApprovalActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.demolishService.ActionApproval(c.Request.Context(), c.Param("id"), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"actioned": true}))
}

func (h *DemolishHandler) Receive(c *gin.Context) {
	var req struct {
		ActorName string `json:"actor_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.demolishService.Receive(c.Request.Context(), c.Param("id"), req.ActorName); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"received": true}))
}
