package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"easset/internal/model"
	"easset/internal/repository"
	ws "easset/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmissionGateError carries every unmet submission condition at once so the
// caller can render a checklist instead of fixing issues one at a time.
type SubmissionGateError struct {
	Issues []string
}

func (e *SubmissionGateError) Error() string {
	return "submission blocked: " + strings.Join(e.Issues, "; ")
}

// --- DTOs ---

type CreateDemolishDraftRequest struct {
	CompanyID     string `json:"company_id" binding:"required"`
	PlantID       string `json:"plant_id" binding:"required"`
	CreatedByName string `json:"created_by_name" binding:"required"`
}

type UpsertDemolishItemRequest struct {
	AssetID              string `json:"asset_id" binding:"required"`
	Note                 string `json:"note"`
	HasExistingImage     bool   `json:"has_existing_image"`
	RequiresExpertReview bool   `json:"requires_expert_review"`
	ExpertName           string `json:"expert_name"`
}

type AttachDemolishDocumentRequest struct {
	DocTypeCode string `json:"doc_type_code" binding:"required,oneof=APPROVAL_DOC BUDGET_DOC OTHER"`
	FileName    string `json:"file_name" binding:"required"`
}

type ApprovalActionRequest struct {
	Action    string `json:"action" binding:"required,oneof=APPROVE REJECT"`
	ActorName string `json:"actor_name" binding:"required"`
	Comment   string `json:"comment"`
}

type DemolishSummary struct {
	DemolishRequestID string          `json:"demolish_request_id"`
	RequestNo         string          `json:"request_no"`
	Status            string          `json:"status"`
	TotalBookValue    decimal.Decimal `json:"total_book_value"`
	CreatedAt         string          `json:"created_at"`
	CreatedByName     string          `json:"created_by_name"`
	ItemCount         int             `json:"item_count"`
	CurrentApprover   string          `json:"current_approver"`
}

type DemolishDetail struct {
	model.DemolishRequest
	ApprovalHistory []model.ApprovalAction `json:"approval_history"`
}

// --- Interface ---

type DemolishService interface {
	CreateDraft(ctx context.Context, req CreateDemolishDraftRequest) (*model.DemolishRequest, error)
	Get(ctx context.Context, id string) (*DemolishDetail, error)
	List(ctx context.Context, status string, page, limit int) ([]DemolishSummary, int64, error)

	UpsertItem(ctx context.Context, requestID string, req UpsertDemolishItemRequest) (*model.DemolishItem, error)
	RemoveItem(ctx context.Context, requestID, itemID string) error
	AddItemImages(ctx context.Context, requestID, itemID string, fileNames []string) ([]string, error)
	MarkItemExistingImage(ctx context.Context, requestID, itemID string, hasExistingImage bool) error
	AttachDocument(ctx context.Context, requestID string, req AttachDemolishDocumentRequest) error
	RemoveDocument(ctx context.Context, requestID, documentID string) error

	CheckSubmission(ctx context.Context, requestID string) ([]string, error)
	Submit(ctx context.Context, requestID string) error
	ReturnToDraft(ctx context.Context, requestID, actorName, reason string) error
	ActionApproval(ctx context.Context, requestID string, req ApprovalActionRequest) error
	Receive(ctx context.Context, requestID, actorName string) error
	DeleteDraft(ctx context.Context, requestID string) error
}

type demolishService struct {
	demolishRepo repository.DemolishRepository
	assetRepo    repository.AssetRepository
	outboxRepo   repository.OutboxRepository
	sequenceRepo repository.SequenceRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewDemolishService(
	demolishRepo repository.DemolishRepository,
	assetRepo repository.AssetRepository,
	outboxRepo repository.OutboxRepository,
	sequenceRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) DemolishService {
	return &demolishService{
		demolishRepo: demolishRepo,
		assetRepo:    assetRepo,
		outboxRepo:   outboxRepo,
		sequenceRepo: sequenceRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *demolishService) CreateDraft(ctx context.Context, req CreateDemolishDraftRequest) (*model.DemolishRequest, error) {
	request := model.DemolishRequest{
		CompanyID:      req.CompanyID,
		PlantID:        req.PlantID,
		CreatedByName:  req.CreatedByName,
		Status:         model.StatusDraft,
		TotalBookValue: decimal.Zero,
		Items:          []model.DemolishItem{},
		Documents:      []model.DemolishDocument{},
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requestNo, err := s.sequenceRepo.NextRequestNo(txCtx, "DM")
		if err != nil {
			return err
		}
		request.RequestNo = requestNo

		if err := s.demolishRepo.Create(txCtx, &request); err != nil {
			return fmt.Errorf("failed to create demolish draft: %w", err)
		}

		return s.audit(txCtx, req.CreatedByName, model.ActionCreateDemolishDraft, &request, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notify("demolish.created", request.RequestNo)
	return &request, nil
}

func (s *demolishService) Get(ctx context.Context, id string) (*DemolishDetail, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid demolish request id: %w", err)
	}

	request, err := s.demolishRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("demolish request not found: %w", err)
	}

	history, err := s.demolishRepo.ListActions(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval history: %w", err)
	}

	return &DemolishDetail{DemolishRequest: *request, ApprovalHistory: history}, nil
}

func (s *demolishService) List(ctx context.Context, status string, page, limit int) ([]DemolishSummary, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.demolishRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list demolish requests: %w", err)
	}

	summaries := make([]DemolishSummary, 0, len(requests))
	for _, r := range requests {
		summaries = append(summaries, toDemolishSummary(r))
	}
	return summaries, total, nil
}

func toDemolishSummary(r model.DemolishRequest) DemolishSummary {
	currentApprover := r.Status
	switch {
	case r.Status == model.StatusReceived:
		currentApprover = "Supplies Received"
	case r.Status == model.StatusApproved:
		currentApprover = "Waiting for Supplies Receive"
	case r.Approval.Attached():
		currentApprover = r.Approval.CurrentStepName
	}

	return DemolishSummary{
		DemolishRequestID: r.ID.String(),
		RequestNo:         r.RequestNo,
		Status:            r.Status,
		TotalBookValue:    r.TotalBookValue,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		CreatedByName:     r.CreatedByName,
		ItemCount:         len(r.Items),
		CurrentApprover:   currentApprover,
	}
}

func (s *demolishService) UpsertItem(ctx context.Context, requestID string, req UpsertDemolishItemRequest) (*model.DemolishItem, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid demolish request id: %w", err)
	}
	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id: %w", err)
	}

	var item model.DemolishItem
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("items can be added only while status is DRAFT, current status is %s", request.Status)
		}

		for _, existing := range request.Items {
			if existing.AssetID == assetID {
				return fmt.Errorf("asset %s is already on this request", existing.AssetNo)
			}
		}

		asset, err := s.assetRepo.FindByID(txCtx, assetID)
		if err != nil {
			return fmt.Errorf("asset not found: %w", err)
		}

		expertName := ""
		if req.RequiresExpertReview {
			expertName = strings.TrimSpace(req.ExpertName)
		}

		// Book value is frozen here and never re-read from the asset master.
		item = model.DemolishItem{
			RequestID:            request.ID,
			AssetID:              asset.ID,
			AssetNo:              asset.AssetNo,
			AssetName:            asset.AssetName,
			BookValueAtRequest:   asset.BookValue,
			Note:                 req.Note,
			Images:               []string{},
			HasExistingImage:     req.HasExistingImage,
			RequiresExpertReview: req.RequiresExpertReview,
			ExpertName:           expertName,
		}
		if err := s.demolishRepo.AddItem(txCtx, &item); err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}

		request.Items = append(request.Items, item)
		request.TotalBookValue = sumDemolishItems(request.Items)
		if err := s.demolishRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update total book value: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify("demolish.updated", requestID)
	return &item, nil
}

func sumDemolishItems(items []model.DemolishItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.BookValueAtRequest)
	}
	return total.Round(2)
}

func (s *demolishService) RemoveItem(ctx context.Context, requestID, itemID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}
	removeID, err := uuid.Parse(itemID)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("items can be removed only while status is DRAFT, current status is %s", request.Status)
		}

		remaining := make([]model.DemolishItem, 0, len(request.Items))
		found := false
		for _, item := range request.Items {
			if item.ID == removeID {
				found = true
				continue
			}
			remaining = append(remaining, item)
		}
		if !found {
			return fmt.Errorf("demolish item not found")
		}

		if err := s.demolishRepo.DeleteItem(txCtx, removeID); err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}

		request.Items = remaining
		request.TotalBookValue = sumDemolishItems(remaining)
		if err := s.demolishRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update total book value: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify("demolish.updated", requestID)
	return nil
}

func (s *demolishService) AddItemImages(ctx context.Context, requestID, itemID string, fileNames []string) ([]string, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid demolish request id: %w", err)
	}
	targetID, err := uuid.Parse(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item id: %w", err)
	}

	var images []string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("images can be attached only while status is DRAFT, current status is %s", request.Status)
		}

		item := findDemolishItem(request.Items, targetID)
		if item == nil {
			return fmt.Errorf("demolish item not found")
		}

		incoming := make([]string, 0, len(fileNames))
		for _, name := range fileNames {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				incoming = append(incoming, trimmed)
			}
		}
		if len(incoming) == 0 {
			images = item.Images
			return nil
		}

		item.Images = mergeUnique(item.Images, incoming)
		if err := s.demolishRepo.UpdateItem(txCtx, item); err != nil {
			return fmt.Errorf("failed to attach images: %w", err)
		}
		images = item.Images
		return nil
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

func findDemolishItem(items []model.DemolishItem, id uuid.UUID) *model.DemolishItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

func mergeUnique(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, v := range existing {
		if !seen[v] {
			seen[v] = true
			merged = append(merged, v)
		}
	}
	for _, v := range incoming {
		if !seen[v] {
			seen[v] = true
			merged = append(merged, v)
		}
	}
	return merged
}

func (s *demolishService) MarkItemExistingImage(ctx context.Context, requestID, itemID string, hasExistingImage bool) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}
	targetID, err := uuid.Parse(itemID)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("items can be edited only while status is DRAFT, current status is %s", request.Status)
		}

		item := findDemolishItem(request.Items, targetID)
		if item == nil {
			return fmt.Errorf("demolish item not found")
		}

		item.HasExistingImage = hasExistingImage
		if err := s.demolishRepo.UpdateItem(txCtx, item); err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
}

func (s *demolishService) AttachDocument(ctx context.Context, requestID string, req AttachDemolishDocumentRequest) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("documents can be attached only while status is DRAFT, current status is %s", request.Status)
		}

		doc := model.DemolishDocument{
			RequestID:   request.ID,
			DocTypeCode: req.DocTypeCode,
			FileName:    req.FileName,
			UploadedAt:  time.Now(),
		}
		if err := s.demolishRepo.AddDocument(txCtx, &doc); err != nil {
			return fmt.Errorf("failed to attach document: %w", err)
		}
		return nil
	})
}

func (s *demolishService) RemoveDocument(ctx context.Context, requestID, documentID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}
	docID, err := uuid.Parse(documentID)
	if err != nil {
		return fmt.Errorf("invalid document id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("documents can be removed only while status is DRAFT, current status is %s", request.Status)
		}
		return s.demolishRepo.DeleteDocument(txCtx, docID)
	})
}

// demolishGateIssues enumerates every unmet submission condition. The result
// doubles as the advisory checklist shown while the draft is being prepared.
func demolishGateIssues(request *model.DemolishRequest) []string {
	var issues []string

	if len(request.Items) == 0 {
		issues = append(issues, "at least one asset item is required")
	}
	for _, item := range request.Items {
		if len(item.Images) == 0 && !item.HasExistingImage {
			issues = append(issues, fmt.Sprintf("item %s needs at least one image or an existing-image flag", item.AssetNo))
		}
		if item.RequiresExpertReview && strings.TrimSpace(item.ExpertName) == "" {
			issues = append(issues, fmt.Sprintf("item %s requires an expert name", item.AssetNo))
		}
	}

	hasApprovalDoc := false
	hasBudgetDoc := false
	for _, doc := range request.Documents {
		switch doc.DocTypeCode {
		case model.DocTypeApproval:
			hasApprovalDoc = true
		case model.DocTypeBudget:
			hasBudgetDoc = true
		}
	}
	if !hasApprovalDoc {
		issues = append(issues, "an APPROVAL_DOC document is required")
	}
	if request.TotalBookValue.GreaterThan(LowValueThreshold) && !hasBudgetDoc {
		issues = append(issues, "a BUDGET_DOC document is required for total book value > 1")
	}
	if request.TotalBookValue.GreaterThan(MaxDemolishBookValue) {
		issues = append(issues, fmt.Sprintf("total book value exceeds the limit of %s", MaxDemolishBookValue.StringFixed(0)))
	}

	return issues
}

func (s *demolishService) CheckSubmission(ctx context.Context, requestID string) ([]string, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid demolish request id: %w", err)
	}
	request, err := s.demolishRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("demolish request not found: %w", err)
	}
	return demolishGateIssues(request), nil
}

func (s *demolishService) Submit(ctx context.Context, requestID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("only DRAFT requests can be submitted, current status is %s", request.Status)
		}

		if issues := demolishGateIssues(request); len(issues) > 0 {
			return &SubmissionGateError{Issues: issues}
		}

		hasExpertStep := false
		for _, item := range request.Items {
			if item.RequiresExpertReview {
				hasExpertStep = true
				break
			}
		}

		request.Approval = BuildDemolishApproval(request.TotalBookValue, hasExpertStep)
		request.Status = model.StatusSubmitted
		if err := s.demolishRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}

		action := newApprovalAction(model.RefTypeDemolish, request.ID, model.ApprovalState{}, model.ActionComment, request.CreatedByName, "Submitted to approval")
		if err := s.demolishRepo.AppendAction(txCtx, &action); err != nil {
			return fmt.Errorf("failed to record submission: %w", err)
		}

		return s.audit(txCtx, request.CreatedByName, model.ActionSubmitDemolish, request, map[string]interface{}{
			"flow_code": request.Approval.FlowCode,
			"steps":     len(request.Approval.Steps),
		})
	})
	if err != nil {
		return err
	}

	s.notify("demolish.submitted", requestID)
	return nil
}

func (s *demolishService) ReturnToDraft(ctx context.Context, requestID, actorName, reason string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		switch request.Status {
		case model.StatusSubmitted, model.StatusPending, model.StatusRejected:
		default:
			return fmt.Errorf("return to draft is allowed only from SUBMITTED/PENDING/REJECTED, current status is %s", request.Status)
		}

		comment := reason
		if comment == "" {
			comment = "Returned to draft for edit"
		}
		// History is appended before the approval state is discarded so the
		// audit trail keeps the step the request was parked on.
		action := newApprovalAction(model.RefTypeDemolish, request.ID, request.Approval, model.ActionComment, actorName, comment)
		if err := s.demolishRepo.AppendAction(txCtx, &action); err != nil {
			return fmt.Errorf("failed to record return to draft: %w", err)
		}

		request.Status = model.StatusDraft
		request.Approval = model.ApprovalState{}
		if err := s.demolishRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to return request to draft: %w", err)
		}

		return s.audit(txCtx, actorName, model.ActionReturnRequestToDraft, request, map[string]interface{}{"reason": comment})
	})
	if err != nil {
		return err
	}

	s.notify("demolish.updated", requestID)
	return nil
}

func (s *demolishService) ActionApproval(ctx context.Context, requestID string, req ApprovalActionRequest) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if !request.Approval.Attached() {
			return fmt.Errorf("request has no approval flow attached")
		}
		if request.Status != model.StatusSubmitted && request.Status != model.StatusPending {
			return fmt.Errorf("approval actions are allowed only from SUBMITTED/PENDING, current status is %s", request.Status)
		}

		action := newApprovalAction(model.RefTypeDemolish, request.ID, request.Approval, req.Action, req.ActorName, req.Comment)
		if err := s.demolishRepo.AppendAction(txCtx, &action); err != nil {
			return fmt.Errorf("failed to record approval action: %w", err)
		}

		auditAction := model.ActionApproveRequest
		if req.Action == model.ActionReject {
			// Step index stays frozen where the rejection happened.
			request.Status = model.StatusRejected
			auditAction = model.ActionRejectRequest
		} else if completed := advanceApproval(&request.Approval); completed {
			request.Status = model.StatusApproved
		} else {
			request.Status = model.StatusPending
		}

		if err := s.demolishRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}

		return s.audit(txCtx, req.ActorName, auditAction, request, map[string]interface{}{
			"step":    action.StepName,
			"comment": req.Comment,
		})
	})
	if err != nil {
		return err
	}

	s.notify("demolish.updated", requestID)
	return nil
}

func (s *demolishService) Receive(ctx context.Context, requestID, actorName string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusApproved {
			return fmt.Errorf("only APPROVED requests can be received, current status is %s", request.Status)
		}

		now := time.Now()
		request.Status = model.StatusReceived
		request.ReceivedAt = &now
		request.ReceivedBy = actorName
		if err := s.demolishRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to mark request received: %w", err)
		}

		action := newApprovalAction(model.RefTypeDemolish, request.ID, request.Approval, model.ActionComment, actorName, "Supplies received")
		if err := s.demolishRepo.AppendAction(txCtx, &action); err != nil {
			return fmt.Errorf("failed to record receipt: %w", err)
		}

		entry := model.SapSyncOutbox{
			RefType: model.RefTypeDemolish,
			RefNo:   request.RequestNo,
			Status:  model.SyncStatusPending,
		}
		if err := s.outboxRepo.EnqueueSync(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to enqueue sync entry: %w", err)
		}

		return s.audit(txCtx, actorName, model.ActionReceiveDemolish, request, nil)
	})
	if err != nil {
		return err
	}

	s.notify("demolish.received", requestID)
	return nil
}

func (s *demolishService) DeleteDraft(ctx context.Context, requestID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid demolish request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.demolishRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("demolish request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("delete is allowed only while status is DRAFT, current status is %s", request.Status)
		}

		if err := s.demolishRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}

		return s.audit(txCtx, request.CreatedByName, model.ActionDeleteDemolishDraft, request, nil)
	})
	if err != nil {
		return err
	}

	s.notify("demolish.deleted", requestID)
	return nil
}

func (s *demolishService) audit(ctx context.Context, actorName, action string, request *model.DemolishRequest, extra map[string]interface{}) error {
	payload := map[string]interface{}{
		"request_no":       request.RequestNo,
		"status":           request.Status,
		"total_book_value": request.TotalBookValue.StringFixed(2),
	}
	for k, v := range extra {
		payload[k] = v
	}
	details, _ := json.Marshal(payload)

	entry := model.AuditLog{
		ActorName:  actorName,
		Action:     action,
		EntityID:   request.ID.String(),
		EntityName: request.RequestNo,
		Details:    string(details),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *demolishService) notify(event, requestID string) {
	if s.hub == nil {
		return
	}
	msg, _ := json.Marshal(map[string]string{"event": event, "request_id": requestID})
	select {
	case s.hub.Broadcast <- msg:
	default:
	}
}
