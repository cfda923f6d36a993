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

func sumTransferItems(items []model.TransferItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.BookValueAtRequest)
	}
	return total.Round(2)
}

const (
	defaultReceiverName  = "Unknown Receiver"
	defaultReceiverEmail = "asset.receiver@mitrphol.com"
)

// --- DTOs ---

type CreateTransferDraftRequest struct {
	CompanyID      string `json:"company_id" binding:"required"`
	PlantID        string `json:"plant_id" binding:"required"`
	CreatedByName  string `json:"created_by_name" binding:"required"`
	FromCostCenter string `json:"from_cost_center" binding:"required"`
	ToCostCenter   string `json:"to_cost_center" binding:"required"`
	ToLocation     string `json:"to_location"`
	ToOwnerName    string `json:"to_owner_name"`
	ToOwnerEmail   string `json:"to_owner_email"`
	ReasonText     string `json:"reason_text"`
}

type UpdateTransferDraftRequest struct {
	ToCostCenter string `json:"to_cost_center" binding:"required"`
	ToLocation   string `json:"to_location"`
	ToOwnerName  string `json:"to_owner_name"`
	ToOwnerEmail string `json:"to_owner_email"`
	ReasonText   string `json:"reason_text"`
}

type AddTransferItemRequest struct {
	AssetID string `json:"asset_id" binding:"required"`
	Note    string `json:"note"`
}

type TransferSummary struct {
	TransferRequestID string `json:"transfer_request_id"`
	RequestNo         string `json:"request_no"`
	Status            string `json:"status"`
	FromCostCenter    string `json:"from_cost_center"`
	ToCostCenter      string `json:"to_cost_center"`
	CreatedAt         string `json:"created_at"`
	CreatedByName     string `json:"created_by_name"`
	ItemCount         int    `json:"item_count"`
	CurrentApprover   string `json:"current_approver"`
}

type TransferDetail struct {
	model.TransferRequest
	ApprovalHistory []model.ApprovalAction `json:"approval_history"`
}

// --- Interface ---

type TransferService interface {
	CreateDraft(ctx context.Context, req CreateTransferDraftRequest) (*model.TransferRequest, error)
	Get(ctx context.Context, id string) (*TransferDetail, error)
	List(ctx context.Context, status string, page, limit int) ([]TransferSummary, int64, error)

	UpdateDraftMeta(ctx context.Context, requestID string, req UpdateTransferDraftRequest) error
	AddItem(ctx context.Context, requestID string, req AddTransferItemRequest) (*model.TransferItem, error)
	RemoveItem(ctx context.Context, requestID, itemID string) error
	AddAttachment(ctx context.Context, requestID, fileName string) ([]string, error)
	RemoveAttachment(ctx context.Context, requestID, fileName string) error

	CheckSubmission(ctx context.Context, requestID string) ([]string, error)
	Submit(ctx context.Context, requestID string) error
	ReturnToDraft(ctx context.Context, requestID, actorName, reason string) error
	ActionApproval(ctx context.Context, requestID string, req ApprovalActionRequest) error
	DeleteDraft(ctx context.Context, requestID string) error
}

type transferService struct {
	transferRepo repository.TransferRepository
	assetRepo    repository.AssetRepository
	outboxRepo   repository.OutboxRepository
	sequenceRepo repository.SequenceRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewTransferService(
	transferRepo repository.TransferRepository,
	assetRepo repository.AssetRepository,
	outboxRepo repository.OutboxRepository,
	sequenceRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) TransferService {
	return &transferService{
		transferRepo: transferRepo,
		assetRepo:    assetRepo,
		outboxRepo:   outboxRepo,
		sequenceRepo: sequenceRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Implementation ---

func validateTransferDestination(from, to string) error {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return fmt.Errorf("source and destination cost centers are required")
	}
	if strings.EqualFold(strings.TrimSpace(from), strings.TrimSpace(to)) {
		return fmt.Errorf("destination cost center must differ from the source")
	}
	return nil
}

func (s *transferService) CreateDraft(ctx context.Context, req CreateTransferDraftRequest) (*model.TransferRequest, error) {
	if err := validateTransferDestination(req.FromCostCenter, req.ToCostCenter); err != nil {
		return nil, err
	}

	ownerName := strings.TrimSpace(req.ToOwnerName)
	if ownerName == "" {
		ownerName = defaultReceiverName
	}
	ownerEmail := strings.TrimSpace(req.ToOwnerEmail)
	if ownerEmail == "" {
		ownerEmail = defaultReceiverEmail
	}

	request := model.TransferRequest{
		CompanyID:      req.CompanyID,
		PlantID:        req.PlantID,
		CreatedByName:  req.CreatedByName,
		Status:         model.StatusDraft,
		FromCostCenter: strings.TrimSpace(req.FromCostCenter),
		ToCostCenter:   strings.TrimSpace(req.ToCostCenter),
		ToLocation:     req.ToLocation,
		ToOwnerName:    ownerName,
		ToOwnerEmail:   ownerEmail,
		ReasonText:     req.ReasonText,
		TotalBookValue: decimal.Zero,
		Attachments:    []string{},
		Items:          []model.TransferItem{},
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requestNo, err := s.sequenceRepo.NextRequestNo(txCtx, "TR")
		if err != nil {
			return err
		}
		request.RequestNo = requestNo

		if err := s.transferRepo.Create(txCtx, &request); err != nil {
			return fmt.Errorf("failed to create transfer draft: %w", err)
		}

		return s.audit(txCtx, req.CreatedByName, model.ActionCreateTransferDraft, &request, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notify("transfer.created", request.RequestNo)
	return &request, nil
}

func (s *transferService) Get(ctx context.Context, id string) (*TransferDetail, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer request id: %w", err)
	}

	request, err := s.transferRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("transfer request not found: %w", err)
	}

	history, err := s.transferRepo.ListActions(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval history: %w", err)
	}

	return &TransferDetail{TransferRequest: *request, ApprovalHistory: history}, nil
}

func (s *transferService) List(ctx context.Context, status string, page, limit int) ([]TransferSummary, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.transferRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transfer requests: %w", err)
	}

	summaries := make([]TransferSummary, 0, len(requests))
	for _, r := range requests {
		currentApprover := r.Status
		if r.Status != model.StatusApproved && r.Approval.Attached() {
			currentApprover = r.Approval.CurrentStepName
		}
		summaries = append(summaries, TransferSummary{
			TransferRequestID: r.ID.String(),
			RequestNo:         r.RequestNo,
			Status:            r.Status,
			FromCostCenter:    r.FromCostCenter,
			ToCostCenter:      r.ToCostCenter,
			CreatedAt:         r.CreatedAt.Format(time.RFC3339),
			CreatedByName:     r.CreatedByName,
			ItemCount:         len(r.Items),
			CurrentApprover:   currentApprover,
		})
	}
	return summaries, total, nil
}

func (s *transferService) UpdateDraftMeta(ctx context.Context, requestID string, req UpdateTransferDraftRequest) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid transfer request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("drafts can be edited only while status is DRAFT, current status is %s", request.Status)
		}
		if err := validateTransferDestination(request.FromCostCenter, req.ToCostCenter); err != nil {
			return err
		}

		request.ToCostCenter = strings.TrimSpace(req.ToCostCenter)
		request.ToLocation = req.ToLocation
		if name := strings.TrimSpace(req.ToOwnerName); name != "" {
			request.ToOwnerName = name
		}
		if email := strings.TrimSpace(req.ToOwnerEmail); email != "" {
			request.ToOwnerEmail = email
		}
		request.ReasonText = req.ReasonText

		if err := s.transferRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update transfer draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify("transfer.updated", requestID)
	return nil
}

func (s *transferService) AddItem(ctx context.Context, requestID string, req AddTransferItemRequest) (*model.TransferItem, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer request id: %w", err)
	}
	assetID, err := uuid.Parse(req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("invalid asset id: %w", err)
	}

	var item model.TransferItem
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
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
		if !strings.EqualFold(asset.CostCenterName, request.FromCostCenter) {
			return fmt.Errorf("asset %s belongs to cost center %s, not %s", asset.AssetNo, asset.CostCenterName, request.FromCostCenter)
		}

		item = model.TransferItem{
			RequestID:          request.ID,
			AssetID:            asset.ID,
			AssetNo:            asset.AssetNo,
			AssetName:          asset.AssetName,
			BookValueAtRequest: asset.BookValue,
			Note:               req.Note,
		}
		if err := s.transferRepo.AddItem(txCtx, &item); err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}

		request.Items = append(request.Items, item)
		request.TotalBookValue = sumTransferItems(request.Items)
		if err := s.transferRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update total book value: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify("transfer.updated", requestID)
	return &item, nil
}

func (s *transferService) RemoveItem(ctx context.Context, requestID, itemID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid transfer request id: %w", err)
	}
	removeID, err := uuid.Parse(itemID)
	if err != nil {
		return fmt.Errorf("invalid item id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("items can be removed only while status is DRAFT, current status is %s", request.Status)
		}

		remaining := make([]model.TransferItem, 0, len(request.Items))
		found := false
		for _, item := range request.Items {
			if item.ID == removeID {
				found = true
				continue
			}
			remaining = append(remaining, item)
		}
		if !found {
			return fmt.Errorf("transfer item not found")
		}

		if err := s.transferRepo.DeleteItem(txCtx, removeID); err != nil {
			return fmt.Errorf("failed to remove item: %w", err)
		}

		request.Items = remaining
		request.TotalBookValue = sumTransferItems(remaining)
		if err := s.transferRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update total book value: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify("transfer.updated", requestID)
	return nil
}

func (s *transferService) AddAttachment(ctx context.Context, requestID, fileName string) ([]string, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer request id: %w", err)
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("attachment file name is required")
	}

	var attachments []string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("attachments can be added only while status is DRAFT, current status is %s", request.Status)
		}

		request.Attachments = mergeUnique(request.Attachments, []string{fileName})
		if err := s.transferRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to add attachment: %w", err)
		}
		attachments = request.Attachments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (s *transferService) RemoveAttachment(ctx context.Context, requestID, fileName string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid transfer request id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("attachments can be removed only while status is DRAFT, current status is %s", request.Status)
		}

		remaining := make([]string, 0, len(request.Attachments))
		for _, a := range request.Attachments {
			if a != fileName {
				remaining = append(remaining, a)
			}
		}
		request.Attachments = remaining
		return s.transferRepo.Update(txCtx, request)
	})
}

func transferGateIssues(request *model.TransferRequest) []string {
	var issues []string
	if len(request.Items) == 0 {
		issues = append(issues, "at least one asset item is required")
	}
	if strings.TrimSpace(request.ReasonText) == "" {
		issues = append(issues, "a transfer reason is required")
	}
	if len(request.Attachments) == 0 {
		issues = append(issues, "at least one attachment is required")
	}
	return issues
}

func (s *transferService) CheckSubmission(ctx context.Context, requestID string) ([]string, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer request id: %w", err)
	}
	request, err := s.transferRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transfer request not found: %w", err)
	}
	return transferGateIssues(request), nil
}

func (s *transferService) Submit(ctx context.Context, requestID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid transfer request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("only DRAFT requests can be submitted, current status is %s", request.Status)
		}

		if issues := transferGateIssues(request); len(issues) > 0 {
			return &SubmissionGateError{Issues: issues}
		}

		request.Approval = BuildTransferApproval()
		request.Status = model.StatusSubmitted
		if err := s.transferRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to submit request: %w", err)
		}

		action := newApprovalAction(model.RefTypeTransfer, request.ID, model.ApprovalState{}, model.ActionComment, request.CreatedByName, "Submitted to approval")
		if err := s.transferRepo.AppendAction(txCtx, &action); err != nil {
			return fmt.Errorf("failed to record submission: %w", err)
		}

		return s.audit(txCtx, request.CreatedByName, model.ActionSubmitTransfer, request, map[string]interface{}{
			"flow_code": request.Approval.FlowCode,
		})
	})
	if err != nil {
		return err
	}

	s.notify("transfer.submitted", requestID)
	return nil
}

func (s *transferService) ReturnToDraft(ctx context.Context, requestID, actorName, reason string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid transfer request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
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
		action := newApprovalAction(model.RefTypeTransfer, request.ID, request.Approval, model.ActionComment, actorName, comment)
		if err := s.transferRepo.AppendAction(txCtx, &action); err != nil {
			return fmt.Errorf("failed to record return to draft: %w", err)
		}

		request.Status = model.StatusDraft
		request.Approval = model.ApprovalState{}
		if err := s.transferRepo.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to return request to draft: %w", err)
		}

		return s.audit(txCtx, actorName, model.ActionReturnRequestToDraft, request, map[string]interface{}{"reason": comment})
	})
	if err != nil {
		return err
	}

	s.notify("transfer.updated", requestID)
	return nil
}

func (s *transferService) ActionApproval(ctx context.Context, requestID string, req ApprovalActionRequest) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid transfer request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
		}
		if !request.Approval.Attached() {
			return fmt.Errorf("request has no approval flow attached")
		}
		if request.Status != model.StatusSubmitted && request.Status != model.StatusPending {
			return fmt.Errorf("approval actions are allowed only from SUBMITTED/PENDING, current status is %s", request.Status)
		}

		action := newApprovalAction(model.RefTypeTransfer, request.ID, request.Approval, req.Action, req.ActorName, req.Comment)
		if err := s.transferRepo.AppendAction(txCtx, &action); err != nil {
			return fmt.Errorf("failed to record approval action: %w", err)
		}

		auditAction := model.ActionApproveRequest
		if req.Action == model.ActionReject {
			request.Status = model.StatusRejected
			auditAction = model.ActionRejectRequest
		} else if completed := advanceApproval(&request.Approval); completed {
			request.Status = model.StatusApproved
			if err := s.applyTransferEffects(txCtx, request); err != nil {
				return err
			}
		} else {
			request.Status = model.StatusPending
		}

		if err := s.transferRepo.Update(txCtx, request); err != nil {
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

	s.notify("transfer.updated", requestID)
	return nil
}

// applyTransferEffects moves the assets to the destination and queues the SAP
// sync entry. Runs inside the final-approval transaction so a failed asset
// update rolls the approval back too.
func (s *transferService) applyTransferEffects(ctx context.Context, request *model.TransferRequest) error {
	for _, item := range request.Items {
		fields := map[string]interface{}{
			"cost_center_name": request.ToCostCenter,
		}
		if request.ToLocation != "" {
			fields["location_name"] = request.ToLocation
		}
		if err := s.assetRepo.UpdateFields(ctx, item.AssetID, fields); err != nil {
			return fmt.Errorf("failed to move asset %s: %w", item.AssetNo, err)
		}
	}

	entry := model.SapSyncOutbox{
		RefType:     model.RefTypeTransfer,
		RefNo:       request.RequestNo,
		NotifyEmail: request.ToOwnerEmail,
		Status:      model.SyncStatusPending,
	}
	if err := s.outboxRepo.EnqueueSync(ctx, &entry); err != nil {
		return fmt.Errorf("failed to enqueue sync entry: %w", err)
	}
	return nil
}

func (s *transferService) DeleteDraft(ctx context.Context, requestID string) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid transfer request id: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.transferRepo.FindByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("transfer request not found: %w", err)
		}
		if request.Status != model.StatusDraft {
			return fmt.Errorf("delete is allowed only while status is DRAFT, current status is %s", request.Status)
		}

		if err := s.transferRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}

		return s.audit(txCtx, request.CreatedByName, model.ActionDeleteTransferDraft, request, nil)
	})
	if err != nil {
		return err
	}

	s.notify("transfer.deleted", requestID)
	return nil
}

func (s *transferService) audit(ctx context.Context, actorName, action string, request *model.TransferRequest, extra map[string]interface{}) error {
	payload := map[string]interface{}{
		"request_no":       request.RequestNo,
		"status":           request.Status,
		"from_cost_center": request.FromCostCenter,
		"to_cost_center":   request.ToCostCenter,
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

func (s *transferService) notify(event, requestID string) {
	if s.hub == nil {
		return
	}
	msg, _ := json.Marshal(map[string]string{"event": event, "request_id": requestID})
	select {
	case s.hub.Broadcast <- msg:
	default:
	}
}
