package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"easset/internal/model"
	"easset/internal/repository"

	"github.com/google/uuid"
)

type MarkSyncResultRequest struct {
	Status       string `json:"status" binding:"required,oneof=PROCESSING SUCCESS FAIL"`
	ErrorMessage string `json:"error_message"`
	ActorName    string `json:"actor_name" binding:"required"`
}

// SyncService tracks the SAP sync outbox and the transfer notification
// emails that follow a successful sync.
type SyncService interface {
	ListSync(ctx context.Context) ([]model.SapSyncOutbox, error)
	MarkSyncResult(ctx context.Context, entryID string, req MarkSyncResultRequest) (*model.SapSyncOutbox, error)

	ListEmail(ctx context.Context) ([]model.EmailOutbox, error)
	MarkEmailSent(ctx context.Context, entryID string) (*model.EmailOutbox, error)
}

type syncService struct {
	outboxRepo repository.OutboxRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewSyncService(outboxRepo repository.OutboxRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) SyncService {
	return &syncService{outboxRepo: outboxRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *syncService) ListSync(ctx context.Context) ([]model.SapSyncOutbox, error) {
	return s.outboxRepo.ListSync(ctx)
}

// MarkSyncResult records the outcome of one sync attempt. A successful
// TRANSFER sync queues the notification email for the receiving owner.
func (s *syncService) MarkSyncResult(ctx context.Context, entryID string, req MarkSyncResultRequest) (*model.SapSyncOutbox, error) {
	id, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid sync entry id: %w", err)
	}

	var entry *model.SapSyncOutbox
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		entry, err = s.outboxRepo.FindSyncByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("sync entry not found: %w", err)
		}

		switch entry.Status {
		case model.SyncStatusSuccess, model.SyncStatusFail:
			return fmt.Errorf("sync entry %s is already finalized as %s", entry.RefNo, entry.Status)
		}

		entry.Status = req.Status
		entry.ErrorMessage = req.ErrorMessage
		if req.Status == model.SyncStatusSuccess || req.Status == model.SyncStatusFail {
			now := time.Now()
			entry.ProcessedAt = &now
		}
		if err := s.outboxRepo.UpdateSync(txCtx, entry); err != nil {
			return fmt.Errorf("failed to update sync entry: %w", err)
		}

		if entry.Status == model.SyncStatusSuccess && entry.RefType == model.RefTypeTransfer && entry.NotifyEmail != "" {
			email := model.EmailOutbox{
				RefType: model.RefTypeTransfer,
				RefNo:   entry.RefNo,
				ToEmail: entry.NotifyEmail,
				Subject: fmt.Sprintf("Asset transfer %s completed", entry.RefNo),
				BodyText: fmt.Sprintf(
					"Transfer request %s has been approved and synchronized. The assets are now assigned to your cost center.",
					entry.RefNo,
				),
				Status: model.EmailStatusPending,
			}
			if err := s.outboxRepo.EnqueueEmail(txCtx, &email); err != nil {
				return fmt.Errorf("failed to enqueue notification email: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]string{
			"ref_type": entry.RefType,
			"ref_no":   entry.RefNo,
			"status":   entry.Status,
		})
		audit := model.AuditLog{
			ActorName:  req.ActorName,
			Action:     model.ActionMarkSyncResult,
			EntityID:   entry.ID.String(),
			EntityName: entry.RefNo,
			Details:    string(details),
		}
		if err := s.auditRepo.Create(txCtx, &audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *syncService) ListEmail(ctx context.Context) ([]model.EmailOutbox, error) {
	return s.outboxRepo.ListEmail(ctx)
}

func (s *syncService) MarkEmailSent(ctx context.Context, entryID string) (*model.EmailOutbox, error) {
	id, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid email entry id: %w", err)
	}

	var entry *model.EmailOutbox
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		entry, err = s.outboxRepo.FindEmailByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("email entry not found: %w", err)
		}
		if entry.Status == model.EmailStatusSent {
			return nil
		}

		now := time.Now()
		entry.Status = model.EmailStatusSent
		entry.SentAt = &now
		return s.outboxRepo.UpdateEmail(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
