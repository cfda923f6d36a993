package repository

import (
	"context"

	"easset/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransferRepository interface {
	Create(ctx context.Context, req *model.TransferRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TransferRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.TransferRequest, int64, error)
	Update(ctx context.Context, req *model.TransferRequest) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddItem(ctx context.Context, item *model.TransferItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	AppendAction(ctx context.Context, action *model.ApprovalAction) error
	ListActions(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalAction, error)
}

type transferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, req *model.TransferRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *transferRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TransferRequest, error) {
	var req model.TransferRequest
	if err := GetDB(ctx, r.db).Preload("Items").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *transferRepository) List(ctx context.Context, status string, page, limit int) ([]model.TransferRequest, int64, error) {
	var requests []model.TransferRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TransferRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Items")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *transferRepository) Update(ctx context.Context, req *model.TransferRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *transferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", id).Delete(&model.TransferItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("ref_type = ? AND request_id = ?", model.RefTypeTransfer, id).Delete(&model.ApprovalAction{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.TransferRequest{}, "id = ?", id).Error
}

func (r *transferRepository) AddItem(ctx context.Context, item *model.TransferItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *transferRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.TransferItem{}, "id = ?", itemID).Error
}

func (r *transferRepository) AppendAction(ctx context.Context, action *model.ApprovalAction) error {
	return GetDB(ctx, r.db).Create(action).Error
}

func (r *transferRepository) ListActions(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalAction, error) {
	var actions []model.ApprovalAction
	err := GetDB(ctx, r.db).
		Where("ref_type = ? AND request_id = ?", model.RefTypeTransfer, requestID).
		Order("created_at ASC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}
