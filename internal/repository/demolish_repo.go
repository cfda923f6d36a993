package repository

import (
	"context"

	"easset/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DemolishRepository interface {
	Create(ctx context.Context, req *model.DemolishRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DemolishRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.DemolishRequest, int64, error)
	Update(ctx context.Context, req *model.DemolishRequest) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddItem(ctx context.Context, item *model.DemolishItem) error
	UpdateItem(ctx context.Context, item *model.DemolishItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	AddDocument(ctx context.Context, doc *model.DemolishDocument) error
	DeleteDocument(ctx context.Context, documentID uuid.UUID) error

	AppendAction(ctx context.Context, action *model.ApprovalAction) error
	ListActions(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalAction, error)
}

type demolishRepository struct {
	db *gorm.DB
}

func NewDemolishRepository(db *gorm.DB) DemolishRepository {
	return &demolishRepository{db: db}
}

func (r *demolishRepository) Create(ctx context.Context, req *model.DemolishRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *demolishRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DemolishRequest, error) {
	var req model.DemolishRequest
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Documents").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *demolishRepository) List(ctx context.Context, status string, page, limit int) ([]model.DemolishRequest, int64, error) {
	var requests []model.DemolishRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.DemolishRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Items").Preload("Documents")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *demolishRepository) Update(ctx context.Context, req *model.DemolishRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *demolishRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("request_id = ?", id).Delete(&model.DemolishItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("request_id = ?", id).Delete(&model.DemolishDocument{}).Error; err != nil {
		return err
	}
	if err := db.Where("ref_type = ? AND request_id = ?", model.RefTypeDemolish, id).Delete(&model.ApprovalAction{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.DemolishRequest{}, "id = ?", id).Error
}

func (r *demolishRepository) AddItem(ctx context.Context, item *model.DemolishItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *demolishRepository) UpdateItem(ctx context.Context, item *model.DemolishItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *demolishRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.DemolishItem{}, "id = ?", itemID).Error
}

func (r *demolishRepository) AddDocument(ctx context.Context, doc *model.DemolishDocument) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *demolishRepository) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.DemolishDocument{}, "id = ?", documentID).Error
}

func (r *demolishRepository) AppendAction(ctx context.Context, action *model.ApprovalAction) error {
	return GetDB(ctx, r.db).Create(action).Error
}

func (r *demolishRepository) ListActions(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalAction, error) {
	var actions []model.ApprovalAction
	err := GetDB(ctx, r.db).
		Where("ref_type = ? AND request_id = ?", model.RefTypeDemolish, requestID).
		Order("created_at ASC").
		Find(&actions).Error
	if err != nil {
		return nil, err
	}
	return actions, nil
}
