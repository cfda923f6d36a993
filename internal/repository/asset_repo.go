package repository

import (
	"context"

	"easset/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)
	FindByNo(ctx context.Context, assetNo string) (*model.Asset, error)
	List(ctx context.Context) ([]model.Asset, error)
	Update(ctx context.Context, asset *model.Asset) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ListImages(ctx context.Context, assetID uuid.UUID) ([]model.AssetImage, error)
	AddImage(ctx context.Context, image *model.AssetImage) error
}

type assetRepository struct {
	db *gorm.DB
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	return GetDB(ctx, r.db).Create(asset).Error
}

func (r *assetRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	var asset model.Asset
	if err := GetDB(ctx, r.db).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) FindByNo(ctx context.Context, assetNo string) (*model.Asset, error) {
	var asset model.Asset
	if err := GetDB(ctx, r.db).First(&asset, "asset_no = ?", assetNo).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) List(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset
	if err := GetDB(ctx, r.db).Order("asset_no ASC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) Update(ctx context.Context, asset *model.Asset) error {
	return GetDB(ctx, r.db).Save(asset).Error
}

func (r *assetRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.Asset{}).Where("id = ?", id).Updates(fields).Error
}

func (r *assetRepository) ListImages(ctx context.Context, assetID uuid.UUID) ([]model.AssetImage, error) {
	var images []model.AssetImage
	if err := GetDB(ctx, r.db).Where("asset_id = ?", assetID).Order("sort_order ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *assetRepository) AddImage(ctx context.Context, image *model.AssetImage) error {
	return GetDB(ctx, r.db).Create(image).Error
}
