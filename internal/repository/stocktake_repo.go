package repository

import (
	"context"

	"easset/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StocktakeRepository interface {
	FindYearConfig(ctx context.Context, plantID string, year int) (*model.StocktakeYearConfig, error)
	CreateYearConfig(ctx context.Context, config *model.StocktakeYearConfig) error
	UpdateYearConfig(ctx context.Context, config *model.StocktakeYearConfig) error

	FindRecord(ctx context.Context, plantID string, year int, assetNo string) (*model.StocktakeRecord, error)
	ListRecords(ctx context.Context, plantID string, year int) ([]model.StocktakeRecord, error)
	ListRecordsByStatus(ctx context.Context, plantID string, year int, statusCode string) ([]model.StocktakeRecord, error)
	CreateRecord(ctx context.Context, record *model.StocktakeRecord) error
	UpdateRecord(ctx context.Context, record *model.StocktakeRecord) error

	ListParticipants(ctx context.Context, plantID string, year int) ([]model.StocktakeParticipant, error)
	AddParticipant(ctx context.Context, p *model.StocktakeParticipant) error
	RemoveParticipant(ctx context.Context, id uuid.UUID) error

	ListMeetingDocs(ctx context.Context, plantID string, year int) ([]model.StocktakeMeetingDoc, error)
	AddMeetingDoc(ctx context.Context, doc *model.StocktakeMeetingDoc) error
}

type stocktakeRepository struct {
	db *gorm.DB
}

func NewStocktakeRepository(db *gorm.DB) StocktakeRepository {
	return &stocktakeRepository{db: db}
}

func (r *stocktakeRepository) FindYearConfig(ctx context.Context, plantID string, year int) (*model.StocktakeYearConfig, error) {
	var config model.StocktakeYearConfig
	err := GetDB(ctx, r.db).
		First(&config, "plant_id = ? AND stocktake_year = ?", plantID, year).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *stocktakeRepository) CreateYearConfig(ctx context.Context, config *model.StocktakeYearConfig) error {
	return GetDB(ctx, r.db).Create(config).Error
}

func (r *stocktakeRepository) UpdateYearConfig(ctx context.Context, config *model.StocktakeYearConfig) error {
	return GetDB(ctx, r.db).Save(config).Error
}

func (r *stocktakeRepository) FindRecord(ctx context.Context, plantID string, year int, assetNo string) (*model.StocktakeRecord, error) {
	var record model.StocktakeRecord
	err := GetDB(ctx, r.db).
		First(&record, "plant_id = ? AND stocktake_year = ? AND asset_no = ?", plantID, year, assetNo).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *stocktakeRepository) ListRecords(ctx context.Context, plantID string, year int) ([]model.StocktakeRecord, error) {
	var records []model.StocktakeRecord
	err := GetDB(ctx, r.db).
		Where("plant_id = ? AND stocktake_year = ?", plantID, year).
		Order("asset_no ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *stocktakeRepository) ListRecordsByStatus(ctx context.Context, plantID string, year int, statusCode string) ([]model.StocktakeRecord, error) {
	var records []model.StocktakeRecord
	err := GetDB(ctx, r.db).
		Where("plant_id = ? AND stocktake_year = ? AND status_code = ?", plantID, year, statusCode).
		Order("asset_no ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *stocktakeRepository) CreateRecord(ctx context.Context, record *model.StocktakeRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *stocktakeRepository) UpdateRecord(ctx context.Context, record *model.StocktakeRecord) error {
	return GetDB(ctx, r.db).Save(record).Error
}

func (r *stocktakeRepository) ListParticipants(ctx context.Context, plantID string, year int) ([]model.StocktakeParticipant, error) {
	var participants []model.StocktakeParticipant
	err := GetDB(ctx, r.db).
		Where("plant_id = ? AND stocktake_year = ?", plantID, year).
		Order("email ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *stocktakeRepository) AddParticipant(ctx context.Context, p *model.StocktakeParticipant) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *stocktakeRepository) RemoveParticipant(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.StocktakeParticipant{}, "id = ?", id).Error
}

func (r *stocktakeRepository) ListMeetingDocs(ctx context.Context, plantID string, year int) ([]model.StocktakeMeetingDoc, error) {
	var docs []model.StocktakeMeetingDoc
	err := GetDB(ctx, r.db).
		Where("plant_id = ? AND stocktake_year = ?", plantID, year).
		Order("uploaded_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *stocktakeRepository) AddMeetingDoc(ctx context.Context, doc *model.StocktakeMeetingDoc) error {
	return GetDB(ctx, r.db).Create(doc).Error
}
