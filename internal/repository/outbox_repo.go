package repository

import (
	"context"

	"easset/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	EnqueueSync(ctx context.Context, entry *model.SapSyncOutbox) error
	FindSyncByID(ctx context.Context, id uuid.UUID) (*model.SapSyncOutbox, error)
	ListSync(ctx context.Context) ([]model.SapSyncOutbox, error)
	UpdateSync(ctx context.Context, entry *model.SapSyncOutbox) error

	EnqueueEmail(ctx context.Context, entry *model.EmailOutbox) error
	FindEmailByID(ctx context.Context, id uuid.UUID) (*model.EmailOutbox, error)
	ListEmail(ctx context.Context) ([]model.EmailOutbox, error)
	UpdateEmail(ctx context.Context, entry *model.EmailOutbox) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) EnqueueSync(ctx context.Context, entry *model.SapSyncOutbox) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *outboxRepository) FindSyncByID(ctx context.Context, id uuid.UUID) (*model.SapSyncOutbox, error) {
	var entry model.SapSyncOutbox
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *outboxRepository) ListSync(ctx context.Context) ([]model.SapSyncOutbox, error) {
	var entries []model.SapSyncOutbox
	if err := GetDB(ctx, r.db).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *outboxRepository) UpdateSync(ctx context.Context, entry *model.SapSyncOutbox) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *outboxRepository) EnqueueEmail(ctx context.Context, entry *model.EmailOutbox) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *outboxRepository) FindEmailByID(ctx context.Context, id uuid.UUID) (*model.EmailOutbox, error) {
	var entry model.EmailOutbox
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *outboxRepository) ListEmail(ctx context.Context) ([]model.EmailOutbox, error) {
	var entries []model.EmailOutbox
	if err := GetDB(ctx, r.db).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *outboxRepository) UpdateEmail(ctx context.Context, entry *model.EmailOutbox) error {
	return GetDB(ctx, r.db).Save(entry).Error
}
