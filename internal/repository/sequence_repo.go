package repository

import (
	"context"
	"fmt"
	"time"

	"easset/internal/model"

	"gorm.io/gorm"
)

// SequenceRepository hands out request numbers like "DM-2026-00042". The
// counter row is bumped with an atomic UPDATE inside the caller's transaction,
// so numbers stay gapless and unique even when drafts are later deleted.
type SequenceRepository interface {
	NextRequestNo(ctx context.Context, kind string) (string, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) NextRequestNo(ctx context.Context, kind string) (string, error) {
	db := GetDB(ctx, r.db)
	prefix := fmt.Sprintf("%s-%d", kind, time.Now().Year())

	res := db.Model(&model.RequestSequence{}).
		Where("prefix = ?", prefix).
		Update("last_no", gorm.Expr("last_no + 1"))
	if res.Error != nil {
		return "", fmt.Errorf("failed to advance sequence %s: %w", prefix, res.Error)
	}
	if res.RowsAffected == 0 {
		if err := db.Create(&model.RequestSequence{Prefix: prefix, LastNo: 1}).Error; err != nil {
			return "", fmt.Errorf("failed to create sequence %s: %w", prefix, err)
		}
	}

	var seq model.RequestSequence
	if err := db.First(&seq, "prefix = ?", prefix).Error; err != nil {
		return "", fmt.Errorf("failed to read sequence %s: %w", prefix, err)
	}

	return fmt.Sprintf("%s-%05d", prefix, seq.LastNo), nil
}
