package repository

import (
	"context"
	"errors"

	"github.com/oohgrid/reservation-service/internal/models"
	"gorm.io/gorm"
)

// SequenceRepository is the id allocator: tenant-scoped, monotonically issued
// numbers per kind. Each Next runs in its own transaction under a row lock,
// so a number handed out is burned even when the caller's workflow later
// fails. An orphaned number is acceptable, a duplicate is not.
type SequenceRepository interface {
	Next(ctx context.Context, tenantID, kind string) (int, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, tenantID, kind string) (int, error) {
	var value int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.TenantSequence
		err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("tenant_id = ? AND kind = ?", tenantID, kind).
			First(&seq).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			seq = models.TenantSequence{TenantID: tenantID, Kind: kind, Value: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
			value = seq.Value
			return nil
		}

		seq.Value++
		if err := tx.Model(&models.TenantSequence{}).
			Where("tenant_id = ? AND kind = ?", tenantID, kind).
			Update("value", seq.Value).Error; err != nil {
			return err
		}
		value = seq.Value
		return nil
	})

	return value, err
}
