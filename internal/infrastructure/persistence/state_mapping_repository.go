package persistence

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/trade"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStateMappingRepository implements StateMappingRepository using GORM
type GormStateMappingRepository struct {
	db *gorm.DB
}

// NewGormStateMappingRepository creates a new GormStateMappingRepository
func NewGormStateMappingRepository(db *gorm.DB) *GormStateMappingRepository {
	return &GormStateMappingRepository{db: db}
}

// FindByRemoteState finds the mapping of a remote order state
func (r *GormStateMappingRepository) FindByRemoteState(ctx context.Context, channelID uuid.UUID, remoteStateID int64) (*integration.RemoteStateMapping, error) {
	var model models.StateMappingModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND remote_state_id = ?", channelID, remoteStateID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrStateMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLocalStatus returns the lowest remote state mapped to the status
func (r *GormStateMappingRepository) FindByLocalStatus(ctx context.Context, channelID uuid.UUID, status trade.Status) (*integration.RemoteStateMapping, error) {
	var model models.StateMappingModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND local_status = ?", channelID, status).
		Order("remote_state_id ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrStateMappingNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByChannel lists a channel's mappings ordered by remote state id
func (r *GormStateMappingRepository) ListByChannel(ctx context.Context, channelID uuid.UUID) ([]integration.RemoteStateMapping, error) {
	var mappingModels []models.StateMappingModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("remote_state_id ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}
	mappings := make([]integration.RemoteStateMapping, len(mappingModels))
	for i := range mappingModels {
		mappings[i] = *mappingModels[i].ToDomain()
	}
	return mappings, nil
}

// Count counts a channel's mappings
func (r *GormStateMappingRepository) Count(ctx context.Context, channelID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StateMappingModel{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}

// Create stores a mapping unless the remote state is already mapped
func (r *GormStateMappingRepository) Create(ctx context.Context, mapping *integration.RemoteStateMapping) (bool, error) {
	var model models.StateMappingModel
	model.FromDomain(mapping)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Save writes the user-editable fields of a mapping
func (r *GormStateMappingRepository) Save(ctx context.Context, mapping *integration.RemoteStateMapping) error {
	var model models.StateMappingModel
	model.FromDomain(mapping)
	result := r.db.WithContext(ctx).
		Model(&model).
		Select("display_names", "local_status", "invoice_trigger", "shipment_trigger", "updated_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrStateMappingNotFound
	}
	return nil
}

var _ integration.StateMappingRepository = (*GormStateMappingRepository)(nil)
