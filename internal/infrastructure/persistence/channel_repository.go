package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChannelRepository implements ChannelRepository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// FindByID finds a channel by its ID
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a channel by its unique name
func (r *GormChannelRepository) FindByName(ctx context.Context, name string) (*integration.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns every channel ordered by name
func (r *GormChannelRepository) List(ctx context.Context) ([]integration.Channel, error) {
	return r.list(r.db.WithContext(ctx))
}

// ListEnabled returns the channels the scheduler should run
func (r *GormChannelRepository) ListEnabled(ctx context.Context) ([]integration.Channel, error) {
	return r.list(r.db.WithContext(ctx).Where("enabled = ?", true))
}

func (r *GormChannelRepository) list(q *gorm.DB) ([]integration.Channel, error) {
	var channelModels []models.ChannelModel
	if err := q.Order("name ASC").Find(&channelModels).Error; err != nil {
		return nil, err
	}
	channels := make([]integration.Channel, len(channelModels))
	for i := range channelModels {
		channels[i] = *channelModels[i].ToDomain()
	}
	return channels, nil
}

// Create inserts a new channel
func (r *GormChannelRepository) Create(ctx context.Context, channel *integration.Channel) error {
	var model models.ChannelModel
	model.FromDomain(channel)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("channel %q: %w", channel.Name, err)
		}
		return err
	}
	channel.CreatedAt = model.CreatedAt
	channel.UpdatedAt = model.UpdatedAt
	return nil
}

// Save writes the configuration fields of a channel
func (r *GormChannelRepository) Save(ctx context.Context, channel *integration.Channel) error {
	result := r.db.WithContext(ctx).
		Model(&models.ChannelModel{}).
		Where("id = ?", channel.ID).
		Updates(map[string]any{
			"name":                channel.Name,
			"base_url":            channel.BaseURL,
			"webservice_key":      channel.Key,
			"timezone":            channel.Timezone,
			"currency_id":         channel.CurrencyID,
			"warehouse_code":      channel.WarehouseCode,
			"shipping_variant_id": channel.ShippingVariantID,
			"enabled":             channel.Enabled,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrChannelNotFound
	}
	return nil
}

// UpdateCursor writes the cursor column of one direction. updated_at is
// left alone so concurrent configuration edits are not clobbered.
func (r *GormChannelRepository) UpdateCursor(ctx context.Context, channelID uuid.UUID, dir integration.Direction, at time.Time) error {
	var column string
	switch dir {
	case integration.DirectionImport:
		column = "last_order_import_time"
	case integration.DirectionExport:
		column = "last_order_export_time"
	default:
		return fmt.Errorf("unknown sync direction %q", dir)
	}

	result := r.db.WithContext(ctx).
		Model(&models.ChannelModel{}).
		Where("id = ?", channelID).
		UpdateColumn(column, at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return integration.ErrChannelNotFound
	}
	return nil
}

var _ integration.ChannelRepository = (*GormChannelRepository)(nil)
