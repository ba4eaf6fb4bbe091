package persistence

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRemoteLinkRepository implements RemoteLinkRepository using GORM
type GormRemoteLinkRepository struct {
	db *gorm.DB
}

// NewGormRemoteLinkRepository creates a new GormRemoteLinkRepository
func NewGormRemoteLinkRepository(db *gorm.DB) *GormRemoteLinkRepository {
	return &GormRemoteLinkRepository{db: db}
}

// Find finds the link of a remote entity
func (r *GormRemoteLinkRepository) Find(ctx context.Context, kind integration.LinkKind, channelID uuid.UUID, remoteID int64) (*integration.RemoteLink, error) {
	var model models.RemoteLinkModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND channel_id = ? AND remote_id = ?", kind, channelID, remoteID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLocal finds the link of a local record. When a local record is
// linked more than once the lowest remote id wins.
func (r *GormRemoteLinkRepository) FindByLocal(ctx context.Context, kind integration.LinkKind, channelID, localID uuid.UUID) (*integration.RemoteLink, error) {
	var model models.RemoteLinkModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND channel_id = ? AND local_id = ?", kind, channelID, localID).
		Order("remote_id ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrLinkNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Insert stores a link. An existing link for the same remote entity is
// kept and reported through inserted=false; the statement never fails on
// the conflict, so the surrounding transaction stays usable.
func (r *GormRemoteLinkRepository) Insert(ctx context.Context, link *integration.RemoteLink) (bool, error) {
	var model models.RemoteLinkModel
	model.FromDomain(link)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByKind lists the channel's links of one kind ordered by remote id
func (r *GormRemoteLinkRepository) ListByKind(ctx context.Context, kind integration.LinkKind, channelID uuid.UUID) ([]integration.RemoteLink, error) {
	var linkModels []models.RemoteLinkModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND channel_id = ?", kind, channelID).
		Order("remote_id ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	links := make([]integration.RemoteLink, len(linkModels))
	for i := range linkModels {
		links[i] = *linkModels[i].ToDomain()
	}
	return links, nil
}

// CountByKind counts the channel's links of one kind
func (r *GormRemoteLinkRepository) CountByKind(ctx context.Context, kind integration.LinkKind, channelID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RemoteLinkModel{}).
		Where("kind = ? AND channel_id = ?", kind, channelID).
		Count(&count).Error
	return count, err
}

var _ integration.RemoteLinkRepository = (*GormRemoteLinkRepository)(nil)
