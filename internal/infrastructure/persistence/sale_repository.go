package persistence

import (
	"context"
	"time"

	"github.com/erp/storesync/internal/domain/trade"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Preload("Exceptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// FindByID finds a sale with its lines and exceptions
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	var model models.SaleModel
	if err := r.withChildren(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, trade.ErrSaleNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a sale with its lines and exceptions
func (r *GormSaleRepository) Create(ctx context.Context, sale *trade.Sale) error {
	var model models.SaleModel
	model.FromDomain(sale)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	sale.UpdatedAt = model.UpdatedAt
	return nil
}

// Save writes the sale header. exported_state_id belongs to the export
// pass and is only written by RecordExportedState.
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	var model models.SaleModel
	model.FromDomain(sale)
	result := r.db.WithContext(ctx).
		Model(&model).
		Omit(clause.Associations, "created_at", "exported_state_id").
		Select("*").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrSaleNotFound
	}
	sale.UpdatedAt = model.UpdatedAt
	return nil
}

// AddException stores an exception raised after the sale was created
func (r *GormSaleRepository) AddException(ctx context.Context, exc *trade.SaleException) error {
	var model models.SaleExceptionModel
	model.FromDomain(exc)
	return r.db.WithContext(ctx).Create(&model).Error
}

// ListChangedSince returns the channel's sales written at or after since,
// or having a shipment written at or after since. A nil since lists all.
func (r *GormSaleRepository) ListChangedSince(ctx context.Context, channelID uuid.UUID, since *time.Time) ([]trade.Sale, error) {
	q := r.withChildren(ctx).Where("channel_id = ?", channelID)
	if since != nil {
		shipped := r.db.WithContext(ctx).
			Model(&models.ShipmentModel{}).
			Select("sale_id").
			Where("updated_at >= ?", since.UTC())
		q = q.Where("(updated_at >= ? OR id IN (?))", since.UTC(), shipped)
	}

	var saleModels []models.SaleModel
	if err := q.Order("sale_date ASC").Order("id ASC").Find(&saleModels).Error; err != nil {
		return nil, err
	}
	sales := make([]trade.Sale, len(saleModels))
	for i := range saleModels {
		sales[i] = *saleModels[i].ToDomain()
	}
	return sales, nil
}

// RecordExportedState stores the pushed remote state without touching updated_at
func (r *GormSaleRepository) RecordExportedState(ctx context.Context, saleID uuid.UUID, remoteStateID int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.SaleModel{}).
		Where("id = ?", saleID).
		UpdateColumn("exported_state_id", remoteStateID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrSaleNotFound
	}
	return nil
}

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// ListBySale lists a sale's shipments oldest first
func (r *GormShipmentRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]trade.Shipment, error) {
	var shipmentModels []models.ShipmentModel
	if err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&shipmentModels).Error; err != nil {
		return nil, err
	}
	shipments := make([]trade.Shipment, len(shipmentModels))
	for i := range shipmentModels {
		shipments[i] = *shipmentModels[i].ToDomain()
	}
	return shipments, nil
}

// Create inserts a shipment
func (r *GormShipmentRepository) Create(ctx context.Context, shipment *trade.Shipment) error {
	var model models.ShipmentModel
	model.FromDomain(shipment)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Save writes a shipment's state
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *trade.Shipment) error {
	var model models.ShipmentModel
	model.FromDomain(shipment)
	result := r.db.WithContext(ctx).
		Model(&model).
		Select("state", "updated_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return trade.ErrShipmentNotFound
	}
	shipment.UpdatedAt = model.UpdatedAt
	return nil
}

var (
	_ trade.SaleRepository     = (*GormSaleRepository)(nil)
	_ trade.ShipmentRepository = (*GormShipmentRepository)(nil)
)
