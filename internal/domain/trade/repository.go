package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SaleRepository persists sales with their lines and exceptions
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	Create(ctx context.Context, sale *Sale) error
	// Save writes the sale header. Lines are immutable after creation.
	Save(ctx context.Context, sale *Sale) error
	AddException(ctx context.Context, exc *SaleException) error
	// ListChangedSince returns the channel's sales written at or after since,
	// or having a shipment written at or after since. A nil since lists all.
	ListChangedSince(ctx context.Context, channelID uuid.UUID, since *time.Time) ([]Sale, error)
	// RecordExportedState stores the pushed remote state without touching updated_at
	RecordExportedState(ctx context.Context, saleID uuid.UUID, remoteStateID int64) error
}

// ShipmentRepository persists shipments
type ShipmentRepository interface {
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]Shipment, error)
	Create(ctx context.Context, shipment *Shipment) error
	Save(ctx context.Context, shipment *Shipment) error
}
