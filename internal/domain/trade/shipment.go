package trade

import (
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
)

// ShipmentState is the state of an outbound shipment
type ShipmentState string

const (
	ShipmentStateWaiting ShipmentState = "waiting"
	ShipmentStateSent    ShipmentState = "sent"
)

// Shipment is the outbound delivery of a sale
type Shipment struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	State     ShipmentState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewShipment creates a waiting shipment for a sale
func NewShipment(saleID uuid.UUID) *Shipment {
	now := time.Now().UTC()
	return &Shipment{
		ID:        uuid.New(),
		SaleID:    saleID,
		State:     ShipmentStateWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkSent marks the shipment as handed to the carrier
func (s *Shipment) MarkSent() error {
	if s.State == ShipmentStateSent {
		return shared.NewDomainError("INVALID_STATE", "shipment already sent")
	}
	s.State = ShipmentStateSent
	s.UpdatedAt = time.Now().UTC()
	return nil
}
