package integration

import (
	"errors"
	"time"

	"github.com/erp/storesync/internal/domain/trade"
	"github.com/google/uuid"
)

var (
	ErrStateMappingNotFound       = errors.New("integration: order state mapping not found")
	ErrStateMappingInvalidStatus  = errors.New("integration: invalid local status")
	ErrStateMappingInvalidTrigger = errors.New("integration: invalid trigger")
)

// RemoteStateMapping translates one remote order state of a channel into
// a local sale status and the invoice/shipment triggers. It is created by
// the order state import and may be edited afterwards.
type RemoteStateMapping struct {
	ID            uuid.UUID
	ChannelID     uuid.UUID
	RemoteStateID int64
	// DisplayNames holds the remote name per local language code
	DisplayNames    map[string]string
	LocalStatus     trade.Status
	InvoiceTrigger  trade.Trigger
	ShipmentTrigger trade.Trigger
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRemoteStateMapping creates a mapping whose status and triggers are
// derived from the remote state's English name.
func NewRemoteStateMapping(channelID uuid.UUID, remoteStateID int64, displayNames map[string]string, englishName string) (*RemoteStateMapping, error) {
	if channelID == uuid.Nil {
		return nil, ErrLinkInvalidChannel
	}
	if remoteStateID <= 0 {
		return nil, ErrLinkInvalidRemoteID
	}
	status, invoice, shipment := DefaultStateMapping(englishName)
	names := make(map[string]string, len(displayNames))
	for code, name := range displayNames {
		names[code] = name
	}
	now := time.Now().UTC()
	return &RemoteStateMapping{
		ID:              uuid.New(),
		ChannelID:       channelID,
		RemoteStateID:   remoteStateID,
		DisplayNames:    names,
		LocalStatus:     status,
		InvoiceTrigger:  invoice,
		ShipmentTrigger: shipment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// DefaultStateMapping is the built-in heuristic keyed by the exact English
// name of a PrestaShop order state.
func DefaultStateMapping(englishName string) (trade.Status, trade.Trigger, trade.Trigger) {
	switch englishName {
	case "Shipped", "Delivered":
		return trade.StatusShipmentSent, trade.TriggerManual, trade.TriggerManual
	case "Canceled":
		return trade.StatusCanceled, trade.TriggerManual, trade.TriggerManual
	case "Payment accepted", "Remote payment accepted":
		return trade.StatusProcessing, trade.TriggerOrder, trade.TriggerInvoice
	case "Preparation in progress", "Processing in progress":
		return trade.StatusProcessing, trade.TriggerOrder, trade.TriggerOrder
	}
	return trade.StatusConfirmed, trade.TriggerOrder, trade.TriggerOrder
}

// Override replaces the heuristic values
func (m *RemoteStateMapping) Override(status trade.Status, invoice, shipment trade.Trigger) error {
	if !status.IsValid() {
		return ErrStateMappingInvalidStatus
	}
	if !invoice.IsValid() || !shipment.IsValid() {
		return ErrStateMappingInvalidTrigger
	}
	m.LocalStatus = status
	m.InvoiceTrigger = invoice
	m.ShipmentTrigger = shipment
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// Name returns the display name in the given language, if known
func (m *RemoteStateMapping) Name(languageCode string) string {
	return m.DisplayNames[languageCode]
}
