package integration

import (
	"testing"

	"github.com/erp/storesync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStateMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   trade.Status
		invoice  trade.Trigger
		shipment trade.Trigger
	}{
		{"Shipped", trade.StatusShipmentSent, trade.TriggerManual, trade.TriggerManual},
		{"Delivered", trade.StatusShipmentSent, trade.TriggerManual, trade.TriggerManual},
		{"Canceled", trade.StatusCanceled, trade.TriggerManual, trade.TriggerManual},
		{"Payment accepted", trade.StatusProcessing, trade.TriggerOrder, trade.TriggerInvoice},
		{"Remote payment accepted", trade.StatusProcessing, trade.TriggerOrder, trade.TriggerInvoice},
		{"Preparation in progress", trade.StatusProcessing, trade.TriggerOrder, trade.TriggerOrder},
		{"Processing in progress", trade.StatusProcessing, trade.TriggerOrder, trade.TriggerOrder},
		{"Awaiting check payment", trade.StatusConfirmed, trade.TriggerOrder, trade.TriggerOrder},
		{"shipped", trade.StatusConfirmed, trade.TriggerOrder, trade.TriggerOrder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, invoice, shipment := DefaultStateMapping(tt.name)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.invoice, invoice)
			assert.Equal(t, tt.shipment, shipment)
		})
	}
}

func TestRemoteStateMapping(t *testing.T) {
	names := map[string]string{"en_US": "Shipped", "fr_FR": "Expédié"}
	m, err := NewRemoteStateMapping(uuid.New(), 4, names, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusShipmentSent, m.LocalStatus)
	assert.Equal(t, "Expédié", m.Name("fr_FR"))

	names["de"] = "Versandt"
	assert.Empty(t, m.Name("de"), "display names are copied")

	require.NoError(t, m.Override(trade.StatusProcessing, trade.TriggerOrder, trade.TriggerOrder))
	assert.Equal(t, trade.StatusProcessing, m.LocalStatus)
	assert.ErrorIs(t, m.Override("lost", trade.TriggerOrder, trade.TriggerOrder), ErrStateMappingInvalidStatus)
	assert.ErrorIs(t, m.Override(trade.StatusProcessing, "never", trade.TriggerOrder), ErrStateMappingInvalidTrigger)

	_, err = NewRemoteStateMapping(uuid.Nil, 4, nil, "Shipped")
	assert.Error(t, err)
	_, err = NewRemoteStateMapping(uuid.New(), 0, nil, "Shipped")
	assert.Error(t, err)
}
