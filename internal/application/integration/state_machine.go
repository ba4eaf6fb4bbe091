package integration

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderStateMachine drives local sales from remote order states and back
type OrderStateMachine struct {
	logger *zap.Logger
}

// NewOrderStateMachine creates an OrderStateMachine
func NewOrderStateMachine(logger *zap.Logger) *OrderStateMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderStateMachine{logger: logger}
}

// Apply moves the sale forward to the mapping's local status and saves it
// when anything changed. Transitions the sale workflow does not allow from
// its current state are skipped, so a refresh never moves a sale backward.
func (m *OrderStateMachine) Apply(ctx context.Context, scope Scope, sale *trade.Sale, mapping *integration.RemoteStateMapping) (changed bool, err error) {
	before := sale.State
	remoteBefore := sale.RemoteStateID

	if sale.State == trade.SaleStateDraft || sale.State == trade.SaleStateQuotation {
		if err := sale.SetTriggers(mapping.InvoiceTrigger, mapping.ShipmentTrigger); err != nil {
			return false, err
		}
	}
	sale.RemoteStateID = mapping.RemoteStateID

	if mapping.LocalStatus == trade.StatusCanceled {
		if err := m.cancel(ctx, scope, sale); err != nil {
			return false, err
		}
	} else if err := m.advance(ctx, scope, sale, mapping.LocalStatus); err != nil {
		return false, err
	}

	if sale.State == before && sale.RemoteStateID == remoteBefore {
		return false, nil
	}
	if err := scope.Repos.Sales().Save(ctx, sale); err != nil {
		return false, err
	}
	return true, nil
}

func (m *OrderStateMachine) cancel(ctx context.Context, scope Scope, sale *trade.Sale) error {
	if !sale.Can(trade.EventCancel) {
		if sale.State != trade.SaleStateCanceled {
			m.logger.Warn("remote cancellation ignored",
				zap.String("channel_id", scope.ChannelID().String()),
				zap.String("sale_id", sale.ID.String()),
				zap.String("state", string(sale.State)),
			)
		}
		return nil
	}
	return sale.Cancel(ctx)
}

func (m *OrderStateMachine) advance(ctx context.Context, scope Scope, sale *trade.Sale, status trade.Status) error {
	if sale.Can(trade.EventQuote) {
		if err := sale.Quote(ctx); err != nil {
			return err
		}
	}
	if sale.Can(trade.EventConfirm) {
		if err := sale.Confirm(ctx); err != nil {
			return err
		}
	}
	if status == trade.StatusConfirmed {
		return nil
	}

	if sale.Can(trade.EventProcess) {
		if err := sale.Process(ctx); err != nil {
			return err
		}
		if sale.ShipmentMethod == trade.TriggerOrder {
			if err := scope.Repos.Shipments().Create(ctx, trade.NewShipment(sale.ID)); err != nil {
				return err
			}
		}
	}
	if status == trade.StatusShipmentSent {
		return m.markShipped(ctx, scope, sale)
	}
	return nil
}

// markShipped marks the sale's waiting shipments as sent, creating one
// when the shipment trigger never did.
func (m *OrderStateMachine) markShipped(ctx context.Context, scope Scope, sale *trade.Sale) error {
	if sale.State != trade.SaleStateProcessing && sale.State != trade.SaleStateDone {
		return nil
	}
	shipments, err := scope.Repos.Shipments().ListBySale(ctx, sale.ID)
	if err != nil {
		return err
	}
	if len(shipments) == 0 {
		shipment := trade.NewShipment(sale.ID)
		if err := shipment.MarkSent(); err != nil {
			return err
		}
		return scope.Repos.Shipments().Create(ctx, shipment)
	}
	for i := range shipments {
		if shipments[i].State == trade.ShipmentStateSent {
			continue
		}
		if err := shipments[i].MarkSent(); err != nil {
			return err
		}
		if err := scope.Repos.Shipments().Save(ctx, &shipments[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReverseLookup returns the mapping to push for a local status: the one
// with the lowest remote state id. found is false when no remote state
// maps to it.
func (m *OrderStateMachine) ReverseLookup(ctx context.Context, scope Scope, status trade.Status) (mapping *integration.RemoteStateMapping, found bool, err error) {
	mapping, err = scope.Repos.StateMappings().FindByLocalStatus(ctx, scope.ChannelID(), status)
	if errors.Is(err, integration.ErrStateMappingNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return mapping, true, nil
}
