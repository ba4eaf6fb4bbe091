package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"
)

var (
	ErrSaleNotFound     = errors.New("trade: sale not found")
	ErrShipmentNotFound = errors.New("trade: shipment not found")
)

// SaleState is the workflow state of a sale
type SaleState string

const (
	SaleStateDraft      SaleState = "draft"
	SaleStateQuotation  SaleState = "quotation"
	SaleStateConfirmed  SaleState = "confirmed"
	SaleStateProcessing SaleState = "processing"
	SaleStateDone       SaleState = "done"
	SaleStateCanceled   SaleState = "canceled"
)

// Sale workflow events
const (
	EventQuote   = "quote"
	EventConfirm = "confirm"
	EventProcess = "process"
	EventFinish  = "finish"
	EventCancel  = "cancel"
)

var saleEvents = fsm.Events{
	{Name: EventQuote, Src: []string{string(SaleStateDraft)}, Dst: string(SaleStateQuotation)},
	{Name: EventConfirm, Src: []string{string(SaleStateQuotation)}, Dst: string(SaleStateConfirmed)},
	{Name: EventProcess, Src: []string{string(SaleStateConfirmed)}, Dst: string(SaleStateProcessing)},
	{Name: EventFinish, Src: []string{string(SaleStateProcessing)}, Dst: string(SaleStateDone)},
	{Name: EventCancel, Src: []string{
		string(SaleStateDraft),
		string(SaleStateQuotation),
		string(SaleStateConfirmed),
	}, Dst: string(SaleStateCanceled)},
}

// Trigger is the event that starts invoicing or shipping of a sale
type Trigger string

const (
	TriggerManual  Trigger = "manual"
	TriggerOrder   Trigger = "order"
	TriggerInvoice Trigger = "invoice"
)

// IsValid checks if the trigger is known
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerManual, TriggerOrder, TriggerInvoice:
		return true
	}
	return false
}

// Status is the externally visible progress of a sale, as exchanged with
// remote stores.
type Status string

const (
	StatusConfirmed    Status = "confirmed"
	StatusProcessing   Status = "processing"
	StatusShipmentSent Status = "shipment_sent"
	StatusCanceled     Status = "canceled"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusProcessing, StatusShipmentSent, StatusCanceled:
		return true
	}
	return false
}

// LineKind distinguishes product lines from synthetic ones
type LineKind string

const (
	LineKindProduct  LineKind = "product"
	LineKindShipping LineKind = "shipping"
	LineKindDiscount LineKind = "discount"
)

// SaleLine is one line of a sale
type SaleLine struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	Sequence    int
	Kind        LineKind
	VariantID   *uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// SaleException is an unresolved problem attached to a sale
type SaleException struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	Kind      string
	Message   string
	CreatedAt time.Time
}

// Sale is a customer order
type Sale struct {
	ID                uuid.UUID
	ChannelID         uuid.UUID
	Reference         string
	PartyID           uuid.UUID
	InvoiceAddressID  uuid.UUID
	ShipmentAddressID uuid.UUID
	CurrencyID        uuid.UUID
	Digits            int32
	SaleDate          time.Time
	State             SaleState
	InvoiceMethod     Trigger
	ShipmentMethod    Trigger
	Lines             []SaleLine
	Exceptions        []SaleException
	TotalAmount       decimal.Decimal
	// RemoteStateID is the remote order state last applied locally
	RemoteStateID int64
	// ExportedStateID is the remote order state last pushed to the remote store
	ExportedStateID int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewSale creates a draft sale
func NewSale(channelID, partyID, invoiceAddressID, shipmentAddressID, currencyID uuid.UUID, digits int32, reference string, saleDate time.Time) (*Sale, error) {
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "sale requires a party")
	}
	if currencyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "sale requires a currency")
	}
	if digits < 0 {
		return nil, shared.NewDomainError("INVALID_SALE", "currency digits cannot be negative")
	}
	now := time.Now().UTC()
	return &Sale{
		ID:                uuid.New(),
		ChannelID:         channelID,
		Reference:         strings.TrimSpace(reference),
		PartyID:           partyID,
		InvoiceAddressID:  invoiceAddressID,
		ShipmentAddressID: shipmentAddressID,
		CurrencyID:        currencyID,
		Digits:            digits,
		SaleDate:          saleDate.UTC(),
		State:             SaleStateDraft,
		InvoiceMethod:     TriggerOrder,
		ShipmentMethod:    TriggerOrder,
		TotalAmount:       decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// AddLine appends a line; the amount is rounded to the currency digits.
func (s *Sale) AddLine(kind LineKind, variantID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*SaleLine, error) {
	if s.State != SaleStateDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "lines can only be added to draft sales")
	}
	if kind == LineKindProduct && variantID == nil {
		return nil, shared.NewDomainError("INVALID_SALE_LINE", "product line requires a variant")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_SALE_LINE", "quantity must be positive")
	}
	line := SaleLine{
		ID:          uuid.New(),
		SaleID:      s.ID,
		Sequence:    len(s.Lines) + 1,
		Kind:        kind,
		VariantID:   variantID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice).Round(s.Digits),
	}
	s.Lines = append(s.Lines, line)
	s.recalculateTotal()
	return &s.Lines[len(s.Lines)-1], nil
}

func (s *Sale) recalculateTotal() {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Amount)
	}
	s.TotalAmount = total.Round(s.Digits)
}

// TotalMatches compares the computed total with a declared total at currency precision
func (s *Sale) TotalMatches(declared decimal.Decimal) bool {
	return s.TotalAmount.Round(s.Digits).Equal(declared.Round(s.Digits))
}

// AddException attaches an exception to the sale
func (s *Sale) AddException(kind, message string) *SaleException {
	exc := SaleException{
		ID:        uuid.New(),
		SaleID:    s.ID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.Exceptions = append(s.Exceptions, exc)
	return &s.Exceptions[len(s.Exceptions)-1]
}

// HasExceptions reports whether the sale carries unresolved exceptions
func (s *Sale) HasExceptions() bool {
	return len(s.Exceptions) > 0
}

// SetTriggers sets the invoice and shipment methods
func (s *Sale) SetTriggers(invoice, shipment Trigger) error {
	if !invoice.IsValid() || !shipment.IsValid() {
		return shared.NewDomainError("INVALID_TRIGGER", fmt.Sprintf("invalid triggers %q/%q", invoice, shipment))
	}
	if s.State != SaleStateDraft && s.State != SaleStateQuotation {
		return shared.NewDomainError("INVALID_STATE", "triggers can only change before confirmation")
	}
	s.InvoiceMethod = invoice
	s.ShipmentMethod = shipment
	return nil
}

// Can reports whether the workflow event is allowed from the current state
func (s *Sale) Can(event string) bool {
	return s.machine().Can(event)
}

// Quote moves a draft sale to quotation
func (s *Sale) Quote(ctx context.Context) error { return s.fire(ctx, EventQuote) }

// Confirm moves a quotation to confirmed
func (s *Sale) Confirm(ctx context.Context) error { return s.fire(ctx, EventConfirm) }

// Process starts processing a confirmed sale
func (s *Sale) Process(ctx context.Context) error { return s.fire(ctx, EventProcess) }

// Finish marks a processing sale as done
func (s *Sale) Finish(ctx context.Context) error { return s.fire(ctx, EventFinish) }

// Cancel cancels a sale that has not started processing
func (s *Sale) Cancel(ctx context.Context) error { return s.fire(ctx, EventCancel) }

func (s *Sale) machine() *fsm.FSM {
	return fsm.NewFSM(string(s.State), saleEvents, fsm.Callbacks{})
}

func (s *Sale) fire(ctx context.Context, event string) error {
	m := s.machine()
	if err := m.Event(ctx, event); err != nil {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("cannot %s sale %s in %s state", event, s.Reference, s.State)).WithCause(err)
	}
	s.State = SaleState(m.Current())
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Status derives the exchangeable status of the sale from its state and
// shipments. Draft and quotation sales have none.
func (s *Sale) Status(shipments []Shipment) (Status, bool) {
	switch s.State {
	case SaleStateCanceled:
		return StatusCanceled, true
	case SaleStateConfirmed:
		return StatusConfirmed, true
	case SaleStateProcessing, SaleStateDone:
		if len(shipments) == 0 {
			return StatusProcessing, true
		}
		for _, sh := range shipments {
			if sh.State != ShipmentStateSent {
				return StatusProcessing, true
			}
		}
		return StatusShipmentSent, true
	}
	return "", false
}
