package models

import (
	"time"

	"github.com/erp/storesync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate.
type SaleModel struct {
	ID                uuid.UUID            `gorm:"type:uuid;primary_key"`
	ChannelID         uuid.UUID            `gorm:"type:uuid;not null;index:idx_sale_channel_updated,priority:1"`
	Reference         string               `gorm:"type:varchar(50);not null;default:''"`
	PartyID           uuid.UUID            `gorm:"type:uuid;not null;index:idx_sale_party"`
	InvoiceAddressID  uuid.UUID            `gorm:"type:uuid;not null"`
	ShipmentAddressID uuid.UUID            `gorm:"type:uuid;not null"`
	CurrencyID        uuid.UUID            `gorm:"type:uuid;not null"`
	Digits            int32                `gorm:"not null;default:2"`
	SaleDate          time.Time            `gorm:"not null"`
	State             trade.SaleState      `gorm:"type:varchar(20);not null;default:'draft'"`
	InvoiceMethod     trade.Trigger        `gorm:"type:varchar(20);not null"`
	ShipmentMethod    trade.Trigger        `gorm:"type:varchar(20);not null"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	RemoteStateID     int64                `gorm:"not null;default:0"`
	ExportedStateID   int64                `gorm:"not null;default:0"`
	Lines             []SaleLineModel      `gorm:"foreignKey:SaleID;references:ID"`
	Exceptions        []SaleExceptionModel `gorm:"foreignKey:SaleID;references:ID"`
	CreatedAt         time.Time            `gorm:"not null"`
	UpdatedAt         time.Time            `gorm:"not null;index:idx_sale_channel_updated,priority:2"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string { return "sales" }

// ToDomain converts the model to a domain Sale
func (m *SaleModel) ToDomain() *trade.Sale {
	sale := &trade.Sale{
		ID:                m.ID,
		ChannelID:         m.ChannelID,
		Reference:         m.Reference,
		PartyID:           m.PartyID,
		InvoiceAddressID:  m.InvoiceAddressID,
		ShipmentAddressID: m.ShipmentAddressID,
		CurrencyID:        m.CurrencyID,
		Digits:            m.Digits,
		SaleDate:          m.SaleDate.UTC(),
		State:             m.State,
		InvoiceMethod:     m.InvoiceMethod,
		ShipmentMethod:    m.ShipmentMethod,
		TotalAmount:       m.TotalAmount,
		RemoteStateID:     m.RemoteStateID,
		ExportedStateID:   m.ExportedStateID,
		Lines:             make([]trade.SaleLine, len(m.Lines)),
		Exceptions:        make([]trade.SaleException, len(m.Exceptions)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for i := range m.Lines {
		sale.Lines[i] = m.Lines[i].ToDomain()
	}
	for i := range m.Exceptions {
		sale.Exceptions[i] = m.Exceptions[i].ToDomain()
	}
	return sale
}

// FromDomain populates the model (header and lines) from a domain Sale
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.ID = s.ID
	m.ChannelID = s.ChannelID
	m.Reference = s.Reference
	m.PartyID = s.PartyID
	m.InvoiceAddressID = s.InvoiceAddressID
	m.ShipmentAddressID = s.ShipmentAddressID
	m.CurrencyID = s.CurrencyID
	m.Digits = s.Digits
	m.SaleDate = s.SaleDate
	m.State = s.State
	m.InvoiceMethod = s.InvoiceMethod
	m.ShipmentMethod = s.ShipmentMethod
	m.TotalAmount = s.TotalAmount
	m.RemoteStateID = s.RemoteStateID
	m.ExportedStateID = s.ExportedStateID
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
	m.Lines = make([]SaleLineModel, len(s.Lines))
	for i := range s.Lines {
		m.Lines[i].FromDomain(&s.Lines[i])
	}
	m.Exceptions = make([]SaleExceptionModel, len(s.Exceptions))
	for i := range s.Exceptions {
		m.Exceptions[i].FromDomain(&s.Exceptions[i])
	}
}

// SaleLineModel is the persistence model for SaleLine.
type SaleLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_sale_line_sale"`
	Sequence    int             `gorm:"not null"`
	Kind        trade.LineKind  `gorm:"type:varchar(20);not null"`
	VariantID   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"type:varchar(255);not null;default:''"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleLineModel) TableName() string { return "sale_lines" }

// ToDomain converts the model to a domain SaleLine
func (m *SaleLineModel) ToDomain() trade.SaleLine {
	return trade.SaleLine{
		ID:          m.ID,
		SaleID:      m.SaleID,
		Sequence:    m.Sequence,
		Kind:        m.Kind,
		VariantID:   m.VariantID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Amount:      m.Amount,
	}
}

// FromDomain populates the model from a domain SaleLine
func (m *SaleLineModel) FromDomain(l *trade.SaleLine) {
	m.ID = l.ID
	m.SaleID = l.SaleID
	m.Sequence = l.Sequence
	m.Kind = l.Kind
	m.VariantID = l.VariantID
	m.Description = l.Description
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.Amount = l.Amount
}

// SaleExceptionModel is the persistence model for SaleException.
type SaleExceptionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index:idx_sale_exception_sale"`
	Kind      string    `gorm:"type:varchar(50);not null"`
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleExceptionModel) TableName() string { return "sale_exceptions" }

// ToDomain converts the model to a domain SaleException
func (m *SaleExceptionModel) ToDomain() trade.SaleException {
	return trade.SaleException{ID: m.ID, SaleID: m.SaleID, Kind: m.Kind, Message: m.Message, CreatedAt: m.CreatedAt}
}

// FromDomain populates the model from a domain SaleException
func (m *SaleExceptionModel) FromDomain(e *trade.SaleException) {
	m.ID = e.ID
	m.SaleID = e.SaleID
	m.Kind = e.Kind
	m.Message = e.Message
	m.CreatedAt = e.CreatedAt
}

// ShipmentModel is the persistence model for Shipment.
type ShipmentModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID           `gorm:"type:uuid;not null;index:idx_shipment_sale"`
	State     trade.ShipmentState `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time           `gorm:"not null"`
	UpdatedAt time.Time           `gorm:"not null;index:idx_shipment_updated"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string { return "shipments" }

// ToDomain converts the model to a domain Shipment
func (m *ShipmentModel) ToDomain() *trade.Shipment {
	return &trade.Shipment{ID: m.ID, SaleID: m.SaleID, State: m.State, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// FromDomain populates the model from a domain Shipment
func (m *ShipmentModel) FromDomain(s *trade.Shipment) {
	m.ID = s.ID
	m.SaleID = s.SaleID
	m.State = s.State
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}
