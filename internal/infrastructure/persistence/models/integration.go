package models

import (
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/trade"
	"github.com/google/uuid"
)

// ChannelModel is the persistence model for the Channel entity.
type ChannelModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name                string     `gorm:"type:varchar(100);not null;uniqueIndex:uq_channel_name"`
	BaseURL             string     `gorm:"type:varchar(255);not null;default:''"`
	Key                 string     `gorm:"column:webservice_key;type:varchar(255);not null;default:''"`
	Timezone            string     `gorm:"type:varchar(64);not null;default:'UTC'"`
	CurrencyID          *uuid.UUID `gorm:"type:uuid"`
	WarehouseCode       string     `gorm:"type:varchar(50);not null;default:''"`
	ShippingVariantID   *uuid.UUID `gorm:"type:uuid"`
	Enabled             bool       `gorm:"not null;default:true"`
	LastOrderImportTime *time.Time
	LastOrderExportTime *time.Time
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string {
	return "integration_channels"
}

// ToDomain converts the model to a domain Channel
func (m *ChannelModel) ToDomain() *integration.Channel {
	return &integration.Channel{
		ID:                  m.ID,
		Name:                m.Name,
		BaseURL:             m.BaseURL,
		Key:                 m.Key,
		Timezone:            m.Timezone,
		CurrencyID:          m.CurrencyID,
		WarehouseCode:       m.WarehouseCode,
		ShippingVariantID:   m.ShippingVariantID,
		Enabled:             m.Enabled,
		LastOrderImportTime: utcPtr(m.LastOrderImportTime),
		LastOrderExportTime: utcPtr(m.LastOrderExportTime),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain Channel
func (m *ChannelModel) FromDomain(c *integration.Channel) {
	m.ID = c.ID
	m.Name = c.Name
	m.BaseURL = c.BaseURL
	m.Key = c.Key
	m.Timezone = c.Timezone
	m.CurrencyID = c.CurrencyID
	m.WarehouseCode = c.WarehouseCode
	m.ShippingVariantID = c.ShippingVariantID
	m.Enabled = c.Enabled
	m.LastOrderImportTime = c.LastOrderImportTime
	m.LastOrderExportTime = c.LastOrderExportTime
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// RemoteLinkModel is the identity mapping table.
type RemoteLinkModel struct {
	ID        uuid.UUID            `gorm:"type:uuid;primary_key"`
	Kind      integration.LinkKind `gorm:"type:varchar(20);not null;uniqueIndex:uq_remote_link,priority:1;index:idx_remote_link_local,priority:1"`
	ChannelID uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:uq_remote_link,priority:2;index:idx_remote_link_local,priority:2"`
	RemoteID  int64                `gorm:"not null;uniqueIndex:uq_remote_link,priority:3"`
	LocalID   uuid.UUID            `gorm:"type:uuid;not null;index:idx_remote_link_local,priority:3"`
	CreatedAt time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RemoteLinkModel) TableName() string {
	return "integration_remote_links"
}

// ToDomain converts the model to a domain RemoteLink
func (m *RemoteLinkModel) ToDomain() *integration.RemoteLink {
	return &integration.RemoteLink{
		ID:        m.ID,
		Kind:      m.Kind,
		ChannelID: m.ChannelID,
		RemoteID:  m.RemoteID,
		LocalID:   m.LocalID,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the model from a domain RemoteLink
func (m *RemoteLinkModel) FromDomain(l *integration.RemoteLink) {
	m.ID = l.ID
	m.Kind = l.Kind
	m.ChannelID = l.ChannelID
	m.RemoteID = l.RemoteID
	m.LocalID = l.LocalID
	m.CreatedAt = l.CreatedAt
}

// StateMappingModel is the persistence model for RemoteStateMapping.
type StateMappingModel struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key"`
	ChannelID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uq_state_mapping,priority:1;index:idx_state_mapping_status,priority:1"`
	RemoteStateID   int64             `gorm:"not null;uniqueIndex:uq_state_mapping,priority:2"`
	DisplayNames    map[string]string `gorm:"type:jsonb;serializer:json"`
	LocalStatus     trade.Status      `gorm:"type:varchar(20);not null;index:idx_state_mapping_status,priority:2"`
	InvoiceTrigger  trade.Trigger     `gorm:"type:varchar(20);not null"`
	ShipmentTrigger trade.Trigger     `gorm:"type:varchar(20);not null"`
	CreatedAt       time.Time         `gorm:"not null"`
	UpdatedAt       time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StateMappingModel) TableName() string {
	return "integration_state_mappings"
}

// ToDomain converts the model to a domain RemoteStateMapping
func (m *StateMappingModel) ToDomain() *integration.RemoteStateMapping {
	names := make(map[string]string, len(m.DisplayNames))
	for k, v := range m.DisplayNames {
		names[k] = v
	}
	return &integration.RemoteStateMapping{
		ID:              m.ID,
		ChannelID:       m.ChannelID,
		RemoteStateID:   m.RemoteStateID,
		DisplayNames:    names,
		LocalStatus:     m.LocalStatus,
		InvoiceTrigger:  m.InvoiceTrigger,
		ShipmentTrigger: m.ShipmentTrigger,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain RemoteStateMapping
func (m *StateMappingModel) FromDomain(s *integration.RemoteStateMapping) {
	m.ID = s.ID
	m.ChannelID = s.ChannelID
	m.RemoteStateID = s.RemoteStateID
	m.DisplayNames = s.DisplayNames
	m.LocalStatus = s.LocalStatus
	m.InvoiceTrigger = s.InvoiceTrigger
	m.ShipmentTrigger = s.ShipmentTrigger
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
