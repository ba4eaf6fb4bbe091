package models

import (
	"time"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TemplateModel is the persistence model for Template.
type TemplateModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	Code         string          `gorm:"type:varchar(100);not null;default:'';index:idx_template_code"`
	Name         string          `gorm:"type:varchar(255);not null"`
	Description  string          `gorm:"type:text;not null;default:''"`
	LanguageCode string          `gorm:"type:varchar(10);not null;default:''"`
	ListPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TemplateModel) TableName() string { return "catalog_templates" }

// ToDomain converts the model to a domain Template
func (m *TemplateModel) ToDomain() *catalog.Template {
	return &catalog.Template{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		LanguageCode: m.LanguageCode,
		ListPrice:    m.ListPrice,
		CostPrice:    m.CostPrice,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain Template
func (m *TemplateModel) FromDomain(t *catalog.Template) {
	m.ID = t.ID
	m.Code = t.Code
	m.Name = t.Name
	m.Description = t.Description
	m.LanguageCode = t.LanguageCode
	m.ListPrice = t.ListPrice
	m.CostPrice = t.CostPrice
	m.CreatedAt = t.CreatedAt
	m.UpdatedAt = t.UpdatedAt
}

// TemplateTranslationModel stores a translated template field.
type TemplateTranslationModel struct {
	TemplateID   uuid.UUID               `gorm:"type:uuid;primaryKey"`
	LanguageCode string                  `gorm:"type:varchar(10);primaryKey"`
	Field        catalog.TranslatedField `gorm:"type:varchar(20);primaryKey"`
	Value        string                  `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (TemplateTranslationModel) TableName() string { return "catalog_template_translations" }

// ToDomain converts the model to a domain TemplateTranslation
func (m *TemplateTranslationModel) ToDomain() catalog.TemplateTranslation {
	return catalog.TemplateTranslation{
		TemplateID:   m.TemplateID,
		LanguageCode: m.LanguageCode,
		Field:        m.Field,
		Value:        m.Value,
	}
}

// VariantModel is the persistence model for Variant.
type VariantModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TemplateID uuid.UUID `gorm:"type:uuid;not null;index:idx_variant_template"`
	Code       string    `gorm:"type:varchar(100);not null;default:''"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string { return "catalog_variants" }

// ToDomain converts the model to a domain Variant
func (m *VariantModel) ToDomain() *catalog.Variant {
	return &catalog.Variant{ID: m.ID, TemplateID: m.TemplateID, Code: m.Code, CreatedAt: m.CreatedAt}
}

// CombinationLinkModel links variants to remote combination ids.
// The partial index enforces channel-wide uniqueness of non-zero ids.
type CombinationLinkModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ChannelID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_combination_template,priority:1;uniqueIndex:uq_combination_channel,priority:1,where:combination_id <> 0"`
	TemplateID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_combination_template,priority:2"`
	VariantID     uuid.UUID `gorm:"type:uuid;not null;index:idx_combination_variant"`
	CombinationID int64     `gorm:"not null;uniqueIndex:uq_combination_template,priority:3;uniqueIndex:uq_combination_channel,priority:2,where:combination_id <> 0"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CombinationLinkModel) TableName() string { return "catalog_combination_links" }

// ToDomain converts the model to a domain CombinationLink
func (m *CombinationLinkModel) ToDomain() *catalog.CombinationLink {
	return &catalog.CombinationLink{
		ID:            m.ID,
		ChannelID:     m.ChannelID,
		TemplateID:    m.TemplateID,
		VariantID:     m.VariantID,
		CombinationID: m.CombinationID,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the model from a domain CombinationLink
func (m *CombinationLinkModel) FromDomain(l *catalog.CombinationLink) {
	m.ID = l.ID
	m.ChannelID = l.ChannelID
	m.TemplateID = l.TemplateID
	m.VariantID = l.VariantID
	m.CombinationID = l.CombinationID
	m.CreatedAt = l.CreatedAt
}
