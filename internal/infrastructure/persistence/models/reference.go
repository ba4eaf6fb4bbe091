package models

import (
	"github.com/erp/storesync/internal/domain/reference"
	"github.com/google/uuid"
)

// CountryModel is the persistence model for Country.
type CountryModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Code string    `gorm:"type:varchar(2);not null;uniqueIndex:uq_country_code"`
	Name string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (CountryModel) TableName() string { return "countries" }

// ToDomain converts the model to a domain Country
func (m *CountryModel) ToDomain() *reference.Country {
	return &reference.Country{ID: m.ID, Code: m.Code, Name: m.Name}
}

// SubdivisionModel is the persistence model for Subdivision.
type SubdivisionModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CountryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_subdivision_code,priority:1"`
	Code      string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_subdivision_code,priority:2"`
	Name      string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (SubdivisionModel) TableName() string { return "subdivisions" }

// ToDomain converts the model to a domain Subdivision
func (m *SubdivisionModel) ToDomain() *reference.Subdivision {
	return &reference.Subdivision{ID: m.ID, CountryID: m.CountryID, Code: m.Code, Name: m.Name}
}

// CurrencyModel is the persistence model for Currency.
type CurrencyModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	Code   string    `gorm:"type:varchar(3);not null;uniqueIndex:uq_currency_code"`
	Name   string    `gorm:"type:varchar(100);not null"`
	Digits int32     `gorm:"not null;default:2"`
}

// TableName returns the table name for GORM
func (CurrencyModel) TableName() string { return "currencies" }

// ToDomain converts the model to a domain Currency
func (m *CurrencyModel) ToDomain() *reference.Currency {
	return &reference.Currency{ID: m.ID, Code: m.Code, Name: m.Name, Digits: m.Digits}
}

// LanguageModel is the persistence model for Language.
type LanguageModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Code string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_language_code"`
	Name string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (LanguageModel) TableName() string { return "languages" }

// ToDomain converts the model to a domain Language
func (m *LanguageModel) ToDomain() *reference.Language {
	return &reference.Language{ID: m.ID, Code: m.Code, Name: m.Name}
}
