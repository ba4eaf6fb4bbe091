package models

import (
	"time"

	"github.com/erp/storesync/internal/domain/partner"
	"github.com/google/uuid"
)

// PartyModel is the persistence model for Party.
type PartyModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name       string     `gorm:"type:varchar(255);not null"`
	LanguageID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string { return "parties" }

// ToDomain converts the model to a domain Party
func (m *PartyModel) ToDomain() *partner.Party {
	return &partner.Party{
		ID:         m.ID,
		Name:       m.Name,
		LanguageID: m.LanguageID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain Party
func (m *PartyModel) FromDomain(p *partner.Party) {
	m.ID = p.ID
	m.Name = p.Name
	m.LanguageID = p.LanguageID
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// AddressModel is the persistence model for Address.
type AddressModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	PartyID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_address_party"`
	RemoteID      int64      `gorm:"not null;default:0"`
	Name          string     `gorm:"type:varchar(255);not null;default:''"`
	Street        string     `gorm:"type:varchar(255);not null;default:''"`
	StreetBis     string     `gorm:"type:varchar(255);not null;default:''"`
	Zip           string     `gorm:"type:varchar(20);not null;default:''"`
	City          string     `gorm:"type:varchar(100);not null;default:''"`
	CountryID     *uuid.UUID `gorm:"type:uuid"`
	SubdivisionID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string { return "party_addresses" }

// ToDomain converts the model to a domain Address
func (m *AddressModel) ToDomain() *partner.Address {
	return &partner.Address{
		ID:            m.ID,
		PartyID:       m.PartyID,
		RemoteID:      m.RemoteID,
		Name:          m.Name,
		Street:        m.Street,
		StreetBis:     m.StreetBis,
		Zip:           m.Zip,
		City:          m.City,
		CountryID:     m.CountryID,
		SubdivisionID: m.SubdivisionID,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the model from a domain Address
func (m *AddressModel) FromDomain(a *partner.Address) {
	m.ID = a.ID
	m.PartyID = a.PartyID
	m.RemoteID = a.RemoteID
	m.Name = a.Name
	m.Street = a.Street
	m.StreetBis = a.StreetBis
	m.Zip = a.Zip
	m.City = a.City
	m.CountryID = a.CountryID
	m.SubdivisionID = a.SubdivisionID
	m.CreatedAt = a.CreatedAt
}

// ContactMechanismModel is the persistence model for ContactMechanism.
type ContactMechanismModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key"`
	PartyID   uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:uq_contact_mechanism,priority:1"`
	Type      partner.ContactType `gorm:"type:varchar(20);not null;uniqueIndex:uq_contact_mechanism,priority:2"`
	Value     string              `gorm:"type:varchar(255);not null;uniqueIndex:uq_contact_mechanism,priority:3"`
	CreatedAt time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContactMechanismModel) TableName() string { return "party_contact_mechanisms" }

// ToDomain converts the model to a domain ContactMechanism
func (m *ContactMechanismModel) ToDomain() *partner.ContactMechanism {
	return &partner.ContactMechanism{
		ID:        m.ID,
		PartyID:   m.PartyID,
		Type:      m.Type,
		Value:     m.Value,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the model from a domain ContactMechanism
func (m *ContactMechanismModel) FromDomain(c *partner.ContactMechanism) {
	m.ID = c.ID
	m.PartyID = c.PartyID
	m.Type = c.Type
	m.Value = c.Value
	m.CreatedAt = c.CreatedAt
}
