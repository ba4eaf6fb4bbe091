package persistence

import (
	"context"

	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPartyRepository implements PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a party by ID
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, partner.ErrPartyNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a party
func (r *GormPartyRepository) Create(ctx context.Context, party *partner.Party) error {
	var model models.PartyModel
	model.FromDomain(party)
	return r.db.WithContext(ctx).Create(&model).Error
}

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// ListByParty returns the party's addresses oldest first
func (r *GormAddressRepository) ListByParty(ctx context.Context, partyID uuid.UUID) ([]partner.Address, error) {
	var addressModels []models.AddressModel
	if err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&addressModels).Error; err != nil {
		return nil, err
	}
	addresses := make([]partner.Address, len(addressModels))
	for i := range addressModels {
		addresses[i] = *addressModels[i].ToDomain()
	}
	return addresses, nil
}

// Create inserts an address
func (r *GormAddressRepository) Create(ctx context.Context, address *partner.Address) error {
	var model models.AddressModel
	model.FromDomain(address)
	return r.db.WithContext(ctx).Create(&model).Error
}

// GormContactMechanismRepository implements ContactMechanismRepository using GORM
type GormContactMechanismRepository struct {
	db *gorm.DB
}

// NewGormContactMechanismRepository creates a new GormContactMechanismRepository
func NewGormContactMechanismRepository(db *gorm.DB) *GormContactMechanismRepository {
	return &GormContactMechanismRepository{db: db}
}

// Find finds a party's contact mechanism by type and value
func (r *GormContactMechanismRepository) Find(ctx context.Context, partyID uuid.UUID, typ partner.ContactType, value string) (*partner.ContactMechanism, error) {
	var model models.ContactMechanismModel
	if err := r.db.WithContext(ctx).
		Where("party_id = ? AND type = ? AND value = ?", partyID, typ, value).
		First(&model).Error; err != nil {
		return nil, notFound(err, partner.ErrContactMechanismNotFound)
	}
	return model.ToDomain(), nil
}

// ListByParty lists a party's contact mechanisms
func (r *GormContactMechanismRepository) ListByParty(ctx context.Context, partyID uuid.UUID) ([]partner.ContactMechanism, error) {
	var mechanismModels []models.ContactMechanismModel
	if err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("type ASC").
		Order("value ASC").
		Find(&mechanismModels).Error; err != nil {
		return nil, err
	}
	mechanisms := make([]partner.ContactMechanism, len(mechanismModels))
	for i := range mechanismModels {
		mechanisms[i] = *mechanismModels[i].ToDomain()
	}
	return mechanisms, nil
}

// Create inserts a contact mechanism; an identical (party, type, value)
// row already present is kept.
func (r *GormContactMechanismRepository) Create(ctx context.Context, mechanism *partner.ContactMechanism) error {
	var model models.ContactMechanismModel
	model.FromDomain(mechanism)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model).Error
}

var (
	_ partner.PartyRepository            = (*GormPartyRepository)(nil)
	_ partner.AddressRepository          = (*GormAddressRepository)(nil)
	_ partner.ContactMechanismRepository = (*GormContactMechanismRepository)(nil)
)
