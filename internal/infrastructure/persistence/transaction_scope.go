package persistence

import (
	"context"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/domain/reference"
	"github.com/erp/storesync/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. If fn returns an error
// the transaction is rolled back, otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos integration.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx})
	})
}

// Repositories returns repositories bound to the plain connection
func (s *GormTransactionScope) Repositories() integration.Repositories {
	return &gormRepositories{db: s.db}
}

// gormRepositories hands out repositories sharing one *gorm.DB, which is a
// transaction when obtained through Execute.
type gormRepositories struct {
	db *gorm.DB
}

func (r *gormRepositories) Channels() integration.ChannelRepository {
	return NewGormChannelRepository(r.db)
}

func (r *gormRepositories) Links() integration.RemoteLinkRepository {
	return NewGormRemoteLinkRepository(r.db)
}

func (r *gormRepositories) StateMappings() integration.StateMappingRepository {
	return NewGormStateMappingRepository(r.db)
}

func (r *gormRepositories) References() reference.Repository {
	return NewGormReferenceRepository(r.db)
}

func (r *gormRepositories) Parties() partner.PartyRepository {
	return NewGormPartyRepository(r.db)
}

func (r *gormRepositories) Addresses() partner.AddressRepository {
	return NewGormAddressRepository(r.db)
}

func (r *gormRepositories) Contacts() partner.ContactMechanismRepository {
	return NewGormContactMechanismRepository(r.db)
}

func (r *gormRepositories) Templates() catalog.TemplateRepository {
	return NewGormTemplateRepository(r.db)
}

func (r *gormRepositories) Variants() catalog.VariantRepository {
	return NewGormVariantRepository(r.db)
}

func (r *gormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.db)
}

func (r *gormRepositories) Shipments() trade.ShipmentRepository {
	return NewGormShipmentRepository(r.db)
}

var (
	_ integration.TransactionScope = (*GormTransactionScope)(nil)
	_ integration.Repositories     = (*gormRepositories)(nil)
)
