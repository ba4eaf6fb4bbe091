package integration

import (
	"context"
	"errors"
	"time"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/domain/reference"
	"github.com/erp/storesync/internal/domain/trade"
	"github.com/google/uuid"
)

// ChannelRepository persists channels
type ChannelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Channel, error)
	FindByName(ctx context.Context, name string) (*Channel, error)
	List(ctx context.Context) ([]Channel, error)
	ListEnabled(ctx context.Context) ([]Channel, error)
	Create(ctx context.Context, channel *Channel) error
	// Save writes the configuration fields. Sync cursors are left untouched.
	Save(ctx context.Context, channel *Channel) error
	// UpdateCursor writes only the cursor column of the given direction
	UpdateCursor(ctx context.Context, channelID uuid.UUID, dir Direction, at time.Time) error
}

// RemoteLinkRepository is the identity mapping store
type RemoteLinkRepository interface {
	Find(ctx context.Context, kind LinkKind, channelID uuid.UUID, remoteID int64) (*RemoteLink, error)
	FindByLocal(ctx context.Context, kind LinkKind, channelID, localID uuid.UUID) (*RemoteLink, error)
	// Insert stores the link unless one already exists for its
	// (kind, channel, remote id); inserted is false in that case.
	Insert(ctx context.Context, link *RemoteLink) (inserted bool, err error)
	ListByKind(ctx context.Context, kind LinkKind, channelID uuid.UUID) ([]RemoteLink, error)
	CountByKind(ctx context.Context, kind LinkKind, channelID uuid.UUID) (int64, error)
}

// StateMappingRepository persists order state mappings
type StateMappingRepository interface {
	FindByRemoteState(ctx context.Context, channelID uuid.UUID, remoteStateID int64) (*RemoteStateMapping, error)
	// FindByLocalStatus returns the mapping with the lowest remote state id
	FindByLocalStatus(ctx context.Context, channelID uuid.UUID, status trade.Status) (*RemoteStateMapping, error)
	ListByChannel(ctx context.Context, channelID uuid.UUID) ([]RemoteStateMapping, error)
	Count(ctx context.Context, channelID uuid.UUID) (int64, error)
	// Create stores the mapping unless the remote state is already mapped
	Create(ctx context.Context, mapping *RemoteStateMapping) (inserted bool, err error)
	Save(ctx context.Context, mapping *RemoteStateMapping) error
}

// Repositories gives access to every store the engine writes, bound to one
// transaction when obtained from a TransactionScope.
type Repositories interface {
	Channels() ChannelRepository
	Links() RemoteLinkRepository
	StateMappings() StateMappingRepository
	References() reference.Repository
	Parties() partner.PartyRepository
	Addresses() partner.AddressRepository
	Contacts() partner.ContactMechanismRepository
	Templates() catalog.TemplateRepository
	Variants() catalog.VariantRepository
	Sales() trade.SaleRepository
	Shipments() trade.ShipmentRepository
}

// TransactionScope runs fn in a transaction. fn's error rolls it back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
	// Repositories returns repositories outside any transaction
	Repositories() Repositories
}

// ---------------------------------------------------------------------------
// Pass locking
// ---------------------------------------------------------------------------

var ErrPassLocked = errors.New("integration: another pass holds the lock")

// PassKey identifies an exclusive pass scope: one channel and one cursor
// (or reference-data import).
type PassKey struct {
	ChannelID uuid.UUID
	Scope     string
}

// String renders the key for lock backends
func (k PassKey) String() string {
	return k.ChannelID.String() + ":" + k.Scope
}

// PassLocker serializes passes sharing a key. Acquire does not wait: it
// returns ErrPassLocked while another pass holds the key.
type PassLocker interface {
	Acquire(ctx context.Context, key PassKey) (release func(), err error)
}
