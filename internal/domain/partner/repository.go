package partner

import (
	"context"

	"github.com/google/uuid"
)

// PartyRepository persists parties
type PartyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)
	Create(ctx context.Context, party *Party) error
}

// AddressRepository persists addresses
type AddressRepository interface {
	// ListByParty returns the party's addresses oldest first
	ListByParty(ctx context.Context, partyID uuid.UUID) ([]Address, error)
	Create(ctx context.Context, address *Address) error
}

// ContactMechanismRepository persists contact mechanisms
type ContactMechanismRepository interface {
	Find(ctx context.Context, partyID uuid.UUID, typ ContactType, value string) (*ContactMechanism, error)
	ListByParty(ctx context.Context, partyID uuid.UUID) ([]ContactMechanism, error)
	Create(ctx context.Context, mechanism *ContactMechanism) error
}
