package partner

import (
	"errors"
	"strings"
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrPartyNotFound            = errors.New("partner: party not found")
	ErrContactMechanismNotFound = errors.New("partner: contact mechanism not found")
)

// Party is a customer imported from a remote store
type Party struct {
	ID         uuid.UUID
	Name       string
	LanguageID *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewParty creates a party with the given display name
func NewParty(name string, languageID *uuid.UUID) (*Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PARTY", "party name is required")
	}
	now := time.Now().UTC()
	return &Party{
		ID:         uuid.New(),
		Name:       name,
		LanguageID: languageID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// DisplayName joins a first and last name with a single space
func DisplayName(firstName, lastName string) string {
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// ContactType is the kind of a contact mechanism
type ContactType string

const (
	ContactEmail  ContactType = "email"
	ContactPhone  ContactType = "phone"
	ContactMobile ContactType = "mobile"
)

// ContactMechanism is a way to reach a party. The (party, type, value)
// triple is unique.
type ContactMechanism struct {
	ID        uuid.UUID
	PartyID   uuid.UUID
	Type      ContactType
	Value     string
	CreatedAt time.Time
}

// NewContactMechanism returns nil, nil when value is blank; there is nothing to record.
func NewContactMechanism(partyID uuid.UUID, typ ContactType, value string) (*ContactMechanism, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	switch typ {
	case ContactEmail, ContactPhone, ContactMobile:
	default:
		return nil, shared.NewDomainError("INVALID_CONTACT_TYPE", "unsupported contact type: "+string(typ))
	}
	return &ContactMechanism{
		ID:        uuid.New(),
		PartyID:   partyID,
		Type:      typ,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}, nil
}
