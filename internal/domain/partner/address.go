package partner

import (
	"strings"
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Address is a postal address of a party.
//
// RemoteID is informational only. Remote stores may omit it or reuse it,
// so addresses are reconciled by comparing their fields (see Matches).
type Address struct {
	ID            uuid.UUID
	PartyID       uuid.UUID
	RemoteID      int64
	Name          string
	Street        string
	StreetBis     string
	Zip           string
	City          string
	CountryID     *uuid.UUID
	SubdivisionID *uuid.UUID
	CreatedAt     time.Time
}

// AddressFields are the fields that take part in structural matching
type AddressFields struct {
	Name          string
	Street        string
	StreetBis     string
	Zip           string
	City          string
	CountryID     *uuid.UUID
	SubdivisionID *uuid.UUID
}

// NormalizeText trims surrounding whitespace and applies Unicode NFC so that
// composed and decomposed forms compare equal.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Normalized returns a copy with every string field normalized
func (f AddressFields) Normalized() AddressFields {
	return AddressFields{
		Name:          NormalizeText(f.Name),
		Street:        NormalizeText(f.Street),
		StreetBis:     NormalizeText(f.StreetBis),
		Zip:           NormalizeText(f.Zip),
		City:          NormalizeText(f.City),
		CountryID:     f.CountryID,
		SubdivisionID: f.SubdivisionID,
	}
}

// NewAddress creates an address for a party from normalized fields
func NewAddress(partyID uuid.UUID, remoteID int64, fields AddressFields) (*Address, error) {
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "address must belong to a party")
	}
	if fields.SubdivisionID != nil && fields.CountryID == nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "subdivision requires a country")
	}
	f := fields.Normalized()
	return &Address{
		ID:            uuid.New(),
		PartyID:       partyID,
		RemoteID:      remoteID,
		Name:          f.Name,
		Street:        f.Street,
		StreetBis:     f.StreetBis,
		Zip:           f.Zip,
		City:          f.City,
		CountryID:     f.CountryID,
		SubdivisionID: f.SubdivisionID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Fields returns the matchable fields of the address
func (a *Address) Fields() AddressFields {
	return AddressFields{
		Name:          a.Name,
		Street:        a.Street,
		StreetBis:     a.StreetBis,
		Zip:           a.Zip,
		City:          a.City,
		CountryID:     a.CountryID,
		SubdivisionID: a.SubdivisionID,
	}
}

// Matches reports whether the address is structurally equal to candidate.
// A nil country or subdivision only matches a nil one.
func (a *Address) Matches(candidate AddressFields) bool {
	mine := a.Fields().Normalized()
	other := candidate.Normalized()
	return mine.Name == other.Name &&
		mine.Street == other.Street &&
		mine.StreetBis == other.StreetBis &&
		mine.Zip == other.Zip &&
		mine.City == other.City &&
		sameID(mine.CountryID, other.CountryID) &&
		sameID(mine.SubdivisionID, other.SubdivisionID)
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
