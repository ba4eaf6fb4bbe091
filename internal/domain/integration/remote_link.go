package integration

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLinkNotFound        = errors.New("integration: remote link not found")
	ErrLinkInvalidKind     = errors.New("integration: invalid remote link kind")
	ErrLinkInvalidChannel  = errors.New("integration: invalid channel ID")
	ErrLinkInvalidRemoteID = errors.New("integration: invalid remote ID")
	ErrLinkInvalidLocalID  = errors.New("integration: invalid local ID")
)

// LinkKind is the kind of local entity a remote id is linked to
type LinkKind string

const (
	LinkCountry     LinkKind = "country"
	LinkSubdivision LinkKind = "subdivision"
	LinkCurrency    LinkKind = "currency"
	LinkLanguage    LinkKind = "language"
	LinkParty       LinkKind = "party"
	LinkTemplate    LinkKind = "template"
	LinkSale        LinkKind = "sale"
)

// IsValid checks if the link kind is known
func (k LinkKind) IsValid() bool {
	switch k {
	case LinkCountry, LinkSubdivision, LinkCurrency, LinkLanguage, LinkParty, LinkTemplate, LinkSale:
		return true
	}
	return false
}

// RemoteLink maps a remote entity of a channel to exactly one local entity.
// (Kind, ChannelID, RemoteID) is unique and links are never updated.
type RemoteLink struct {
	ID        uuid.UUID
	Kind      LinkKind
	ChannelID uuid.UUID
	RemoteID  int64
	LocalID   uuid.UUID
	CreatedAt time.Time
}

// NewRemoteLink creates a link
func NewRemoteLink(kind LinkKind, channelID uuid.UUID, remoteID int64, localID uuid.UUID) (*RemoteLink, error) {
	if !kind.IsValid() {
		return nil, ErrLinkInvalidKind
	}
	if channelID == uuid.Nil {
		return nil, ErrLinkInvalidChannel
	}
	if remoteID <= 0 {
		return nil, ErrLinkInvalidRemoteID
	}
	if localID == uuid.Nil {
		return nil, ErrLinkInvalidLocalID
	}
	return &RemoteLink{
		ID:        uuid.New(),
		Kind:      kind,
		ChannelID: channelID,
		RemoteID:  remoteID,
		LocalID:   localID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
