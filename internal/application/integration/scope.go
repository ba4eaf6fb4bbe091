package integration

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/google/uuid"
)

// Scope is the explicit context of every reconciler call: the channel being
// synchronized, its remote client and the repositories of the current
// transaction.
type Scope struct {
	Channel *integration.Channel
	Remote  integration.RemoteClient
	Repos   integration.Repositories
}

// ChannelID returns the id of the scoped channel
func (s Scope) ChannelID() uuid.UUID {
	return s.Channel.ID
}

// findLink returns the link of a remote entity, nil when there is none
func (s Scope) findLink(ctx context.Context, kind integration.LinkKind, remoteID int64) (*integration.RemoteLink, error) {
	link, err := s.Repos.Links().Find(ctx, kind, s.Channel.ID, remoteID)
	if errors.Is(err, integration.ErrLinkNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// link records that a freshly created local entity stands for a remote one.
// Losing the insert means another pass created a competing entity.
func (s Scope) link(ctx context.Context, kind integration.LinkKind, remoteID int64, localID uuid.UUID) error {
	link, err := integration.NewRemoteLink(kind, s.Channel.ID, remoteID, localID)
	if err != nil {
		return err
	}
	inserted, err := s.Repos.Links().Insert(ctx, link)
	if err != nil {
		return err
	}
	if !inserted {
		return integration.DuplicateLinkError(kind, remoteID)
	}
	return nil
}
