package integration

import (
	"context"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
)

// SyncWindowTracker opens sync windows and advances the channel cursors
type SyncWindowTracker struct {
	now func() time.Time
}

// NewSyncWindowTracker creates a tracker using the given clock, time.Now when nil
func NewSyncWindowTracker(now func() time.Time) *SyncWindowTracker {
	if now == nil {
		now = time.Now
	}
	return &SyncWindowTracker{now: now}
}

// Open starts a window of the given direction ending now and stores its end
// as the new cursor. The cursor strictly increases from pass to pass; only
// the direction's own column is written.
func (t *SyncWindowTracker) Open(ctx context.Context, channels integration.ChannelRepository, channel *integration.Channel, dir integration.Direction) (integration.SyncWindow, error) {
	loc, err := channel.Location()
	if err != nil {
		return integration.SyncWindow{}, err
	}

	var from *time.Time
	if last := channel.LastSync(dir); last != nil {
		l := *last
		from = &l
	}
	to := t.now().UTC().Truncate(time.Microsecond)
	if from != nil && !to.After(*from) {
		to = from.Add(time.Microsecond)
	}

	if err := channels.UpdateCursor(ctx, channel.ID, dir, to); err != nil {
		return integration.SyncWindow{}, err
	}
	channel.AdvanceCursor(dir, to)

	return integration.SyncWindow{
		Direction: dir,
		From:      from,
		To:        to,
		Location:  loc,
	}, nil
}
