package integration

import (
	"errors"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
)

var ErrChannelNotFound = errors.New("integration: channel not found")

// Direction is the direction of a sync pass
type Direction string

const (
	DirectionImport Direction = "import"
	DirectionExport Direction = "export"
)

// IsValid checks if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionImport || d == DirectionExport
}

// Channel is one configured remote store
type Channel struct {
	ID                uuid.UUID
	Name              string
	BaseURL           string
	Key               string
	Timezone          string
	CurrencyID        *uuid.UUID
	WarehouseCode     string
	ShippingVariantID *uuid.UUID
	Enabled           bool
	// LastOrderImportTime and LastOrderExportTime are UTC sync cursors,
	// nil until the first pass of that direction.
	LastOrderImportTime *time.Time
	LastOrderExportTime *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewChannel creates an enabled channel
func NewChannel(name, baseURL, key, timezone string) (*Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "channel name is required")
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, InvalidTimezoneError(timezone, err)
	}
	now := time.Now().UTC()
	return &Channel{
		ID:        uuid.New(),
		Name:      name,
		BaseURL:   strings.TrimSpace(baseURL),
		Key:       strings.TrimSpace(key),
		Timezone:  timezone,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks the settings needed before any remote call
func (c *Channel) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" || strings.TrimSpace(c.Key) == "" {
		return ErrSettingsIncomplete
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the channel's time zone; the remote store filters dates in it.
func (c *Channel) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, InvalidTimezoneError(c.Timezone, err)
	}
	return loc, nil
}

// LastSync returns the cursor of the given direction
func (c *Channel) LastSync(dir Direction) *time.Time {
	if dir == DirectionExport {
		return c.LastOrderExportTime
	}
	return c.LastOrderImportTime
}

// AdvanceCursor moves the cursor of the given direction
func (c *Channel) AdvanceCursor(dir Direction, at time.Time) {
	t := at.UTC()
	if dir == DirectionExport {
		c.LastOrderExportTime = &t
		return
	}
	c.LastOrderImportTime = &t
}

// SyncWindow is the time range covered by one pass. From is nil for the
// bootstrap pass, which covers the whole remote history.
type SyncWindow struct {
	Direction Direction
	From      *time.Time
	To        time.Time
	Location  *time.Location
}

// RemoteDateLayout is the date format of the remote store's filters
const RemoteDateLayout = "2006-01-02 15:04:05"

// IsBootstrap reports whether the window has no lower bound
func (w SyncWindow) IsBootstrap() bool {
	return w.From == nil
}

// RemoteBounds formats the window in the channel's time zone
func (w SyncWindow) RemoteBounds() (from, to string) {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	if w.From != nil {
		from = w.From.In(loc).Format(RemoteDateLayout)
	}
	return from, w.To.In(loc).Format(RemoteDateLayout)
}
