package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// RemoteClient port
// ---------------------------------------------------------------------------

// Resource is a remote webservice collection
type Resource string

const (
	ResourceOrders       Resource = "orders"
	ResourceCustomers    Resource = "customers"
	ResourceAddresses    Resource = "addresses"
	ResourceProducts     Resource = "products"
	ResourceCombinations Resource = "combinations"
	ResourceCountries    Resource = "countries"
	ResourceStates       Resource = "states"
	ResourceCurrencies   Resource = "currencies"
	ResourceLanguages    Resource = "languages"
	ResourceOrderStates  Resource = "order_states"
	ResourceShops        Resource = "shops"
)

var singularResources = map[Resource]string{
	ResourceOrders:       "order",
	ResourceCustomers:    "customer",
	ResourceAddresses:    "address",
	ResourceProducts:     "product",
	ResourceCombinations: "combination",
	ResourceCountries:    "country",
	ResourceStates:       "state",
	ResourceCurrencies:   "currency",
	ResourceLanguages:    "language",
	ResourceOrderStates:  "order_state",
	ResourceShops:        "shop",
}

// Singular returns the element name wrapping a single record of the resource
func (r Resource) Singular() string {
	if s, ok := singularResources[r]; ok {
		return s
	}
	return strings.TrimSuffix(string(r), "s")
}

// ListFilter restricts a list call. Bounds are already formatted in the
// remote store's time zone; empty bounds are open.
type ListFilter struct {
	UpdatedFrom string
	UpdatedTo   string
}

// WindowFilter builds the "last updated" filter of a sync window, nil for
// the bootstrap window.
func WindowFilter(w SyncWindow) *ListFilter {
	if w.IsBootstrap() {
		return nil
	}
	from, to := w.RemoteBounds()
	return &ListFilter{UpdatedFrom: from, UpdatedTo: to}
}

// RemoteClient reads and updates records of one remote store
type RemoteClient interface {
	List(ctx context.Context, resource Resource, filter *ListFilter) ([]RemoteRecord, error)
	Get(ctx context.Context, resource Resource, id int64) (RemoteRecord, error)
	Update(ctx context.Context, resource Resource, id int64, payload RemoteRecord) (RemoteRecord, error)
}

// RemoteClientFactory builds a client for a channel
type RemoteClientFactory interface {
	ClientFor(channel *Channel) (RemoteClient, error)
}

// ---------------------------------------------------------------------------
// RemoteRecord
// ---------------------------------------------------------------------------

// RemoteRecord is one decoded remote document. Values are scalars, lists of
// locale-tagged variants, or nested associations.
type RemoteRecord map[string]any

// LocaleVariant is the value of a multi-language field in one remote language
type LocaleVariant struct {
	LanguageID int64
	Value      string
}

// ID returns the record id
func (r RemoteRecord) ID() int64 {
	return r.Int64("id")
}

// Has reports whether the field is present and non-empty
func (r RemoteRecord) Has(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns a scalar field as text; multi-language fields yield their
// first variant.
func (r RemoteRecord) String(field string) string {
	return scalarString(r[field])
}

// Int64 returns a numeric field, 0 when absent or not numeric
func (r RemoteRecord) Int64(field string) int64 {
	s := strings.TrimSpace(r.String(field))
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Decimal returns a numeric field as a decimal, zero when absent
func (r RemoteRecord) Decimal(field string) (decimal.Decimal, error) {
	s := strings.TrimSpace(r.String(field))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("field %s: %w", field, err)
	}
	return d, nil
}

// Localized returns the variants of a multi-language field. A plain scalar
// is returned as a single variant with LanguageID 0.
func (r RemoteRecord) Localized(field string) []LocaleVariant {
	switch v := r[field].(type) {
	case nil:
		return nil
	case []any:
		out := make([]LocaleVariant, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			entry := RemoteRecord(m)
			out = append(out, LocaleVariant{LanguageID: entry.Int64("id"), Value: entry.String("value")})
		}
		return out
	default:
		return []LocaleVariant{{Value: scalarString(v)}}
	}
}

// Rows returns the records of a nested association
func (r RemoteRecord) Rows(association string) []RemoteRecord {
	assoc, ok := r["associations"].(map[string]any)
	if !ok {
		return nil
	}
	items, ok := assoc[association].([]any)
	if !ok {
		return nil
	}
	out := make([]RemoteRecord, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, RemoteRecord(m))
		}
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case []any:
		if len(t) == 0 {
			return ""
		}
		if m, ok := t[0].(map[string]any); ok {
			return scalarString(m["value"])
		}
		return scalarString(t[0])
	}
	return fmt.Sprint(v)
}
