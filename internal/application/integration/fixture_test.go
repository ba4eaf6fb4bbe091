package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/reference"
	"github.com/erp/storesync/internal/infrastructure/persistence"
	"github.com/erp/storesync/internal/infrastructure/persistence/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// Fake remote store
// ---------------------------------------------------------------------------

type updateCall struct {
	Resource integration.Resource
	ID       int64
	Payload  integration.RemoteRecord
}

// fakeRemote serves records from memory. List honours the date_upd filter
// the way the webservice does.
type fakeRemote struct {
	mu      sync.Mutex
	records map[integration.Resource]map[int64]integration.RemoteRecord
	errs    map[integration.Resource]error
	gets    map[integration.Resource]int
	filters []*integration.ListFilter
	updates []updateCall
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		records: make(map[integration.Resource]map[int64]integration.RemoteRecord),
		errs:    make(map[integration.Resource]error),
		gets:    make(map[integration.Resource]int),
	}
}

func (f *fakeRemote) put(resource integration.Resource, rec integration.RemoteRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.records[resource] == nil {
		f.records[resource] = make(map[int64]integration.RemoteRecord)
	}
	f.records[resource][rec.ID()] = rec
}

func (f *fakeRemote) fail(resource integration.Resource, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[resource] = err
}

func (f *fakeRemote) getCount(resource integration.Resource) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets[resource]
}

func (f *fakeRemote) List(_ context.Context, resource integration.Resource, filter *integration.ListFilter) ([]integration.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[resource]; err != nil {
		return nil, err
	}
	if resource == integration.ResourceOrders {
		f.filters = append(f.filters, filter)
	}
	ids := make([]int64, 0, len(f.records[resource]))
	for id := range f.records[resource] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]integration.RemoteRecord, 0, len(ids))
	for _, id := range ids {
		rec := f.records[resource][id]
		if filter != nil {
			upd := rec.String("date_upd")
			if upd < filter.UpdatedFrom || upd > filter.UpdatedTo {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRemote) Get(_ context.Context, resource integration.Resource, id int64) (integration.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets[resource]++
	if err := f.errs[resource]; err != nil {
		return nil, err
	}
	rec, ok := f.records[resource][id]
	if !ok {
		return nil, integration.RemoteNotFoundError(resource, id)
	}
	return rec, nil
}

func (f *fakeRemote) Update(_ context.Context, resource integration.Resource, id int64, payload integration.RemoteRecord) (integration.RemoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[resource]; err != nil {
		return nil, err
	}
	f.updates = append(f.updates, updateCall{Resource: resource, ID: id, Payload: payload})
	f.records[resource][id] = payload
	return payload, nil
}

type fakeFactory struct {
	remotes map[uuid.UUID]integration.RemoteClient
}

func (f *fakeFactory) ClientFor(channel *integration.Channel) (integration.RemoteClient, error) {
	if err := channel.Validate(); err != nil {
		return nil, err
	}
	return f.remotes[channel.ID], nil
}

// MockRemoteClientFactory is a mock implementation of RemoteClientFactory
type MockRemoteClientFactory struct {
	mock.Mock
}

func (m *MockRemoteClientFactory) ClientFor(channel *integration.Channel) (integration.RemoteClient, error) {
	args := m.Called(channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.RemoteClient), args.Error(1)
}

// MockPassLocker is a mock implementation of PassLocker
type MockPassLocker struct {
	mock.Mock
}

func (m *MockPassLocker) Acquire(ctx context.Context, key integration.PassKey) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

type openLocker struct{}

func (openLocker) Acquire(context.Context, integration.PassKey) (func(), error) {
	return func() {}, nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	tx      *persistence.GormTransactionScope
	repos   integration.Repositories
	factory *fakeFactory
	now     time.Time
	orch    *SyncOrchestrator

	// local reference data
	enUS, frFR, deDE reference.Language
	us, fr           reference.Country
	california       reference.Subdivision
	eur              reference.Currency
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	tx := persistence.NewGormTransactionScope(db)
	f := &fixture{
		ctx:     context.Background(),
		db:      db,
		tx:      tx,
		repos:   tx.Repositories(),
		factory: &fakeFactory{remotes: make(map[uuid.UUID]integration.RemoteClient)},
		now:     time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	f.orch = NewSyncOrchestrator(tx, f.factory, openLocker{}, zap.NewNop(),
		WithClock(func() time.Time { return f.now }))

	refs := f.repos.References()
	f.enUS = reference.Language{ID: uuid.New(), Code: "en_US", Name: "English"}
	f.frFR = reference.Language{ID: uuid.New(), Code: "fr_FR", Name: "French"}
	f.deDE = reference.Language{ID: uuid.New(), Code: "de_DE", Name: "German"}
	for _, l := range []*reference.Language{&f.enUS, &f.frFR, &f.deDE} {
		require.NoError(t, refs.SaveLanguage(f.ctx, l))
	}
	f.us = reference.Country{ID: uuid.New(), Code: "US", Name: "United States"}
	f.fr = reference.Country{ID: uuid.New(), Code: "FR", Name: "France"}
	require.NoError(t, refs.SaveCountry(f.ctx, &f.us))
	require.NoError(t, refs.SaveCountry(f.ctx, &f.fr))
	f.california = reference.Subdivision{ID: uuid.New(), CountryID: f.us.ID, Code: "US-CA", Name: "California"}
	require.NoError(t, refs.SaveSubdivision(f.ctx, &f.california))
	f.eur = reference.Currency{ID: uuid.New(), Code: "EUR", Name: "Euro", Digits: 2}
	require.NoError(t, refs.SaveCurrency(f.ctx, &f.eur))
	return f
}

// addChannel creates a channel served by a remote seeded with the shop
// catalogue used across the tests.
func (f *fixture) addChannel(t *testing.T, name string) (*integration.Channel, *fakeRemote) {
	t.Helper()
	channel, err := integration.NewChannel(name, "https://"+name+".example.com", "WSKEY", "Europe/Paris")
	require.NoError(t, err)
	require.NoError(t, f.repos.Channels().Create(f.ctx, channel))

	remote := newFakeRemote()
	seedShop(remote)
	f.factory.remotes[channel.ID] = remote
	return channel, remote
}

// scope returns a non-transactional scope of the channel
func (f *fixture) scope(channel *integration.Channel, remote integration.RemoteClient) Scope {
	return Scope{Channel: channel, Remote: remote, Repos: f.repos}
}

func (f *fixture) importReferenceData(t *testing.T, channel *integration.Channel) {
	t.Helper()
	_, err := f.orch.ImportReferenceData(f.ctx, channel.ID)
	require.NoError(t, err)
}

func (f *fixture) reloadChannel(t *testing.T, channel *integration.Channel) *integration.Channel {
	t.Helper()
	found, err := f.repos.Channels().FindByID(f.ctx, channel.ID)
	require.NoError(t, err)
	return found
}

func (f *fixture) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Table(table).Count(&n).Error)
	return n
}

// ---------------------------------------------------------------------------
// Remote records
// ---------------------------------------------------------------------------

func names(values ...any) []any {
	out := make([]any, 0, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		out = append(out, map[string]any{"id": values[i], "value": values[i+1]})
	}
	return out
}

func seedShop(r *fakeRemote) {
	r.put(integration.ResourceShops, integration.RemoteRecord{"id": 1, "name": "Main shop"})

	r.put(integration.ResourceLanguages, integration.RemoteRecord{"id": 1, "iso_code": "en", "language_code": "en-us"})
	r.put(integration.ResourceLanguages, integration.RemoteRecord{"id": 2, "iso_code": "fr", "language_code": "fr-FR"})
	r.put(integration.ResourceLanguages, integration.RemoteRecord{"id": 3, "iso_code": "pt", "language_code": "pt-br"})

	for id, name := range map[int]string{
		1: "Awaiting check payment",
		2: "Payment accepted",
		3: "Processing in progress",
		4: "Shipped",
		5: "Delivered",
		6: "Canceled",
	} {
		r.put(integration.ResourceOrderStates, integration.RemoteRecord{
			"id":   id,
			"name": names(1, name, 2, "fr: "+name),
		})
	}

	r.put(integration.ResourceCountries, integration.RemoteRecord{"id": 21, "iso_code": "US"})
	r.put(integration.ResourceCountries, integration.RemoteRecord{"id": 8, "iso_code": "fr"})
	r.put(integration.ResourceCountries, integration.RemoteRecord{"id": 99, "iso_code": "ZZ"})
	r.put(integration.ResourceStates, integration.RemoteRecord{"id": 5, "iso_code": "CA", "id_country": 21})
	r.put(integration.ResourceCurrencies, integration.RemoteRecord{"id": 1, "iso_code": "EUR"})
	r.put(integration.ResourceCurrencies, integration.RemoteRecord{"id": 2, "iso_code": "JPY"})

	r.put(integration.ResourceCustomers, integration.RemoteRecord{
		"id": 3, "firstname": "John", "lastname": "Doe", "email": "john@example.com", "id_lang": 1,
	})
	r.put(integration.ResourceCustomers, integration.RemoteRecord{
		"id": 4, "firstname": "Ana", "lastname": "Silva", "email": "ana@example.com", "id_lang": 3,
	})
	r.put(integration.ResourceAddresses, integration.RemoteRecord{
		"id": 5, "id_country": 21, "id_state": 5, "firstname": "John", "lastname": "Doe",
		"address1": "1 Main St", "postcode": "94105", "city": "San Francisco", "phone": "555-0100",
	})
	r.put(integration.ResourceAddresses, integration.RemoteRecord{
		"id": 6, "id_country": 8, "id_state": 0, "firstname": "John", "lastname": "Doe",
		"address1": "3 rue de la Paix", "postcode": "75002", "city": "Paris", "phone": "555-0100",
	})

	r.put(integration.ResourceProducts, integration.RemoteRecord{
		"id": 7, "reference": "MUG", "price": "20.000000", "wholesale_price": "8.000000",
		"name":        names(1, "Mug", 2, "Tasse"),
		"description": names(1, "A mug", 2, "Une tasse"),
	})
	r.put(integration.ResourceProducts, integration.RemoteRecord{
		"id": 8, "reference": "TSHIRT", "price": "20.000000", "wholesale_price": "9.000000",
		"name": names(2, "T-shirt FR", 1, "T-shirt"),
	})
	r.put(integration.ResourceCombinations, integration.RemoteRecord{"id": 41, "id_product": 8, "reference": "TSHIRT-S"})

	r.put(integration.ResourceOrders, order(12, 2, "62.000000"))
}

// order builds a remote order of two mugs, one small T-shirt, 7.00 of
// shipping and a 5.00 discount: 62.00 tax excluded.
func order(id int64, state int64, totalPaid string) integration.RemoteRecord {
	return integration.RemoteRecord{
		"id":                       id,
		"reference":                fmt.Sprintf("REF%d", id),
		"id_customer":              3,
		"id_address_invoice":       5,
		"id_address_delivery":      6,
		"id_currency":              1,
		"id_lang":                  1,
		"current_state":            state,
		"date_add":                 "2021-06-01 09:30:00",
		"date_upd":                 "2021-06-01 10:00:00",
		"total_paid_tax_excl":      totalPaid,
		"total_shipping_tax_excl":  "7.000000",
		"total_discounts_tax_excl": "5.000000",
		"associations": map[string]any{
			"order_rows": []any{
				map[string]any{"id": 1, "product_id": 7, "product_attribute_id": 0, "product_quantity": "2",
					"product_name": "Mug", "unit_price_tax_excl": "20.000000"},
				map[string]any{"id": 2, "product_id": 8, "product_attribute_id": 41, "product_quantity": "1",
					"product_name": "T-shirt - S", "unit_price_tax_excl": "20.000000"},
			},
		},
	}
}
