package integration

import (
	"testing"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPartyReconciler() *PartyReconciler {
	return NewPartyReconciler(NewRemoteResolver(zap.NewNop()), zap.NewNop())
}

func TestPartyReconciler_FindOrCreateParty(t *testing.T) {
	f := newFixture(t)
	channel, remote := f.addChannel(t, "eu-shop")
	_, err := f.orch.ImportLanguages(f.ctx, channel.ID)
	require.NoError(t, err)
	scope := f.scope(channel, remote)
	parties := newPartyReconciler()

	customer := &integration.RemoteCustomer{ID: 3, FirstName: " John ", LastName: "Doe", Email: "john@example.com", LanguageID: 1}

	party, err := parties.FindOrCreateParty(f.ctx, scope, customer)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", party.Name)
	require.NotNil(t, party.LanguageID)
	assert.Equal(t, f.enUS.ID, *party.LanguageID)

	again, err := parties.FindOrCreateParty(f.ctx, scope, customer)
	require.NoError(t, err)
	assert.Equal(t, party.ID, again.ID)
	assert.Equal(t, int64(1), f.count(t, "parties"))

	contacts, err := f.repos.Contacts().ListByParty(f.ctx, party.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, partner.ContactEmail, contacts[0].Type)

	t.Run("unmapped customer language is left empty", func(t *testing.T) {
		ana := &integration.RemoteCustomer{ID: 4, FirstName: "Ana", LastName: "Silva", LanguageID: 3}
		party, err := parties.FindOrCreateParty(f.ctx, scope, ana)
		require.NoError(t, err)
		assert.Nil(t, party.LanguageID)

		contacts, err := f.repos.Contacts().ListByParty(f.ctx, party.ID)
		require.NoError(t, err)
		assert.Empty(t, contacts, "blank email records no contact")
	})
}

func TestPartyReconciler_FindOrCreateAddress(t *testing.T) {
	f := newFixture(t)
	channel, remote := f.addChannel(t, "eu-shop")
	scope := f.scope(channel, remote)
	parties := newPartyReconciler()

	party, err := partner.NewParty("John Doe", nil)
	require.NoError(t, err)
	require.NoError(t, f.repos.Parties().Create(f.ctx, party))

	base := integration.RemoteAddress{
		ID: 5, CountryID: 21, StateID: 5,
		FirstName: "John", LastName: "Doe",
		Address1: "1 Main St", Postcode: "94105", City: "San Francisco",
		Phone: "555-0100",
	}
	first, err := parties.FindOrCreateAddress(f.ctx, scope, party, &base)
	require.NoError(t, err)

	t.Run("identical address is reused", func(t *testing.T) {
		same := base
		same.ID = 50
		same.Address1 = "  1 Main St "
		same.Address2 = "   "
		found, err := parties.FindOrCreateAddress(f.ctx, scope, party, &same)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("unicode forms compare equal", func(t *testing.T) {
		composed := base
		composed.City = "Montréal"
		a, err := parties.FindOrCreateAddress(f.ctx, scope, party, &composed)
		require.NoError(t, err)

		decomposed := base
		decomposed.City = "Montre\u0301al"
		b, err := parties.FindOrCreateAddress(f.ctx, scope, party, &decomposed)
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
	})

	t.Run("street line 2 distinguishes addresses", func(t *testing.T) {
		suite := base
		suite.Address2 = "Suite 400"
		found, err := parties.FindOrCreateAddress(f.ctx, scope, party, &suite)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, found.ID)
	})

	t.Run("undeclared country matches only an address without one", func(t *testing.T) {
		bare := base
		bare.CountryID = 0
		bare.StateID = 0
		found, err := parties.FindOrCreateAddress(f.ctx, scope, party, &bare)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, found.ID)
		assert.Nil(t, found.CountryID)

		again, err := parties.FindOrCreateAddress(f.ctx, scope, party, &bare)
		require.NoError(t, err)
		assert.Equal(t, found.ID, again.ID)
	})

	t.Run("a state without a country takes the state's country", func(t *testing.T) {
		stateOnly := base
		stateOnly.CountryID = 0
		found, err := parties.FindOrCreateAddress(f.ctx, scope, party, &stateOnly)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		require.NotNil(t, found.CountryID)
		assert.Equal(t, *first.CountryID, *found.CountryID)
	})

	t.Run("declared but unmappable country is an error", func(t *testing.T) {
		unknown := base
		unknown.CountryID = 99
		unknown.StateID = 0
		_, err := parties.FindOrCreateAddress(f.ctx, scope, party, &unknown)
		require.Error(t, err)
		kind, _ := integration.KindOf(err)
		assert.Equal(t, integration.KindReferenceNotFound, kind)
	})

	t.Run("phone numbers are recorded once per party", func(t *testing.T) {
		contacts, err := f.repos.Contacts().ListByParty(f.ctx, party.ID)
		require.NoError(t, err)
		assert.Len(t, contacts, 1)
		assert.Equal(t, partner.ContactPhone, contacts[0].Type)
		assert.Equal(t, "555-0100", contacts[0].Value)
	})
}
