package integration

import (
	"context"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PartyReconciler finds or creates the local party and addresses of remote
// customers.
type PartyReconciler struct {
	resolver *RemoteResolver
	logger   *zap.Logger
}

// NewPartyReconciler creates a PartyReconciler
func NewPartyReconciler(resolver *RemoteResolver, logger *zap.Logger) *PartyReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartyReconciler{resolver: resolver, logger: logger}
}

// FindOrCreateParty returns the party linked to the customer, creating it
// with its language and email on first sight.
func (p *PartyReconciler) FindOrCreateParty(ctx context.Context, scope Scope, customer *integration.RemoteCustomer) (*partner.Party, error) {
	link, err := scope.findLink(ctx, integration.LinkParty, customer.ID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		return scope.Repos.Parties().FindByID(ctx, link.LocalID)
	}

	languageID, err := p.customerLanguage(ctx, scope, customer)
	if err != nil {
		return nil, err
	}

	name := partner.DisplayName(customer.FirstName, customer.LastName)
	if name == "" {
		name = customer.Email
	}
	party, err := partner.NewParty(name, languageID)
	if err != nil {
		return nil, integration.MalformedRecordError(integration.ResourceCustomers, customer.ID, "missing name").Wrap(err)
	}
	if err := scope.Repos.Parties().Create(ctx, party); err != nil {
		return nil, err
	}
	if err := p.addContact(ctx, scope, party.ID, partner.ContactEmail, customer.Email); err != nil {
		return nil, err
	}
	if err := scope.link(ctx, integration.LinkParty, customer.ID, party.ID); err != nil {
		return nil, err
	}

	p.logger.Debug("party created",
		zap.String("channel_id", scope.ChannelID().String()),
		zap.Int64("remote_id", customer.ID),
		zap.String("party_id", party.ID.String()),
	)
	return party, nil
}

// customerLanguage resolves the customer's language. A language with no
// local counterpart leaves the party without one.
func (p *PartyReconciler) customerLanguage(ctx context.Context, scope Scope, customer *integration.RemoteCustomer) (*uuid.UUID, error) {
	if customer.LanguageID <= 0 {
		return nil, nil
	}
	lang, err := p.resolver.ResolveLanguage(ctx, scope, customer.LanguageID)
	if err != nil {
		if integration.IsRecordScoped(err) {
			p.logger.Warn("customer language not mapped",
				zap.String("channel_id", scope.ChannelID().String()),
				zap.Int64("remote_id", customer.ID),
				zap.Int64("remote_language_id", customer.LanguageID),
				zap.Error(err),
			)
			return nil, nil
		}
		return nil, err
	}
	return &lang.ID, nil
}

// FindOrCreateAddress returns the first address of the party structurally
// equal to the remote address, creating it when none matches.
func (p *PartyReconciler) FindOrCreateAddress(ctx context.Context, scope Scope, party *partner.Party, remote *integration.RemoteAddress) (*partner.Address, error) {
	fields := partner.AddressFields{
		Name:      partner.DisplayName(remote.FirstName, remote.LastName),
		Street:    remote.Address1,
		StreetBis: remote.Address2,
		Zip:       remote.Postcode,
		City:      remote.City,
	}
	if remote.DeclaresCountry() {
		country, err := p.resolver.ResolveCountry(ctx, scope, remote.CountryID)
		if err != nil {
			return nil, err
		}
		fields.CountryID = &country.ID
	}
	if remote.DeclaresState() {
		sub, err := p.resolver.ResolveSubdivision(ctx, scope, remote.StateID)
		if err != nil {
			return nil, err
		}
		fields.SubdivisionID = &sub.ID
		// a state always implies its country
		if fields.CountryID == nil {
			fields.CountryID = &sub.CountryID
		}
	}

	existing, err := scope.Repos.Addresses().ListByParty(ctx, party.ID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Matches(fields) {
			return &existing[i], nil
		}
	}

	address, err := partner.NewAddress(party.ID, remote.ID, fields)
	if err != nil {
		return nil, integration.MalformedRecordError(integration.ResourceAddresses, remote.ID, "invalid address").Wrap(err)
	}
	if err := scope.Repos.Addresses().Create(ctx, address); err != nil {
		return nil, err
	}
	if err := p.addContact(ctx, scope, party.ID, partner.ContactPhone, remote.Phone); err != nil {
		return nil, err
	}
	if err := p.addContact(ctx, scope, party.ID, partner.ContactMobile, remote.PhoneMobile); err != nil {
		return nil, err
	}
	return address, nil
}

// addContact stores a contact mechanism unless the party already has it
func (p *PartyReconciler) addContact(ctx context.Context, scope Scope, partyID uuid.UUID, typ partner.ContactType, value string) error {
	mechanism, err := partner.NewContactMechanism(partyID, typ, value)
	if err != nil || mechanism == nil {
		return err
	}
	return scope.Repos.Contacts().Create(ctx, mechanism)
}
