package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/reference"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// RemoteResolver maps remote reference ids (countries, states, currencies,
// languages) to local entities through the channel's remote links. Missing
// links are derived from the remote record's code and stored.
type RemoteResolver struct {
	fetches singleflight.Group
	logger  *zap.Logger
}

// NewRemoteResolver creates a RemoteResolver
func NewRemoteResolver(logger *zap.Logger) *RemoteResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteResolver{logger: logger}
}

// Fetch reads one remote record. Concurrent fetches of the same record of
// the same channel share a single remote call; callers must not mutate
// the returned record.
func (r *RemoteResolver) Fetch(ctx context.Context, scope Scope, resource integration.Resource, id int64) (integration.RemoteRecord, error) {
	key := fmt.Sprintf("%s:%s:%d", scope.ChannelID(), resource, id)
	v, err, _ := r.fetches.Do(key, func() (any, error) {
		return scope.Remote.Get(ctx, resource, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(integration.RemoteRecord), nil
}

// ResolveCountry returns the local country of a remote country id
func (r *RemoteResolver) ResolveCountry(ctx context.Context, scope Scope, remoteID int64) (*reference.Country, error) {
	refs := scope.Repos.References()
	return resolveLinked(ctx, scope, integration.LinkCountry, remoteID,
		refs.FindCountryByID,
		func(ctx context.Context) (*reference.Country, uuid.UUID, error) {
			rec, err := r.Fetch(ctx, scope, integration.ResourceCountries, remoteID)
			if err != nil {
				return nil, uuid.Nil, err
			}
			code := integration.ParseCode(rec).ISOCode
			country, err := refs.FindCountryByCode(ctx, code)
			if errors.Is(err, reference.ErrCountryNotFound) {
				return nil, uuid.Nil, integration.CountryNotFoundError(code)
			}
			if err != nil {
				return nil, uuid.Nil, err
			}
			return country, country.ID, nil
		})
}

// ResolveSubdivision returns the local subdivision of a remote state id.
// The state's country is resolved first.
func (r *RemoteResolver) ResolveSubdivision(ctx context.Context, scope Scope, remoteID int64) (*reference.Subdivision, error) {
	refs := scope.Repos.References()
	return resolveLinked(ctx, scope, integration.LinkSubdivision, remoteID,
		refs.FindSubdivisionByID,
		func(ctx context.Context) (*reference.Subdivision, uuid.UUID, error) {
			rec, err := r.Fetch(ctx, scope, integration.ResourceStates, remoteID)
			if err != nil {
				return nil, uuid.Nil, err
			}
			state := integration.ParseCode(rec)
			if state.CountryID <= 0 {
				return nil, uuid.Nil, integration.MalformedRecordError(integration.ResourceStates, remoteID, "id_country")
			}
			country, err := r.ResolveCountry(ctx, scope, state.CountryID)
			if err != nil {
				return nil, uuid.Nil, err
			}
			code := reference.SubdivisionCode(country.Code, state.ISOCode)
			sub, err := refs.FindSubdivisionByCode(ctx, country.ID, code)
			if errors.Is(err, reference.ErrSubdivisionNotFound) {
				return nil, uuid.Nil, integration.SubdivisionNotFoundError(code)
			}
			if err != nil {
				return nil, uuid.Nil, err
			}
			return sub, sub.ID, nil
		})
}

// ResolveCurrency returns the local currency of a remote currency id
func (r *RemoteResolver) ResolveCurrency(ctx context.Context, scope Scope, remoteID int64) (*reference.Currency, error) {
	refs := scope.Repos.References()
	return resolveLinked(ctx, scope, integration.LinkCurrency, remoteID,
		refs.FindCurrencyByID,
		func(ctx context.Context) (*reference.Currency, uuid.UUID, error) {
			rec, err := r.Fetch(ctx, scope, integration.ResourceCurrencies, remoteID)
			if err != nil {
				return nil, uuid.Nil, err
			}
			code := integration.ParseCode(rec).ISOCode
			currency, err := refs.FindCurrencyByCode(ctx, code)
			if errors.Is(err, reference.ErrCurrencyNotFound) {
				return nil, uuid.Nil, integration.CurrencyNotFoundError(code)
			}
			if err != nil {
				return nil, uuid.Nil, err
			}
			return currency, currency.ID, nil
		})
}

// ResolveLanguage returns the local language of a remote language id
func (r *RemoteResolver) ResolveLanguage(ctx context.Context, scope Scope, remoteID int64) (*reference.Language, error) {
	refs := scope.Repos.References()
	return resolveLinked(ctx, scope, integration.LinkLanguage, remoteID,
		refs.FindLanguageByID,
		func(ctx context.Context) (*reference.Language, uuid.UUID, error) {
			rec, err := r.Fetch(ctx, scope, integration.ResourceLanguages, remoteID)
			if err != nil {
				return nil, uuid.Nil, err
			}
			lang, err := matchLocalLanguage(ctx, scope, integration.ParseLanguage(rec))
			if err != nil {
				return nil, uuid.Nil, err
			}
			return lang, lang.ID, nil
		})
}

// ChannelLanguages returns the channel's linked languages keyed by remote id
func (r *RemoteResolver) ChannelLanguages(ctx context.Context, scope Scope) (map[int64]integration.ChannelLanguage, error) {
	links, err := scope.Repos.Links().ListByKind(ctx, integration.LinkLanguage, scope.ChannelID())
	if err != nil {
		return nil, err
	}
	languages := make(map[int64]integration.ChannelLanguage, len(links))
	for _, link := range links {
		lang, err := scope.Repos.References().FindLanguageByID(ctx, link.LocalID)
		if err != nil {
			return nil, err
		}
		languages[link.RemoteID] = integration.ChannelLanguage{
			RemoteID: link.RemoteID,
			LocalID:  lang.ID,
			Code:     lang.Code,
		}
	}
	return languages, nil
}

func matchLocalLanguage(ctx context.Context, scope Scope, remote *integration.RemoteLanguage) (*reference.Language, error) {
	locals, err := scope.Repos.References().ListLanguages(ctx)
	if err != nil {
		return nil, err
	}
	tag := remote.Tag()
	lang, ok := integration.MatchLanguage(tag, locals)
	if !ok {
		return nil, integration.LanguageNotFoundError(tag)
	}
	return lang, nil
}

// resolveLinked follows the link of a remote entity, or derives the local
// entity and links it. When another pass linked the remote id first, the
// winner's entity is returned.
func resolveLinked[T any](
	ctx context.Context,
	scope Scope,
	kind integration.LinkKind,
	remoteID int64,
	load func(context.Context, uuid.UUID) (T, error),
	derive func(context.Context) (T, uuid.UUID, error),
) (T, error) {
	var zero T
	link, err := scope.findLink(ctx, kind, remoteID)
	if err != nil {
		return zero, err
	}
	if link != nil {
		return load(ctx, link.LocalID)
	}

	entity, localID, err := derive(ctx)
	if err != nil {
		return zero, err
	}
	newLink, err := integration.NewRemoteLink(kind, scope.ChannelID(), remoteID, localID)
	if err != nil {
		return zero, err
	}
	inserted, err := scope.Repos.Links().Insert(ctx, newLink)
	if err != nil {
		return zero, err
	}
	if inserted {
		return entity, nil
	}

	winner, err := scope.Repos.Links().Find(ctx, kind, scope.ChannelID(), remoteID)
	if err != nil {
		return zero, err
	}
	return load(ctx, winner.LocalID)
}
