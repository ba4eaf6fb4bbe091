package integration

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/domain/integration"
	"go.uber.org/zap"
)

// CatalogReconciler finds or creates the local templates and variants of
// remote products and combinations.
type CatalogReconciler struct {
	resolver *RemoteResolver
	logger   *zap.Logger
}

// NewCatalogReconciler creates a CatalogReconciler
func NewCatalogReconciler(resolver *RemoteResolver, logger *zap.Logger) *CatalogReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogReconciler{resolver: resolver, logger: logger}
}

// FindOrCreateTemplate returns the template linked to the product. A new
// template takes its name and language from the first name variant in a
// linked language; the other languages become translations. Its base
// variant is created alongside.
func (c *CatalogReconciler) FindOrCreateTemplate(ctx context.Context, scope Scope, product *integration.RemoteProduct) (*catalog.Template, error) {
	link, err := scope.findLink(ctx, integration.LinkTemplate, product.ID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		return scope.Repos.Templates().FindByID(ctx, link.LocalID)
	}

	languages, err := c.resolver.ChannelLanguages(ctx, scope)
	if err != nil {
		return nil, err
	}
	name, nameTranslations, ok := integration.SelectPrimaryAndSecondary(product.Name, languages)
	if !ok {
		return nil, integration.UntranslatableError(integration.ResourceProducts, product.ID)
	}

	var description string
	var descTranslations []integration.LocalizedText
	if primary, secondary, ok := integration.SelectPrimaryAndSecondary(product.Description, languages); ok {
		for _, text := range append([]integration.LocalizedText{primary}, secondary...) {
			if text.LanguageID == name.LanguageID {
				if text == primary {
					description = text.Value
				}
				continue
			}
			descTranslations = append(descTranslations, text)
		}
	}

	template, err := catalog.NewTemplate(product.Reference, name.Value, description, name.LanguageCode, product.Price, product.WholesalePrice)
	if err != nil {
		return nil, integration.MalformedRecordError(integration.ResourceProducts, product.ID, "invalid product").Wrap(err)
	}
	if err := scope.Repos.Templates().Create(ctx, template); err != nil {
		return nil, err
	}
	if err := c.saveTranslations(ctx, scope, template, catalog.FieldName, nameTranslations); err != nil {
		return nil, err
	}
	if err := c.saveTranslations(ctx, scope, template, catalog.FieldDescription, descTranslations); err != nil {
		return nil, err
	}

	base, err := catalog.NewVariant(template.ID, product.Reference)
	if err != nil {
		return nil, err
	}
	if err := scope.Repos.Variants().Create(ctx, base); err != nil {
		return nil, err
	}
	if err := c.LinkVariant(ctx, scope, base, catalog.BaseCombinationID); err != nil {
		return nil, err
	}
	if err := scope.link(ctx, integration.LinkTemplate, product.ID, template.ID); err != nil {
		return nil, err
	}

	c.logger.Debug("template created",
		zap.String("channel_id", scope.ChannelID().String()),
		zap.Int64("remote_id", product.ID),
		zap.String("template_id", template.ID.String()),
		zap.Int("translations", len(nameTranslations)+len(descTranslations)),
	)
	return template, nil
}

func (c *CatalogReconciler) saveTranslations(ctx context.Context, scope Scope, template *catalog.Template, field catalog.TranslatedField, texts []integration.LocalizedText) error {
	for _, text := range texts {
		err := scope.Repos.Templates().SaveTranslation(ctx, &catalog.TemplateTranslation{
			TemplateID:   template.ID,
			LanguageCode: text.LanguageCode,
			Field:        field,
			Value:        text.Value,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// FindOrCreateVariant returns the variant linked to the combination. On a
// miss the parent product's template is found or created first.
func (c *CatalogReconciler) FindOrCreateVariant(ctx context.Context, scope Scope, combination *integration.RemoteCombination) (*catalog.Variant, error) {
	variant, err := scope.Repos.Variants().FindByCombination(ctx, scope.ChannelID(), combination.ID)
	if err == nil {
		return variant, nil
	}
	if !errors.Is(err, catalog.ErrVariantNotFound) {
		return nil, err
	}

	template, err := c.templateOf(ctx, scope, combination.ProductID)
	if err != nil {
		return nil, err
	}
	variant, err = catalog.NewVariant(template.ID, combination.Reference)
	if err != nil {
		return nil, err
	}
	if err := scope.Repos.Variants().Create(ctx, variant); err != nil {
		return nil, err
	}
	if err := c.LinkVariant(ctx, scope, variant, combination.ID); err != nil {
		return nil, err
	}
	return variant, nil
}

// LinkVariant ties a variant to a combination id of the channel. A
// combination id already in use, or a second base variant of the same
// template, is a duplicate combination.
func (c *CatalogReconciler) LinkVariant(ctx context.Context, scope Scope, variant *catalog.Variant, combinationID int64) error {
	variants := scope.Repos.Variants()
	if combinationID == catalog.BaseCombinationID {
		_, err := variants.FindBaseVariant(ctx, scope.ChannelID(), variant.TemplateID)
		if err == nil {
			return integration.DuplicateCombinationError(combinationID, scope.Channel.Name)
		}
		if !errors.Is(err, catalog.ErrVariantNotFound) {
			return err
		}
	} else {
		links, err := variants.CombinationLinks(ctx, scope.ChannelID(), combinationID)
		if err != nil {
			return err
		}
		if len(links) > 0 {
			return integration.DuplicateCombinationError(combinationID, scope.Channel.Name)
		}
	}

	link, err := catalog.NewCombinationLink(scope.ChannelID(), variant, combinationID)
	if err != nil {
		return err
	}
	err = variants.CreateCombinationLink(ctx, link)
	if errors.Is(err, catalog.ErrCombinationTaken) {
		return integration.DuplicateCombinationError(combinationID, scope.Channel.Name).Wrap(err)
	}
	return err
}

// ResolveOrderRow returns the variant sold by an order row: the linked
// combination when one is given, the product's base variant otherwise.
func (c *CatalogReconciler) ResolveOrderRow(ctx context.Context, scope Scope, productID, combinationID int64) (*catalog.Variant, error) {
	if combinationID != catalog.BaseCombinationID {
		variant, err := scope.Repos.Variants().FindByCombination(ctx, scope.ChannelID(), combinationID)
		if err == nil {
			return variant, nil
		}
		if !errors.Is(err, catalog.ErrVariantNotFound) {
			return nil, err
		}
		rec, err := c.resolver.Fetch(ctx, scope, integration.ResourceCombinations, combinationID)
		if err != nil {
			return nil, err
		}
		combination, err := integration.ParseCombination(rec)
		if err != nil {
			return nil, err
		}
		return c.FindOrCreateVariant(ctx, scope, combination)
	}

	template, err := c.templateOf(ctx, scope, productID)
	if err != nil {
		return nil, err
	}
	return scope.Repos.Variants().FindBaseVariant(ctx, scope.ChannelID(), template.ID)
}

func (c *CatalogReconciler) templateOf(ctx context.Context, scope Scope, productID int64) (*catalog.Template, error) {
	link, err := scope.findLink(ctx, integration.LinkTemplate, productID)
	if err != nil {
		return nil, err
	}
	if link != nil {
		return scope.Repos.Templates().FindByID(ctx, link.LocalID)
	}
	rec, err := c.resolver.Fetch(ctx, scope, integration.ResourceProducts, productID)
	if err != nil {
		return nil, err
	}
	product, err := integration.ParseProduct(rec)
	if err != nil {
		return nil, err
	}
	return c.FindOrCreateTemplate(ctx, scope, product)
}
