package catalog

import (
	"context"

	"github.com/google/uuid"
)

// TemplateRepository persists templates and their translations
type TemplateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Template, error)
	Create(ctx context.Context, template *Template) error
	SaveTranslation(ctx context.Context, translation *TemplateTranslation) error
	ListTranslations(ctx context.Context, templateID uuid.UUID) ([]TemplateTranslation, error)
}

// VariantRepository persists variants and their channel combination links
type VariantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Variant, error)
	Create(ctx context.Context, variant *Variant) error

	// FindByCombination looks up a variant by a non-zero combination id
	FindByCombination(ctx context.Context, channelID uuid.UUID, combinationID int64) (*Variant, error)
	// FindBaseVariant returns the variant linked with BaseCombinationID
	FindBaseVariant(ctx context.Context, channelID, templateID uuid.UUID) (*Variant, error)
	// CombinationLinks lists the links of a combination id across the channel
	CombinationLinks(ctx context.Context, channelID uuid.UUID, combinationID int64) ([]CombinationLink, error)
	CreateCombinationLink(ctx context.Context, link *CombinationLink) error
}
