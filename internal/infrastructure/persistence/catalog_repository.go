package persistence

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/catalog"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTemplateRepository implements TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindByID finds a template by ID
func (r *GormTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Template, error) {
	var model models.TemplateModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, catalog.ErrTemplateNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a template
func (r *GormTemplateRepository) Create(ctx context.Context, template *catalog.Template) error {
	var model models.TemplateModel
	model.FromDomain(template)
	return r.db.WithContext(ctx).Create(&model).Error
}

// SaveTranslation inserts or replaces a translated field value
func (r *GormTemplateRepository) SaveTranslation(ctx context.Context, translation *catalog.TemplateTranslation) error {
	model := models.TemplateTranslationModel{
		TemplateID:   translation.TemplateID,
		LanguageCode: translation.LanguageCode,
		Field:        translation.Field,
		Value:        translation.Value,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "template_id"}, {Name: "language_code"}, {Name: "field"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&model).Error
}

// ListTranslations lists a template's translations
func (r *GormTemplateRepository) ListTranslations(ctx context.Context, templateID uuid.UUID) ([]catalog.TemplateTranslation, error) {
	var translationModels []models.TemplateTranslationModel
	if err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("language_code ASC").
		Order("field ASC").
		Find(&translationModels).Error; err != nil {
		return nil, err
	}
	translations := make([]catalog.TemplateTranslation, len(translationModels))
	for i := range translationModels {
		translations[i] = translationModels[i].ToDomain()
	}
	return translations, nil
}

// GormVariantRepository implements VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindByID finds a variant by ID
func (r *GormVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, catalog.ErrVariantNotFound)
	}
	return model.ToDomain(), nil
}

// Create inserts a variant
func (r *GormVariantRepository) Create(ctx context.Context, variant *catalog.Variant) error {
	model := models.VariantModel{
		ID:         variant.ID,
		TemplateID: variant.TemplateID,
		Code:       variant.Code,
		CreatedAt:  variant.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByCombination looks up the variant linked to a non-zero combination id
func (r *GormVariantRepository) FindByCombination(ctx context.Context, channelID uuid.UUID, combinationID int64) (*catalog.Variant, error) {
	if combinationID == catalog.BaseCombinationID {
		return nil, catalog.ErrVariantNotFound
	}
	return r.findLinked(ctx, "l.channel_id = ? AND l.combination_id = ?", channelID, combinationID)
}

// FindBaseVariant returns the template's variant linked with the base combination id
func (r *GormVariantRepository) FindBaseVariant(ctx context.Context, channelID, templateID uuid.UUID) (*catalog.Variant, error) {
	return r.findLinked(ctx, "l.channel_id = ? AND l.template_id = ? AND l.combination_id = ?",
		channelID, templateID, catalog.BaseCombinationID)
}

func (r *GormVariantRepository) findLinked(ctx context.Context, where string, args ...any) (*catalog.Variant, error) {
	var model models.VariantModel
	if err := r.db.WithContext(ctx).
		Table("catalog_variants AS v").
		Select("v.*").
		Joins("JOIN catalog_combination_links AS l ON l.variant_id = v.id").
		Where(where, args...).
		Take(&model).Error; err != nil {
		return nil, notFound(err, catalog.ErrVariantNotFound)
	}
	return model.ToDomain(), nil
}

// CombinationLinks lists the channel's links of a combination id
func (r *GormVariantRepository) CombinationLinks(ctx context.Context, channelID uuid.UUID, combinationID int64) ([]catalog.CombinationLink, error) {
	var linkModels []models.CombinationLinkModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND combination_id = ?", channelID, combinationID).
		Order("created_at ASC").
		Find(&linkModels).Error; err != nil {
		return nil, err
	}
	links := make([]catalog.CombinationLink, len(linkModels))
	for i := range linkModels {
		links[i] = *linkModels[i].ToDomain()
	}
	return links, nil
}

// CreateCombinationLink inserts a combination link. A violated uniqueness
// rule is reported as catalog.ErrCombinationTaken.
func (r *GormVariantRepository) CreateCombinationLink(ctx context.Context, link *catalog.CombinationLink) error {
	var model models.CombinationLinkModel
	model.FromDomain(link)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return catalog.ErrCombinationTaken
		}
		return err
	}
	return nil
}

var (
	_ catalog.TemplateRepository = (*GormTemplateRepository)(nil)
	_ catalog.VariantRepository  = (*GormVariantRepository)(nil)
)
