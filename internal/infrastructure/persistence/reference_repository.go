package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/storesync/internal/domain/reference"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReferenceRepository implements reference.Repository using GORM
type GormReferenceRepository struct {
	db *gorm.DB
}

// NewGormReferenceRepository creates a new GormReferenceRepository
func NewGormReferenceRepository(db *gorm.DB) *GormReferenceRepository {
	return &GormReferenceRepository{db: db}
}

// ---------------------------------------------------------------------------
// Countries and subdivisions
// ---------------------------------------------------------------------------

// FindCountryByID finds a country by ID
func (r *GormReferenceRepository) FindCountryByID(ctx context.Context, id uuid.UUID) (*reference.Country, error) {
	var model models.CountryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, reference.ErrCountryNotFound)
	}
	return model.ToDomain(), nil
}

// FindCountryByCode finds a country by its ISO 3166-1 alpha-2 code
func (r *GormReferenceRepository) FindCountryByCode(ctx context.Context, code string) (*reference.Country, error) {
	var model models.CountryModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, notFound(err, reference.ErrCountryNotFound)
	}
	return model.ToDomain(), nil
}

// FindSubdivisionByID finds a subdivision by ID
func (r *GormReferenceRepository) FindSubdivisionByID(ctx context.Context, id uuid.UUID) (*reference.Subdivision, error) {
	var model models.SubdivisionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, reference.ErrSubdivisionNotFound)
	}
	return model.ToDomain(), nil
}

// FindSubdivisionByCode finds a subdivision by its ISO 3166-2 code within a country
func (r *GormReferenceRepository) FindSubdivisionByCode(ctx context.Context, countryID uuid.UUID, code string) (*reference.Subdivision, error) {
	var model models.SubdivisionModel
	if err := r.db.WithContext(ctx).
		Where("country_id = ? AND code = ?", countryID, strings.ToUpper(code)).
		First(&model).Error; err != nil {
		return nil, notFound(err, reference.ErrSubdivisionNotFound)
	}
	return model.ToDomain(), nil
}

// SaveCountry inserts or updates a country
func (r *GormReferenceRepository) SaveCountry(ctx context.Context, c *reference.Country) error {
	model := models.CountryModel{ID: c.ID, Code: strings.ToUpper(c.Code), Name: c.Name}
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveSubdivision inserts or updates a subdivision
func (r *GormReferenceRepository) SaveSubdivision(ctx context.Context, s *reference.Subdivision) error {
	model := models.SubdivisionModel{ID: s.ID, CountryID: s.CountryID, Code: strings.ToUpper(s.Code), Name: s.Name}
	return r.db.WithContext(ctx).Save(&model).Error
}

// ---------------------------------------------------------------------------
// Currencies
// ---------------------------------------------------------------------------

// FindCurrencyByID finds a currency by ID
func (r *GormReferenceRepository) FindCurrencyByID(ctx context.Context, id uuid.UUID) (*reference.Currency, error) {
	var model models.CurrencyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, reference.ErrCurrencyNotFound)
	}
	return model.ToDomain(), nil
}

// FindCurrencyByCode finds a currency by its ISO 4217 code
func (r *GormReferenceRepository) FindCurrencyByCode(ctx context.Context, code string) (*reference.Currency, error) {
	var model models.CurrencyModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, notFound(err, reference.ErrCurrencyNotFound)
	}
	return model.ToDomain(), nil
}

// SaveCurrency inserts or updates a currency
func (r *GormReferenceRepository) SaveCurrency(ctx context.Context, c *reference.Currency) error {
	model := models.CurrencyModel{ID: c.ID, Code: strings.ToUpper(c.Code), Name: c.Name, Digits: c.Digits}
	return r.db.WithContext(ctx).Save(&model).Error
}

// ---------------------------------------------------------------------------
// Languages
// ---------------------------------------------------------------------------

// FindLanguageByID finds a language by ID
func (r *GormReferenceRepository) FindLanguageByID(ctx context.Context, id uuid.UUID) (*reference.Language, error) {
	var model models.LanguageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, reference.ErrLanguageNotFound)
	}
	return model.ToDomain(), nil
}

// ListLanguages returns every local language ordered by code
func (r *GormReferenceRepository) ListLanguages(ctx context.Context) ([]reference.Language, error) {
	var languageModels []models.LanguageModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&languageModels).Error; err != nil {
		return nil, err
	}
	languages := make([]reference.Language, len(languageModels))
	for i := range languageModels {
		languages[i] = *languageModels[i].ToDomain()
	}
	return languages, nil
}

// SaveLanguage inserts or updates a language
func (r *GormReferenceRepository) SaveLanguage(ctx context.Context, l *reference.Language) error {
	model := models.LanguageModel{ID: l.ID, Code: l.Code, Name: l.Name}
	return r.db.WithContext(ctx).Save(&model).Error
}

// notFound maps gorm's not-found error to a domain sentinel
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

var _ reference.Repository = (*GormReferenceRepository)(nil)
