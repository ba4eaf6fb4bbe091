package reference

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrCountryNotFound     = errors.New("reference: country not found")
	ErrSubdivisionNotFound = errors.New("reference: subdivision not found")
	ErrCurrencyNotFound    = errors.New("reference: currency not found")
	ErrLanguageNotFound    = errors.New("reference: language not found")
)

// Country is identified by its ISO 3166-1 alpha-2 code
type Country struct {
	ID   uuid.UUID
	Code string
	Name string
}

// Subdivision is identified by its ISO 3166-2 code, e.g. "US-CA"
type Subdivision struct {
	ID        uuid.UUID
	CountryID uuid.UUID
	Code      string
	Name      string
}

// SubdivisionCode builds the ISO 3166-2 code from a country code and the
// subdivision part.
func SubdivisionCode(countryCode, isoCode string) string {
	return strings.ToUpper(strings.TrimSpace(countryCode)) + "-" + strings.ToUpper(strings.TrimSpace(isoCode))
}

// Currency is identified by its ISO 4217 code
type Currency struct {
	ID     uuid.UUID
	Code   string
	Name   string
	Digits int32
}

// Language is identified by a locale code in "ll" or "ll_RR" form (en_US, fr_FR).
type Language struct {
	ID   uuid.UUID
	Code string
	Name string
}

// Repository looks up reference data by code or id
type Repository interface {
	FindCountryByID(ctx context.Context, id uuid.UUID) (*Country, error)
	FindCountryByCode(ctx context.Context, code string) (*Country, error)
	FindSubdivisionByID(ctx context.Context, id uuid.UUID) (*Subdivision, error)
	FindSubdivisionByCode(ctx context.Context, countryID uuid.UUID, code string) (*Subdivision, error)
	FindCurrencyByID(ctx context.Context, id uuid.UUID) (*Currency, error)
	FindCurrencyByCode(ctx context.Context, code string) (*Currency, error)
	FindLanguageByID(ctx context.Context, id uuid.UUID) (*Language, error)
	ListLanguages(ctx context.Context) ([]Language, error)

	SaveCountry(ctx context.Context, c *Country) error
	SaveSubdivision(ctx context.Context, s *Subdivision) error
	SaveCurrency(ctx context.Context, c *Currency) error
	SaveLanguage(ctx context.Context, l *Language) error
}
