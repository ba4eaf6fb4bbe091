package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/erp/storesync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaseCombinationID marks the variant that stands for the product itself
// rather than one of its remote combinations.
const BaseCombinationID int64 = 0

var (
	ErrTemplateNotFound = errors.New("catalog: template not found")
	ErrVariantNotFound  = errors.New("catalog: variant not found")
	// ErrCombinationTaken is returned when a combination id is already
	// linked in the channel, or a template already has a base variant.
	ErrCombinationTaken = errors.New("catalog: combination already linked")
)

// TranslatedField names a translatable template field
type TranslatedField string

const (
	FieldName        TranslatedField = "name"
	FieldDescription TranslatedField = "description"
)

// Template is a sellable product. Its Name and Description are stored in
// LanguageCode; other languages live in TemplateTranslation rows.
type Template struct {
	ID           uuid.UUID
	Code         string
	Name         string
	Description  string
	LanguageCode string
	ListPrice    decimal.Decimal
	CostPrice    decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTemplate creates a template
func NewTemplate(code, name, description, languageCode string, listPrice, costPrice decimal.Decimal) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "template name is required")
	}
	if listPrice.IsNegative() || costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "template prices cannot be negative")
	}
	now := time.Now().UTC()
	return &Template{
		ID:           uuid.New(),
		Code:         strings.TrimSpace(code),
		Name:         name,
		Description:  description,
		LanguageCode: languageCode,
		ListPrice:    listPrice,
		CostPrice:    costPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// TemplateTranslation is a template field value in a non-canonical language
type TemplateTranslation struct {
	TemplateID   uuid.UUID
	LanguageCode string
	Field        TranslatedField
	Value        string
}

// Variant is a concrete stock-keeping unit of a template
type Variant struct {
	ID         uuid.UUID
	TemplateID uuid.UUID
	Code       string
	CreatedAt  time.Time
}

// NewVariant creates a variant under a template
func NewVariant(templateID uuid.UUID, code string) (*Variant, error) {
	if templateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "variant must belong to a template")
	}
	return &Variant{
		ID:         uuid.New(),
		TemplateID: templateID,
		Code:       strings.TrimSpace(code),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// CombinationLink ties a variant to a remote combination id within a channel.
// Non-zero combination ids are unique per channel; BaseCombinationID is
// unique per template.
type CombinationLink struct {
	ID            uuid.UUID
	ChannelID     uuid.UUID
	TemplateID    uuid.UUID
	VariantID     uuid.UUID
	CombinationID int64
	CreatedAt     time.Time
}

// NewCombinationLink links a variant to a remote combination
func NewCombinationLink(channelID uuid.UUID, variant *Variant, combinationID int64) (*CombinationLink, error) {
	if combinationID < 0 {
		return nil, shared.NewDomainError("INVALID_COMBINATION", "combination id cannot be negative")
	}
	return &CombinationLink{
		ID:            uuid.New(),
		ChannelID:     channelID,
		TemplateID:    variant.TemplateID,
		VariantID:     variant.ID,
		CombinationID: combinationID,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// IsBase reports whether the link marks a template's base variant
func (l *CombinationLink) IsBase() bool {
	return l.CombinationID == BaseCombinationID
}
