package integration

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Typed views over the remote records the engine consumes. Field names
// follow the PrestaShop webservice.

const CodeMalformedRecord = "MALFORMED_RECORD"

// MalformedRecordError reports a remote record missing a required field.
// It only affects that record.
func MalformedRecordError(resource Resource, id int64, field string) *SyncError {
	return newSyncError(KindMalformedRecord, CodeMalformedRecord,
		"Remote %s record %d is malformed: %s", resource.Singular(), id, field)
}

// RemoteOrder is a remote customer order
type RemoteOrder struct {
	ID                    int64
	Reference             string
	CustomerID            int64
	InvoiceAddressID      int64
	DeliveryAddressID     int64
	CurrencyID            int64
	LanguageID            int64
	CurrentState          int64
	DateAdd               string
	DateUpd               string
	TotalPaidTaxExcl      decimal.Decimal
	TotalShippingTaxExcl  decimal.Decimal
	TotalDiscountsTaxExcl decimal.Decimal
	Rows                  []RemoteOrderRow
}

// RemoteOrderRow is one product line of a remote order
type RemoteOrderRow struct {
	ID               int64
	ProductID        int64
	CombinationID    int64
	Name             string
	Reference        string
	Quantity         decimal.Decimal
	UnitPriceTaxExcl decimal.Decimal
}

// ParseOrder reads an order record
func ParseOrder(rec RemoteRecord) (*RemoteOrder, error) {
	o := &RemoteOrder{
		ID:                rec.ID(),
		Reference:         strings.TrimSpace(rec.String("reference")),
		CustomerID:        rec.Int64("id_customer"),
		InvoiceAddressID:  rec.Int64("id_address_invoice"),
		DeliveryAddressID: rec.Int64("id_address_delivery"),
		CurrencyID:        rec.Int64("id_currency"),
		LanguageID:        rec.Int64("id_lang"),
		CurrentState:      rec.Int64("current_state"),
		DateAdd:           rec.String("date_add"),
		DateUpd:           rec.String("date_upd"),
	}
	required := []struct {
		field string
		value int64
	}{
		{"id", o.ID},
		{"id_customer", o.CustomerID},
		{"id_address_invoice", o.InvoiceAddressID},
		{"id_address_delivery", o.DeliveryAddressID},
		{"id_currency", o.CurrencyID},
		{"current_state", o.CurrentState},
	}
	for _, r := range required {
		if r.value <= 0 {
			return nil, MalformedRecordError(ResourceOrders, o.ID, "missing "+r.field)
		}
	}

	var err error
	if o.TotalPaidTaxExcl, err = rec.Decimal("total_paid_tax_excl"); err != nil {
		return nil, MalformedRecordError(ResourceOrders, o.ID, err.Error())
	}
	if o.TotalShippingTaxExcl, err = rec.Decimal("total_shipping_tax_excl"); err != nil {
		return nil, MalformedRecordError(ResourceOrders, o.ID, err.Error())
	}
	if o.TotalDiscountsTaxExcl, err = rec.Decimal("total_discounts_tax_excl"); err != nil {
		return nil, MalformedRecordError(ResourceOrders, o.ID, err.Error())
	}

	for _, row := range rec.Rows("order_rows") {
		r := RemoteOrderRow{
			ID:            row.ID(),
			ProductID:     row.Int64("product_id"),
			CombinationID: row.Int64("product_attribute_id"),
			Name:          row.String("product_name"),
			Reference:     row.String("product_reference"),
		}
		if r.ProductID <= 0 {
			return nil, MalformedRecordError(ResourceOrders, o.ID, "order row without product_id")
		}
		if r.Quantity, err = row.Decimal("product_quantity"); err != nil {
			return nil, MalformedRecordError(ResourceOrders, o.ID, err.Error())
		}
		if r.UnitPriceTaxExcl, err = row.Decimal("unit_price_tax_excl"); err != nil {
			return nil, MalformedRecordError(ResourceOrders, o.ID, err.Error())
		}
		o.Rows = append(o.Rows, r)
	}
	return o, nil
}

// RemoteCustomer is a remote customer account
type RemoteCustomer struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	LanguageID int64
}

// ParseCustomer reads a customer record
func ParseCustomer(rec RemoteRecord) (*RemoteCustomer, error) {
	c := &RemoteCustomer{
		ID:         rec.ID(),
		FirstName:  rec.String("firstname"),
		LastName:   rec.String("lastname"),
		Email:      strings.TrimSpace(rec.String("email")),
		LanguageID: rec.Int64("id_lang"),
	}
	if c.ID <= 0 {
		return nil, MalformedRecordError(ResourceCustomers, c.ID, "missing id")
	}
	return c, nil
}

// RemoteAddress is a remote postal address
type RemoteAddress struct {
	ID          int64
	CountryID   int64
	StateID     int64
	FirstName   string
	LastName    string
	Address1    string
	Address2    string
	Postcode    string
	City        string
	Phone       string
	PhoneMobile string
}

// ParseAddress reads an address record. The id may be 0 for address
// payloads embedded in other records.
func ParseAddress(rec RemoteRecord) *RemoteAddress {
	return &RemoteAddress{
		ID:          rec.ID(),
		CountryID:   rec.Int64("id_country"),
		StateID:     rec.Int64("id_state"),
		FirstName:   rec.String("firstname"),
		LastName:    rec.String("lastname"),
		Address1:    rec.String("address1"),
		Address2:    rec.String("address2"),
		Postcode:    rec.String("postcode"),
		City:        rec.String("city"),
		Phone:       rec.String("phone"),
		PhoneMobile: rec.String("phone_mobile"),
	}
}

// DeclaresCountry reports whether the address names a country
func (a *RemoteAddress) DeclaresCountry() bool { return a.CountryID > 0 }

// DeclaresState reports whether the address names a state
func (a *RemoteAddress) DeclaresState() bool { return a.StateID > 0 }

// RemoteProduct is a remote product, the parent of combinations
type RemoteProduct struct {
	ID             int64
	Reference      string
	Price          decimal.Decimal
	WholesalePrice decimal.Decimal
	Name           []LocaleVariant
	Description    []LocaleVariant
}

// ParseProduct reads a product record
func ParseProduct(rec RemoteRecord) (*RemoteProduct, error) {
	p := &RemoteProduct{
		ID:          rec.ID(),
		Reference:   strings.TrimSpace(rec.String("reference")),
		Name:        rec.Localized("name"),
		Description: rec.Localized("description"),
	}
	if p.ID <= 0 {
		return nil, MalformedRecordError(ResourceProducts, p.ID, "missing id")
	}
	var err error
	if p.Price, err = rec.Decimal("price"); err != nil {
		return nil, MalformedRecordError(ResourceProducts, p.ID, err.Error())
	}
	if p.WholesalePrice, err = rec.Decimal("wholesale_price"); err != nil {
		return nil, MalformedRecordError(ResourceProducts, p.ID, err.Error())
	}
	return p, nil
}

// RemoteCombination is a remote product variant
type RemoteCombination struct {
	ID        int64
	ProductID int64
	Reference string
}

// ParseCombination reads a combination record
func ParseCombination(rec RemoteRecord) (*RemoteCombination, error) {
	c := &RemoteCombination{
		ID:        rec.ID(),
		ProductID: rec.Int64("id_product"),
		Reference: strings.TrimSpace(rec.String("reference")),
	}
	if c.ID <= 0 || c.ProductID <= 0 {
		return nil, MalformedRecordError(ResourceCombinations, c.ID, "missing id or id_product")
	}
	return c, nil
}

// RemoteLanguage is a language enabled on the remote store
type RemoteLanguage struct {
	ID           int64
	ISOCode      string
	LanguageCode string
}

// ParseLanguage reads a language record
func ParseLanguage(rec RemoteRecord) *RemoteLanguage {
	return &RemoteLanguage{
		ID:           rec.ID(),
		ISOCode:      strings.TrimSpace(rec.String("iso_code")),
		LanguageCode: strings.TrimSpace(rec.String("language_code")),
	}
}

// Tag returns the most specific locale tag of the language
func (l *RemoteLanguage) Tag() string {
	if l.LanguageCode != "" {
		return l.LanguageCode
	}
	return l.ISOCode
}

// RemoteOrderState is one entry of the remote order-state vocabulary
type RemoteOrderState struct {
	ID   int64
	Name []LocaleVariant
}

// ParseOrderState reads an order state record
func ParseOrderState(rec RemoteRecord) *RemoteOrderState {
	return &RemoteOrderState{ID: rec.ID(), Name: rec.Localized("name")}
}

// RemoteCode is the code-bearing part of a country, state or currency
type RemoteCode struct {
	ID        int64
	ISOCode   string
	CountryID int64
}

// ParseCode reads iso_code (and id_country for states)
func ParseCode(rec RemoteRecord) *RemoteCode {
	return &RemoteCode{
		ID:        rec.ID(),
		ISOCode:   strings.ToUpper(strings.TrimSpace(rec.String("iso_code"))),
		CountryID: rec.Int64("id_country"),
	}
}
