package models

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&CountryModel{},
		&SubdivisionModel{},
		&CurrencyModel{},
		&LanguageModel{},
		&ChannelModel{},
		&RemoteLinkModel{},
		&StateMappingModel{},
		&PartyModel{},
		&AddressModel{},
		&ContactMechanismModel{},
		&TemplateModel{},
		&TemplateTranslationModel{},
		&VariantModel{},
		&CombinationLinkModel{},
		&SaleModel{},
		&SaleLineModel{},
		&SaleExceptionModel{},
		&ShipmentModel{},
	}
}
