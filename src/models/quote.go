package models

// MQuoteMetadata is the profile panel data. Every field is looked up independently;
// a security without, e.g., a sector still yields the rest.
type MQuoteMetadata struct {
	Ticker          string         `json:"ticker"`
	CurrentPrice    Field[float64] `json:"current_price"`
	PreviousClose   Field[float64] `json:"previous_close"`
	ShortName       Field[string]  `json:"short_name"`
	LongName        Field[string]  `json:"long_name"`
	Currency        Field[string]  `json:"currency"`
	Exchange        Field[string]  `json:"exchange"`
	InstrumentType  Field[string]  `json:"instrument_type"`
	Sector          Field[string]  `json:"sector"`
	Industry        Field[string]  `json:"industry"`
	Website         Field[string]  `json:"website"`
	BusinessSummary Field[string]  `json:"business_summary"`
	LogoURL         Field[string]  `json:"logo_url"`
}

// DisplayName prefers the short name, then the long name, then the ticker.
func (m MQuoteMetadata) DisplayName() string {
	if m.ShortName.Present && m.ShortName.Value != "" {
		return m.ShortName.Value
	}
	if m.LongName.Present && m.LongName.Value != "" {
		return m.LongName.Value
	}
	return m.Ticker
}
