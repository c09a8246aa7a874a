package coingecko

type marketItem struct {
	ID                    string   `json:"id"`
	Symbol                string   `json:"symbol"`
	CurrentPrice          *float64 `json:"current_price"`
	MarketCap             *float64 `json:"market_cap"`
	MarketCapRank         *int     `json:"market_cap_rank"`
	FullyDilutedValuation *float64 `json:"fully_diluted_valuation"`
	TotalVolume           *float64 `json:"total_volume"`
	High24h               *float64 `json:"high_24h"`
	Low24h                *float64 `json:"low_24h"`
	Change24h             *float64 `json:"price_change_percentage_24h"`
	Change1hInCurrency    *float64 `json:"price_change_percentage_1h_in_currency"`
	Change7dInCurrency    *float64 `json:"price_change_percentage_7d_in_currency"`
}

type currencyValues map[string]*float64

type coinDetail struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	MarketData struct {
		CurrentPrice          currencyValues `json:"current_price"`
		Change1hInCurrency    currencyValues `json:"price_change_percentage_1h_in_currency"`
		Change24h             *float64       `json:"price_change_percentage_24h"`
		Change7d              *float64       `json:"price_change_percentage_7d"`
		High24h               currencyValues `json:"high_24h"`
		Low24h                currencyValues `json:"low_24h"`
		MarketCap             currencyValues `json:"market_cap"`
		FullyDilutedValuation currencyValues `json:"fully_diluted_valuation"`
		TotalVolume           currencyValues `json:"total_volume"`
		MarketCapRank         *int           `json:"market_cap_rank"`
	} `json:"market_data"`
}

// simplePrice is keyed by coin identifier, then by vs currency.
type simplePrice map[string]currencyValues

type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

func (v currencyValues) get(currency string) *float64 {
	if v == nil {
		return nil
	}
	return v[currency]
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
