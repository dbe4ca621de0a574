package models

type TrendPoint struct {
	Month   int     `json:"month"`
	Label   string  `json:"label"`
	Price   float64 `json:"price"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Current bool    `json:"current,omitempty"`
}

// TrendSeries is synthetic chart data, never a market feed
type TrendSeries struct {
	Category  Category     `json:"category"`
	Base      float64      `json:"base"`
	Estimated bool         `json:"estimated"`
	Points    []TrendPoint `json:"points"`
}
