package models

// Notice is a non-fatal flag raised while normalizing input
type Notice struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Analysis is the response envelope for one submission
type Analysis struct {
	RequestID      string         `json:"request_id"`
	Category       Category       `json:"category"`
	CategoryLabel  string         `json:"category_label"`
	UsedImage      bool           `json:"used_image"`
	Notices        []Notice       `json:"notices,omitempty"`
	Estimate       *PriceEstimate `json:"estimate"`
	Trend          *TrendSeries   `json:"trend,omitempty"`
	ChartAvailable bool           `json:"chart_available"`
	Chart          string         `json:"-"`
	Message        string         `json:"message,omitempty"`
}
