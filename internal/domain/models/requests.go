package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required,min=1,max=12"`
	Mode   string `query:"mode" json:"mode" default:"short_term" validate:"omitempty,min=1,max=32"`
}

type TopInstrumentsRequest struct {
	N int `query:"n" json:"n" default:"5" validate:"gte=1,lte=50"`
}
