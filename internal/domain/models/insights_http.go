package models

// Requests for insight HTTP endpoints. Defined in domain for consistency and reuse.

type InsightsRequest struct {
	Symbols []string `query:"symbols" json:"symbols" validate:"required,min=1,max=200,dive,required"`
}

type RiskRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"30" validate:"gte=2,lte=5000"`
}
