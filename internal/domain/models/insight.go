package models

// InsightDirection is the directional call of an alpha model.
type InsightDirection string

const (
	DirectionUp   InsightDirection = "Up"
	DirectionDown InsightDirection = "Down"
)

// DefaultConfidence is used wherever an insight carries no confidence.
// Shared between the alpha models and the composite averaging step.
const DefaultConfidence = 0.5

// Insight is a single directional trading call with confidence, magnitude
// and source attribution. Immutable once constructed; a model never emits
// more than one insight per symbol per GenerateInsights call.
type Insight struct {
	Symbol      string           `json:"symbol"`
	Direction   InsightDirection `json:"direction"`
	Confidence  *float64         `json:"confidence,omitempty"` // in [0,1]; nil means unknown
	Magnitude   float64          `json:"magnitude"`            // > 0, currently always 1.0
	SourceModel string           `json:"source_model"`
}

// NewInsight builds an insight with the fixed magnitude convention.
func NewInsight(symbol string, direction InsightDirection, confidence float64, sourceModel string) Insight {
	c := confidence
	return Insight{
		Symbol:      symbol,
		Direction:   direction,
		Confidence:  &c,
		Magnitude:   1.0,
		SourceModel: sourceModel,
	}
}

// ConfidenceOrDefault returns the confidence, or DefaultConfidence when absent.
func (i Insight) ConfidenceOrDefault() float64 {
	if i.Confidence == nil {
		return DefaultConfidence
	}
	return *i.Confidence
}
