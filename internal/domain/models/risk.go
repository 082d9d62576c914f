package models

// RiskMetrics summarizes return-series risk the way the calculation engine
// reports it. Annualized where applicable.
type RiskMetrics struct {
	Volatility  float64 `json:"volatility"`
	VaR95       float64 `json:"var_95"`
	VaR99       float64 `json:"var_99"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	Sortino     float64 `json:"sortino_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// RiskReport is the API-facing risk summary for one symbol.
type RiskReport struct {
	Symbol  string      `json:"symbol"`
	Samples int         `json:"samples"` // number of returns used
	Metrics RiskMetrics `json:"metrics"`
}
