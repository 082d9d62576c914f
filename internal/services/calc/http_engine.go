package calc

import (
	"context"
	"fmt"
	"time"

	"AlphaPull/internal/domain/models"
	domsvc "AlphaPull/internal/domain/service"
	xhttp "AlphaPull/pkg/http"
)

// HTTPEngine is a CalculationEngine backed by a remote indicator service.
// It lets the indicator math run out of process while the models keep the
// same contract as with the local engine.
type HTTPEngine struct {
	baseURL string
	client  *xhttp.Client
	timeout time.Duration
}

// NewHTTPEngine builds a remote engine client for the given base URL.
func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HTTPEngine{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
		timeout: timeout,
	}
}

type seriesRequest struct {
	Prices []float64 `json:"prices"`
	Period int       `json:"period"`
}

type seriesResponse struct {
	Values []float64 `json:"values"`
}

type riskRequest struct {
	Returns []float64 `json:"returns"`
}

func (e *HTTPEngine) postJSON(path string, payload interface{}, dest interface{}) error {
	if e.client == nil || e.baseURL == "" {
		return fmt.Errorf("calc http client not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    e.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

func (e *HTTPEngine) series(path string, prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%s: period must be greater than 0", path)
	}
	var resp seriesResponse
	if err := e.postJSON(path, seriesRequest{Prices: prices, Period: period}, &resp); err != nil {
		return nil, err
	}
	if resp.Values == nil {
		return []float64{}, nil
	}
	return resp.Values, nil
}

func (e *HTTPEngine) SMA(prices []float64, period int) ([]float64, error) {
	return e.series("/indicators/sma", prices, period)
}

func (e *HTTPEngine) EMA(prices []float64, period int) ([]float64, error) {
	return e.series("/indicators/ema", prices, period)
}

func (e *HTTPEngine) RSI(prices []float64, period int) ([]float64, error) {
	return e.series("/indicators/rsi", prices, period)
}

func (e *HTTPEngine) RiskMetrics(returns []float64) (models.RiskMetrics, error) {
	if len(returns) == 0 {
		return models.RiskMetrics{}, fmt.Errorf("risk metrics: empty returns")
	}
	var out models.RiskMetrics
	if err := e.postJSON("/indicators/risk", riskRequest{Returns: returns}, &out); err != nil {
		return models.RiskMetrics{}, err
	}
	return out, nil
}

var _ domsvc.CalculationEngine = (*HTTPEngine)(nil)
