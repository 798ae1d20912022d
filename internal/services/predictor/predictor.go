package predictor

import (
	"context"
	"fmt"
	"time"

	"osrs-flipper/internal/quant"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Predictor scores the success probability of a candidate trade.
type Predictor interface {
	Predict(ctx context.Context, features quant.PredictorFeatures) (float64, error)
}

// HTTPPredictor calls an external model service. A zero base URL disables
// it; callers fall back to neutral confidence.
type HTTPPredictor struct {
	http *resty.Client
	log  *logrus.Logger
}

type predictResponse struct {
	Probability float64 `json:"probability"`
	ModelName   string  `json:"model_name"`
}

func NewHTTPPredictor(baseURL string, log *logrus.Logger) *HTTPPredictor {
	if baseURL == "" {
		return nil
	}
	return &HTTPPredictor{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(200 * time.Millisecond),
		log: log,
	}
}

// Predict posts the feature vector to the model. Invalid features are
// rejected before the network call.
func (p *HTTPPredictor) Predict(ctx context.Context, features quant.PredictorFeatures) (float64, error) {
	if err := features.Validate(); err != nil {
		return 0, fmt.Errorf("invalid features: %w", err)
	}

	var body predictResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(features).
		SetResult(&body).
		Post("/predict")
	if err != nil {
		return 0, fmt.Errorf("predict request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return 0, fmt.Errorf("predict request: status %d", resp.StatusCode())
	}
	if body.Probability < 0 || body.Probability > 1 {
		return 0, fmt.Errorf("predict request: probability %v out of range", body.Probability)
	}
	return body.Probability, nil
}
