package replicate

import (
	"context"
	"fmt"
	"net/http"
)

type Source string

const (
	SourceWeb Source = "web"
	SourceAPI Source = "api"
)

// Prediction is one inference run of a model version, tracked by the API
// through the Status lifecycle. Input and Output are intentionally
// schema-less: their shape is defined per model.
type Prediction struct {
	ID      string           `json:"id"`
	Model   string           `json:"model,omitempty"`
	Version string           `json:"version"`
	Status  Status           `json:"status"`
	Input   PredictionInput  `json:"input"`
	Output  PredictionOutput `json:"output,omitempty"`
	Source  Source           `json:"source,omitempty"`

	// Error is a string for most models, but the API reserves the right
	// to return structured error values.
	Error interface{} `json:"error,omitempty"`

	Logs    *string            `json:"logs,omitempty"`
	Metrics *PredictionMetrics `json:"metrics,omitempty"`

	Webhook             *string            `json:"webhook,omitempty"`
	WebhookEventsFilter []WebhookEventType `json:"webhook_events_filter,omitempty"`

	// URLs maps action names ("get", "cancel", and "stream" when
	// requested) to absolute URLs for this prediction.
	URLs map[string]string `json:"urls,omitempty"`

	CreatedAt   string  `json:"created_at"`
	StartedAt   *string `json:"started_at,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

type PredictionInput map[string]interface{}
type PredictionOutput interface{}

type PredictionMetrics struct {
	PredictTime *float64 `json:"predict_time,omitempty"`
}

// CreatePrediction sends a request to the Replicate API to create a
// prediction for the given model version. The returned prediction is a
// snapshot; poll GetPrediction for progress.
func (r *Client) CreatePrediction(ctx context.Context, version string, input PredictionInput, webhook *Webhook, stream bool) (*Prediction, error) {
	data := map[string]interface{}{
		"version": version,
		"input":   input,
	}

	if webhook != nil {
		data["webhook"] = webhook.URL
		if len(webhook.Events) > 0 {
			data["webhook_events_filter"] = webhook.Events
		}
	}

	if stream {
		data["stream"] = true
	}

	prediction := &Prediction{}
	err := r.fetch(ctx, http.MethodPost, "/predictions", data, prediction)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}

	return prediction, nil
}

// CreatePredictionWithModel creates a prediction addressed by model owner
// and name, running the model's latest version.
func (r *Client) CreatePredictionWithModel(ctx context.Context, modelOwner string, modelName string, input PredictionInput, webhook *Webhook, stream bool) (*Prediction, error) {
	data := map[string]interface{}{
		"input": input,
	}

	if webhook != nil {
		data["webhook"] = webhook.URL
		if len(webhook.Events) > 0 {
			data["webhook_events_filter"] = webhook.Events
		}
	}

	if stream {
		data["stream"] = true
	}

	prediction := &Prediction{}
	path := fmt.Sprintf("/models/%s/%s/predictions", modelOwner, modelName)
	err := r.fetch(ctx, http.MethodPost, path, data, prediction)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction: %w", err)
	}

	return prediction, nil
}

// GetPrediction retrieves the current snapshot of a prediction by its ID.
func (r *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	prediction := &Prediction{}
	err := r.fetch(ctx, http.MethodGet, fmt.Sprintf("/predictions/%s", id), nil, prediction)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return prediction, nil
}

// ListPredictions returns the first page of predictions created by the
// authenticated account. Use Paginate or the page's Next cursor to continue.
func (r *Client) ListPredictions(ctx context.Context) (*Page[Prediction], error) {
	response := &Page[Prediction]{}
	err := r.fetch(ctx, http.MethodGet, "/predictions", nil, response)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	return response, nil
}

// CancelPrediction asks the API to cancel a running prediction. Canceling
// a prediction that already reached a terminal state fails with *APIError.
func (r *Client) CancelPrediction(ctx context.Context, id string) (*Prediction, error) {
	prediction := &Prediction{}
	err := r.fetch(ctx, http.MethodPost, fmt.Sprintf("/predictions/%s/cancel", id), nil, prediction)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel prediction: %w", err)
	}
	return prediction, nil
}
