package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Model is an immutable snapshot of a published model as of fetch time.
type Model struct {
	URL            string        `json:"url"`
	Owner          string        `json:"owner"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Visibility     string        `json:"visibility"`
	GithubURL      string        `json:"github_url"`
	PaperURL       string        `json:"paper_url"`
	LicenseURL     string        `json:"license_url"`
	RunCount       int           `json:"run_count"`
	CoverImageURL  string        `json:"cover_image_url"`
	DefaultExample *Prediction   `json:"default_example"`
	LatestVersion  *ModelVersion `json:"latest_version"`

	rawJSON json.RawMessage `json:"-"`
}

func (m Model) MarshalJSON() ([]byte, error) {
	if m.rawJSON != nil {
		return m.rawJSON, nil
	}
	type Alias Model
	return json.Marshal(&struct{ *Alias }{Alias: (*Alias)(&m)})
}

func (m *Model) UnmarshalJSON(data []byte) error {
	m.rawJSON = data
	type Alias Model
	alias := &struct{ *Alias }{Alias: (*Alias)(m)}
	return json.Unmarshal(data, alias)
}

func (m *Model) RawJSON() json.RawMessage {
	return m.rawJSON
}

// ModelVersion is one pinned, immutable version of a model. OpenAPISchema
// is kept opaque: each model declares its own input and output schema.
type ModelVersion struct {
	ID            string      `json:"id"`
	CreatedAt     string      `json:"created_at"`
	CogVersion    string      `json:"cog_version"`
	OpenAPISchema interface{} `json:"openapi_schema"`

	rawJSON json.RawMessage `json:"-"`
}

func (m ModelVersion) MarshalJSON() ([]byte, error) {
	if m.rawJSON != nil {
		return m.rawJSON, nil
	}
	type Alias ModelVersion
	return json.Marshal(&struct{ *Alias }{Alias: (*Alias)(&m)})
}

func (m *ModelVersion) UnmarshalJSON(data []byte) error {
	m.rawJSON = data
	type Alias ModelVersion
	alias := &struct{ *Alias }{Alias: (*Alias)(m)}
	return json.Unmarshal(data, alias)
}

func (m *ModelVersion) RawJSON() json.RawMessage {
	return m.rawJSON
}

// GetModel retrieves information about a model.
func (r *Client) GetModel(ctx context.Context, modelOwner string, modelName string) (*Model, error) {
	model := &Model{}
	err := r.fetch(ctx, http.MethodGet, fmt.Sprintf("/models/%s/%s", modelOwner, modelName), nil, model)
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}
	return model, nil
}

// ListModels returns the first page of publicly available models.
func (r *Client) ListModels(ctx context.Context) (*Page[Model], error) {
	response := &Page[Model]{}
	err := r.fetch(ctx, http.MethodGet, "/models", nil, response)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	return response, nil
}

// GetModelVersion retrieves a specific version of a model.
func (r *Client) GetModelVersion(ctx context.Context, modelOwner string, modelName string, versionID string) (*ModelVersion, error) {
	version := &ModelVersion{}
	path := fmt.Sprintf("/models/%s/%s/versions/%s", modelOwner, modelName, versionID)
	err := r.fetch(ctx, http.MethodGet, path, nil, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get model version: %w", err)
	}
	return version, nil
}

// ListModelVersions lists the versions of a model, most recent first.
func (r *Client) ListModelVersions(ctx context.Context, modelOwner string, modelName string) (*Page[ModelVersion], error) {
	response := &Page[ModelVersion]{}
	path := fmt.Sprintf("/models/%s/%s/versions", modelOwner, modelName)
	err := r.fetch(ctx, http.MethodGet, path, nil, response)
	if err != nil {
		return nil, fmt.Errorf("failed to list model versions: %w", err)
	}
	return response, nil
}

// GetLatestModelVersion returns the most recent version of a model.
func (r *Client) GetLatestModelVersion(ctx context.Context, modelOwner string, modelName string) (*ModelVersion, error) {
	versions, err := r.ListModelVersions(ctx, modelOwner, modelName)
	if err != nil {
		return nil, err
	}

	if len(versions.Results) == 0 {
		return nil, fmt.Errorf("no versions found for %s/%s", modelOwner, modelName)
	}

	latest := versions.Results[0]
	return &latest, nil
}

// DeleteModelVersion deletes a model version owned by the authenticated
// account.
func (r *Client) DeleteModelVersion(ctx context.Context, modelOwner string, modelName string, versionID string) error {
	path := fmt.Sprintf("/models/%s/%s/versions/%s", modelOwner, modelName, versionID)
	err := r.fetch(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete model version: %w", err)
	}
	return nil
}
