package replicate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replicate-community/replicate-go"
)

func TestGetModel(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models/replicate/hello-world", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"url": "https://replicate.com/replicate/hello-world",
			"owner": "replicate",
			"name": "hello-world",
			"description": "A tiny model that says hello",
			"visibility": "public",
			"github_url": "https://github.com/replicate/cog-examples",
			"paper_url": "",
			"license_url": "",
			"run_count": 5681081,
			"cover_image_url": "...",
			"default_example": null,
			"latest_version": {
				"id": "5c7d5dc6dd8bf75c1acaa8565735e7986bc5b66206b55cca93cb72c9bf15ccaa",
				"created_at": "2022-04-26T19:29:04.418669Z",
				"cog_version": "0.3.0",
				"openapi_schema": {}
			}
		}`))
	}))
	defer mockServer.Close()

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(mockServer.URL),
	)
	require.NoError(t, err)

	model, err := client.GetModel(context.Background(), "replicate", "hello-world")
	require.NoError(t, err)

	assert.Equal(t, "replicate", model.Owner)
	assert.Equal(t, "hello-world", model.Name)
	assert.Equal(t, "public", model.Visibility)
	require.NotNil(t, model.LatestVersion)
	assert.Equal(t, "5c7d5dc6dd8bf75c1acaa8565735e7986bc5b66206b55cca93cb72c9bf15ccaa", model.LatestVersion.ID)
	assert.NotEmpty(t, model.RawJSON())
}

func TestListModels(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)

		response := replicate.Page[replicate.Model]{
			Results: []replicate.Model{
				{Owner: "jdoe", Name: "super-cool-model", Visibility: "public"},
				{Owner: "asmith", Name: "another-awesome-model", Visibility: "private"},
			},
		}

		w.WriteHeader(http.StatusOK)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	defer mockServer.Close()

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(mockServer.URL),
	)
	require.NoError(t, err)

	page, err := client.ListModels(context.Background())
	require.NoError(t, err)

	require.Len(t, page.Results, 2)
	assert.Equal(t, "super-cool-model", page.Results[0].Name)
	assert.Nil(t, page.Next)
}

func TestGetModelVersion(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models/replicate/hello-world/versions/5c7d5dc6", r.URL.Path)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"id": "5c7d5dc6",
			"created_at": "2022-04-26T19:29:04.418669Z",
			"cog_version": "0.3.0",
			"openapi_schema": {"openapi": "3.0.2"}
		}`))
	}))
	defer mockServer.Close()

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(mockServer.URL),
	)
	require.NoError(t, err)

	version, err := client.GetModelVersion(context.Background(), "replicate", "hello-world", "5c7d5dc6")
	require.NoError(t, err)

	assert.Equal(t, "5c7d5dc6", version.ID)
	assert.Equal(t, "0.3.0", version.CogVersion)
	assert.Equal(t, map[string]interface{}{"openapi": "3.0.2"}, version.OpenAPISchema)
}

func TestListModelVersions(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models/replicate/hello-world/versions", r.URL.Path)

		response := replicate.Page[replicate.ModelVersion]{
			Results: []replicate.ModelVersion{
				{ID: "v2", CreatedAt: "2022-04-26T19:29:04.418669Z", CogVersion: "0.3.0"},
				{ID: "v1", CreatedAt: "2022-03-21T13:01:04.418669Z", CogVersion: "0.2.0"},
			},
		}

		w.WriteHeader(http.StatusOK)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	defer mockServer.Close()

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(mockServer.URL),
	)
	require.NoError(t, err)

	page, err := client.ListModelVersions(context.Background(), "replicate", "hello-world")
	require.NoError(t, err)

	require.Len(t, page.Results, 2)
	assert.Equal(t, "v2", page.Results[0].ID)
	assert.Equal(t, "v1", page.Results[1].ID)
}

func TestGetLatestModelVersion(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := replicate.Page[replicate.ModelVersion]{
			Results: []replicate.ModelVersion{
				{ID: "v2", CogVersion: "0.3.0"},
				{ID: "v1", CogVersion: "0.2.0"},
			},
		}

		w.WriteHeader(http.StatusOK)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	defer mockServer.Close()

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(mockServer.URL),
	)
	require.NoError(t, err)

	version, err := client.GetLatestModelVersion(context.Background(), "replicate", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "v2", version.ID)
}

func TestGetLatestModelVersionEmpty(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"previous": null, "next": null, "results": []}`))
	}))
	defer mockServer.Close()

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(mockServer.URL),
	)
	require.NoError(t, err)

	_, err = client.GetLatestModelVersion(context.Background(), "replicate", "hello-world")
	require.ErrorContains(t, err, "no versions found")
}

func TestDeleteModelVersion(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/models/replicate/hello-world/versions/5c7d5dc6", r.URL.Path)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer mockServer.Close()

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(mockServer.URL),
	)
	require.NoError(t, err)

	err = client.DeleteModelVersion(context.Background(), "replicate", "hello-world", "5c7d5dc6")
	require.NoError(t, err)
}

func TestModelRoundTripPreservesUnknownFields(t *testing.T) {
	raw := []byte(`{"owner": "replicate", "name": "hello-world", "some_future_field": 42}`)

	var model replicate.Model
	require.NoError(t, json.Unmarshal(raw, &model))

	data, err := json.Marshal(model)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(data))
}
