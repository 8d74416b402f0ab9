package replicate_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/replicate-community/replicate-go"
)

func TestStreamPrediction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		fmt.Fprint(w, `event: output
data: foo

event: output
data: bar

event: done

`)
	}))
	t.Cleanup(ts.Close)

	prediction := &replicate.Prediction{
		URLs: map[string]string{
			"stream": ts.URL,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	client, err := replicate.NewClient(replicate.WithToken("test-token"))
	require.NoError(t, err)

	sseChan, errChan := client.StreamPrediction(ctx, prediction)

	var outputs []string
	for event := range sseChan {
		assert.Equal(t, "output", event.Type)
		outputs = append(outputs, event.Data)
	}
	require.NoError(t, <-errChan)

	assert.Equal(t, []string{"foo", "bar"}, outputs)
}

func TestStreamPredictionMultiLineData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `event: output
data: first line
data: second line

event: done

`)
	}))
	t.Cleanup(ts.Close)

	prediction := &replicate.Prediction{
		URLs: map[string]string{"stream": ts.URL},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	client, err := replicate.NewClient(replicate.WithToken("test-token"))
	require.NoError(t, err)

	sseChan, errChan := client.StreamPrediction(ctx, prediction)

	event := <-sseChan
	assert.Equal(t, "first line\nsecond line", event.Data)

	for range sseChan {
	}
	require.NoError(t, <-errChan)
}

func TestStreamPredictionErrorEvent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `event: error
data: {"detail": "model failed"}

event: done

`)
	}))
	t.Cleanup(ts.Close)

	prediction := &replicate.Prediction{
		URLs: map[string]string{"stream": ts.URL},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	client, err := replicate.NewClient(replicate.WithToken("test-token"))
	require.NoError(t, err)

	sseChan, errChan := client.StreamPrediction(ctx, prediction)

	for range sseChan {
	}

	err = <-errChan
	require.Error(t, err)

	var apiErr *replicate.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "model failed", apiErr.Detail)
}

func TestStreamPredictionNotSupported(t *testing.T) {
	client, err := replicate.NewClient(replicate.WithToken("test-token"))
	require.NoError(t, err)

	prediction := &replicate.Prediction{}

	sseChan, errChan := client.StreamPrediction(context.Background(), prediction)

	for range sseChan {
	}
	assert.ErrorIs(t, <-errChan, replicate.ErrStreamNotSupported)
}

func TestStreamCreatesPrediction(t *testing.T) {
	var streamServer *httptest.Server
	streamServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `event: output
data: hello

event: done

`)
	}))
	t.Cleanup(streamServer.Close)

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predictions", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc123", body["version"])
		assert.Equal(t, true, body["stream"])

		response := replicate.Prediction{
			ID:      "ufawqhfynnddngldkgtslldrkq",
			Version: "abc123",
			Status:  replicate.Starting,
			URLs: map[string]string{
				"stream": streamServer.URL,
			},
		}

		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(apiServer.Close)

	client, err := replicate.NewClient(
		replicate.WithToken("test-token"),
		replicate.WithBaseURL(apiServer.URL),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	sseChan, errChan := client.Stream(ctx, "owner/name:abc123", replicate.PredictionInput{"prompt": "hi"}, nil)

	var outputs []string
	for event := range sseChan {
		outputs = append(outputs, event.Data)
	}
	require.NoError(t, <-errChan)

	assert.Equal(t, []string{"hello"}, outputs)
}
