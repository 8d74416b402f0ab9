package replicate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an error returned by the Replicate API.
type APIError struct {
	// Type is a URI that identifies the error type.
	Type string `json:"type,omitempty"`

	// Title is a short human-readable summary of the error.
	Title string `json:"title,omitempty"`

	// Status is the HTTP status code.
	Status int `json:"status,omitempty"`

	// Detail is a human-readable explanation of the error.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI that identifies the specific occurrence of the error.
	Instance string `json:"instance,omitempty"`
}

func unmarshalAPIError(resp *http.Response, data []byte) *APIError {
	apiError := APIError{}
	err := json.Unmarshal(data, &apiError)
	if err != nil {
		apiError.Detail = fmt.Sprintf("Unknown error: %s", excerpt(data))
	}

	if apiError.Status == 0 && resp != nil {
		apiError.Status = resp.StatusCode
	}

	return &apiError
}

func (e APIError) Error() string {
	components := []string{}
	if e.Type != "" {
		components = append(components, e.Type)
	}

	if e.Title != "" {
		components = append(components, e.Title)
	}

	if e.Detail != "" {
		components = append(components, e.Detail)
	}

	output := strings.Join(components, ": ")
	if output == "" {
		output = "Unknown error"
	}

	if e.Status != 0 {
		output = fmt.Sprintf("%s (status %d)", output, e.Status)
	}

	if e.Instance != "" {
		output = fmt.Sprintf("%s (%s)", output, e.Instance)
	}

	return output
}

// NetworkError reports a request that never produced an HTTP response:
// the connection could not be established or was interrupted mid-flight.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to make request %s %s: %s", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodingError reports a 2xx response whose body could not be decoded
// into the expected type. Body holds the raw response for debugging.
type DecodingError struct {
	Method string
	URL    string
	Body   []byte
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("failed to decode response from %s %s: %s: %s", e.Method, e.URL, e.Err, excerpt(e.Body))
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

const excerptLen = 256

func excerpt(b []byte) string {
	if len(b) > excerptLen {
		return string(b[:excerptLen]) + "..."
	}
	return string(b)
}
