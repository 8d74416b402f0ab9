package replicate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidUTF8Data    = errors.New("invalid UTF-8 data")
	ErrStreamNotSupported = errors.New("streaming not supported for this prediction")
)

// SSEEvent represents a server-sent event.
type SSEEvent struct {
	Type string
	ID   string
	Data string
}

func (e *SSEEvent) decode(b []byte) error {
	data := [][]byte{}
	for _, line := range bytes.Split(b, []byte("\n")) {
		parts := bytes.SplitN(line, []byte{':'}, 2)
		field := string(parts[0])
		var value []byte
		if len(parts) == 2 {
			value = parts[1]
			value, _ = bytes.CutPrefix(value, []byte(" "))
		}

		switch field {
		case "id":
			e.ID = string(value)
		case "event":
			e.Type = string(value)
		case "data":
			data = append(data, value)
		default:
			// ignore the line
		}
	}

	joined := bytes.Join(data, []byte("\n"))
	if !utf8.Valid(joined) {
		return ErrInvalidUTF8Data
	}

	e.Data = string(joined)

	return nil
}

// Stream creates a prediction for the given "owner/name[:version]"
// identifier with streaming enabled and streams its output events.
func (r *Client) Stream(ctx context.Context, identifier string, input PredictionInput, webhook *Webhook) (<-chan SSEEvent, <-chan error) {
	sseChan := make(chan SSEEvent, 64)
	errChan := make(chan error, 64)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := ParseIdentifier(identifier)
		if err != nil {
			return err
		}

		var prediction *Prediction
		if id.Version == nil {
			prediction, err = r.CreatePredictionWithModel(ctx, id.Owner, id.Name, input, webhook, true)
		} else {
			prediction, err = r.CreatePrediction(ctx, *id.Version, input, webhook, true)
		}
		if err != nil {
			return err
		}

		return r.streamPrediction(ctx, prediction, sseChan, errChan)
	})

	go func() {
		defer close(sseChan)
		defer close(errChan)

		if err := g.Wait(); err != nil {
			errChan <- err
		}
	}()

	return sseChan, errChan
}

// StreamPrediction streams the output events of an existing prediction.
// The prediction must have been created with streaming enabled so that its
// URLs carry a "stream" entry.
func (r *Client) StreamPrediction(ctx context.Context, prediction *Prediction) (<-chan SSEEvent, <-chan error) {
	sseChan := make(chan SSEEvent, 64)
	errChan := make(chan error, 64)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.streamPrediction(ctx, prediction, sseChan, errChan)
	})

	go func() {
		defer close(sseChan)
		defer close(errChan)

		if err := g.Wait(); err != nil {
			errChan <- err
		}
	}()

	return sseChan, errChan
}

func (r *Client) streamPrediction(ctx context.Context, prediction *Prediction, sseChan chan SSEEvent, errChan chan error) error {
	url := prediction.URLs["stream"]
	if url == "" {
		return ErrStreamNotSupported
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	resp, err := r.c.Do(req)
	if err != nil {
		return &NetworkError{Method: req.Method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return unmarshalAPIError(resp, body)
	}

	reader := bufio.NewReader(resp.Body)
	var buf bytes.Buffer

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return &NetworkError{Method: req.Method, URL: url, Err: err}
		}

		buf.Write(line)

		// A blank line terminates the event.
		if !bytes.Equal(line, []byte("\n")) {
			continue
		}

		b := buf.Bytes()
		buf.Reset()

		event := SSEEvent{Type: "message"}
		if err := event.decode(b); err != nil {
			errChan <- err
			continue
		}

		switch event.Type {
		case "error":
			errChan <- unmarshalAPIError(nil, []byte(event.Data))
		case "done":
			return nil
		default:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case sseChan <- event:
			}
		}
	}
}
