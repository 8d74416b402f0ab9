package replicate

import (
	"context"
	"net/http"
)

// Page represents a paginated response from Replicate's API.
//
// Previous and Next are opaque continuation URLs owned by the server;
// pass them back verbatim to fetch the adjacent page.
type Page[T any] struct {
	Previous *string `json:"previous,omitempty"`
	Next     *string `json:"next,omitempty"`
	Results  []T     `json:"results"`
}

// Paginate takes an initial Page and iterates through the remaining pages,
// sending each page's results on the returned channel. Iteration stops when
// a page has no next cursor, an error occurs, or the context is canceled.
func Paginate[T any](ctx context.Context, client *Client, initialPage *Page[T]) (<-chan []T, <-chan error) {
	resultsChan := make(chan []T)
	// Buffered so a failure can be reported even while the consumer is
	// still draining resultsChan.
	errChan := make(chan error, 1)

	go func() {
		defer close(resultsChan)
		defer close(errChan)

		select {
		case <-ctx.Done():
			errChan <- ctx.Err()
			return
		case resultsChan <- initialPage.Results:
		}

		nextURL := initialPage.Next
		for nextURL != nil {
			page := &Page[T]{}
			err := client.fetch(ctx, http.MethodGet, *nextURL, nil, page)
			if err != nil {
				errChan <- err
				return
			}

			select {
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			case resultsChan <- page.Results:
			}

			nextURL = page.Next
		}
	}()

	return resultsChan, errChan
}
