package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker"
)

// maxBodyBytes caps how much of a response body we read.
const maxBodyBytes = 1 << 20

var (
	errServerError  = errors.New("server error")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

type response struct {
	status int
	body   []byte
}

// doRequest executes a single request through the circuit breaker. There is
// no retry: a failed request fails the run. Server errors count against the
// breaker but are still handed back to the caller as a status.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (response, error) {
	if client == nil {
		return response{}, errNoHTTPClient
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, fmt.Errorf("read body: %w", readErr)
		}

		r := response{status: resp.StatusCode, body: body}
		if resp.StatusCode >= 500 {
			return r, errServerError
		}
		return r, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return response{}, fmt.Errorf("%w: %v", errCircuitOpen, err)
	}
	if err != nil && !errors.Is(err, errServerError) {
		return response{}, err
	}

	r, ok := result.(response)
	if !ok {
		return response{}, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return r, nil
}
