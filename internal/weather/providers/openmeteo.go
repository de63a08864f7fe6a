package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultOpenMeteoBaseURL is the public Open-Meteo host.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com"

// OpenMeteoClient executes GET requests against an Open-Meteo host. It
// implements weather.Getter.
type OpenMeteoClient struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient(client *http.Client, baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &OpenMeteoClient{
		name:    "openmeteo",
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: cb,
	}
}

func (c *OpenMeteoClient) Name() string {
	return c.name
}

// Get issues a GET for path and returns the status code and body.
func (c *OpenMeteoClient) Get(ctx context.Context, path string) (int, []byte, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, c.client, c.circuit, req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", c.name, err)
	}
	return resp.status, resp.body, nil
}
