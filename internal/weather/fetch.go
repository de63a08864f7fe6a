package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

const forecastPath = "/v1/forecast"

// ForecastPath builds the request path for the current-conditions block
// of the given location.
func ForecastPath(loc Location) string {
	values := url.Values{}
	values.Set("latitude", loc.Latitude)
	values.Set("longitude", loc.Longitude)
	values.Set("current_weather", "true")

	return forecastPath + "?" + values.Encode()
}

// Fetch performs the single GET of a run. Only a 200 answer is accepted;
// every other status, including the rest of 2xx, is a FetchError.
func Fetch(ctx context.Context, getter Getter, loc Location) (RawObservation, error) {
	status, body, err := getter.Get(ctx, ForecastPath(loc))
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if status != http.StatusOK {
		return nil, &FetchError{StatusCode: status}
	}

	raw, err := DecodeObservation(body)
	if err != nil {
		return nil, &FetchError{StatusCode: status, Err: err}
	}
	return raw, nil
}

// DecodeObservation decodes a JSON object keeping numbers as json.Number,
// so integer codes survive without a float round trip.
func DecodeObservation(body []byte) (RawObservation, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw RawObservation
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("empty payload")
	}
	return raw, nil
}
