package weather

import (
	"errors"
	"testing"
)

func mustDecode(t *testing.T, body string) RawObservation {
	t.Helper()
	raw, err := DecodeObservation([]byte(body))
	if err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return raw
}

func TestTransformPreservesFields(t *testing.T) {
	record, err := Transform(mustDecode(t, berlinPayload), berlin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := WeatherRecord{
		Latitude:      52.52,
		Longitude:     13.405,
		Temperature:   18.3,
		WindSpeed:     9.4,
		WindDirection: 210,
		WeatherCode:   3,
	}
	if record != want {
		t.Fatalf("expected %+v, got %+v", want, record)
	}
}

func TestTransformIgnoresExtraFields(t *testing.T) {
	body := `{"latitude": 52.52, "elevation": 38,
		"current_weather": {"time": "2024-05-01T12:00", "temperature": -2.5, "windspeed": 0,
		"winddirection": 359.5, "weathercode": 71, "is_day": 1}}`

	record, err := Transform(mustDecode(t, body), berlin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Temperature != -2.5 || record.WindSpeed != 0 || record.WindDirection != 359.5 || record.WeatherCode != 71 {
		t.Fatalf("unexpected record: %+v", record)
	}
}

// TestTransformMissingFields verifies that every required key is reported
// by name instead of being defaulted.
func TestTransformMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"no block", `{"hourly": {}}`, "current_weather"},
		{"block not object", `{"current_weather": 12}`, "current_weather"},
		{"temperature", `{"current_weather": {"windspeed": 9.4, "winddirection": 210, "weathercode": 3}}`, "current_weather.temperature"},
		{"windspeed", `{"current_weather": {"temperature": 18.3, "winddirection": 210, "weathercode": 3}}`, "current_weather.windspeed"},
		{"winddirection", `{"current_weather": {"temperature": 18.3, "windspeed": 9.4, "weathercode": 3}}`, "current_weather.winddirection"},
		{"weathercode", `{"current_weather": {"temperature": 18.3, "windspeed": 9.4, "winddirection": 210}}`, "current_weather.weathercode"},
		{"null value", `{"current_weather": {"temperature": null, "windspeed": 9.4, "winddirection": 210, "weathercode": 3}}`, "current_weather.temperature"},
		{"string value", `{"current_weather": {"temperature": 18.3, "windspeed": "fast", "winddirection": 210, "weathercode": 3}}`, "current_weather.windspeed"},
		{"fractional code", `{"current_weather": {"temperature": 18.3, "windspeed": 9.4, "winddirection": 210, "weathercode": 3.5}}`, "current_weather.weathercode"},
		{"code above int32", `{"current_weather": {"temperature": 18.3, "windspeed": 9.4, "winddirection": 210, "weathercode": 2147483648}}`, "current_weather.weathercode"},
		{"code below int32", `{"current_weather": {"temperature": 18.3, "windspeed": 9.4, "winddirection": 210, "weathercode": -2147483649}}`, "current_weather.weathercode"},
		{"code in exponent form", `{"current_weather": {"temperature": 18.3, "windspeed": 9.4, "winddirection": 210, "weathercode": 1e30}}`, "current_weather.weathercode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Transform(mustDecode(t, tc.body), berlin)

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if schemaErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, schemaErr.Field)
			}
		})
	}
}

func TestTransformAcceptsPlainFloats(t *testing.T) {
	raw := RawObservation{
		"current_weather": map[string]any{
			"temperature":   18.3,
			"windspeed":     9.4,
			"winddirection": 210.0,
			"weathercode":   3.0,
		},
	}

	record, err := Transform(raw, berlin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.WeatherCode != 3 {
		t.Fatalf("expected weathercode 3, got %d", record.WeatherCode)
	}
}

// TestTransformKeepsIntegerCodesExact checks codes at the edge of the INT
// column range come through unchanged.
func TestTransformKeepsIntegerCodesExact(t *testing.T) {
	for body, want := range map[string]int{
		`{"current_weather": {"temperature": 1, "windspeed": 1, "winddirection": 1, "weathercode": 2147483647}}`:  2147483647,
		`{"current_weather": {"temperature": 1, "windspeed": 1, "winddirection": 1, "weathercode": -2147483648}}`: -2147483648,
		`{"current_weather": {"temperature": 1, "windspeed": 1, "winddirection": 1, "weathercode": 3.0}}`:         3,
	} {
		record, err := Transform(mustDecode(t, body), berlin)
		if err != nil {
			t.Fatalf("body %s: unexpected error: %v", body, err)
		}
		if record.WeatherCode != want {
			t.Fatalf("expected weathercode %d, got %d", want, record.WeatherCode)
		}
	}
}

func TestTransformRejectsBadLocation(t *testing.T) {
	cases := []struct {
		loc   Location
		field string
	}{
		{Location{Latitude: "north", Longitude: "13.4050"}, "latitude"},
		{Location{Latitude: "52.5200", Longitude: ""}, "longitude"},
	}

	for _, tc := range cases {
		_, err := Transform(mustDecode(t, berlinPayload), tc.loc)

		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("location %+v: expected SchemaError, got %v", tc.loc, err)
		}
		if schemaErr.Field != tc.field {
			t.Fatalf("expected field %q, got %q", tc.field, schemaErr.Field)
		}
	}
}
