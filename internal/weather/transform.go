package weather

import (
	"encoding/json"
	"math"
)

const currentWeatherKey = "current_weather"

// Transform projects the current-conditions block of raw onto a
// WeatherRecord for loc. A missing block or field is a SchemaError; no
// field is ever defaulted.
func Transform(raw RawObservation, loc Location) (WeatherRecord, error) {
	lat, lon, err := loc.Coordinates()
	if err != nil {
		return WeatherRecord{}, err
	}

	node, ok := raw[currentWeatherKey]
	if !ok {
		return WeatherRecord{}, &SchemaError{Field: currentWeatherKey, Reason: "is missing"}
	}
	current, ok := node.(map[string]any)
	if !ok {
		return WeatherRecord{}, &SchemaError{Field: currentWeatherKey, Reason: "is not an object"}
	}

	record := WeatherRecord{Latitude: lat, Longitude: lon}
	if record.Temperature, err = floatField(current, "temperature"); err != nil {
		return WeatherRecord{}, err
	}
	if record.WindSpeed, err = floatField(current, "windspeed"); err != nil {
		return WeatherRecord{}, err
	}
	if record.WindDirection, err = floatField(current, "winddirection"); err != nil {
		return WeatherRecord{}, err
	}
	if record.WeatherCode, err = intField(current, "weathercode"); err != nil {
		return WeatherRecord{}, err
	}

	return record, nil
}

func floatField(current map[string]any, key string) (float64, error) {
	v, ok := current[key]
	if !ok {
		return 0, &SchemaError{Field: currentWeatherKey + "." + key, Reason: "is missing"}
	}

	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &SchemaError{Field: currentWeatherKey + "." + key, Reason: "is not a number"}
		}
		return f, nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, &SchemaError{Field: currentWeatherKey + "." + key, Reason: "is not a number"}
	}
}

// intField reads an integer that fits the INT column of the weather table.
func intField(current map[string]any, key string) (int, error) {
	notInteger := &SchemaError{Field: currentWeatherKey + "." + key, Reason: "is not an integer"}

	if n, ok := current[key].(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			if i < math.MinInt32 || i > math.MaxInt32 {
				return 0, notInteger
			}
			return int(i), nil
		}
	}

	f, err := floatField(current, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, notInteger
	}
	return int(f), nil
}
