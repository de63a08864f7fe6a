package weather

import (
	"fmt"
	"strconv"
	"time"
)

// Location is the fixed point we observe. Coordinates are kept as the
// configured strings so they reach the upstream API verbatim.
type Location struct {
	Latitude  string `json:"latitude" yaml:"latitude" validate:"required,latitude"`
	Longitude string `json:"longitude" yaml:"longitude" validate:"required,longitude"`
}

// Key returns a canonical string key for this location.
func (l Location) Key() string {
	return l.Latitude + "," + l.Longitude
}

// Coordinates parses the configured strings into numbers. A string that
// does not parse is reported as a *SchemaError on that field.
func (l Location) Coordinates() (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(l.Latitude, 64)
	if err != nil {
		return 0, 0, &SchemaError{Field: "latitude", Reason: fmt.Sprintf("%q is not a number", l.Latitude)}
	}
	lon, err = strconv.ParseFloat(l.Longitude, 64)
	if err != nil {
		return 0, 0, &SchemaError{Field: "longitude", Reason: fmt.Sprintf("%q is not a number", l.Longitude)}
	}
	return lat, lon, nil
}

// RawObservation is the decoded forecast response, untouched.
type RawObservation map[string]any

// WeatherRecord is the flat row written once per run.
type WeatherRecord struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"windspeed"`
	WindDirection float64 `json:"winddirection"`
	WeatherCode   int     `json:"weathercode"`
}

// StoredRecord is a WeatherRecord read back together with the timestamp
// the store assigned on insert.
type StoredRecord struct {
	WeatherRecord
	Timestamp time.Time `json:"timestamp"`
}
