package units

import (
	"fmt"
	"net/url"
	"strings"
)

// System is a measurement system
type System int

const (
	Metric   System = iota // Celsius, km/h; the forecast API's native units
	Imperial               // Fahrenheit, mph
)

// String returns the config token for the system
func (s System) String() string {
	if s == Imperial {
		return "imperial"
	}
	return "metric"
}

// Policy holds the active measurement system. Toggling it does not convert
// anything already fetched; callers must re-fetch.
type Policy struct {
	System System
}

// Parse reads "metric" or "imperial" (case-insensitive, empty means metric)
func Parse(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "metric":
		return Policy{System: Metric}, nil
	case "imperial":
		return Policy{System: Imperial}, nil
	default:
		return Policy{}, fmt.Errorf("unknown unit system %q (want metric or imperial)", s)
	}
}

// Toggle returns the policy with the other system
func (p Policy) Toggle() Policy {
	if p.System == Metric {
		return Policy{System: Imperial}
	}
	return Policy{System: Metric}
}

// QueryParams returns the request modifiers that make the forecast API
// answer in this system. Metric needs none.
func (p Policy) QueryParams() url.Values {
	params := url.Values{}
	if p.System == Imperial {
		params.Set("temperature_unit", "fahrenheit")
		params.Set("windspeed_unit", "mph")
	}
	return params
}

// TemperatureSuffix returns "°C" or "°F"
func (p Policy) TemperatureSuffix() string {
	if p.System == Imperial {
		return "°F"
	}
	return "°C"
}

// SpeedSuffix returns "km/h" or "mph"
func (p Policy) SpeedSuffix() string {
	if p.System == Imperial {
		return "mph"
	}
	return "km/h"
}
