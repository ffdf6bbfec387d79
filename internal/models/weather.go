package models

import "time"

// WeatherSnapshot is the current conditions for one location.
// Temperature and WindSpeed are in whatever unit system was active when it
// was fetched; the snapshot does not record which.
type WeatherSnapshot struct {
	Temperature float64
	WindSpeed   float64
	Humidity    int // percent, 0-100
	Category    WeatherCategory
	ObservedAt  time.Time
}

// ForecastDay is the daily aggregate for one calendar day
type ForecastDay struct {
	Date     time.Time
	Category WeatherCategory
	High     float64
	Low      float64
}

// Forecast holds up to five days after today, in chronological order
type Forecast []ForecastDay

// MaxForecastDays is the number of days shown after today
const MaxForecastDays = 5
