package models

// WeatherCategory is the human-readable classification of a WMO weather code
type WeatherCategory struct {
	IconID      string
	Description string
	Color       string // hex color token
}

var (
	CategoryClear        = WeatherCategory{IconID: "sun", Description: "Clear", Color: "#f1c40f"}
	CategoryPartlyCloudy = WeatherCategory{IconID: "cloud-sun", Description: "Partly cloudy", Color: "#ecf0f1"}
	CategoryFog          = WeatherCategory{IconID: "smog", Description: "Fog", Color: "#95a5a6"}
	CategoryRain         = WeatherCategory{IconID: "cloud-rain", Description: "Rain", Color: "#3498db"}
	CategorySnow         = WeatherCategory{IconID: "snowflake", Description: "Snow", Color: "#ecf0f1"}
	CategoryHeavyShowers = WeatherCategory{IconID: "cloud-showers-heavy", Description: "Heavy rain showers", Color: "#2980b9"}
	CategoryThunderstorm = WeatherCategory{IconID: "bolt", Description: "Thunderstorm", Color: "#f39c12"}
	CategoryOvercast     = WeatherCategory{IconID: "cloud", Description: "Overcast", Color: "#bdc3c7"}
)

// Classify maps a WMO weather code to its category.
// The ranges have gaps, so anything unmatched (including negative or
// out-of-table codes) falls through to Overcast.
func Classify(code int) WeatherCategory {
	switch {
	case code == 0:
		return CategoryClear
	case code >= 1 && code <= 3:
		return CategoryPartlyCloudy
	case code >= 45 && code <= 48:
		return CategoryFog
	case code >= 51 && code <= 67:
		return CategoryRain
	case code >= 71 && code <= 77:
		return CategorySnow
	case code >= 80 && code <= 82:
		return CategoryHeavyShowers
	case code >= 95:
		return CategoryThunderstorm
	default:
		return CategoryOvercast
	}
}
