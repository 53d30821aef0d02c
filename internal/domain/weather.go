package domain

// Physical plausibility bounds for snapshot validation. Derived from recorded
// surface weather extremes with a little headroom, not from scoring needs.
const (
	minPlausibleTemp     = -90.0 // °C, coldest surface reading on record is -89.2
	maxPlausibleTemp     = 60.0  // °C, hottest is 56.7
	maxPlausibleWind     = 500.0 // km/h, strongest measured gust is ~408
	maxPlausiblePrecip   = 2000.0
	minPlausiblePressure = 850.0 // hPa, strongest recorded cyclone bottomed near 870
	maxPlausiblePressure = 1100.0
)

// WeatherSnapshot is a point-in-time weather observation or short-range
// forecast average for one location. Constructed at the system boundary and
// read-only thereafter.
//
// Humidity and Pressure are optional: providers that don't report them leave
// the pointers nil, and the engine treats the missing dimension as carrying
// no anomaly evidence.
type WeatherSnapshot struct {
	Temp          float64  `json:"temp"`          // °C
	WindSpeed     float64  `json:"wind_speed"`    // km/h
	Precipitation float64  `json:"precipitation"` // mm
	Humidity      *float64 `json:"humidity,omitempty"`
	Pressure      *float64 `json:"pressure,omitempty"`
}

// Validate checks the snapshot against physical plausibility ranges. It is the
// single input-validation choke point for the engine; a non-nil result is
// always an *InvalidInputError.
func (s WeatherSnapshot) Validate() error {
	if s.Temp < minPlausibleTemp || s.Temp > maxPlausibleTemp {
		return &InvalidInputError{Field: "temp", Value: s.Temp, Reason: "temperature outside physical range"}
	}
	if s.WindSpeed < 0 {
		return &InvalidInputError{Field: "wind_speed", Value: s.WindSpeed, Reason: "wind speed cannot be negative"}
	}
	if s.WindSpeed > maxPlausibleWind {
		return &InvalidInputError{Field: "wind_speed", Value: s.WindSpeed, Reason: "wind speed outside physical range"}
	}
	if s.Precipitation < 0 {
		return &InvalidInputError{Field: "precipitation", Value: s.Precipitation, Reason: "precipitation cannot be negative"}
	}
	if s.Precipitation > maxPlausiblePrecip {
		return &InvalidInputError{Field: "precipitation", Value: s.Precipitation, Reason: "precipitation outside physical range"}
	}
	if s.Humidity != nil && (*s.Humidity < 0 || *s.Humidity > 100) {
		return &InvalidInputError{Field: "humidity", Value: *s.Humidity, Reason: "relative humidity must be within 0-100%"}
	}
	if s.Pressure != nil && (*s.Pressure < minPlausiblePressure || *s.Pressure > maxPlausiblePressure) {
		return &InvalidInputError{Field: "pressure", Value: *s.Pressure, Reason: "pressure outside physical range"}
	}
	return nil
}
