package domain

import "time"

// QualityFlag is the collapsed ARGO quality-control level of a profile.
type QualityFlag string

const (
	QualityGood         QualityFlag = "good"
	QualityQuestionable QualityFlag = "questionable"
	QualityBad          QualityFlag = "bad"
	QualityUnknown      QualityFlag = "unknown"
)

// Parameter names a measured quantity a query can ask about.
type Parameter string

const (
	ParamNone        Parameter = ""
	ParamTemperature Parameter = "temperature"
	ParamSalinity    Parameter = "salinity"
	ParamDepth       Parameter = "depth"
)

// Parameters lists the recognized parameters in display order.
var Parameters = []Parameter{ParamTemperature, ParamSalinity, ParamDepth}

// Valid reports whether p is a recognized, non-empty parameter.
func (p Parameter) Valid() bool {
	switch p {
	case ParamTemperature, ParamSalinity, ParamDepth:
		return true
	default:
		return false
	}
}

// Unit returns the display unit of the parameter.
func (p Parameter) Unit() string {
	switch p {
	case ParamTemperature:
		return "°C"
	case ParamSalinity:
		return " PSU"
	case ParamDepth:
		return " m"
	default:
		return ""
	}
}

// MeasurementRecord is one normalized ARGO profile sample.
// Records are immutable once created by the normalizer.
type MeasurementRecord struct {
	ID           string      `json:"id"`
	Latitude     float64     `json:"latitude"`
	Longitude    float64     `json:"longitude"`
	Timestamp    time.Time   `json:"timestamp,omitzero"`
	DepthM       *float64    `json:"depth_m"`
	TemperatureC *float64    `json:"temperature_c"`
	SalinityPSU  *float64    `json:"salinity_psu"`
	Quality      QualityFlag `json:"quality_flag"`
	Source       string      `json:"source,omitempty"`
}

// HasTimestamp reports whether the record carries a parsed timestamp.
func (r MeasurementRecord) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// Value returns the measurement for p, or nil when unmeasured or p is unknown.
func (r MeasurementRecord) Value(p Parameter) *float64 {
	switch p {
	case ParamTemperature:
		return r.TemperatureC
	case ParamSalinity:
		return r.SalinityPSU
	case ParamDepth:
		return r.DepthM
	default:
		return nil
	}
}

// Region derives the record's basin from its coordinates.
func (r MeasurementRecord) Region() Region {
	return ClassifyRegion(r.Latitude, r.Longitude)
}
