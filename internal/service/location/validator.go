package location

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/pkg/validator"
)

// Timestamp layouts accepted from producers. The first match wins; layouts
// without a zone are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidateReport checks a raw report field by field and returns either the
// normalized report or the full ordered list of failures. Rules per field:
// presence, then type, then finiteness for numerics, then range, and for the
// timestamp parseability. Every violated rule is reported, not just the
// first, so a producer can fix its payload in one round trip. Pure: no I/O,
// no shared state.
func ValidateReport(raw models.RawLocationReport) (models.LocationReport, []string) {
	v := validator.New()

	var report models.LocationReport

	if busNumber, ok := requireString(v, "busNumber", raw.BusNumber); ok {
		v.Check(strings.TrimSpace(busNumber) != "", "busNumber is empty string")
		report.BusNumber = strings.TrimSpace(busNumber)
	}

	if lat, ok := requireFinite(v, "latitude", raw.Latitude); ok {
		v.Check(lat >= -90 && lat <= 90, fmt.Sprintf("latitude out of range (-90 to 90): %v", lat))
		report.Latitude = lat
	}

	if lon, ok := requireFinite(v, "longitude", raw.Longitude); ok {
		v.Check(lon >= -180 && lon <= 180, fmt.Sprintf("longitude out of range (-180 to 180): %v", lon))
		report.Longitude = lon
	}

	if speed, ok := requireFinite(v, "speed", raw.Speed); ok {
		v.Check(speed >= 0, fmt.Sprintf("speed cannot be negative: %v", speed))
		report.Speed = speed
	}

	if ts, ok := requireString(v, "timestamp", raw.Timestamp); ok {
		if strings.TrimSpace(ts) == "" {
			v.AddError("timestamp is empty string")
		} else if parsed, ok := parseTimestamp(ts); ok {
			report.Timestamp = parsed
		} else {
			v.AddError(fmt.Sprintf("timestamp is not a valid date: %q", ts))
		}
	}

	if !v.Valid() {
		return models.LocationReport{}, v.Errors
	}
	return report, nil
}

// requireString handles the presence and type checks shared by the string
// fields. Returns the value and true only if both passed.
func requireString(v *validator.Validator, field string, value any) (string, bool) {
	if value == nil {
		v.AddError(fmt.Sprintf("%s is missing", field))
		return "", false
	}
	s, ok := value.(string)
	if !ok {
		v.AddError(fmt.Sprintf("%s must be a string, got %s", field, jsonType(value)))
		return "", false
	}
	return s, true
}

// requireFinite handles presence, type and finiteness checks shared by the
// numeric fields.
func requireFinite(v *validator.Validator, field string, value any) (float64, bool) {
	if value == nil {
		v.AddError(fmt.Sprintf("%s is missing", field))
		return 0, false
	}

	f, ok := toFloat(value)
	if !ok {
		v.AddError(fmt.Sprintf("%s must be a number, got %s", field, jsonType(value)))
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		v.AddError(fmt.Sprintf("%s is not a finite number: %v", field, f))
		return 0, false
	}
	return f, true
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// jsonType names the JSON type of a decoded value for error messages.
func jsonType(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case float64, float32, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
