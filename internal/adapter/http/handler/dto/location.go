package dto

import (
	"fmt"

	"github.com/transitlk/bus-tracker/internal/domain/models"
)

// AddLocationRequest mirrors the POST /add-location body. Fields stay
// untyped so a wrongly typed value reaches the validator as-is instead of
// failing JSON decoding with a single opaque error.
type AddLocationRequest struct {
	BusNumber any `json:"busNumber"`
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
	Speed     any `json:"speed"`
	Timestamp any `json:"timestamp"`
}

func (r *AddLocationRequest) ToRaw() models.RawLocationReport {
	return models.RawLocationReport{
		BusNumber: r.BusNumber,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Speed:     r.Speed,
		Timestamp: r.Timestamp,
	}
}

// ReceivedData описывает какие поля пришли в запросе — для тела 400 ответа.
func (r *AddLocationRequest) ReceivedData() map[string]any {
	return map[string]any{
		"busNumber": r.BusNumber != nil,
		"latitude":  describeField(r.Latitude),
		"longitude": describeField(r.Longitude),
		"speed":     describeField(r.Speed),
		"timestamp": describeField(r.Timestamp),
	}
}

func describeField(value any) string {
	switch v := value.(type) {
	case nil:
		return "missing"
	case string:
		return fmt.Sprintf("string: %q", v)
	case float64:
		return fmt.Sprintf("number: %v", v)
	default:
		return fmt.Sprintf("%T: %v", v, v)
	}
}
