package models

import "time"

// RawLocationReport is the untyped shape of an inbound report. Fields stay
// `any` so validation can tell a missing field from a wrongly typed one and
// report every problem at once instead of failing on the first decode error.
type RawLocationReport struct {
	BusNumber any `json:"busNumber"`
	Latitude  any `json:"latitude"`
	Longitude any `json:"longitude"`
	Speed     any `json:"speed"`
	Timestamp any `json:"timestamp"`
}

// LocationReport is a validated, normalized position reading. Immutable once
// produced: persistence only ever appends it.
type LocationReport struct {
	BusNumber string    `json:"busNumber"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

// StoredLocation is a LocationReport after the store assigned it an identifier.
type StoredLocation struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	LocationReport
}

// BusLocationUpdate is the message pushed to every subscriber (and, in a
// clustered deployment, relayed through the location fanout exchange).
type BusLocationUpdate struct {
	BusNumber string    `json:"busNumber"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Speed     float64   `json:"speed"`
	Timestamp time.Time `json:"timestamp"`
}

// Update returns the broadcast message for a validated report.
func (r LocationReport) Update() BusLocationUpdate {
	return BusLocationUpdate{
		BusNumber: r.BusNumber,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Speed:     r.Speed,
		Timestamp: r.Timestamp,
	}
}
