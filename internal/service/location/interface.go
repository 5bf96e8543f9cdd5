package location

import (
	"context"

	"github.com/transitlk/bus-tracker/internal/domain/models"
)

/*=================Location Repository======================*/

// LocationRepo is the persistence contract of the ingestion pipeline:
// append a reading, fetch the most recent reading for a bus. The repo owns
// durability; the service never retries a failed write.
type LocationRepo interface {
	Insert(ctx context.Context, report models.LocationReport) (models.StoredLocation, error)
	GetLatest(ctx context.Context, busNumber string) (models.StoredLocation, error)
}

/*=================Broadcast Sinks==========================*/

// Broadcaster pushes an accepted report to live subscribers. Delivery is
// best-effort: implementations swallow per-subscriber failures and never
// report them back to ingestion.
type Broadcaster interface {
	Broadcast(ctx context.Context, update models.BusLocationUpdate)
}
