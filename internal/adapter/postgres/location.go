package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/metrics"
)

type LocationRepo struct {
	db *pgxpool.Pool
}

func NewLocationRepo(db *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{
		db: db,
	}
}

// Insert appends a reading and returns it with the store-assigned id.
// Readings are never updated or deduplicated; every accepted report is a new
// row, and the serial id preserves arrival order for the tie-break in
// GetLatest.
func (r *LocationRepo) Insert(ctx context.Context, report models.LocationReport) (models.StoredLocation, error) {
	const op = "LocationRepo.Insert"
	query := `
		INSERT INTO locations(bus_number, latitude, longitude, speed, recorded_at)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id, created_at;`

	start := time.Now()

	stored := models.StoredLocation{LocationReport: report}
	err := r.db.QueryRow(ctx, query,
		report.BusNumber,
		report.Latitude,
		report.Longitude,
		report.Speed,
		report.Timestamp,
	).Scan(&stored.ID, &stored.CreatedAt)

	metrics.RecordDatabaseQuery(types.ServiceName, "insert_location", err, time.Since(start))

	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return models.StoredLocation{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return stored, nil
}

// GetLatest returns the reading with the maximum recorded_at for busNumber.
// Ties on recorded_at are broken by the highest id, so among equal
// timestamps the most recently appended row wins. types.ErrNoLocation when
// the bus has no readings.
func (r *LocationRepo) GetLatest(ctx context.Context, busNumber string) (models.StoredLocation, error) {
	const op = "LocationRepo.GetLatest"
	query := `
		SELECT id, bus_number, latitude, longitude, speed, recorded_at, created_at
		FROM locations
		WHERE bus_number = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1;`

	start := time.Now()

	var stored models.StoredLocation
	err := r.db.QueryRow(ctx, query, busNumber).Scan(
		&stored.ID,
		&stored.BusNumber,
		&stored.Latitude,
		&stored.Longitude,
		&stored.Speed,
		&stored.Timestamp,
		&stored.CreatedAt,
	)

	metrics.RecordDatabaseQuery(types.ServiceName, "get_latest_location", err, time.Since(start))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.StoredLocation{}, types.ErrNoLocation
		}
		ctx = wrap.WithAction(ctx, types.ActionDatabaseQueryFailed)
		return models.StoredLocation{}, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return stored, nil
}
