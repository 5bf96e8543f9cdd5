package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
	"github.com/transitlk/bus-tracker/pkg/metrics"
)

// Service orchestrates one report end-to-end: validate, append, fan out.
type Service struct {
	serviceName  string
	repo         LocationRepo
	broadcasters []Broadcaster
	l            logger.Logger
}

// New returns the location service. Broadcasters are optional sinks; with
// none registered, accepted reports are only persisted.
func New(serviceName string, repo LocationRepo, l logger.Logger, broadcasters ...Broadcaster) *Service {
	return &Service{
		serviceName:  serviceName,
		repo:         repo,
		broadcasters: broadcasters,
		l:            l,
	}
}

// Ingest runs one raw report through the pipeline. On validation failure it
// returns the full ordered error list and touches neither the store nor the
// subscribers. On a storage failure the report is not broadcast. Broadcast
// delivery failures are invisible here: each sink handles its own.
func (s *Service) Ingest(ctx context.Context, raw models.RawLocationReport) (models.StoredLocation, []string, error) {
	ctx = wrap.WithAction(ctx, types.ActionIngestLocation)

	report, validationErrs := ValidateReport(raw)
	if len(validationErrs) > 0 {
		s.l.Warn(wrap.WithAction(ctx, types.ActionValidationRejected),
			"location report rejected",
			"errors", validationErrs,
		)
		metrics.RecordIngestion(s.serviceName, "rejected")
		return models.StoredLocation{}, validationErrs, nil
	}

	ctx = wrap.WithBusNumber(ctx, report.BusNumber)

	stored, err := s.repo.Insert(ctx, report)
	if err != nil {
		metrics.RecordIngestion(s.serviceName, "error")
		return models.StoredLocation{}, nil, wrap.Error(ctx, fmt.Errorf("failed to store location: %w", err))
	}

	s.l.Debug(wrap.WithAction(ctx, types.ActionLocationStored),
		"location stored",
		"location_id", stored.ID,
		"recorded_at", stored.Timestamp,
	)

	update := report.Update()
	for _, b := range s.broadcasters {
		b.Broadcast(wrap.WithAction(ctx, types.ActionBroadcastAttempted), update)
	}

	metrics.RecordIngestion(s.serviceName, "accepted")

	return stored, nil, nil
}

// Latest returns the most recent stored reading for busNumber.
// types.ErrBlankBusNumber for a blank identifier, types.ErrNoLocation when
// the bus has no readings yet.
func (s *Service) Latest(ctx context.Context, busNumber string) (models.StoredLocation, error) {
	ctx = wrap.WithAction(ctx, types.ActionGetLatestLocation)

	busNumber = strings.TrimSpace(busNumber)
	if busNumber == "" {
		return models.StoredLocation{}, types.ErrBlankBusNumber
	}

	ctx = wrap.WithBusNumber(ctx, busNumber)

	stored, err := s.repo.GetLatest(ctx, busNumber)
	if err != nil {
		return models.StoredLocation{}, err
	}
	return stored, nil
}
