package handler

import (
	"context"
	"net/http"

	"github.com/transitlk/bus-tracker/internal/adapter/http/handler/dto"
	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
	wrap "github.com/transitlk/bus-tracker/pkg/logger/wrapper"
)

type Location struct {
	service LocationService
	l       logger.Logger
}

type LocationService interface {
	Ingest(ctx context.Context, raw models.RawLocationReport) (models.StoredLocation, []string, error)
	Latest(ctx context.Context, busNumber string) (models.StoredLocation, error)
}

func NewLocation(service LocationService, l logger.Logger) *Location {
	return &Location{
		service: service,
		l:       l,
	}
}

// AddLocation godoc
// @Summary      Ingest a bus location report
// @Description  Validates the report, persists it and pushes it to every connected WebSocket subscriber
// @Tags         Locations
// @Accept       json
// @Produce      json
// @Param        report  body      dto.AddLocationRequest  true  "Location report"
// @Success      201     {object}  map[string]any
// @Failure      400     {object}  map[string]any
// @Failure      500     {object}  map[string]any
// @Router       /add-location [post]
func (h *Location) AddLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionIngestLocation)

	var req dto.AddLocationRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Warn(ctx, "failed to read request JSON data", "err", err.Error())
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stored, validationErrs, err := h.service.Ingest(ctx, req.ToRaw())
	if len(validationErrs) > 0 {
		failedValidationResponse(w, validationErrs, req.ReceivedData())
		return
	}
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to ingest location", err)
		internalErrorResponse(w, err.Error())
		return
	}

	response := envelope{
		"message": "Location saved successfully!",
		"data":    stored,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "location saved", "bus_number", stored.BusNumber, "location_id", stored.ID)
}

// LatestLocation godoc
// @Summary      Latest location of a bus
// @Description  Returns the most recent stored reading for the given bus number
// @Tags         Locations
// @Produce      json
// @Param        busNumber  path      string  true  "Bus number"
// @Success      200        {object}  map[string]any
// @Failure      400        {object}  map[string]any
// @Failure      404        {object}  map[string]any
// @Failure      500        {object}  map[string]any
// @Router       /latest/{busNumber} [get]
func (h *Location) LatestLocation(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), types.ActionGetLatestLocation)

	busNumber := r.PathValue("busNumber")

	stored, err := h.service.Latest(ctx, busNumber)
	if err != nil {
		switch {
		case IsOneOf(err, types.ErrBlankBusNumber):
			errorResponse(w, http.StatusBadRequest, "busNumber parameter is required")
		case IsOneOf(err, types.ErrNoLocation):
			h.l.Debug(ctx, "no location found", "bus_number", busNumber)
			writeJSON(w, http.StatusNotFound, envelope{
				"message":   "No location found for this bus.",
				"busNumber": busNumber,
			}, nil)
		default:
			h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get latest location", err)
			internalErrorResponse(w, err.Error())
		}
		return
	}

	response := envelope{
		"message": "Latest location retrieved",
		"data":    stored,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
