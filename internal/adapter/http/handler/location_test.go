package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/internal/service/location"
	"github.com/transitlk/bus-tracker/pkg/logger"
)

// memoryRepo keeps readings in insertion order, like the serial id column
// does in postgres.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []models.StoredLocation

	insertErr error
}

func (r *memoryRepo) Insert(_ context.Context, report models.LocationReport) (models.StoredLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.insertErr != nil {
		return models.StoredLocation{}, r.insertErr
	}

	r.nextID++
	stored := models.StoredLocation{
		ID:             r.nextID,
		CreatedAt:      time.Now().UTC(),
		LocationReport: report,
	}
	r.rows = append(r.rows, stored)
	return stored, nil
}

func (r *memoryRepo) GetLatest(_ context.Context, busNumber string) (models.StoredLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		best  models.StoredLocation
		found bool
	)
	for _, row := range r.rows {
		if row.BusNumber != busNumber {
			continue
		}
		if !found || row.Timestamp.After(best.Timestamp) ||
			(row.Timestamp.Equal(best.Timestamp) && row.ID > best.ID) {
			best = row
			found = true
		}
	}
	if !found {
		return models.StoredLocation{}, types.ErrNoLocation
	}
	return best, nil
}

func newTestRouter(t *testing.T, repo *memoryRepo) http.Handler {
	t.Helper()

	log := logger.InitLogger("handler-test", logger.LevelError)
	svc := location.New("handler-test", repo, log)
	h := NewLocation(svc, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /add-location", h.AddLocation)
	mux.HandleFunc("GET /latest/{busNumber}", h.LatestLocation)
	return mux
}

func postLocation(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/add-location", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func getLatest(t *testing.T, router http.Handler, busNumber string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/latest/"+busNumber, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestAddLocationThenLatest(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := postLocation(t, router, `{
		"busNumber": "138",
		"latitude": 6.9271,
		"longitude": 79.8612,
		"speed": 40,
		"timestamp": "2025-01-15T08:30:00Z"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	created := decodeBody(t, rec)
	if created["message"] != "Location saved successfully!" {
		t.Errorf("unexpected message: %v", created["message"])
	}

	rec = getLatest(t, router, "138")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data object: %s", rec.Body.String())
	}
	if data["busNumber"] != "138" {
		t.Errorf("expected busNumber 138, got %v", data["busNumber"])
	}
	if data["latitude"] != 6.9271 || data["longitude"] != 79.8612 {
		t.Errorf("coordinates do not match submitted report: %v %v", data["latitude"], data["longitude"])
	}
	if data["speed"] != 40.0 {
		t.Errorf("expected speed 40, got %v", data["speed"])
	}
}

func TestAddLocationValidationFailure(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := postLocation(t, router, `{
		"busNumber": "",
		"latitude": 6.9271,
		"longitude": 79.8612,
		"speed": 40,
		"timestamp": "2025-01-15T08:30:00Z"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "Validation failed" {
		t.Errorf("unexpected message: %v", body["message"])
	}

	errs, ok := body["errors"].([]any)
	if !ok || len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", body["errors"])
	}
	if !strings.Contains(errs[0].(string), "busNumber") {
		t.Errorf("error should mention busNumber: %v", errs[0])
	}

	received, ok := body["receivedData"].(map[string]any)
	if !ok {
		t.Fatalf("missing receivedData: %s", rec.Body.String())
	}
	if received["busNumber"] != true {
		t.Errorf("receivedData should report busNumber as present, got %v", received["busNumber"])
	}
}

func TestAddLocationLatitudeOutOfRange(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := postLocation(t, router, `{
		"busNumber": "42",
		"latitude": 200,
		"longitude": 79.8612,
		"speed": 40,
		"timestamp": "2025-01-15T08:30:00Z"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	errs, _ := body["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", body["errors"])
	}
	want := "latitude out of range (-90 to 90): 200"
	if errs[0] != want {
		t.Errorf("expected %q, got %v", want, errs[0])
	}
}

func TestAddLocationCollectsAllErrors(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := postLocation(t, router, `{"speed": -1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	errs, _ := body["errors"].([]any)
	if len(errs) != 5 {
		t.Fatalf("expected 5 errors, got %d: %v", len(errs), errs)
	}
	// Field order is stable: busNumber, latitude, longitude, speed, timestamp.
	if !strings.Contains(errs[0].(string), "busNumber") {
		t.Errorf("first error should be about busNumber: %v", errs[0])
	}
	if !strings.Contains(errs[3].(string), "speed") {
		t.Errorf("fourth error should be about speed: %v", errs[3])
	}
}

func TestAddLocationMalformedJSON(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := postLocation(t, router, `{"busNumber": "138",`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestAddLocationIgnoresUnknownFields(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := postLocation(t, router, `{
		"busNumber": "138",
		"latitude": 6.9271,
		"longitude": 79.8612,
		"speed": 40,
		"timestamp": "2025-01-15T08:30:00Z",
		"driverName": "someone"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unknown fields should be ignored, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAddLocationStorageFailure(t *testing.T) {
	repo := &memoryRepo{insertErr: errors.New("connection refused")}
	router := newTestRouter(t, repo)

	rec := postLocation(t, router, `{
		"busNumber": "138",
		"latitude": 6.9271,
		"longitude": 79.8612,
		"speed": 40,
		"timestamp": "2025-01-15T08:30:00Z"
	}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "Internal server error" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestLatestLocationUnknownBus(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := getLatest(t, router, "999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["message"] != "No location found for this bus." {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if body["busNumber"] != "999" {
		t.Errorf("response should echo the bus number, got %v", body["busNumber"])
	}
}

func TestLatestLocationBlankBusNumber(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	rec := getLatest(t, router, "%20")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "busNumber") {
		t.Errorf("message should mention busNumber: %v", msg)
	}
}

func TestLatestLocationPicksNewestReading(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	reports := []string{
		`{"busNumber": "7", "latitude": 6.90, "longitude": 79.85, "speed": 20, "timestamp": "2025-01-15T08:00:00Z"}`,
		`{"busNumber": "7", "latitude": 6.95, "longitude": 79.87, "speed": 35, "timestamp": "2025-01-15T09:00:00Z"}`,
		`{"busNumber": "7", "latitude": 6.91, "longitude": 79.86, "speed": 10, "timestamp": "2025-01-15T08:30:00Z"}`,
	}
	for _, report := range reports {
		if rec := postLocation(t, router, report); rec.Code != http.StatusCreated {
			t.Fatalf("seed report rejected with %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := getLatest(t, router, "7")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["speed"] != 35.0 {
		t.Errorf("expected the 09:00 reading (speed 35), got %v", data)
	}
}

func TestLatestLocationTieBreakByArrival(t *testing.T) {
	router := newTestRouter(t, &memoryRepo{})

	same := `{"busNumber": "7", "latitude": %s, "longitude": 79.85, "speed": 20, "timestamp": "2025-01-15T08:00:00Z"}`
	first := strings.Replace(same, "%s", "6.90", 1)
	second := strings.Replace(same, "%s", "6.95", 1)
	for _, report := range []string{first, second} {
		if rec := postLocation(t, router, report); rec.Code != http.StatusCreated {
			t.Fatalf("seed report rejected with %d", rec.Code)
		}
	}

	rec := getLatest(t, router, "7")
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	if data["latitude"] != 6.95 {
		t.Errorf("equal timestamps should resolve to the later insert, got %v", data["latitude"])
	}
}
