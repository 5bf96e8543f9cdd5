package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/transitlk/bus-tracker/internal/domain/models"
	"github.com/transitlk/bus-tracker/internal/domain/types"
	"github.com/transitlk/bus-tracker/pkg/logger"
)

type mockRepo struct {
	inserted  []models.LocationReport
	insertErr error

	latest    models.StoredLocation
	latestErr error
}

func (m *mockRepo) Insert(ctx context.Context, report models.LocationReport) (models.StoredLocation, error) {
	if m.insertErr != nil {
		return models.StoredLocation{}, m.insertErr
	}
	m.inserted = append(m.inserted, report)
	return models.StoredLocation{
		ID:             int64(len(m.inserted)),
		CreatedAt:      time.Now(),
		LocationReport: report,
	}, nil
}

func (m *mockRepo) GetLatest(ctx context.Context, busNumber string) (models.StoredLocation, error) {
	if m.latestErr != nil {
		return models.StoredLocation{}, m.latestErr
	}
	return m.latest, nil
}

type mockBroadcaster struct {
	updates []models.BusLocationUpdate
}

func (m *mockBroadcaster) Broadcast(ctx context.Context, update models.BusLocationUpdate) {
	m.updates = append(m.updates, update)
}

func newTestService(repo *mockRepo, broadcasters ...Broadcaster) *Service {
	return New("tracker-test", repo, logger.InitLogger("tracker-test", logger.LevelError), broadcasters...)
}

func TestIngest_ValidReportIsStoredAndBroadcast(t *testing.T) {
	repo := &mockRepo{}
	sink := &mockBroadcaster{}
	svc := newTestService(repo, sink)

	stored, validationErrs, err := svc.Ingest(context.Background(), validRaw())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(validationErrs) != 0 {
		t.Fatalf("unexpected validation errors: %v", validationErrs)
	}

	if stored.BusNumber != "B12" || stored.ID == 0 {
		t.Fatalf("unexpected stored report: %+v", stored)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserted))
	}
	if len(sink.updates) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(sink.updates))
	}
	if sink.updates[0].BusNumber != "B12" {
		t.Fatalf("broadcast carries wrong report: %+v", sink.updates[0])
	}
	if !sink.updates[0].Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("broadcast must carry the normalized timestamp, got %s", sink.updates[0].Timestamp)
	}
}

func TestIngest_InvalidReportTouchesNothing(t *testing.T) {
	repo := &mockRepo{}
	sink := &mockBroadcaster{}
	svc := newTestService(repo, sink)

	raw := validRaw()
	raw.Latitude = 200.0

	_, validationErrs, err := svc.Ingest(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(validationErrs) == 0 {
		t.Fatal("expected validation errors")
	}
	if len(repo.inserted) != 0 {
		t.Fatal("invalid report must not be persisted")
	}
	if len(sink.updates) != 0 {
		t.Fatal("invalid report must not be broadcast")
	}
}

func TestIngest_StorageFailureIsNotBroadcast(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("connection lost")}
	sink := &mockBroadcaster{}
	svc := newTestService(repo, sink)

	_, validationErrs, err := svc.Ingest(context.Background(), validRaw())
	if err == nil {
		t.Fatal("expected storage error")
	}
	if len(validationErrs) != 0 {
		t.Fatalf("unexpected validation errors: %v", validationErrs)
	}
	if len(sink.updates) != 0 {
		t.Fatal("failed append must not be broadcast")
	}
}

func TestIngest_MultipleBroadcasters(t *testing.T) {
	repo := &mockRepo{}
	first := &mockBroadcaster{}
	second := &mockBroadcaster{}
	svc := newTestService(repo, first, second)

	if _, _, err := svc.Ingest(context.Background(), validRaw()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.updates) != 1 || len(second.updates) != 1 {
		t.Fatalf("every sink must receive the update: %d/%d", len(first.updates), len(second.updates))
	}
}

func TestLatest_BlankBusNumber(t *testing.T) {
	svc := newTestService(&mockRepo{})

	for _, busNumber := range []string{"", "   "} {
		if _, err := svc.Latest(context.Background(), busNumber); !errors.Is(err, types.ErrBlankBusNumber) {
			t.Fatalf("busNumber %q: expected ErrBlankBusNumber, got %v", busNumber, err)
		}
	}
}

func TestLatest_NotFoundPassesThrough(t *testing.T) {
	svc := newTestService(&mockRepo{latestErr: types.ErrNoLocation})

	if _, err := svc.Latest(context.Background(), "UNKNOWN_ID"); !errors.Is(err, types.ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}
}

func TestLatest_ReturnsStored(t *testing.T) {
	want := models.StoredLocation{
		ID: 7,
		LocationReport: models.LocationReport{
			BusNumber: "B12",
			Latitude:  40,
			Longitude: -73,
			Speed:     15.5,
			Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	svc := newTestService(&mockRepo{latest: want})

	got, err := svc.Latest(context.Background(), "B12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != want.ID || got.BusNumber != want.BusNumber {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
