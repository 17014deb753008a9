package tracking

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"cargotrack-backend/internal/database"
	"cargotrack-backend/internal/models"

	"github.com/google/uuid"
)

const (
	// DefaultUpdateInterval is the target sampling cadence.
	DefaultUpdateInterval = 10 * time.Second
	// DefaultFastestInterval is the minimum accepted spacing.
	DefaultFastestInterval = 5 * time.Second
)

var (
	// ErrPermissionDenied means location sensing permission is missing.
	// The loop refuses to start rather than record zeroed coordinates.
	ErrPermissionDenied = errors.New("location permission not granted")

	// ErrAlreadyTracking means a trip is already bound. Stop first.
	ErrAlreadyTracking = errors.New("tracking already active")
)

// Config carries the sampling cadence. Zero values fall back to the
// defaults above.
type Config struct {
	UpdateInterval  time.Duration
	FastestInterval time.Duration
}

// Tracker is the location capture loop. While armed with a trip id it
// appends every sensor sample as a LocationFix for that trip. It runs
// independently of any request lifecycle and stops only on an explicit
// Stop (or process teardown via the parent context).
//
// Persistence is fire-and-forget per sample: a failed write is logged
// and the loop keeps going. There is no retry and no buffering.
type Tracker struct {
	store    *database.Store
	provider Provider
	cfg      Config

	mu     sync.Mutex
	tripID string
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTracker(store *database.Store, provider Provider, cfg Config) *Tracker {
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultUpdateInterval
	}
	if cfg.FastestInterval <= 0 {
		cfg.FastestInterval = DefaultFastestInterval
	}
	return &Tracker{store: store, provider: provider, cfg: cfg}
}

// Start binds a trip and begins sampling. Fails when permission is
// missing or a trip is already bound.
func (t *Tracker) Start(tripID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return ErrAlreadyTracking
	}
	if !t.provider.HasPermission() {
		return ErrPermissionDenied
	}

	ctx, cancel := context.WithCancel(context.Background())
	samples, err := t.provider.Subscribe(ctx, t.cfg.UpdateInterval, t.cfg.FastestInterval)
	if err != nil {
		cancel()
		return err
	}

	t.tripID = tripID
	t.cancel = cancel
	t.wg.Add(1)
	go t.run(tripID, samples)

	log.Printf("📍 Location tracking started for trip %s", tripID)
	return nil
}

// Stop releases the position subscription and returns once the loop
// has drained. A sample already received when Stop is called may still
// be persisted; nothing is cancelled mid-write.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	tripID := t.tripID
	t.cancel = nil
	t.tripID = ""
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	t.wg.Wait()
	log.Printf("📍 Location tracking stopped for trip %s", tripID)
}

// ActiveTrip returns the bound trip id, if tracking.
func (t *Tracker) ActiveTrip() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tripID, t.cancel != nil
}

func (t *Tracker) run(tripID string, samples <-chan Sample) {
	defer t.wg.Done()

	for sample := range samples {
		fix := models.LocationFix{
			ID:        uuid.New().String(),
			TripID:    tripID,
			Latitude:  sample.Latitude,
			Longitude: sample.Longitude,
			Accuracy:  sample.Accuracy,
			Speed:     sample.Speed,
			Bearing:   sample.Bearing,
			Timestamp: sample.Time.UnixMilli(),
		}
		if sample.Time.IsZero() {
			fix.Timestamp = time.Now().UnixMilli()
		}

		// The write uses a background-scoped context: once a sample is
		// in, its persistence is not abandoned because tracking stopped.
		if err := t.store.InsertLocation(context.Background(), fix); err != nil {
			log.Printf("⚠️  Failed to persist location fix for trip %s: %v", tripID, err)
			continue
		}
	}
}
