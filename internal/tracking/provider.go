package tracking

import (
	"context"
	"sync"
	"time"
)

// Sample is one raw position reading from the device sensor.
// Speed and Bearing are nil when the sensor reports them as invalid.
type Sample struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed,omitempty"`
	Bearing   *float64 `json:"bearing,omitempty"`
	Time      time.Time `json:"-"`
}

// Provider abstracts the position sensor. Subscribe returns a channel
// that delivers samples until ctx is cancelled, then closes.
type Provider interface {
	// HasPermission reports whether location sensing is permitted.
	// Subscribing without permission is a caller error.
	HasPermission() bool

	// Subscribe starts delivery. interval is the target cadence and
	// fastest the minimum accepted spacing between samples.
	Subscribe(ctx context.Context, interval, fastest time.Duration) (<-chan Sample, error)
}

// PushProvider adapts device-pushed samples (the mobile client reports
// its sensor readings over HTTP) to the Provider interface. Samples
// arriving faster than the fastest-interval bound are dropped.
type PushProvider struct {
	mu         sync.Mutex
	permission bool
	sink       chan Sample
	fastest    time.Duration
	lastAt     time.Time
}

func NewPushProvider() *PushProvider {
	return &PushProvider{}
}

// SetPermission records the device's reported location permission.
func (p *PushProvider) SetPermission(granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permission = granted
}

func (p *PushProvider) HasPermission() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

func (p *PushProvider) Subscribe(ctx context.Context, interval, fastest time.Duration) (<-chan Sample, error) {
	p.mu.Lock()
	ch := make(chan Sample, 16)
	p.sink = ch
	p.fastest = fastest
	p.lastAt = time.Time{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		if p.sink == ch {
			p.sink = nil
		}
		close(ch)
		p.mu.Unlock()
	}()

	return ch, nil
}

// Push feeds one device-reported sample into the active subscription.
// Returns false when no subscription is active, the sample violates the
// fastest-interval bound, or the buffer is full.
func (p *PushProvider) Push(sample Sample) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sink == nil {
		return false
	}
	if sample.Time.IsZero() {
		sample.Time = time.Now()
	}
	if !p.lastAt.IsZero() && sample.Time.Sub(p.lastAt) < p.fastest {
		return false
	}

	select {
	case p.sink <- sample:
		p.lastAt = sample.Time
		return true
	default:
		return false
	}
}
