// Package tracking simulates live vehicle positions for the tracking map.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/freightdesk/backoffice/pkg/logistics"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/observability/metrics"
	"github.com/freightdesk/backoffice/pkg/store"
)

// Config configures a Simulator.
type Config struct {
	// Interval between two ticks.
	Interval time.Duration
	// MaxStep bounds the per-tick latitude and longitude delta in degrees.
	MaxStep float64
	// Buffer is the per-subscriber channel capacity. Ticks that do not fit
	// are dropped for that subscriber.
	Buffer int
	// Seed makes the movement reproducible. Zero seeds from the clock.
	Seed uint64
}

// DefaultConfig returns the settings used when tracking is enabled without
// explicit tuning.
func DefaultConfig() Config {
	return Config{Interval: 2 * time.Second, MaxStep: 0.01, Buffer: 1}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if c.Interval <= 0 {
		errs = append(errs, errors.New("interval must be positive"))
	}
	if c.MaxStep <= 0 || c.MaxStep > 1 {
		errs = append(errs, errors.New("max step must be in (0, 1] degrees"))
	}
	if c.Buffer < 0 {
		errs = append(errs, errors.New("buffer cannot be negative"))
	}
	return errors.Join(errs...)
}

// Update is the fleet state after one tick.
type Update struct {
	Seq      uint64              `json:"seq"`
	At       time.Time           `json:"at"`
	Vehicles []logistics.Vehicle `json:"vehicles"`
}

// Simulator moves vehicles by bounded random deltas on a fixed interval,
// writes every tick through the store and fans it out to subscribers.
type Simulator struct {
	store   store.Store[logistics.Vehicle]
	cfg     Config
	logger  logger.Logger
	metrics *metrics.TrackingMetrics
	now     func() time.Time

	stepMu sync.Mutex
	rng    *rand.Rand
	seq    uint64

	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
	closed bool
}

type subscriber struct {
	ch   chan Update
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithMetrics records ticks, drops and subscriber counts.
func WithMetrics(m *metrics.TrackingMetrics) Option {
	return func(s *Simulator) { s.metrics = m }
}

// WithClock replaces time.Now for update timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// NewSimulator creates a simulator writing to st.
func NewSimulator(st store.Store[logistics.Vehicle], cfg Config, log logger.Logger, opts ...Option) (*Simulator, error) {
	if st == nil {
		return nil, errors.New("tracking store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracking config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s := &Simulator{
		store:  st,
		cfg:    cfg,
		logger: log.With("component", "tracking"),
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		subs:   make(map[uint64]*subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run ticks until ctx is done, then closes every subscription. A failed
// tick is logged and the loop continues.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("tracking simulator started", "interval", s.cfg.Interval.String())
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	defer s.closeAll()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tracking simulator stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Step(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("tracking tick failed", "error", err)
			}
		}
	}
}

// Step applies one tick: moving vehicles shift position and speed, idle and
// loading ones only refresh their timestamp, offline ones are left alone.
func (s *Simulator) Step(ctx context.Context) (Update, error) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	current, err := s.store.Snapshot(ctx)
	if err != nil {
		return Update{}, fmt.Errorf("read vehicles: %w", err)
	}

	at := s.now().UTC()
	fleet := make([]logistics.Vehicle, len(current))
	changed := make([]logistics.Vehicle, 0, len(current))
	for i, v := range current {
		if v.Status != logistics.VehicleOffline {
			v = s.move(v, at)
			changed = append(changed, v)
		}
		fleet[i] = v
	}

	if err := store.UpdateMany(ctx, s.store, changed); err != nil {
		return Update{}, fmt.Errorf("write vehicles: %w", err)
	}

	s.seq++
	u := Update{Seq: s.seq, At: at, Vehicles: fleet}
	if s.metrics != nil {
		s.metrics.Tick()
	}
	s.broadcast(u)
	return u, nil
}

func (s *Simulator) move(v logistics.Vehicle, at time.Time) logistics.Vehicle {
	v.UpdatedAt = at
	if v.Status != logistics.VehicleMoving {
		v.SpeedKmh = 0
		return v
	}
	v.Lat = clamp(v.Lat+s.delta(s.cfg.MaxStep), -90, 90)
	v.Lng = wrap(v.Lng + s.delta(s.cfg.MaxStep))
	v.SpeedKmh = math.Round(clamp(v.SpeedKmh+s.delta(5), 20, 110)*10) / 10
	return v
}

// delta returns a uniform value in [-bound, bound).
func (s *Simulator) delta(bound float64) float64 {
	return (s.rng.Float64()*2 - 1) * bound
}

// Subscribe registers a listener. The channel is closed by cancel or when
// the simulator stops. Cancel is safe to call more than once.
func (s *Simulator) Subscribe() (<-chan Update, func()) {
	sub := &subscriber{ch: make(chan Update, s.cfg.Buffer)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.Subscribed(1)
	}
	return sub.ch, func() {
		s.mu.Lock()
		_, ok := s.subs[id]
		delete(s.subs, id)
		s.mu.Unlock()
		if ok {
			sub.close()
			if s.metrics != nil {
				s.metrics.Subscribed(-1)
			}
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (s *Simulator) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Simulator) broadcast(u Update) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		select {
		case sub.ch <- u:
		default:
			if s.metrics != nil {
				s.metrics.Dropped()
			}
		}
	}
}

func (s *Simulator) closeAll() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[uint64]*subscriber)
	s.closed = true
	s.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	if s.metrics != nil && len(subs) > 0 {
		s.metrics.Subscribed(-len(subs))
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func wrap(lng float64) float64 {
	switch {
	case lng > 180:
		return lng - 360
	case lng < -180:
		return lng + 360
	}
	return lng
}
