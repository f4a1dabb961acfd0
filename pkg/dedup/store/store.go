// Package store provides the time-windowed message deduplication store.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jellydator/ttlcache/v3"
	"github.com/sirupsen/logrus"
)

const (
	flushReasonCapacity = "capacity"
	flushReasonAbsent   = "absent"
)

// Record is one admitted message in history.
type Record struct {
	Message   string
	Timestamp time.Time
}

// Store tracks the most recent timestamp per message together with the
// ordered history of admissions. Both are only ever cleared together.
type Store struct {
	log logrus.FieldLogger

	expirationTime time.Duration
	maxSize        int

	// lastSeen entries never expire on the wall clock, the window is
	// evaluated against event timestamps.
	lastSeen *ttlcache.Cache[string, time.Time]
	history  []Record

	// guards lastSeen and history as one unit
	mu sync.Mutex

	metrics   *Metrics
	scheduler *gocron.Scheduler
}

// NewWithMetrics creates a new Store using existing metrics.
func NewWithMetrics(log logrus.FieldLogger, config *Config, metrics *Metrics) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Store{
		log:            log.WithField("component", "store"),
		expirationTime: config.ExpirationTime,
		maxSize:        config.MaxSize,
		lastSeen: ttlcache.New(
			ttlcache.WithDisableTouchOnHit[string, time.Time](),
		),
		history: make([]Record, 0, config.MaxSize),
		metrics: metrics,
	}, nil
}

// Record admits message at timestampText unless the same message was seen
// less than the expiration time before. It returns false for a suppressed
// duplicate. Admitting a new message while at capacity flushes the whole
// store first.
func (s *Store) Record(message, timestampText string) (bool, error) {
	ts, err := ParseTimestamp(timestampText)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.lastSeen.Get(message); item != nil && ts.Sub(item.Value()) < s.expirationTime {
		s.metrics.IncDuplicates()

		return false, nil
	}

	if s.lastSeen.Len() >= s.maxSize {
		s.log.WithFields(logrus.Fields{
			"max_size": s.maxSize,
			"message":  message,
		}).Debug("capacity reached, flushing store")

		s.clearLocked(flushReasonCapacity)
	}

	s.lastSeen.Set(message, ts, ttlcache.NoTTL)
	s.history = append(s.history, Record{Message: message, Timestamp: ts})

	s.metrics.IncAdmissions()
	s.metrics.SetSizes(s.lastSeen.Len(), len(s.history))

	return true, nil
}

// ResetIfAbsent clears the store unless some history record carries exactly
// the given timestamp.
func (s *Store) ResetIfAbsent(timestampText string) error {
	ts, err := ParseTimestamp(timestampText)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.history {
		if record.Timestamp.Equal(ts) {
			s.log.WithField("timestamp", timestampText).Debug("timestamp present in history, skipping reset")

			return nil
		}
	}

	s.log.WithField("timestamp", timestampText).Debug("timestamp absent from history, resetting store")

	s.clearLocked(flushReasonAbsent)

	return nil
}

// clearLocked must be called with mu held.
func (s *Store) clearLocked(reason string) {
	s.lastSeen.DeleteAll()
	s.history = make([]Record, 0, s.maxSize)

	s.metrics.IncFlushes(reason)
	s.metrics.SetSizes(0, 0)
}

// Len returns the number of distinct messages tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSeen.Len()
}

// LastSeen returns a copy of the most recent timestamp per message.
func (s *Store) LastSeen() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.lastSeen.Items()
	out := make(map[string]time.Time, len(items))

	for key, item := range items {
		out[key] = item.Value()
	}

	return out
}

// History returns a copy of the admission history, oldest first.
func (s *Store) History() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.history))
	copy(out, s.history)

	return out
}

// Start begins periodic metrics publishing.
func (s *Store) Start(ctx context.Context) error {
	return s.startCrons(ctx)
}

// Stop stops periodic metrics publishing.
func (s *Store) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Store) startCrons(_ context.Context) error {
	c := gocron.NewScheduler(time.Local)

	if _, err := c.Every("5s").Do(s.publishMetrics); err != nil {
		return err
	}

	c.StartAsync()

	s.scheduler = c

	return nil
}

func (s *Store) publishMetrics() {
	s.mu.Lock()
	lastSeen, history := s.lastSeen.Len(), len(s.history)
	s.mu.Unlock()

	indexMetrics := s.lastSeen.Metrics()
	s.metrics.SetIndexInsertions(indexMetrics.Insertions, "last_seen")
	s.metrics.SetIndexHits(indexMetrics.Hits, "last_seen")
	s.metrics.SetIndexMisses(indexMetrics.Misses, "last_seen")
	s.metrics.SetIndexEvictions(indexMetrics.Evictions, "last_seen")
	s.metrics.SetSizes(lastSeen, history)
}
