package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/klinik-sejahtera/clinic-portal/internal/api/metrics"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
	"github.com/klinik-sejahtera/clinic-portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// AuditDispatcher routes session audit events to a fixed set of writer
// workers using consistent hashing on the session ID, preserving per-session
// event ordering. Recording never blocks the caller: when a worker's buffer
// is full the event is dropped and counted.
type AuditDispatcher struct {
	workers []chan domain.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record implements ports.AuditRecorder.
func (d *AuditDispatcher) Record(event domain.AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case d.workers[d.shardIndex(event.SessionID)] <- event:
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().Str("session", event.SessionID).Str("action", string(event.Action)).Msg("audit queue full, event dropped")
	}
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if err := d.repo.Insert(ctx, event); err != nil {
				d.log.Warn().Err(err).Int("worker", id).Str("session", event.SessionID).Msg("failed to persist audit event")
			}
		}
	}
}

func (d *AuditDispatcher) shardIndex(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % uint32(len(d.workers)))
}
