package service

import (
	"context"
	"sync"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/worker"

	"github.com/rs/zerolog/log"
)

// AuditLogger records lifecycle and payment events. Recording is
// fire-and-forget by contract: a failure to record must never fail or roll
// back the operation being audited, so Record returns nothing.
type AuditLogger interface {
	Record(ctx context.Context, evt worker.AuditJobPayload)
}

// fallbackCapacity bounds the local queue that catches events when Redis is
// down. When full, the oldest events are dropped - loudly.
const fallbackCapacity = 1000

// queuedAuditLogger enqueues events to the audit worker queue. Enqueue
// failures divert to an in-process fallback queue which a background
// goroutine drains once Redis recovers, so audit loss requires both Redis to
// stay down and the process to die.
type queuedAuditLogger struct {
	dispatcher *worker.Dispatcher

	mu       sync.Mutex
	fallback []worker.AuditJobPayload
}

func NewAuditLogger(dispatcher *worker.Dispatcher) AuditLogger {
	return &queuedAuditLogger{dispatcher: dispatcher}
}

func (l *queuedAuditLogger) Record(ctx context.Context, evt worker.AuditJobPayload) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	if err := l.dispatcher.EnqueueAudit(ctx, evt); err != nil {
		log.Error().
			Err(err).
			Str("event_type", evt.EventType).
			Msg("audit: enqueue failed, diverting to fallback queue")
		l.park(evt)
	}
}

func (l *queuedAuditLogger) park(evt worker.AuditJobPayload) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.fallback) >= fallbackCapacity {
		dropped := l.fallback[0]
		l.fallback = l.fallback[1:]
		log.Error().
			Str("event_type", dropped.EventType).
			Msg("audit: fallback queue full, dropping oldest event")
	}
	l.fallback = append(l.fallback, evt)
}

// StartFallbackDrain launches a goroutine that periodically re-attempts
// enqueueing parked events. Call once at startup.
func (l *queuedAuditLogger) StartFallbackDrain(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.drain(ctx)
			}
		}
	}()
}

func (l *queuedAuditLogger) drain(ctx context.Context) {
	l.mu.Lock()
	parked := l.fallback
	l.fallback = nil
	l.mu.Unlock()

	if len(parked) == 0 {
		return
	}

	requeued := 0
	for i, evt := range parked {
		if err := l.dispatcher.EnqueueAudit(ctx, evt); err != nil {
			// Redis still down - keep the remainder parked for the next tick.
			l.mu.Lock()
			l.fallback = append(parked[i:], l.fallback...)
			l.mu.Unlock()
			break
		}
		requeued++
	}
	if requeued > 0 {
		log.Info().Int("count", requeued).Msg("audit: fallback queue drained")
	}
}

// StartAuditFallbackDrain starts the drain goroutine when the logger is the
// queued implementation (test doubles don't need one).
func StartAuditFallbackDrain(ctx context.Context, l AuditLogger) {
	if q, ok := l.(*queuedAuditLogger); ok {
		q.StartFallbackDrain(ctx)
	}
}
