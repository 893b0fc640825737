package worker

// redrive_cron.go
// Background goroutine that periodically moves audit jobs out of the DLQ and
// back onto the source queue. Audit entries record compliance-relevant events,
// so a transient database outage must not strand them in the DLQ forever.
// Entries that keep failing past the redrive cap are moved to a parked list
// for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redriveTickInterval = 5 * time.Minute
	redriveBatchSize    = 20
	// maxRedriveAttempts counts total processing attempts, including the
	// in-pool retries that preceded the DLQ.
	maxRedriveAttempts = 10

	ParkedQueue = "dlq:parked"
)

// StartRedriveCron launches a goroutine that ticks every 5 minutes and
// redrives DLQ'd audit jobs. It respects the context for graceful shutdown.
func StartRedriveCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(redriveTickInterval)
		defer ticker.Stop()

		log.Info().Msg("redrive_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("redrive_cron: shutting down")
				return
			case <-ticker.C:
				redriveBatch(ctx, rdb)
			}
		}
	}()
}

func redriveBatch(ctx context.Context, rdb *redis.Client) {
	dlqKey := DLQPrefix + QueueAudit
	redriven := 0

	for i := 0; i < redriveBatchSize; i++ {
		raw, err := rdb.RPop(ctx, dlqKey).Result()
		if err != nil {
			break // empty or redis unavailable - try again next tick
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("redrive_cron: unreadable DLQ entry, parking")
			_ = rdb.LPush(ctx, ParkedQueue, raw).Err()
			continue
		}

		if entry.Attempts >= maxRedriveAttempts {
			log.Warn().
				Str("job_type", entry.JobType).
				Int("attempts", entry.Attempts).
				Msg("redrive_cron: attempt cap reached, parking for manual inspection")
			_ = rdb.LPush(ctx, ParkedQueue, raw).Err()
			continue
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload, Attempts: entry.Attempts}
		encoded, err := json.Marshal(job)
		if err != nil {
			_ = rdb.LPush(ctx, ParkedQueue, raw).Err()
			continue
		}
		if err := rdb.LPush(ctx, QueueAudit, encoded).Err(); err != nil {
			// Could not re-enqueue - put the DLQ entry back and stop the batch.
			_ = rdb.LPush(ctx, dlqKey, raw).Err()
			return
		}
		redriven++
	}

	if redriven > 0 {
		log.Info().Int("count", redriven).Msg("redrive_cron: DLQ entries redriven")
	}
}
