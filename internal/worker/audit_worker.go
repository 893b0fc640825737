package worker

// audit_worker.go
// Persists audit events from QueueAudit into the durable audit table.
// The queue decouples the hot payment/ledger path from audit storage: a slow
// or briefly unavailable database delays audit persistence, never payments.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AuditJobPayload is the job envelope sent to QueueAudit.
type AuditJobPayload struct {
	EventType       string                 `json:"event_type"`
	Status          string                 `json:"status"`
	RiskLevel       string                 `json:"risk_level"`
	OperatorID      *uuid.UUID             `json:"operator_id,omitempty"`
	DrawerID        *uuid.UUID             `json:"drawer_id,omitempty"`
	SaleID          *uuid.UUID             `json:"sale_id,omitempty"`
	PaymentMethodID *uuid.UUID             `json:"payment_method_id,omitempty"`
	Details         map[string]interface{} `json:"details,omitempty"`
	OccurredAt      time.Time              `json:"occurred_at"`
}

// AuditWorker processes audit jobs from QueueAudit.
type AuditWorker struct {
	repo repository.AuditRepository
}

func NewAuditWorker(repo repository.AuditRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

// Process persists one audit event. A returned error triggers the pool's
// retry-then-DLQ path.
func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AuditJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Malformed payloads can never succeed - log and drop instead of
		// spinning through retries.
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return nil
	}

	details := "{}"
	if len(payload.Details) > 0 {
		if b, err := json.Marshal(payload.Details); err == nil {
			details = string(b)
		}
	}

	entry := &model.AuditEntry{
		EventType:       payload.EventType,
		Status:          payload.Status,
		RiskLevel:       payload.RiskLevel,
		OperatorID:      payload.OperatorID,
		DrawerID:        payload.DrawerID,
		SaleID:          payload.SaleID,
		PaymentMethodID: payload.PaymentMethodID,
		Details:         details,
		CreatedAt:       payload.OccurredAt,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := w.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("event_type", payload.EventType).Msg("audit_worker: failed to persist entry")
		return err
	}
	return nil
}
