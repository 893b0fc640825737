package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"
	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditRepo struct {
	entries []*model.AuditEntry
	err     error
}

func (r *fakeAuditRepo) Create(_ context.Context, e *model.AuditEntry) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeAuditRepo) ListByDrawer(_ context.Context, _ uuid.UUID, _ int) ([]model.AuditEntry, error) {
	return nil, nil
}

func TestAuditWorkerPersistsEvent(t *testing.T) {
	repo := &fakeAuditRepo{}
	w := worker.NewAuditWorker(repo)

	operator := uuid.New()
	occurred := time.Now().Add(-time.Minute)
	payload, err := json.Marshal(worker.AuditJobPayload{
		EventType:  "drawer_opened",
		Status:     model.AuditSuccess,
		RiskLevel:  model.RiskLow,
		OperatorID: &operator,
		Details:    map[string]interface{}{"opening_balance": "5000"},
		OccurredAt: occurred,
	})
	require.NoError(t, err)

	require.NoError(t, w.Process(context.Background(), payload))
	require.Len(t, repo.entries, 1)

	e := repo.entries[0]
	assert.Equal(t, "drawer_opened", e.EventType)
	assert.Equal(t, model.AuditSuccess, e.Status)
	assert.Equal(t, &operator, e.OperatorID)
	assert.Contains(t, e.Details, "opening_balance")
	// The audit timestamp is the event time, not the persistence time.
	assert.WithinDuration(t, occurred, e.CreatedAt, time.Second)
}

func TestAuditWorkerDropsMalformedPayload(t *testing.T) {
	repo := &fakeAuditRepo{}
	w := worker.NewAuditWorker(repo)

	// Malformed payloads are dropped without error so the pool does not spin
	// through pointless retries.
	assert.NoError(t, w.Process(context.Background(), []byte("not json")))
	assert.Empty(t, repo.entries)
}

func TestAuditWorkerReturnsRepoError(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("db down")}
	w := worker.NewAuditWorker(repo)

	payload, err := json.Marshal(worker.AuditJobPayload{EventType: "drawer_opened", Status: model.AuditSuccess, RiskLevel: model.RiskLow})
	require.NoError(t, err)

	// A persistence failure must surface so the pool retries then DLQs.
	assert.Error(t, w.Process(context.Background(), payload))
}
