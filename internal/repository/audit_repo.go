package repository

import (
	"context"

	"github.com/Micjeal/NEXTGEN-POS-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRepository is the durable audit sink. Entries are append-only; there
// is deliberately no update or delete method.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditEntry) error
	ListByDrawer(ctx context.Context, drawerID uuid.UUID, limit int) ([]model.AuditEntry, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, e *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) ListByDrawer(ctx context.Context, drawerID uuid.UUID, limit int) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Where("drawer_id = ?", drawerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
