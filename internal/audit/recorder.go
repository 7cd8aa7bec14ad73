// Package audit appends immutable change records for entity mutations.
// Recording is best-effort: a failed append is logged and swallowed so the
// primary mutation is never blocked or rolled back.
package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
)

type logCreator interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Recorder writes audit log rows for create, update and delete operations.
type Recorder struct {
	logs   logCreator
	logger *zap.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(logs logCreator, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{logs: logs, logger: logger}
}

// Insert records a newly created entity. Only the new snapshot is kept.
func (r *Recorder) Insert(ctx context.Context, p models.Principal, table, recordID string, newValue interface{}) {
	r.record(ctx, p, table, recordID, models.AuditActionInsert, nil, newValue)
}

// Update records a mutation with both the before and after snapshots.
func (r *Recorder) Update(ctx context.Context, p models.Principal, table, recordID string, oldValue, newValue interface{}) {
	r.record(ctx, p, table, recordID, models.AuditActionUpdate, oldValue, newValue)
}

// Delete records a removal or deactivation. Only the old snapshot is kept.
func (r *Recorder) Delete(ctx context.Context, p models.Principal, table, recordID string, oldValue interface{}) {
	r.record(ctx, p, table, recordID, models.AuditActionDelete, oldValue, nil)
}

func (r *Recorder) record(ctx context.Context, p models.Principal, table, recordID, action string, oldValue, newValue interface{}) {
	entry := &models.AuditLog{
		CompanyID: p.CompanyID,
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		IPAddress: p.IPAddress,
		UserAgent: p.UserAgent,
	}
	if p.UserID != "" {
		userID := p.UserID
		entry.UserID = &userID
	}
	entry.OldValues = snapshot(oldValue, r.logger)
	entry.NewValues = snapshot(newValue, r.logger)

	if err := r.logs.Create(ctx, entry); err != nil {
		r.logger.Warn("audit write failed",
			zap.String("table", table),
			zap.String("record_id", recordID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func snapshot(value interface{}, logger *zap.Logger) []byte {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("audit snapshot serialization failed", zap.Error(err))
		return nil
	}
	return raw
}
