package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuskit/academy-api/internal/models"
)

type mockLogCreator struct {
	entries []*models.AuditLog
	err     error
}

func (m *mockLogCreator) Create(ctx context.Context, entry *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func testPrincipal() models.Principal {
	return models.Principal{
		UserID:    "u1",
		CompanyID: "c1",
		Role:      models.RoleAdmin,
		IPAddress: "10.0.0.1",
		UserAgent: "tests",
	}
}

func TestRecorderInsertKeepsNewSnapshotOnly(t *testing.T) {
	logs := &mockLogCreator{}
	rec := NewRecorder(logs, zap.NewNop())

	grade := models.Grade{ID: "g1", CompanyID: "c1", Code: "G1", Name: "Beginner"}
	rec.Insert(context.Background(), testPrincipal(), "grades", grade.ID, grade)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, models.AuditActionInsert, entry.Action)
	assert.Equal(t, "grades", entry.TableName)
	assert.Equal(t, "g1", entry.RecordID)
	assert.Equal(t, "c1", entry.CompanyID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u1", *entry.UserID)
	assert.Nil(t, entry.OldValues)

	var decoded models.Grade
	require.NoError(t, json.Unmarshal(entry.NewValues, &decoded))
	assert.Equal(t, "G1", decoded.Code)
}

func TestRecorderUpdateKeepsBothSnapshots(t *testing.T) {
	logs := &mockLogCreator{}
	rec := NewRecorder(logs, zap.NewNop())

	before := models.Grade{ID: "g1", Code: "G1", Name: "Old"}
	after := models.Grade{ID: "g1", Code: "G1", Name: "New"}
	rec.Update(context.Background(), testPrincipal(), "grades", "g1", before, after)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, models.AuditActionUpdate, entry.Action)
	assert.NotNil(t, entry.OldValues)
	assert.NotNil(t, entry.NewValues)
}

func TestRecorderDeleteKeepsOldSnapshotOnly(t *testing.T) {
	logs := &mockLogCreator{}
	rec := NewRecorder(logs, zap.NewNop())

	rec.Delete(context.Background(), testPrincipal(), "books", "b1", models.Book{ID: "b1"})

	require.Len(t, logs.entries, 1)
	assert.Equal(t, models.AuditActionDelete, logs.entries[0].Action)
	assert.NotNil(t, logs.entries[0].OldValues)
	assert.Nil(t, logs.entries[0].NewValues)
}

func TestRecorderSwallowsPersistenceFailure(t *testing.T) {
	logs := &mockLogCreator{err: errors.New("audit table gone")}
	rec := NewRecorder(logs, zap.NewNop())

	assert.NotPanics(t, func() {
		rec.Insert(context.Background(), testPrincipal(), "grades", "g1", models.Grade{ID: "g1"})
	})
	assert.Empty(t, logs.entries)
}
