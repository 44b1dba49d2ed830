package logging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/riddle-league/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGHandlerPersistsErrors(t *testing.T) {
	db := dbtest.Open(t)
	h := NewPGHandler(db)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored below error level")
	logger.Error("submit failed", "action", "responses.submit", "user_id", "u1", "riddle_id", "r1")
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "submit failed", rows[0].Message)
	assert.Equal(t, "req-1", rows[0].TraceID)
	assert.Equal(t, "responses.submit", rows[0].Action)
	require.NotNil(t, rows[0].UserID)
	assert.Equal(t, "u1", *rows[0].UserID)
	assert.Contains(t, string(rows[0].Extra), "riddle_id")
}

func TestPurgeLogs(t *testing.T) {
	db := dbtest.Open(t)
	h := NewPGHandler(db)
	slog.New(h).Error("old")
	h.Stop()

	assert.Zero(t, PurgeLogs(context.Background(), db, time.Now().Add(-time.Hour)))
	assert.Equal(t, int64(1), PurgeLogs(context.Background(), db, time.Now().Add(time.Hour)))
}
