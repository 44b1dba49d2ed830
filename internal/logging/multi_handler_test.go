package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerFansOut(t *testing.T) {
	var all, errorsOnly bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&all, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errorsOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("service", "riddle-league")

	logger.Info("riddle created", "riddle_id", "r1")
	logger.Error("submit failed", "riddle_id", "r2")

	assert.Contains(t, all.String(), `"msg":"riddle created"`)
	assert.Contains(t, all.String(), `"msg":"submit failed"`)
	assert.Contains(t, all.String(), `"service":"riddle-league"`)
	assert.NotContains(t, errorsOnly.String(), "riddle created")
	assert.Contains(t, errorsOnly.String(), "submit failed")
}

func TestMultiHandlerKeepsGoingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	json := slog.NewJSONHandler(&buf, nil)
	h := NewMultiHandler(failingHandler{json}, json)

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))

	err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "still logged", 0))
	assert.EqualError(t, err, "sink down")
	assert.Contains(t, buf.String(), "still logged")
}
