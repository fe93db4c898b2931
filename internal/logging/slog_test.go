package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufLogger(buf *bytes.Buffer) *SlogLogger {
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h))
}

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := newBufLogger(&buf)
	ctx := context.Background()

	log.Debug(ctx, "d", "k", 1)
	log.Info(ctx, "i")
	log.Warn(ctx, "w")
	log.Error(ctx, "e")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := newBufLogger(&buf)

	child := log.With("component", "store")
	child.Info(context.Background(), "hello")

	assert.Contains(t, buf.String(), "component=store")
}
