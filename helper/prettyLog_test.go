package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		assert.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Level option filters through the logger", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
		})
		logger := slog.New(handler)

		logger.Info("hidden message")
		logger.Warn("visible message")

		assert.NotContains(t, buf.String(), "hidden message", "Expected info record to be filtered")
		assert.Contains(t, buf.String(), "visible message", "Expected warn record to be printed")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	levels := []struct {
		level  slog.Level
		prefix string
	}{
		{slog.LevelDebug, "DEBUG:"},
		{slog.LevelInfo, "INFO:"},
		{slog.LevelWarn, "WARN:"},
		{slog.LevelError, "ERROR:"},
	}
	for _, tc := range levels {
		t.Run("Handle "+tc.prefix+" record", func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
				SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
			})

			record := slog.NewRecord(time.Now(), tc.level, "meeting stored", 0)
			record.AddAttrs(slog.String("meeting_id", "abc"), slog.Int("points", 12))

			err := handler.Handle(ctx, record)
			assert.NoError(t, err, "Expected Handle to not return an error")

			output := buf.String()
			assert.Contains(t, output, tc.prefix, "Expected output to contain the level")
			assert.Contains(t, output, "meeting stored", "Expected output to contain the message")
			assert.Contains(t, output, "meeting_id", "Expected output to contain attribute key")
			assert.Contains(t, output, "12", "Expected output to contain attribute value")
		})
	}

	t.Run("Handle record with no attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		err := handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "simple message", 0))
		assert.NoError(t, err, "Expected Handle to not return an error")
		assert.Contains(t, buf.String(), "{}", "Expected empty JSON object for attributes")
	})

	t.Run("Handle formats timestamp", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		err := handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0))
		assert.NoError(t, err, "Expected Handle to not return an error")
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String(), "Expected timestamp in [15:04:05.000] format")
	})
}

func TestPrettyHandlerWith(t *testing.T) {
	t.Run("Component attributes stay pretty", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{})).With("component", "ingest")

		logger.Info("processed line", slog.String("timestamp", "6:16"))

		output := buf.String()
		assert.Contains(t, output, "INFO:", "Expected pretty level prefix after With")
		assert.Contains(t, output, "component", "Expected inherited attribute key")
		assert.Contains(t, output, "ingest", "Expected inherited attribute value")
		assert.Contains(t, output, "6:16", "Expected record attribute value")
	})

	t.Run("Group prefixes attribute keys", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{})).WithGroup("vector")

		logger.Info("batch upserted", slog.Int("size", 25))

		assert.Contains(t, buf.String(), "vector.size", "Expected grouped attribute key")
	})
}
