package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, InfoLevel)

	l.Info("node started", String("node_id", "abc123"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "node started", entry["message"])
	assert.Equal(t, "abc123", entry["node_id"])
}

func TestStructuredLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, WarnLevel)

	l.Debug("should not appear")
	l.Info("should not appear either")
	assert.Empty(t, buf.String())

	l.Warn("should appear")
	assert.NotEmpty(t, buf.String())
}

func TestWithFieldsAccumulates(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, InfoLevel)

	scoped := l.WithFields(String("peer", "node-1"))
	scoped.Info("flushing pending")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "node-1", entry["peer"])
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, InfoLevel)

	ctx := WithRequestID(context.Background(), "req-42")
	l.WithContext(ctx).Info("submit")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-42", entry["request_id"])
}

func TestErrorFieldHandlesNil(t *testing.T) {
	f := Error(nil)
	assert.Nil(t, f.Value)

	f = Error(errors.New("boom"))
	assert.Equal(t, "boom", f.Value)
}

func TestSetAndGetLevel(t *testing.T) {
	l := NewLogger(&bytes.Buffer{}, InfoLevel)
	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.GetLevel())
}
