// SPDX-License-Identifier: LGPL-3.0-or-later

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLoggerWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)

	l.Info("hello", String("who", "world"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "world", entry["who"])
}

func TestStructuredLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Info("suppressed")
	assert.Empty(t, buf.String())

	l.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithFieldsAccumulates(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel).WithFields(String("component", "dispatcher"))

	l.Debug("fan out")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispatcher", entry["component"])
}

func TestWithContextPropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, DebugLevel)
	ctx := WithRequestID(context.Background(), "req-123")

	l.WithContext(ctx).Info("fan out")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-123", entry["requestId"])
}
