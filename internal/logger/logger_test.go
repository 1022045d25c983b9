package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_AddsRequestAndUserIDs(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("development") })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-42")
	CtxInfo(ctx, "hello", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "user-42", entry["user_id"])
	assert.Equal(t, "v", entry["k"])
}

func TestProductionLevelSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("development") })

	Debug("hidden")
	assert.Empty(t, buf.String())

	Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestCtxDebug_DevelopmentLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("development", &buf)
	t.Cleanup(func() { Init("development") })

	CtxDebug(WithUserID(context.Background(), "user-7"), "request authenticated")
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "request authenticated")
	assert.Contains(t, out, "user_id=user-7")
}
