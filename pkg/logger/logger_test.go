package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyValueFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, zerolog.InfoLevel)
	t.Cleanup(func() { Init("test", false) })

	Info("Transfer prepared", "safe", "0xabc", "nonce", 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Transfer prepared", entry["message"])
	assert.Equal(t, "0xabc", entry["safe"])
	assert.Equal(t, float64(3), entry["nonce"])
}

func TestErrorCarriesErr(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, zerolog.InfoLevel)
	t.Cleanup(func() { Init("test", false) })

	Error("Chain read failed", errors.New("timeout"), "method", "nonce()")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "timeout", entry["error"])
	assert.Equal(t, "nonce()", entry["method"])
}

func TestDebugFilteredByLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, zerolog.InfoLevel)
	t.Cleanup(func() { Init("test", false) })

	Debug("hidden")
	assert.Zero(t, buf.Len())

	SetOutput(&buf, zerolog.DebugLevel)
	Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
