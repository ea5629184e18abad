package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionIsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, false, "")

	log.Debug("hidden")
	log.Info("file stored", "file_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "file stored", entry["msg"])
	assert.EqualValues(t, 7, entry["file_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewDevelopmentIsText(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, true, "")

	log.Debug("visible", "path", "/api/files")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "path=/api/files")
}
