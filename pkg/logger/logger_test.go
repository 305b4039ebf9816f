package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", &buf)

	log.WithField("report_id", "r1").Info("Report submitted successfully")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Report submitted successfully", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "r1", entry["report_id"])
	assert.NotEmpty(t, entry["time"])
}

func TestNewWithOutput_Level(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, NewWithOutput("warn", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput("loud", &bytes.Buffer{}).GetLevel())
}
