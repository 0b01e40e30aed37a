package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture_RecordsMessagesAndAttrs(t *testing.T) {
	logger, capture := NewCaptureLogger()

	logger.Info("Cleaned data saved", slog.String("path", "data/cleaned.csv"))
	logger.Warn("Dropping row with unparseable date")

	require.Len(t, capture.Records(), 2)
	assert.True(t, capture.HasMessage("Cleaned data saved"))
	assert.False(t, capture.HasMessage("never logged"))

	path, ok := capture.AttrValue("Cleaned data saved", "path")
	require.True(t, ok)
	assert.Equal(t, "data/cleaned.csv", path)

	warnings := capture.MessagesAtLevel(slog.LevelWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Dropping row with unparseable date", warnings[0])
}

func TestLogCapture_WithCarriesBoundAttrs(t *testing.T) {
	logger, capture := NewCaptureLogger()

	logger.With(slog.String("component", "cleaner")).Info("Stage starting")

	component, ok := capture.AttrValue("Stage starting", "component")
	require.True(t, ok)
	assert.Equal(t, "cleaner", component)
}

func TestLogCapture_CallSiteAttrWinsOverBound(t *testing.T) {
	logger, capture := NewCaptureLogger()

	bound := logger.With(slog.String("stage", "clean_data"))
	bound.Info("Stage completed", slog.String("stage", "analyze_data"))

	stage, ok := capture.AttrValue("Stage completed", "stage")
	require.True(t, ok)
	assert.Equal(t, "analyze_data", stage)
}
