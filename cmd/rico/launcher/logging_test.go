package launcher

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogging_levels(t *testing.T) {
	want := []logrus.Level{
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
		logrus.DebugLevel,
		logrus.TraceLevel,
	}
	for verbosity, level := range want {
		logger, err := SetupLogging(LoggingConfig{Verbosity: verbosity}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, level, logger.GetLevel(), "verbosity %d", verbosity)
	}

	_, err := SetupLogging(LoggingConfig{Verbosity: -1}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSetupLogging_formats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := SetupLogging(LoggingConfig{Verbosity: 3, Format: "json"}, &buf)
	require.NoError(t, err)
	logger.WithField("stage", 3).Info("Resolved")
	assert.Contains(t, buf.String(), `"stage":3`)
	assert.Contains(t, buf.String(), `"msg":"Resolved"`)

	buf.Reset()
	logger, err = SetupLogging(LoggingConfig{Verbosity: 3, Format: "text"}, &buf)
	require.NoError(t, err)
	logger.WithField("stage", 3).Info("Resolved")
	assert.Contains(t, buf.String(), "stage=3")
	assert.NotContains(t, buf.String(), "\x1b[")

	buf.Reset()
	logger, err = SetupLogging(LoggingConfig{Verbosity: 3, Color: true}, &buf)
	require.NoError(t, err)
	logger.Info("Resolved")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestSetupLogging_sentryHook(t *testing.T) {
	logger, err := SetupLogging(LoggingConfig{Verbosity: 3, SentryDSN: "https://public@sentry.example/1"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, logger.Hooks[logrus.ErrorLevel], 1)
	assert.Empty(t, logger.Hooks[logrus.InfoLevel])

	_, err = SetupLogging(LoggingConfig{Verbosity: 3, SentryDSN: "not-a-dsn"}, &bytes.Buffer{})
	assert.Error(t, err)
}
