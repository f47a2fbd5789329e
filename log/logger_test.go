package log

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoggersInitialized(t *testing.T) {
	for name, logger := range map[string]logrus.FieldLogger{
		"API":     API,
		"Engine":  Engine,
		"Request": Request,
	} {
		assert.NotNil(t, logger, "%s logger should be initialized", name)
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	logFile, err := os.CreateTemp("", "*")
	assert.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, os.Remove(logFile.Name()))
	})

	logger := Logger(logrus.New(), logFile.Name(), "api", "test")
	logger.Info("structured log entry")

	data, err := os.ReadFile(logFile.Name())
	assert.NoError(t, err)
	assert.Contains(t, string(data), "structured log entry")
	assert.Contains(t, string(data), "application=api")
}

func TestLoggerFallsBackToStderr(t *testing.T) {
	// An unwritable path should not prevent logger construction.
	logger := Logger(logrus.New(), "/this/path/does/not/exist/log", "api", "test")
	assert.NotNil(t, logger)
}
