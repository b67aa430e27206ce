package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewWithOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("debug", "json", &buf)

	logger.WithField("team", "TEAM-007").Debug("riddle served")

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), `"team":"TEAM-007"`)
	assert.Contains(t, buf.String(), `"msg":"riddle served"`)
}

func TestNewWithOutputFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput("loud", "text", &buf)

	logger.Debug("hidden")

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Empty(t, buf.String())
}
