package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/foodai/foodai-web/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New("production", &buf)

	l.Info("joined waitlist", "component", "service.Waitlist")
	l.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "joined waitlist", line["msg"])
	assert.Equal(t, "service.Waitlist", line["component"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_DevelopmentIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New("development", &buf)

	l.Debug("probe ok")

	assert.Contains(t, buf.String(), "msg=\"probe ok\"")
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, logger.Info, logging.GormLevel("development"))
	assert.Equal(t, logger.Silent, logging.GormLevel("test"))
	assert.Equal(t, logger.Warn, logging.GormLevel("production"))
}
