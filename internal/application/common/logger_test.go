package common_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ropable/spacetraders-api/internal/application/common"
)

func TestStdLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := common.NewStdLogger(&buf, "warn", "text")

	logger.Log("INFO", "quiet", nil)
	logger.Log("ERROR", "loud", map[string]interface{}{"ship_symbol": "AGENT-1", "action": "dock"})

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "[ERROR] loud action=dock ship_symbol=AGENT-1")
}

func TestStdLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := common.NewStdLogger(&buf, "debug", "json")

	logger.Log("debug", "hello", map[string]interface{}{"units": 3})

	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"units":3`)
}

func TestLoggerFromContext_DefaultsToNoOp(t *testing.T) {
	logger := common.LoggerFromContext(context.Background())
	assert.NotPanics(t, func() { logger.Log("INFO", "ignored", nil) })

	var buf bytes.Buffer
	ctx := common.WithLogger(context.Background(), common.NewStdLogger(&buf, "info", "text"))
	common.LoggerFromContext(ctx).Log("INFO", "kept", nil)
	assert.Contains(t, buf.String(), "kept")
}
