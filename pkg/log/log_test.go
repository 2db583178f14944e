package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerCarriesRequestId(t *testing.T) {
	ctx := WithRequestId(context.Background(), "req-42")
	entry := Component(ctx, "pipeline")

	assert.Equal(t, "req-42", entry.Data[CtxRequestId])
	assert.Equal(t, "pipeline", entry.Data["component"])

	bare := GetLogger(context.Background())
	assert.NotContains(t, bare.Data, CtxRequestId)
}

func TestInitLogJSON(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)
	InitLog("debug", FormatJSON)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	Component(WithRequestId(context.Background(), "abc"), "server").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "abc", line[CtxRequestId])
	assert.Equal(t, "server", line["component"])
	assert.Contains(t, line["file"], "log_test.go")
}

func TestInitLogBadLevelFallsBackToInfo(t *testing.T) {
	InitLog("loud", FormatText)
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	_, ok := logrus.StandardLogger().Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}
