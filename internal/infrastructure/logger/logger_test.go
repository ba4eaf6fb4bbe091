package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/erp/storesync/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	log, err := New(&config.LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("pass finished", zap.String("channel_id", "c1"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"pass finished"`)
	assert.Contains(t, string(data), `"channel_id":"c1"`)
}

func TestNew_UnwritableOutput(t *testing.T) {
	_, err := New(&config.LogConfig{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestPassIDContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, enriched := WithPassID(context.Background(), base, "p-42")
	assert.Equal(t, "p-42", GetPassID(ctx))
	assert.Equal(t, enriched, FromContext(ctx))

	enriched.Info("hello")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "p-42", recorded.All()[0].ContextMap()["pass_id"])

	assert.Empty(t, GetPassID(context.Background()))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestGormLogger_TraceCarriesPassID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info)

	ctx, _ := WithPassID(context.Background(), zap.NewNop(), "p-7")
	gormLog.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL Query", logs[0].Message)
	assert.Equal(t, "p-7", logs[0].ContextMap()["pass_id"])
	assert.Equal(t, "SELECT 1", logs[0].ContextMap()["sql"])
}

func TestGormLogger_TraceErrors(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Warn)

	gormLog.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM parties", 0
	}, gormlogger.ErrRecordNotFound)
	assert.Empty(t, recorded.All())

	gormLog.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO parties", 0
	}, errors.New("constraint failed"))
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "SQL Error", recorded.All()[0].Message)
}

func TestGormLogger_ExpectedMissesLoggedAtDebug(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Info)

	gormLog.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "INSERT INTO sale_channels", 0
	}, gorm.ErrDuplicatedKey)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "SQL Expected Miss", logs[0].Message)
	assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
}

func TestGormLogger_SlowQuery(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gormLog := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gormLog.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM sales", 3
	}, nil)

	require.Len(t, recorded.All(), 1)
	assert.Contains(t, recorded.All()[0].Message, "SLOW SQL")
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
