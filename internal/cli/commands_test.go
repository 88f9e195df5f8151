package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/finsight-ai/finsight/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	return cfg
}

func TestConfigManagerPersistsAcrossRuns(t *testing.T) {
	cfg := testConfig(t)

	mgr, err := newConfigManager(cfg, zap.NewNop())
	require.NoError(t, err)

	// First run materializes the env-resolved config under the data dir.
	path := filepath.Join(cfg.DataDir, "config.json")
	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ServerPort, mgr.Get().ServerPort)

	changed := mgr.Get()
	changed.ServerPort = 9095
	require.NoError(t, mgr.Update(changed))

	// The next run reads the stored file, not the seed.
	mgr2, err := newConfigManager(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 9095, mgr2.Get().ServerPort)
}

func TestConfigReloadAdjustsLogLevel(t *testing.T) {
	cfg := testConfig(t)

	mgr, err := newConfigManager(cfg, zap.NewNop())
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The same callback shape serve registers.
	require.NoError(t, mgr.Watch(ctx, func(c config.Config) {
		applyLogLevel(level, c.Debug)
	}))

	changed := mgr.Get()
	changed.Debug = true
	require.NoError(t, mgr.Update(changed))
	assert.Equal(t, zapcore.DebugLevel, level.Level())

	changed.Debug = false
	require.NoError(t, mgr.Update(changed))
	assert.Equal(t, zapcore.InfoLevel, level.Level())
}

func TestApplyLogLevel(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	applyLogLevel(level, true)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
	applyLogLevel(level, false)
	assert.Equal(t, zapcore.InfoLevel, level.Level())
}
