package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pagelens/engine/internal/common/configtypes"
)

func fileConfig(path, format, level string) configtypes.LogConfig {
	return configtypes.LogConfig{
		Level: level,
		File: configtypes.FileLogConfig{
			Enabled: true,
			Path:    path,
			Format:  format,
			Rotation: configtypes.RotationConfig{
				MaxSize:    10,
				MaxAge:     7,
				MaxBackups: 3,
			},
		},
	}
}

func TestNewLoggerConsoleOnly(t *testing.T) {
	logger, err := NewLogger(configtypes.LogConfig{
		Level: "info",
		Console: configtypes.ConsoleLogConfig{
			Enabled: true,
			Format:  "console",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("console output works")
}

func TestNewLoggerFileOnly(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewLogger(fileConfig(logPath, "json", "debug"))
	require.NoError(t, err)

	logger.Info("file output works", zap.String("key", "value"))
	logger.Sync()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "file output works")
	assert.Contains(t, string(content), `"key"`)
}

func TestNewLoggerNoOutputs(t *testing.T) {
	logger, err := NewLogger(configtypes.LogConfig{Level: "info"})
	require.Error(t, err)
	assert.Nil(t, logger)
	assert.Contains(t, err.Error(), "at least one log output")
}

func TestNewLoggerFileWithoutPath(t *testing.T) {
	logger, err := NewLogger(configtypes.LogConfig{
		Level: "info",
		File:  configtypes.FileLogConfig{Enabled: true, Format: "json"},
	})
	require.Error(t, err)
	assert.Nil(t, logger)
	assert.Contains(t, err.Error(), "file.path must be specified")
}

func TestNewLoggerGlobalLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewLogger(fileConfig(logPath, "json", "warn"))
	require.NoError(t, err)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")
	logger.Sync()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "debug message")
	assert.NotContains(t, string(content), "info message")
	assert.Contains(t, string(content), "warn message")
	assert.Contains(t, string(content), "error message")
}

func TestNewLoggerPerOutputLevelOverride(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	cfg := fileConfig(logPath, "json", "warn")
	cfg.File.Level = "debug"

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Debug("debug message")
	logger.Sync()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "debug message")
}

func TestNewLoggerTextFormatHasNoColorCodes(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger, err := NewLogger(fileConfig(logPath, "text", "info"))
	require.NoError(t, err)

	logger.Info("plain text entry")
	logger.Sync()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "plain text entry")
	assert.Contains(t, string(content), "INFO")
	assert.NotContains(t, string(content), "\x1b[")
}

func TestResolveLogLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, resolveLogLevel("debug", zap.InfoLevel))
	assert.Equal(t, zap.ErrorLevel, resolveLogLevel("error", zap.InfoLevel))
	assert.Equal(t, zap.WarnLevel, resolveLogLevel("", zap.WarnLevel))
	assert.Equal(t, zap.InfoLevel, resolveLogLevel("bogus", zap.WarnLevel))
}

func TestStartupOverride(t *testing.T) {
	t.Run("quiet config starts at info then switches back", func(t *testing.T) {
		logger, err := NewLoggerWithStartupOverride(configtypes.LogConfig{
			Level: configtypes.LogLevelError,
			Console: configtypes.ConsoleLogConfig{
				Enabled: true,
				Format:  configtypes.LogFormatConsole,
			},
		})
		require.NoError(t, err)

		assert.Equal(t, zap.InfoLevel, logger.consoleLevel.Level())

		logger.SwitchToConfiguredLevel()
		assert.Equal(t, zap.ErrorLevel, logger.consoleLevel.Level())
	})

	t.Run("debug config is used directly", func(t *testing.T) {
		logger, err := NewLoggerWithStartupOverride(configtypes.LogConfig{
			Level: configtypes.LogLevelDebug,
			Console: configtypes.ConsoleLogConfig{
				Enabled: true,
				Format:  configtypes.LogFormatConsole,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, zap.DebugLevel, logger.consoleLevel.Level())
	})
}

func TestEnsureInfoLevelForShutdown(t *testing.T) {
	t.Run("raises quiet outputs to info", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "test.log")

		cfg := fileConfig(logPath, "text", configtypes.LogLevelError)
		cfg.Console = configtypes.ConsoleLogConfig{
			Enabled: true,
			Format:  configtypes.LogFormatConsole,
		}

		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		assert.Equal(t, zap.ErrorLevel, logger.consoleLevel.Level())
		assert.Equal(t, zap.ErrorLevel, logger.fileLevel.Level())

		logger.EnsureInfoLevelForShutdown()
		assert.Equal(t, zap.InfoLevel, logger.consoleLevel.Level())
		assert.Equal(t, zap.InfoLevel, logger.fileLevel.Level())
	})

	t.Run("debug output stays at debug", func(t *testing.T) {
		logger, err := NewLogger(configtypes.LogConfig{
			Level: configtypes.LogLevelDebug,
			Console: configtypes.ConsoleLogConfig{
				Enabled: true,
				Format:  configtypes.LogFormatConsole,
			},
		})
		require.NoError(t, err)

		logger.EnsureInfoLevelForShutdown()
		assert.Equal(t, zap.DebugLevel, logger.consoleLevel.Level())
	})
}

func TestNewDefaultLogger(t *testing.T) {
	logger, err := NewDefaultLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Debug("default logger works")
}
