package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/stretchr/testify/assert"
)

func TestLevelZapLevelMapping(t *testing.T) {
	cases := map[Level]zapcore.Level{
		LevelDebug: zapcore.DebugLevel,
		LevelInfo:  zapcore.InfoLevel,
		LevelWarn:  zapcore.WarnLevel,
		LevelError: zapcore.ErrorLevel,
	}
	for level, want := range cases {
		assert.Equal(t, want, level.zapLevel())
	}
}

func TestInitThenLogCallsDoNotPanic(t *testing.T) {
	Init(LevelDebug, false)
	defer Sync()

	assert.NotPanics(t, func() {
		Debug("test", "debug %d", 1)
		Info("test", "info %d", 2)
		Warn("test", "warn %d", 3)
		Error("test", errors.New("boom"), "error %d", 4)
	})
}

func TestLogHelpersWithoutInitFallBackToDefault(t *testing.T) {
	mu.Lock()
	logger = nil
	mu.Unlock()

	assert.NotPanics(t, func() {
		Info("test", "no init yet")
	})
}
