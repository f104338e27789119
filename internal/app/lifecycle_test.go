package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLifecycle_ShutdownRunsHooksInReverse(t *testing.T) {
	lc := NewLifecycle(time.Second, zap.NewNop())

	var order []string
	for _, name := range []string{"db", "http", "bot"} {
		name := name
		lc.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, lc.Shutdown(context.Background()))
	assert.Equal(t, []string{"bot", "http", "db"}, order)
}

func TestLifecycle_ShutdownJoinsErrors(t *testing.T) {
	lc := NewLifecycle(time.Second, nil)

	errA := errors.New("a failed")
	called := false
	lc.Register("a", func(context.Context) error { return errA })
	lc.Register("b", func(context.Context) error {
		called = true
		return nil
	})
	lc.Register("skipped", nil)

	err := lc.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.True(t, called)
}

func TestNewLogger_Levels(t *testing.T) {
	logger := NewLogger("production", "warn")
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger = NewLogger("development", "not-a-level")
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}
