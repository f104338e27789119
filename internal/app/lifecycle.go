package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc останавливает один компонент
type ShutdownFunc func(ctx context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// Lifecycle собирает хуки остановки и реагирует на сигналы ОС
type Lifecycle struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []shutdownHook
}

func NewLifecycle(timeout time.Duration, logger *zap.Logger) *Lifecycle {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{timeout: timeout, logger: logger}
}

// Register добавляет хук; хуки вызываются в обратном порядке
func (l *Lifecycle) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, shutdownHook{name: name, fn: fn})
}

// Shutdown вызывает все хуки в пределах таймаута и собирает ошибки
func (l *Lifecycle) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	l.mu.Lock()
	defer l.mu.Unlock()

	var result error
	for i := len(l.hooks) - 1; i >= 0; i-- {
		h := l.hooks[i]
		if err := h.fn(ctx); err != nil {
			l.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		l.logger.Info("component stopped", zap.String("component", h.name))
	}
	return result
}

// Listen вызывает cancel при SIGINT/SIGTERM
func (l *Lifecycle) Listen(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		l.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
