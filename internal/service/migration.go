package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ora2mongo/internal/etl"
	"ora2mongo/internal/scheduler"
)

// ─────────────────────────────────────────────────────────────
// Migration Service: runs pipeline passes for the schedulers
// ─────────────────────────────────────────────────────────────

// ErrAlreadyRunning is returned when a pass is requested while another one
// over the same definitions directory is still in flight.
var ErrAlreadyRunning = errors.New("migration already running")

// Pipeline runs one complete migration pass.
type Pipeline interface {
	RunAll(ctx context.Context) (*etl.RunSummary, error)
}

// Migration wraps a Pipeline so that passes never overlap and a pass in
// progress is not interrupted by shutdown.
type Migration struct {
	pipeline Pipeline
	key      string
	log      *zap.Logger
	running  runningJobsGuard
}

// NewMigration creates a Migration. key identifies the definitions set the
// pipeline reads (its directory).
func NewMigration(pipeline Pipeline, key string, log *zap.Logger) *Migration {
	if log == nil {
		log = zap.NewNop()
	}
	return &Migration{pipeline: pipeline, key: key, log: log}
}

// RunOnce executes a single pass. Cancelling ctx does not abort a pass that
// has started; connections are always released by the pipeline itself.
func (m *Migration) RunOnce(ctx context.Context) (*etl.RunSummary, error) {
	if !m.running.TryLock(m.key) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, m.key)
	}
	defer m.running.Unlock(m.key)

	return m.pipeline.RunAll(context.WithoutCancel(ctx))
}

// Job adapts RunOnce for the scheduler. Failures are already logged by the
// pipeline; only overlap rejections are reported here.
func (m *Migration) Job() scheduler.Job {
	return func(ctx context.Context) {
		if _, err := m.RunOnce(ctx); errors.Is(err, ErrAlreadyRunning) {
			m.log.Warn("skipping pass, previous one still running", zap.String("dir", m.key))
		}
	}
}

// Running reports whether a pass is in flight.
func (m *Migration) Running() bool {
	return m.running.Running(m.key)
}

// Wait blocks until an in-flight pass finishes or ctx is cancelled.
// Used for graceful shutdown.
func (m *Migration) Wait(ctx context.Context) {
	m.running.WaitAll(ctx)
}
