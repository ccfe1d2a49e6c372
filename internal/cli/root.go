package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ora2mongo/internal/config"
	"ora2mongo/internal/dbclient"
	"ora2mongo/internal/etl"
	"ora2mongo/internal/logging"
	"ora2mongo/internal/scheduler"
	"ora2mongo/internal/service"
)

// ErrInvalidMode is returned for an unknown --modo value.
var ErrInvalidMode = errors.New("invalid mode")

// PipelineFactory builds the pipeline for a validated configuration.
type PipelineFactory func(cfg *config.Config, log *zap.Logger) service.Pipeline

// Runner holds the collaborators of the root command. Zero values select the
// production implementations.
type Runner struct {
	NewPipeline PipelineFactory
	Clock       clock.Clock
}

type flags struct {
	mode       string
	tempo      string
	configPath string
}

// NewPipeline wires the relational source and the MongoDB destination
// described by cfg into an etl.Engine.
func NewPipeline(cfg *config.Config, log *zap.Logger) service.Pipeline {
	return &etl.Engine{
		Dir:             cfg.SQLDir,
		OpenSource:      dbclient.SourceOpener(cfg.SourceConnection(), log),
		OpenDestination: dbclient.DestinationOpener(cfg.DestinationConnection(), log),
		Logger:          log,
	}
}

// NewRootCommand builds the ora2mongo command.
func NewRootCommand(r *Runner) *cobra.Command {
	if r == nil {
		r = &Runner{}
	}
	var f flags

	modes := strings.Join(lo.Map(scheduler.Modes, func(m scheduler.Mode, _ int) string { return string(m) }), "|")

	cmd := &cobra.Command{
		Use:   "ora2mongo",
		Short: "Migrate query results from a relational database into MongoDB",
		Long: `Runs every *.sql file of the definitions directory against the source
database and bulk-inserts the rows into a MongoDB collection named after the
file. Runs once, once a day at a fixed time, or repeatedly at a fixed interval.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.mode, "modo", "", "execution mode: "+modes)
	cmd.Flags().StringVar(&f.tempo, "tempo", "", "HH:MM: time of day (diario) or interval (por_intervalo)")
	cmd.Flags().StringVar(&f.configPath, "config", "", "optional config file (yaml, json or toml)")
	cmd.Flags().String("sql-dir", "", "directory of *.sql query definitions (default "+etl.DefaultDefinitionsDir+")")
	cmd.Flags().String("log-file", "", "log file (default "+config.DefaultLogFile+")")
	cmd.Flags().String("log-level", "", "log level: debug|info|warn|error (default info)")
	_ = cmd.MarkFlagRequired("modo")

	return cmd
}

func (r *Runner) run(cmd *cobra.Command, f flags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Read(f.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Console:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("open log file %s: %w", cfg.Log.File, err)
	}
	defer closeLog()

	mode := scheduler.Mode(f.mode)
	if !mode.Valid() {
		log.Error(fmt.Sprintf("invalid mode %q", f.mode), zap.Any("accepted", scheduler.Modes))
		return fmt.Errorf("%w: %q", ErrInvalidMode, f.mode)
	}
	if mode.NeedsTime() && f.tempo == "" {
		log.Error(fmt.Sprintf("mode %s requires --tempo HH:MM", mode))
		return nil
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	newPipeline := r.NewPipeline
	if newPipeline == nil {
		newPipeline = NewPipeline
	}
	migration := service.NewMigration(newPipeline(cfg, log), cfg.SQLDir, log)
	sched := scheduler.New(r.Clock, log)

	switch mode {
	case scheduler.ModeManual:
		sched.Manual(ctx, migration.Job())
		return nil
	case scheduler.ModeDaily:
		at, err := scheduler.ParseTimeOfDay(f.tempo)
		if err != nil {
			log.Error("invalid --tempo", zap.Error(err))
			return err
		}
		err = sched.Daily(ctx, at, migration.Job())
		return shutdown(log, migration, err)
	default:
		every, err := scheduler.ParseInterval(f.tempo)
		if err != nil {
			log.Error("invalid --tempo", zap.Error(err))
			return err
		}
		err = sched.Interval(ctx, every, migration.Job())
		return shutdown(log, migration, err)
	}
}

// shutdown waits for an in-flight pass after the scheduler stopped and maps
// cancellation to a clean exit.
func shutdown(log *zap.Logger, m *service.Migration, err error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	m.Wait(ctx)

	if errors.Is(err, context.Canceled) {
		log.Info("shutdown requested, scheduler stopped")
		return nil
	}
	return err
}

// Execute runs the root command until it completes or the process receives
// SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand(nil).ExecuteContext(ctx)
}
