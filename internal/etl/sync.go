package etl

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ── Engine ─────────────────────────────────────────────────
// Orchestrates one migration pass:
// discover definitions → per definition: read → query → convert → zip → insert.

var (
	// ErrSourceConnect is returned when the source connection cannot be established.
	ErrSourceConnect = errors.New("source connection failed")
	// ErrDestinationConnect is returned when the destination client cannot be established.
	ErrDestinationConnect = errors.New("destination connection failed")
)

// Engine runs migration passes over every query definition in Dir.
type Engine struct {
	Dir             string
	OpenSource      SourceOpener
	OpenDestination DestinationOpener
	Logger          *zap.Logger
	Clock           clock.Clock
}

func (e *Engine) clock() clock.Clock {
	if e.Clock == nil {
		return clock.New()
	}
	return e.Clock
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Engine) dir() string {
	if e.Dir == "" {
		return DefaultDefinitionsDir
	}
	return e.Dir
}

// RunAll executes one full pass. The returned error is non-nil only when the
// pass could not start (connections, definitions directory); per-definition
// failures are logged and recorded in the summary.
func (e *Engine) RunAll(ctx context.Context) (*RunSummary, error) {
	clk := e.clock()
	start := clk.Now()
	summary := &RunSummary{RunID: uuid.NewString()}
	log := e.logger().With(zap.String("run_id", summary.RunID))

	log.Info("processing of query files started", zap.String("dir", e.dir()))

	src, err := e.OpenSource(ctx)
	if err != nil {
		log.Error("error connecting to source database", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSourceConnect, err)
	}
	log.Info("source connection established")

	dst, err := e.OpenDestination(ctx)
	if err != nil {
		log.Error("error connecting to destination database", zap.Error(err))
		if cerr := src.Close(); cerr != nil {
			log.Error("error closing source connection", zap.Error(cerr))
		}
		return nil, fmt.Errorf("%w: %v", ErrDestinationConnect, err)
	}
	log.Info("destination connection established")

	defer func() {
		if err := multierr.Append(src.Close(), dst.Close(context.WithoutCancel(ctx))); err != nil {
			log.Error("error closing connections", zap.Error(err))
		}
	}()

	defs, err := DiscoverDefinitions(e.dir())
	if err != nil {
		log.Error("error listing query files", zap.Error(err))
		return nil, err
	}

	for _, def := range defs {
		res := e.runDefinition(ctx, log, src, dst, def)
		summary.Definitions = append(summary.Definitions, res)
	}

	summary.Elapsed = clk.Since(start)
	log.Info(fmt.Sprintf("processing finished. total time: %s", FormatElapsed(summary.Elapsed)),
		zap.Int("definitions", summary.Processed()),
		zap.Int("inserted", summary.Inserted()),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// runDefinition processes a single definition. It never returns an error:
// every failure is logged and turned into a skip.
func (e *Engine) runDefinition(ctx context.Context, log *zap.Logger, src Source, dst Destination, def Definition) DefinitionResult {
	clk := e.clock()
	start := clk.Now()
	res := DefinitionResult{Name: def.Name}
	log = log.With(zap.String("definition", def.Name))

	fail := func(status DefinitionStatus, err error) DefinitionResult {
		res.Status = status
		if err != nil {
			res.Error = err.Error()
		}
		res.Elapsed = clk.Since(start)
		return res
	}

	if err := def.Load(); err != nil {
		log.Error(fmt.Sprintf("error reading file %s", def.Name), zap.Error(err))
		return fail(StatusReadFailed, err)
	}
	log.Info(fmt.Sprintf("file %s read successfully", def.Name))

	result := RunQuery(ctx, src, def.Query, log)
	if result.Empty() {
		log.Error(fmt.Sprintf("no data obtained from source for file %s; skipping it", def.Name))
		return fail(StatusNoData, nil)
	}
	res.RowsRead = len(result.Rows)

	rows, err := ConvertRows(result.Rows)
	if err != nil {
		log.Error(fmt.Sprintf("error converting values for file %s; skipping it", def.Name), zap.Error(err))
		return fail(StatusConvertFailed, err)
	}

	records := lo.Map(rows, func(row Row, _ int) Record {
		return NewRecord(result.Columns, row)
	})
	res.Records = len(records)

	inserted, err := dst.InsertMany(ctx, def.Name, records)
	res.Inserted = inserted
	res.Status = StatusLoaded
	if err != nil {
		log.Error(fmt.Sprintf("error inserting data into collection %s", def.Name), zap.Error(err))
		res.Status = StatusInsertFailed
		res.Error = err.Error()
	} else {
		log.Info(fmt.Sprintf("data inserted successfully into collection %s", def.Name))
	}

	res.Elapsed = clk.Since(start)
	log.Info(fmt.Sprintf("file %s: source rows=%d, records inserted=%d, time=%s",
		def.Name, res.RowsRead, res.Inserted, FormatElapsed(res.Elapsed)),
		zap.Int("rows", res.RowsRead),
		zap.Int("records", res.Records),
		zap.Int("inserted", res.Inserted),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res
}
