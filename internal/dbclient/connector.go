package dbclient

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ora2mongo/internal/domain"
	"ora2mongo/internal/etl"
)

const pingTimeout = 10 * time.Second

// OpenSource connects to the relational source described by conn and
// verifies the connection with a ping.
func OpenSource(ctx context.Context, conn domain.DatabaseConnection, log *zap.Logger) (*SQLSource, error) {
	var (
		driverName string
		dsn        string
	)
	switch conn.Driver {
	case domain.DatabaseDriverOracle:
		driverName, dsn = "oracle", buildOracleDSN(conn)
	case domain.DatabaseDriverPostgres:
		driverName, dsn = "postgres", buildPostgresDSN(conn)
	case domain.DatabaseDriverMySQL:
		driverName, dsn = "mysql", buildMySQLDSN(conn)
	case domain.DatabaseDriverSQLite:
		driverName, dsn = "sqlite", buildSQLiteDSN(conn)
	case domain.DatabaseDriverSQLServer:
		driverName, dsn = "sqlserver", buildSQLServerDSN(conn)
	default:
		return nil, fmt.Errorf("unsupported source driver: %q", conn.Driver)
	}

	src, err := newSQLSource(driverName, dsn, log)
	if err != nil {
		return nil, err
	}
	if err := src.Ping(ctx); err != nil {
		src.Close()
		return nil, fmt.Errorf("ping %s at %s: %w", conn.Driver, conn.Address(), err)
	}
	return src, nil
}

// SourceOpener adapts OpenSource to the pipeline's opener signature.
func SourceOpener(conn domain.DatabaseConnection, log *zap.Logger) etl.SourceOpener {
	return func(ctx context.Context) (etl.Source, error) {
		return OpenSource(ctx, conn, log)
	}
}

// DestinationOpener adapts OpenMongo to the pipeline's opener signature.
func DestinationOpener(conn domain.DatabaseConnection, log *zap.Logger) etl.DestinationOpener {
	return func(ctx context.Context) (etl.Destination, error) {
		return OpenMongo(ctx, conn, log)
	}
}
