package dbclient

import (
	"fmt"

	_ "github.com/lib/pq"

	"ora2mongo/internal/domain"
)

// buildPostgresDSN constructs a Postgres connection string.
func buildPostgresDSN(conn domain.DatabaseConnection) string {
	port := conn.Port
	if port == 0 {
		port = domain.DatabaseDriverPostgres.DefaultPort()
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		conn.Host, port, conn.Username, conn.Password, conn.Database,
	)
}
