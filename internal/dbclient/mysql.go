package dbclient

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"ora2mongo/internal/domain"
)

// buildMySQLDSN constructs a MySQL DSN. parseTime makes DATETIME columns
// arrive as time.Time so they go through temporal formatting.
func buildMySQLDSN(conn domain.DatabaseConnection) string {
	port := conn.Port
	if port == 0 {
		port = domain.DatabaseDriverMySQL.DefaultPort()
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		conn.Username, conn.Password, conn.Host, port, conn.Database,
	)
}
