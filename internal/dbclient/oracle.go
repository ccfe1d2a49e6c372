package dbclient

import (
	go_ora "github.com/sijms/go-ora/v2"

	"ora2mongo/internal/domain"
)

// buildOracleDSN constructs a go-ora URL. Database holds the service name.
func buildOracleDSN(conn domain.DatabaseConnection) string {
	port := conn.Port
	if port == 0 {
		port = domain.DatabaseDriverOracle.DefaultPort()
	}
	return go_ora.BuildUrl(conn.Host, port, conn.Database, conn.Username, conn.Password, nil)
}
