package dbclient

import (
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb"

	"ora2mongo/internal/domain"
)

// buildSQLServerDSN constructs a sqlserver:// URL for go-mssqldb.
func buildSQLServerDSN(conn domain.DatabaseConnection) string {
	port := conn.Port
	if port == 0 {
		port = domain.DatabaseDriverSQLServer.DefaultPort()
	}
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(conn.Username, conn.Password),
		Host:   fmt.Sprintf("%s:%d", conn.Host, port),
	}
	if conn.Database != "" {
		u.RawQuery = url.Values{"database": {conn.Database}}.Encode()
	}
	return u.String()
}
