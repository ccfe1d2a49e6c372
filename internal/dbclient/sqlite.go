package dbclient

import (
	_ "modernc.org/sqlite"

	"ora2mongo/internal/domain"
)

// buildSQLiteDSN opens the file named by Host read-only with a busy timeout.
func buildSQLiteDSN(conn domain.DatabaseConnection) string {
	return "file:" + conn.Host + "?mode=ro&_pragma=busy_timeout(5000)"
}
