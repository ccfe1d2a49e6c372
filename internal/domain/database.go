package domain

import "fmt"

// DatabaseDriver represents the type of database engine.
type DatabaseDriver string

const (
	DatabaseDriverOracle    DatabaseDriver = "oracle"
	DatabaseDriverPostgres  DatabaseDriver = "postgres"
	DatabaseDriverMySQL     DatabaseDriver = "mysql"
	DatabaseDriverSQLite    DatabaseDriver = "sqlite"
	DatabaseDriverSQLServer DatabaseDriver = "sqlserver"
	DatabaseDriverMongoDB   DatabaseDriver = "mongodb"
)

// SourceDrivers lists the relational drivers a migration can read from.
var SourceDrivers = []DatabaseDriver{
	DatabaseDriverOracle,
	DatabaseDriverPostgres,
	DatabaseDriverMySQL,
	DatabaseDriverSQLite,
	DatabaseDriverSQLServer,
}

// DefaultPort returns the conventional port for the driver, or 0 when the
// driver has no network listener (sqlite).
func (d DatabaseDriver) DefaultPort() int {
	switch d {
	case DatabaseDriverOracle:
		return 1521
	case DatabaseDriverPostgres:
		return 5432
	case DatabaseDriverMySQL:
		return 3306
	case DatabaseDriverSQLServer:
		return 1433
	case DatabaseDriverMongoDB:
		return 27017
	default:
		return 0
	}
}

// DatabaseConnection holds what is needed to reach an external database.
type DatabaseConnection struct {
	Driver   DatabaseDriver `json:"driver"`
	Host     string         `json:"host"`     // hostname, file path (sqlite) or full URI (mongodb)
	Port     int            `json:"port"`     // 0 means driver default
	Database string         `json:"database"` // oracle service name, db name or mongo database
	Username string         `json:"username"`
	Password string         `json:"-"`
}

// Address renders host:port for log lines. Credentials are never included.
func (c DatabaseConnection) Address() string {
	port := c.Port
	if port == 0 {
		port = c.Driver.DefaultPort()
	}
	if port == 0 {
		return c.Host
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}
