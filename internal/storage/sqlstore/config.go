package sqlstore

// DefaultDSN is the data source used when none is configured: a SQLite
// file in the working directory.
const DefaultDSN = "file:scoreboard.db"

// Config holds relational database settings
type Config struct {
	// Driver selects the database/sql driver (sqlite or pgx)
	Driver Driver

	// DSN is passed to sql.Open unchanged
	DSN string

	// MaxOpenConns caps the pool. Ignored for SQLite, which always uses a
	// single connection.
	MaxOpenConns int
}

// DefaultConfig returns a local SQLite configuration
func DefaultConfig() Config {
	return Config{
		Driver:       DriverSQLite,
		DSN:          DefaultDSN,
		MaxOpenConns: 10,
	}
}
