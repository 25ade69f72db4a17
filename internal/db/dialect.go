package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and its quirks
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// sqlitePragmas are applied to every SQLite connection. One writer, WAL and a
// full fsync keep a committed insert durable before SaveCommits returns.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"

// ParseDialect maps a driver name onto a Dialect
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return DialectSQLite, nil
	case "postgres":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

func (d Dialect) migrationsDir() string {
	return "migrations/" + string(d)
}

func (d Dialect) dsn(connectionString string) string {
	if d != DialectSQLite {
		return connectionString
	}
	if strings.Contains(connectionString, "_pragma=") {
		return connectionString
	}
	sep := "?"
	if strings.Contains(connectionString, "?") {
		sep = "&"
	}
	return connectionString + sep + sqlitePragmas
}

func (d Dialect) configure(db *sql.DB) {
	if d == DialectSQLite {
		db.SetMaxOpenConns(1) // SQLite only supports a single writer
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}
}

// rebind turns ? placeholders into $1..$n for postgres
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
