package sqlite

import (
	"database/sql"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver with sqlite-vec loaded.
const DriverName = "sqlite3_vec"

func init() {
	// Registers sqlite-vec as an auto extension for every new connection.
	sqlite_vec.Auto()

	sql.Register(DriverName, &sqlite3.SQLiteDriver{})
}
