package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var memoryDBSeq atomic.Uint64

// NewSQLiteMemoryDB opens a fresh named in-memory SQLite database. Each call
// gets its own database; connections of the same handle share it.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("file:portfolio_test_%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
	return sql.Open("sqlite3", name)
}
