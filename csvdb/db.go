package csvdb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/magu1436/csvdatabase/log"
)

// Config describes how to open a table file
type Config struct {
	// path of the file. Can end with .gz, .zst or .br in which
	// case the file is compressed
	Path string
	// columns used to create the file if it doesn't exist.
	// Ignored if the file exists
	InitialKeys []string
	// field separator. If 0, it's '\t' for .tsv files and ',' otherwise
	Comma rune
}

// DB is a table kept in memory and written through to a file
// after every change
type DB struct {
	path  string
	comma rune

	mu    sync.Mutex
	table *Table
}

// Open opens a table stored in a file at path.
// If the file doesn't exist, it's created with initialKeys as columns.
// If the file doesn't exist and there are no initialKeys, returns
// ErrSourceNotFound.
func Open(path string, initialKeys ...string) (*DB, error) {
	return OpenConfig(&Config{
		Path:        path,
		InitialKeys: initialKeys,
	})
}

// OpenConfig is like Open but with more options
func OpenConfig(config *Config) (*DB, error) {
	if config == nil {
		return nil, errors.New("csvdb: must provide config")
	}
	if config.Path == "" {
		return nil, fmt.Errorf("csvdb: Config.Path is empty")
	}
	timeStart := time.Now()
	db := &DB{
		path:  config.Path,
		comma: config.Comma,
	}
	if db.comma == 0 {
		db.comma = commaForPath(db.path)
	}

	created := false
	_, err := os.Stat(db.path)
	switch {
	case err == nil:
		db.table, err = readTable(db.path, db.comma)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		if len(config.InitialKeys) == 0 {
			return nil, fmt.Errorf("%w: '%s' doesn't exist and no initial keys given: %w", ErrSourceNotFound, db.path, fs.ErrNotExist)
		}
		if db.table, err = NewTable(config.InitialKeys...); err != nil {
			return nil, err
		}
		if err = ensureDir(db.path); err != nil {
			return nil, err
		}
		if err = saveTable(db.path, db.comma, db.table); err != nil {
			return nil, err
		}
		created = true
	default:
		return nil, err
	}

	log.Verbosef("csvdb.Open: '%s', %d columns, %d rows, created: %v\n", db.path, len(db.table.columns), db.table.Len(), created)
	log.EventWithDuration("csvdb.open", time.Since(timeStart), "path", db.path, "rows", db.table.Len(), "created", created)
	return db, nil
}

// Path returns path of the backing file
func (db *DB) Path() string {
	return db.path
}

// Columns returns column names in schema order
func (db *DB) Columns() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.table.Columns()
}

// Len returns number of rows
func (db *DB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.table.Len()
}

// Read returns a copy of the whole table. Changing it doesn't
// change db.
func (db *DB) Read() *Table {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.table.Clone()
}

// commit persists next and makes it the current table.
// Must be called with db.mu held.
// If saving fails, the current table and the file stay as they were.
func (db *DB) commit(op string, next *Table) error {
	timeStart := time.Now()
	err := saveTable(db.path, db.comma, next)
	if log.IfErrf(err, "csvdb.%s: failed to save '%s': %v", op, db.path, err) {
		log.ErrorEvent(err, "csvdb."+op, "path", db.path)
		return err
	}
	db.table = next
	log.Verbosef("csvdb.%s: saved '%s', %d rows in %s\n", op, db.path, next.Len(), time.Since(timeStart))
	log.EventWithDuration("csvdb."+op, time.Since(timeStart), "path", db.path, "rows", next.Len())
	return nil
}

// Register appends a row. fields must have a value for every column
// and no other keys, otherwise returns ErrSchemaMismatch.
func (db *DB) Register(fields map[string]any) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	next := db.table.Clone()
	if err := next.Append(fields); err != nil {
		return err
	}
	return db.commit("register", next)
}

// Delete removes rows at indices. If any index is out of range,
// returns ErrIndexOutOfRange and nothing is deleted.
// Remaining rows are renumbered from 0, keeping their order.
func (db *DB) Delete(indices ...int) error {
	if len(indices) == 0 {
		return nil
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	next := db.table.Clone()
	if err := next.Delete(indices...); err != nil {
		return err
	}
	return db.commit("delete", next)
}

// Update sets value of column key in row rowIndex.
// Returns ErrIndexOutOfRange or ErrUnknownColumn, in that order.
func (db *DB) Update(rowIndex int, key string, value any) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	next := db.table.Clone()
	if err := next.Set(rowIndex, key, value); err != nil {
		return err
	}
	return db.commit("update", next)
}

// Filter returns a new table with rows whose value of column key
// is equal to value. Values of different types are never equal.
func (db *DB) Filter(key string, value any) (*Table, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.table.Filter(key, value)
}
