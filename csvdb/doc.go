// Package csvdb is a tiny record store backed by a single CSV file.
//
// The file has a header line with column names and one line per row.
// The whole table is kept in memory. Every change rewrites the whole file
// (through a temporary file, so a failed write doesn't corrupt it) before
// the change is visible in memory.
//
// Rows are addressed by their position. Deleting rows renumbers the rest.
//
// Values read back from the file are typed per column: a column where
// every non-empty cell is an integer is read as int64, then float64,
// then bool (true / false in any case) and string otherwise.
// Empty cells are nil in int, float and bool columns. Text that parses
// as a number (e.g. "NaN", "inf") is read back as float64.
// A "\r\n" inside a value is read back as "\n".
//
//	db, err := csvdb.Open("people.csv", "name", "age")
//	err = db.Register(map[string]any{"name": "alice", "age": 30})
//	adults, err := db.Filter("age", 30)
package csvdb
