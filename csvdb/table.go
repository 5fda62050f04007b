package csvdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/tidwall/pretty"
)

// Row maps column name to value
type Row map[string]any

// Table is an in-memory table: ordered columns and ordered rows.
// Rows are addressed by position, 0 to Len()-1.
// Accessors return copies so a Table can't be changed other than
// through its methods.
type Table struct {
	columns []string
	// column name => position in columns
	index map[string]int
	// values are in the order of columns
	rows [][]any
}

func validateColumns(columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(columns))
	for i, col := range columns {
		if col == "" {
			return fmt.Errorf("%w: column %d has empty name", ErrInvalidSchema, i)
		}
		if seen[col] {
			return fmt.Errorf("%w: duplicate column '%s'", ErrInvalidSchema, col)
		}
		seen[col] = true
	}
	return nil
}

// NewTable creates an empty table with a given schema
func NewTable(columns ...string) (*Table, error) {
	if err := validateColumns(columns); err != nil {
		return nil, err
	}
	return newTable(columns), nil
}

func newTable(columns []string) *Table {
	t := &Table{
		columns: slices.Clone(columns),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range t.columns {
		t.index[col] = i
	}
	return t
}

// Clone returns a deep copy of t
func (t *Table) Clone() *Table {
	res := &Table{
		columns: t.columns,
		index:   t.index,
		rows:    make([][]any, len(t.rows)),
	}
	// columns and index are never modified after creation so can be shared
	for i, row := range t.rows {
		res.rows[i] = slices.Clone(row)
	}
	return res
}

// Columns returns column names in schema order
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn returns true if name is a column of the table
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) checkIndex(i int) error {
	if i < 0 || i >= len(t.rows) {
		return &IndexError{Index: i, Len: len(t.rows)}
	}
	return nil
}

func (t *Table) columnPos(name string) (int, error) {
	pos, ok := t.index[name]
	if !ok {
		return 0, &ColumnError{Column: name}
	}
	return pos, nil
}

func (t *Table) rowAt(i int) Row {
	res := make(Row, len(t.columns))
	for pos, col := range t.columns {
		res[col] = t.rows[i][pos]
	}
	return res
}

// Row returns a copy of row i or nil if i is out of range
func (t *Table) Row(i int) Row {
	if t.checkIndex(i) != nil {
		return nil
	}
	return t.rowAt(i)
}

// Rows returns copies of all rows
func (t *Table) Rows() []Row {
	res := make([]Row, len(t.rows))
	for i := range t.rows {
		res[i] = t.rowAt(i)
	}
	return res
}

// Value returns value of column col in row i
func (t *Table) Value(i int, col string) (any, bool) {
	pos, ok := t.index[col]
	if !ok || t.checkIndex(i) != nil {
		return nil, false
	}
	return t.rows[i][pos], true
}

// Set sets value of column col in row i
func (t *Table) Set(i int, col string, v any) error {
	if err := t.checkIndex(i); err != nil {
		return err
	}
	pos, err := t.columnPos(col)
	if err != nil {
		return err
	}
	nv, err := normalizeValue(v)
	if err != nil {
		return fmt.Errorf("column '%s': %w", col, err)
	}
	t.rows[i][pos] = nv
	return nil
}

// rowFromFields validates fields against the schema and returns values
// in schema order
func (t *Table) rowFromFields(fields map[string]any) ([]any, error) {
	var missing, unknown []string
	for _, col := range t.columns {
		if _, ok := fields[col]; !ok {
			missing = append(missing, col)
		}
	}
	for k := range fields {
		if !t.HasColumn(k) {
			unknown = append(unknown, k)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &SchemaMismatchError{Missing: missing, Unknown: unknown}
	}

	row := make([]any, len(t.columns))
	for pos, col := range t.columns {
		v, err := normalizeValue(fields[col])
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", col, err)
		}
		row[pos] = v
	}
	return row, nil
}

// Append adds a row at the end. fields must have a value for every
// column and no other keys.
func (t *Table) Append(fields map[string]any) error {
	row, err := t.rowFromFields(fields)
	if err != nil {
		return err
	}
	t.rows = append(t.rows, row)
	return nil
}

// Delete removes rows at given indices. Either all indices are valid
// and all rows are removed or nothing is removed.
// Remaining rows keep their relative order and are renumbered from 0.
func (t *Table) Delete(indices ...int) error {
	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		if err := t.checkIndex(i); err != nil {
			return err
		}
		drop[i] = true
	}
	if len(drop) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(t.rows)-len(drop))
	for i, row := range t.rows {
		if !drop[i] {
			rows = append(rows, row)
		}
	}
	t.rows = rows
	return nil
}

// Filter returns a new table with rows whose col value equals v.
// Equality is type-strict: "2", 2 and 2.0 are different values.
func (t *Table) Filter(col string, v any) (*Table, error) {
	pos, err := t.columnPos(col)
	if err != nil {
		return nil, err
	}
	want, err := normalizeValue(v)
	if err != nil {
		return nil, fmt.Errorf("column '%s': %w", col, err)
	}
	res := &Table{
		columns: t.columns,
		index:   t.index,
	}
	for _, row := range t.rows {
		if valuesEqual(row[pos], want) {
			res.rows = append(res.rows, slices.Clone(row))
		}
	}
	return res, nil
}

func jsonValue(v any) any {
	// encoding/json can't encode NaN and Inf
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

// MarshalJSON encodes the table as an array of objects with keys in
// schema order
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for pos, col := range t.columns {
			if pos > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(jsonValue(row[pos]))
			if err != nil {
				return nil, fmt.Errorf("row %d, column '%s': %w", i, col, err)
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// PrettyJSON is like MarshalJSON but indented for humans
func (t *Table) PrettyJSON() ([]byte, error) {
	d, err := t.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(d), nil
}
