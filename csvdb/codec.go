package csvdb

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/magu1436/csvdatabase/atomicfile"
	"github.com/magu1436/csvdatabase/u"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// commaForPath picks field separator based on file extension,
// ignoring compression extension i.e. "foo.tsv.gz" is tab-separated
func commaForPath(path string) rune {
	ext := strings.ToLower(filepath.Ext(u.StripCompressionExt(path)))
	if ext == ".tsv" || ext == ".tab" {
		return '\t'
	}
	return ','
}

func skipBOM(r *bufio.Reader) {
	d, err := r.Peek(len(utf8BOM))
	if err == nil && bytes.Equal(d, utf8BOM) {
		_, _ = r.Discard(len(utf8BOM))
	}
}

// decodeTable reads header and rows. Values are inferred per column
func decodeTable(r io.Reader, comma rune) (*Table, error) {
	br := bufio.NewReader(r)
	skipBOM(br)
	cr := csv.NewReader(br)
	cr.Comma = comma
	// all rows must have as many fields as the header
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidSchema)
	}
	if err != nil {
		return nil, err
	}
	if err = validateColumns(header); err != nil {
		return nil, err
	}
	t := newTable(header)

	// cells are collected per column because types are inferred per column
	cells := make([][]string, len(header))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for pos, s := range rec {
			cells[pos] = append(cells[pos], s)
		}
	}

	nRows := len(cells[0])
	t.rows = make([][]any, nRows)
	for i := range t.rows {
		t.rows[i] = make([]any, len(header))
	}
	for pos, col := range cells {
		for i, v := range inferColumn(col) {
			t.rows[i][pos] = v
		}
	}
	return t, nil
}

// readTable loads the table from a file, decompressing if needed
func readTable(path string, comma rune) (*Table, error) {
	f, err := u.OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer u.CloseNoError(f)
	t, err := decodeTable(f, comma)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return t, nil
}

// encodeTable writes header and all rows
func encodeTable(w io.Writer, comma rune, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	rec := make([]string, len(t.columns))
	for _, row := range t.rows {
		for pos, v := range row {
			rec[pos] = formatValue(v)
		}
		// csv.Writer writes a single empty field as an empty line
		// which csv.Reader skips, so we quote it
		if len(rec) == 1 && rec[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// saveTable atomically replaces the file at path with the content of t
func saveTable(path string, comma rune, t *Table) error {
	return atomicfile.WriteFile(path, func(w io.Writer) error {
		cw, err := u.NewWriterMaybeCompressed(w, path)
		if err != nil {
			return err
		}
		err = encodeTable(cw, comma, t)
		err2 := cw.Close()
		return errors.Join(err, err2)
	})
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
