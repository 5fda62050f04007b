package csvdb

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// normalizeValue converts v to one of the types we store in a cell:
// nil, string, bool, int64, float64 or time.Time
func normalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return x, nil
	case bool:
		return x, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case float64:
		return x, nil
	case time.Time:
		return x, nil
	}

	// named types (type Age int) and the less common sizes
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, n)
		}
		return int64(n), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

// valuesEqual compares two normalized values. Values of different types
// are never equal i.e. "2", int64(2) and float64(2) are all different
func valuesEqual(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case float64:
		y, ok := b.(float64)
		// NaN != NaN
		return ok && x == y
	case string, bool, int64:
		return a == b
	}
	return false
}

// formatValue returns text representation of a normalized value as written
// to the file
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}

// whole numbers keep ".0" so that the column reloads as float
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

type cellKind int

const (
	kindText cellKind = iota
	kindInt
	kindFloat
	kindBool
)

func parseBoolCell(s string) (bool, bool) {
	if strings.EqualFold(s, "true") {
		return true, true
	}
	if strings.EqualFold(s, "false") {
		return false, true
	}
	return false, false
}

// inferKind picks the narrowest kind that can represent all non-empty
// cells of a column
func inferKind(cells []string) cellKind {
	nonEmpty := 0
	isInt, isFloat, isBool := true, true, true
	for _, s := range cells {
		if s == "" {
			continue
		}
		nonEmpty++
		if isInt {
			_, err := strconv.ParseInt(s, 10, 64)
			isInt = err == nil
		}
		if isFloat {
			_, err := strconv.ParseFloat(s, 64)
			isFloat = err == nil
		}
		if isBool {
			_, isBool = parseBoolCell(s)
		}
		if !isInt && !isFloat && !isBool {
			return kindText
		}
	}
	switch {
	case nonEmpty == 0:
		return kindText
	case isInt:
		return kindInt
	case isFloat:
		return kindFloat
	case isBool:
		return kindBool
	}
	return kindText
}

// parseCell converts s to kind. s must be valid for kind (see inferKind)
func parseCell(s string, kind cellKind) any {
	if kind == kindText {
		return s
	}
	if s == "" {
		return nil
	}
	switch kind {
	case kindInt:
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	case kindFloat:
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case kindBool:
		b, _ := parseBoolCell(s)
		return b
	}
	return s
}

// inferColumn reinterprets text cells of a single column
func inferColumn(cells []string) []any {
	kind := inferKind(cells)
	res := make([]any, len(cells))
	for i, s := range cells {
		res[i] = parseCell(s, kind)
	}
	return res
}
