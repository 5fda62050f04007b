package csvdb

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

type age int

type label string

func TestNormalizeValue(t *testing.T) {
	tm := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		v   any
		exp any
	}{
		{nil, nil},
		{"s", "s"},
		{true, true},
		{5, int64(5)},
		{int8(-5), int64(-5)},
		{int32(7), int64(7)},
		{uint16(7), int64(7)},
		{uint64(math.MaxInt64), int64(math.MaxInt64)},
		{float32(0.5), 0.5},
		{1.25, 1.25},
		{age(30), int64(30)},
		{label("x"), "x"},
		{tm, tm},
	}
	for _, test := range tests {
		got, err := normalizeValue(test.v)
		assert.NoError(t, err)
		assert.Equal(t, test.exp, got, "value: %#v", test.v)
	}

	bad := []any{
		uint64(math.MaxUint64),
		[]byte("x"),
		map[string]any{},
		&struct{}{},
		make(chan int),
	}
	for _, v := range bad {
		_, err := normalizeValue(v)
		assert.True(t, errors.Is(err, ErrUnsupportedValue), "value: %#v", v)
	}
}

func TestValuesEqual(t *testing.T) {
	tm := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.True(t, valuesEqual(nil, nil))
	assert.True(t, valuesEqual("a", "a"))
	assert.True(t, valuesEqual(int64(2), int64(2)))
	assert.True(t, valuesEqual(2.0, 2.0))
	assert.True(t, valuesEqual(tm, tm.In(time.FixedZone("x", 3600))))

	assert.False(t, valuesEqual("2", int64(2)))
	assert.False(t, valuesEqual(int64(2), 2.0))
	assert.False(t, valuesEqual(nil, ""))
	assert.False(t, valuesEqual("", nil))
	assert.False(t, valuesEqual(true, "True"))
	assert.False(t, valuesEqual(math.NaN(), math.NaN()))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v   any
		exp string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "True"},
		{false, "False"},
		{int64(-12), "-12"},
		{2.0, "2.0"},
		{0.1, "0.1"},
		{-1.5, "-1.5"},
		{1e21, "1e+21"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{time.Date(2024, 1, 2, 3, 4, 5, 6000000, time.UTC), "2024-01-02T03:04:05.006Z"},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, formatValue(test.v), "value: %#v", test.v)
	}
}

func TestInferColumn(t *testing.T) {
	tests := []struct {
		cells []string
		exp   []any
	}{
		{[]string{"1", "-2", ""}, []any{int64(1), int64(-2), nil}},
		{[]string{"1", "2.5", "inf"}, []any{1.0, 2.5, math.Inf(1)}},
		{[]string{"True", "false", "", "TRUE"}, []any{true, false, nil, true}},
		{[]string{"1", "x"}, []any{"1", "x"}},
		{[]string{"true", "1"}, []any{"true", "1"}},
		{[]string{"", ""}, []any{"", ""}},
		{[]string{"a", ""}, []any{"a", ""}},
		{nil, []any{}},
	}
	for _, test := range tests {
		got := inferColumn(test.cells)
		assert.Equal(t, test.exp, got, "cells: %v", test.cells)
	}
}

func TestFormatThenInfer(t *testing.T) {
	// values written to the file come back with the same type
	values := []any{int64(3), 2.0, 0.5, true, math.Inf(-1)}
	for _, v := range values {
		got := inferColumn([]string{formatValue(v)})
		assert.Equal(t, []any{v}, got)
	}
}
