package siser

import (
	"bufio"
	"bytes"
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

func TestMarshalLine(t *testing.T) {
	tm := TimeFromUnixMillisecond(1577836800000)
	tests := []struct {
		name string
		t    time.Time
		data string
		exp  string
	}{
		{"csvdb.open", tm, "path: a.csv", "--- 11 1577836800000 csvdb.open\npath: a.csv\n"},
		{"csvdb.open", tm, "path: a.csv\n", "--- 12 1577836800000 csvdb.open\npath: a.csv\n"},
		{"csvdb.delete", time.Time{}, "", "--- 0 csvdb.delete\n"},
		{"", time.Time{}, "rows: 3", "--- 7\nrows: 3\n"},
		{"", tm, "", "--- 0 1577836800000\n"},
	}
	for _, test := range tests {
		got := MarshalLine(test.name, test.t, []byte(test.data), nil)
		assert.Equal(t, test.exp, string(got))
	}
}

func TestMarshalLineReusesBuffer(t *testing.T) {
	var buf bytes.Buffer
	MarshalLine("first", time.Time{}, []byte("some longer data"), &buf)
	got := MarshalLine("second", time.Time{}, []byte("x"), &buf)
	assert.Equal(t, "--- 1 second\nx\n", string(got))
}

type event struct {
	name string
	data string
	t    time.Time
}

func writeEvents(t *testing.T, noTimestamp bool, events []event) []byte {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.NoTimestamp = noTimestamp
	for _, e := range events {
		_, err := w.Write([]byte(e.data), e.t, e.name)
		assert.NoError(t, err)
	}
	return buf.Bytes()
}

func TestWriterReaderRoundTrip(t *testing.T) {
	tm := TimeFromUnixMillisecond(1600000000123)
	events := []event{
		{"csvdb.open", "path: people.csv\nrows: 2", tm},
		{"csvdb.register", "path: people.csv\nrows: 3\n", tm.Add(time.Second)},
		{"csvdb.delete", "", tm.Add(2 * time.Second)},
		{"", "no name", tm.Add(3 * time.Second)},
	}
	d := writeEvents(t, false, events)

	r := NewReader(bufio.NewReader(bytes.NewReader(d)))
	n := 0
	for r.ReadNextData() {
		e := events[n]
		assert.Equal(t, e.name, r.Name)
		assert.Equal(t, e.data, string(r.Data))
		assert.True(t, e.t.Equal(r.Timestamp))
		n++
	}
	assert.NoError(t, r.Err())
	assert.Equal(t, len(events), n)
	assert.True(t, r.Done())
}

func TestNoTimestamp(t *testing.T) {
	events := []event{
		{"csvdb.update", "row: 0", time.Now()},
		{"csvdb.backup", "remote: x", time.Now()},
	}
	d := writeEvents(t, true, events)
	assert.Equal(t, "--- 6 csvdb.update\nrow: 0\n--- 9 csvdb.backup\nremote: x\n", string(d))

	r := NewReader(bufio.NewReader(bytes.NewReader(d)))
	r.NoTimestamp = true
	assert.True(t, r.ReadNextData())
	assert.Equal(t, "csvdb.update", r.Name)
	assert.True(t, r.Timestamp.IsZero())
	assert.True(t, r.ReadNextData())
	assert.Equal(t, "remote: x", string(r.Data))
	assert.False(t, r.ReadNextData())
	assert.NoError(t, r.Err())
}

func TestWriterDefaultsToNow(t *testing.T) {
	before := time.Now().Add(-time.Second)
	d := writeEvents(t, false, []event{{"x", "y", time.Time{}}})
	r := NewReader(bufio.NewReader(bytes.NewReader(d)))
	assert.True(t, r.ReadNextData())
	assert.True(t, r.Timestamp.After(before))
}

func TestReaderErrors(t *testing.T) {
	tests := []string{
		"not a header\n",
		"--- abc 123 name\ndata\n",
		"--- 4 notatime name\ndata\n",
		"--- 10 123 name\nshort\n",
		"--- 4 123",
	}
	for _, s := range tests {
		r := NewReader(bufio.NewReader(bytes.NewBufferString(s)))
		assert.False(t, r.ReadNextData())
		assert.Error(t, r.Err(), "input: %q", s)
	}
}
