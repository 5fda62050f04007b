package log

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
	"github.com/magu1436/csvdatabase/siser"
)

func initTestLog(t *testing.T) string {
	dir := t.TempDir()
	Init(&Config{Dir: dir})
	Quiet = true
	t.Cleanup(func() {
		Close()
		Quiet = false
		Verbose = false
	})
	return dir
}

func todayFile(dir string, sub string) string {
	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	return filepath.Join(dir, sub, name)
}

func readFile(t *testing.T, path string) string {
	d, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(d)
}

func TestLogBeforeInit(t *testing.T) {
	Quiet = true
	defer func() { Quiet = false }()
	// must not crash when files are not set up
	Logf("hello %d\n", 5)
	Errorf("error %s", "here")
	Event("csvdb.open", "path", "a.csv")
	assert.Equal(t, "", EventsDir())
}

func TestLogfWritesDailyFile(t *testing.T) {
	dir := initTestLog(t)
	var got []string
	onLog = func(s string) {
		got = append(got, s)
	}
	Logf("opened %s\n", "people.csv")
	Verbosef("not logged\n")
	Verbose = true
	Verbosef("rows: %d\n", 3)
	CloseWriteDaily(&log)

	s := readFile(t, todayFile(dir, "log"))
	assert.Equal(t, "opened people.csv\nrows: 3\n", s)
	assert.Equal(t, []string{"opened people.csv\n", "rows: 3\n"}, got)
}

func TestErrorfLogsCallstack(t *testing.T) {
	dir := initTestLog(t)
	Errorf("failed to save '%s'", "people.csv")
	CloseWriteDaily(&errorsLog)

	s := readFile(t, todayFile(dir, "errors"))
	assert.True(t, strings.HasPrefix(s, "failed to save 'people.csv'\n"))
	assert.Contains(t, s, "log_test.go")
}

func TestEvent(t *testing.T) {
	dir := initTestLog(t)
	assert.Equal(t, filepath.Join(dir, "events"), EventsDir())
	Event("csvdb.register", "path", "people.csv", "rows", 3)
	EventWithDuration("csvdb.delete", time.Millisecond*2, "path", "people.csv")
	Event("csvdb.backup")
	CloseWriteDaily(&eventsLog)

	f, err := os.Open(todayFile(dir, "events"))
	assert.NoError(t, err)
	defer f.Close()
	r := siser.NewReader(bufio.NewReader(f))
	var names []string
	var datas []string
	for r.ReadNextData() {
		names = append(names, r.Name)
		datas = append(datas, string(r.Data))
		assert.False(t, r.Timestamp.IsZero())
	}
	assert.NoError(t, r.Err())
	assert.Equal(t, []string{"csvdb.register", "csvdb.delete", "csvdb.backup"}, names)
	assert.Contains(t, datas[0], "people.csv")
	assert.Contains(t, datas[0], "rows")
	assert.Contains(t, datas[1], "durmicro")
	assert.Equal(t, "", datas[2])
}

func TestEventOddValuesPanics(t *testing.T) {
	assert.Panics(t, func() {
		Event("bad", "key")
	})
}

func TestWriteDailyNilSafe(t *testing.T) {
	var w *WriteDaily
	assert.NoError(t, w.WriteString("x"))
	assert.NoError(t, w.Sync())
	assert.NoError(t, w.Close())
	_, err := w.Writer()
	assert.Error(t, err)
}

func TestIfErrf(t *testing.T) {
	dir := initTestLog(t)
	assert.False(t, IfErrf(nil, "not logged"))
	assert.True(t, IfErrf(errors.New("disk full")))
	assert.True(t, IfErrf(errors.New("x"), "failed to save '%s': %v", "a.csv", "disk full"))
	CloseWriteDaily(&errorsLog)

	s := readFile(t, todayFile(dir, "errors"))
	assert.True(t, strings.HasPrefix(s, "disk full\n"))
	assert.Contains(t, s, "failed to save 'a.csv': disk full\n")
	assert.False(t, strings.Contains(s, "not logged"))
}
