package u

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression is a compression format picked based on file extension
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
	CompressionBrotli
	CompressionXz
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionBrotli:
		return "brotli"
	case CompressionXz:
		return "xz"
	}
	return "none"
}

// CompressionFromPath returns compression format based on file extension:
// .gz, .zst / .zstd, .br or .xz
// TODO: could sniff file content instead of checking file extension
func CompressionFromPath(path string) Compression {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gz":
		return CompressionGzip
	case ".zst", ".zstd":
		return CompressionZstd
	case ".br":
		return CompressionBrotli
	case ".xz":
		return CompressionXz
	}
	return CompressionNone
}

// StripCompressionExt removes compression extension i.e. "foo.csv.gz" => "foo.csv"
func StripCompressionExt(path string) string {
	if CompressionFromPath(path) == CompressionNone {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// implement io.ReadCloser over os.File wrapped with io.Reader.
// Close() closes the decompressor (if it needs closing) and the file
type readerWrappedFile struct {
	f       *os.File
	r       io.Reader
	onClose func()
}

func (rc *readerWrappedFile) Close() error {
	if rc.onClose != nil {
		rc.onClose()
	}
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip
// or zstd or brotli or xz
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch CompressionFromPath(path) {
	case CompressionGzip:
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r}, nil
	case CompressionZstd:
		r, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r, onClose: r.Close}, nil
	case CompressionBrotli:
		return &readerWrappedFile{f: f, r: brotli.NewReader(f)}, nil
	case CompressionXz:
		r, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r}, nil
	}
	return f, nil
}

// ReadFileMaybeCompressed reads a file, decompressing it if needed
func ReadFileMaybeCompressed(path string) ([]byte, error) {
	r, err := OpenFileMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func zstdNewWriter(dst io.Writer) (*zstd.Encoder, error) {
	// in my tests:
	// - zstd.SpeedBestCompression is much slower and not much better
	// - default concurrency is GONUMPROCS() but adding concurrency of any value
	//   doesn't consistently speed things up
	return zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// NewWriterMaybeCompressed wraps w in a compressor picked by extension of path.
// Close() finishes the compressed stream but doesn't close w.
func NewWriterMaybeCompressed(w io.Writer, path string) (io.WriteCloser, error) {
	switch CompressionFromPath(path) {
	case CompressionGzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case CompressionZstd:
		return zstdNewWriter(w)
	case CompressionBrotli:
		return brotli.NewWriterLevel(w, brotli.DefaultCompression), nil
	case CompressionXz:
		return xz.NewWriter(w)
	}
	return nopWriteCloser{w}, nil
}

// WriteFileMaybeCompressed writes data to path, compressing based on extension
func WriteFileMaybeCompressed(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := NewWriterMaybeCompressed(f, path)
	if err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	_, err = w.Write(data)
	err2 := w.Close()
	err3 := f.Close()
	err = getErr(err, err2, err3)
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
