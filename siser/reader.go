package siser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Reader reads blocks written by Writer
type Reader struct {
	r *bufio.Reader

	// hints that the data was written without a timestamp
	// (see Writer.NoTimestamp)
	NoTimestamp bool

	// Data / Name / Timestamp are available after ReadNextData.
	// They are over-written in next ReadNextData.
	Data      []byte
	Name      string
	Timestamp time.Time

	err error
	// true if reached end of file with io.EOF
	done bool
}

// NewReader creates a new reader
func NewReader(r *bufio.Reader) *Reader {
	return &Reader{
		r: r,
	}
}

// Done returns true if we're finished reading from the reader
func (r *Reader) Done() bool {
	return r.err != nil || r.done
}

func (r *Reader) setHeaderErr(hdr []byte) bool {
	r.err = fmt.Errorf("unexpected header '%s'", string(bytes.TrimSpace(hdr)))
	return false
}

// ReadNextData reads next block from the reader, returns false
// when there are no more blocks. If returns false, check Err() to see
// if there were errors.
func (r *Reader) ReadNextData() bool {
	if r.Done() {
		return false
	}
	r.Name = ""
	r.Timestamp = time.Time{}

	hdr, err := r.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(hdr) == 0 {
			r.done = true
		} else if err == io.EOF {
			r.err = io.ErrUnexpectedEOF
		} else {
			r.err = err
		}
		return false
	}
	if !bytes.HasPrefix(hdr, hdrPrefix) {
		return r.setHeaderErr(hdr)
	}
	rest := hdr[len(hdrPrefix) : len(hdr)-1]

	// ${size}
	dataSize := rest
	rest = nil
	if idx := bytes.IndexByte(dataSize, ' '); idx != -1 {
		rest = dataSize[idx+1:]
		dataSize = dataSize[:idx]
	}
	size, err := strconv.Atoi(string(dataSize))
	if err != nil || size < 0 {
		return r.setHeaderErr(hdr)
	}

	// ${timestamp} ${name}
	if !r.NoTimestamp {
		timestamp := rest
		rest = nil
		if idx := bytes.IndexByte(timestamp, ' '); idx != -1 {
			rest = timestamp[idx+1:]
			timestamp = timestamp[:idx]
		}
		timeMs, err := strconv.ParseInt(string(timestamp), 10, 64)
		if err != nil {
			return r.setHeaderErr(hdr)
		}
		r.Timestamp = TimeFromUnixMillisecond(timeMs)
	}
	r.Name = string(rest)

	// re-use r.Data as long as it doesn't grow too much
	if cap(r.Data) > 1024*1024 || size > cap(r.Data) {
		r.Data = make([]byte, size)
	} else {
		r.Data = r.Data[:size]
	}
	n, err := io.ReadFull(r.r, r.Data)
	if err != nil {
		r.err = err
		return false
	}
	panicIf(n != size, "read %d bytes, expected %d", n, size)

	// Writer adds a newline if data doesn't end with one
	if size > 0 && r.Data[size-1] != '\n' {
		if _, err = r.r.Discard(1); err != nil {
			r.err = err
			return false
		}
	}
	return true
}

// Err returns error from last Read. We swallow io.EOF to make it easier
// to use
func (r *Reader) Err() error {
	return r.err
}
