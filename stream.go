package em3

import (
	"bytes"
	"io"
)

// Stream caters for a generic reader type so the framer can walk either a
// stream of data from a file on disk/object store, or an in-memory byte
// buffer built from one. All the framer needs is Read and Seek, which both
// satisfy.
type Stream interface {
	io.Reader
	io.Seeker
}

// Tell reports the current position within a stream.
func Tell(stream Stream) (int64, error) {
	return stream.Seek(0, io.SeekCurrent)
}

// MemoryStream wraps an in-memory byte buffer as a Stream. Used for tests
// and for short acquisitions that comfortably fit in memory.
func MemoryStream(buf []byte) Stream {
	return bytes.NewReader(buf)
}
