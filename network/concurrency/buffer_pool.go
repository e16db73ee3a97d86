// Package concurrency holds the shared resources that bound memory and parallelism
// across concurrent gateway calls.
package concurrency

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// DefaultInitialBufferSize is the capacity of a fresh pooled buffer.
	// Most feeder gateway responses (blocks, state updates) fit in 64KB.
	DefaultInitialBufferSize = 64 * 1024

	// DefaultMaxPooledBufferSize caps the buffers kept in the pool.
	// Larger buffers, e.g. after reading a big class definition, are left to the GC.
	DefaultMaxPooledBufferSize = 4 * 1024 * 1024

	// DefaultMaxBodySize is the largest response body accepted from the gateway.
	DefaultMaxBodySize = 64 * 1024 * 1024
)

// ErrBodyTooLarge is returned when a body exceeds the pool's read limit.
var ErrBodyTooLarge = errors.New("body exceeds size limit")

// BufferPool reads response bodies into reusable buffers to reduce GC pressure.
// It is safe for concurrent use.
type BufferPool struct {
	pool        sync.Pool
	maxBodySize int64
}

// NewBufferPool returns a pool whose reads fail once more than maxBodySize bytes
// are available. A non-positive maxBodySize selects DefaultMaxBodySize.
func NewBufferPool(maxBodySize int64) *BufferPool {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, DefaultInitialBufferSize))
			},
		},
		maxBodySize: maxBodySize,
	}
}

// MaxBodySize returns the read limit.
func (bp *BufferPool) MaxBodySize() int64 {
	return bp.maxBodySize
}

func (bp *BufferPool) getBuffer() *bytes.Buffer {
	buf := bp.pool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func (bp *BufferPool) putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > DefaultMaxPooledBufferSize {
		return
	}
	bp.pool.Put(buf)
}

// ReadAll reads r to EOF and returns an independent copy of its content.
// Bodies longer than the limit are rejected rather than truncated: a truncated
// JSON payload would otherwise surface later as a confusing decode failure.
func (bp *BufferPool) ReadAll(r io.Reader) ([]byte, error) {
	buf := bp.getBuffer()
	defer bp.putBuffer(buf)

	// Read one byte past the limit to tell "exactly at limit" from "over".
	n, err := buf.ReadFrom(io.LimitReader(r, bp.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if n > bp.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, bp.maxBodySize)
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
