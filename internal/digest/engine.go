package digest

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// DefaultBufferSize is the chunk size for streaming reads when the
// configuration does not override it.
const DefaultBufferSize = 8 * 1024 * 1024

// ReadWrapper lets callers observe the byte stream during hashing, e.g. to
// drive a progress bar. The returned func is called once hashing finishes.
type ReadWrapper func(r io.Reader, size int64) (io.Reader, func())

// Engine computes one or more digests of a file in a single pass.
type Engine struct {
	BufferSize int
	UseMmap    bool
	Retry      RetryPolicy

	// WrapReader is optional; nil means read the stream unobserved.
	WrapReader ReadWrapper
}

// NewEngine returns an engine with the given read strategy. A bufferSize of
// zero selects DefaultBufferSize.
func NewEngine(bufferSize int, useMmap bool, retry RetryPolicy) *Engine {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Engine{BufferSize: bufferSize, UseMmap: useMmap, Retry: retry}
}

// Compute reads the file at path once and returns the hex digest for every
// requested algorithm. Open and read failures are retried per the engine's
// policy and reported as ErrUnreadableFile; unknown algorithms fail before
// the file is touched.
func (e *Engine) Compute(ctx context.Context, path string, algos []Algorithm) (map[Algorithm]string, error) {
	if len(algos) == 0 {
		return map[Algorithm]string{}, nil
	}

	var result map[Algorithm]string
	err := e.Retry.Do(ctx, func() error {
		var opErr error
		result, opErr = e.computeOnce(ctx, path, algos)
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) computeOnce(ctx context.Context, path string, algos []Algorithm) (map[Algorithm]string, error) {
	hashes := make([]hash.Hash, len(algos))
	writers := make([]io.Writer, len(algos))
	for i, a := range algos {
		h, err := a.New()
		if err != nil {
			return nil, err
		}
		hashes[i] = h
		writers[i] = h
	}
	sink := io.MultiWriter(writers...)

	f, err := os.Open(path)
	if err != nil {
		// Both sentinels stay in the chain: the retry policy inspects the
		// underlying error to refuse retrying not-found and permission
		// failures.
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s: is a directory", ErrUnreadableFile, path)
	}

	if e.UseMmap && info.Size() > 0 {
		if err := e.feedMmap(ctx, f, info.Size(), sink); err != nil {
			return nil, err
		}
	} else {
		if err := e.feedStream(ctx, f, info.Size(), sink); err != nil {
			return nil, err
		}
	}

	digests := make(map[Algorithm]string, len(algos))
	for i, a := range algos {
		digests[a] = hex.EncodeToString(hashes[i].Sum(nil))
	}
	return digests, nil
}

func (e *Engine) feedStream(ctx context.Context, f *os.File, size int64, sink io.Writer) error {
	var r io.Reader = f
	done := func() {}
	if e.WrapReader != nil {
		r, done = e.WrapReader(r, size)
	}
	defer done()

	buf := make([]byte, e.bufferSize())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnreadableFile, f.Name(), err)
		}
	}
}

func (e *Engine) feedMmap(ctx context.Context, f *os.File, size int64, sink io.Writer) error {
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Some filesystems refuse mappings; the streaming path always works.
		return e.feedStream(ctx, f, size, sink)
	}
	defer m.Unmap()

	var r io.Reader = newChunkReader(m, e.bufferSize())
	done := func() {}
	if e.WrapReader != nil {
		r, done = e.WrapReader(r, size)
	}
	defer done()

	buf := make([]byte, e.bufferSize())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (e *Engine) bufferSize() int {
	if e.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return e.BufferSize
}

// chunkReader serves a mapped region in bounded slices so cancellation is
// checked between chunks even for very large mappings.
type chunkReader struct {
	data []byte
	off  int
	step int
}

func newChunkReader(data []byte, step int) *chunkReader {
	return &chunkReader{data: data, step: step}
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.off >= len(c.data) {
		return 0, io.EOF
	}
	n := len(p)
	if n > c.step {
		n = c.step
	}
	if rem := len(c.data) - c.off; n > rem {
		n = rem
	}
	copy(p, c.data[c.off:c.off+n])
	c.off += n
	return n, nil
}
