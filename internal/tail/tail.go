package tail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// defaultBufferSize is the read granularity. It bounds a single read, not a
// chunk: the drain loop keeps reading until the file has no more bytes.
const defaultBufferSize = 1024

// Reader tails a single append-only file. Every time the file grows it
// delivers exactly the newly appended bytes, in order, with no gaps and no
// duplication. The stream is infinite and non-restartable: the offset only
// moves forward for the lifetime of the Reader.
type Reader struct {
	path string

	// BufferSize overrides the per-read buffer capacity. Set before Start.
	BufferSize int

	// OnChunk receives each non-empty batch of newly appended bytes together
	// with the base name of the file that triggered the notification.
	OnChunk func(data []byte, name string)

	// OnError is invoked once if a read fails. The reader stops afterwards:
	// continuing with an uncertain offset would desynchronize the stream.
	OnError func(error)

	Log *slog.Logger

	watcher *fsnotify.Watcher
	buf     []byte
	offset  int64

	stopCh chan struct{}
	doneCh chan struct{}
	mu     sync.Mutex
}

// New prepares a Reader for path. If wipe is true the file is truncated to
// zero bytes (and created if missing) so the stream starts empty.
func New(path string, wipe bool) (*Reader, error) {
	if wipe {
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return nil, fmt.Errorf("wipe %s: %w", path, err)
		}
	}
	return &Reader{path: path}, nil
}

// Start registers the filesystem watch and begins draining appended bytes.
// The reader runs until Stop is called or ctx is cancelled.
func (r *Reader) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopCh != nil {
		return fmt.Errorf("tail: already started")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tail: %w", err)
	}
	if err := w.Add(r.path); err != nil {
		w.Close()
		return fmt.Errorf("tail %s: %w", r.path, err)
	}

	if r.BufferSize <= 0 {
		r.BufferSize = defaultBufferSize
	}
	if r.Log == nil {
		r.Log = slog.Default()
	}
	r.watcher = w
	r.buf = make([]byte, r.BufferSize)
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.run(ctx, r.stopCh)
	return nil
}

// Stop halts the watch loop and releases the watcher.
func (r *Reader) Stop() {
	r.mu.Lock()
	ch := r.stopCh
	r.stopCh = nil
	r.mu.Unlock()

	if ch != nil {
		close(ch)
		<-r.doneCh
	}
}

// Offset reports the number of bytes delivered so far.
func (r *Reader) Offset() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offset
}

func (r *Reader) run(ctx context.Context, stopCh <-chan struct{}) {
	defer close(r.doneCh)
	defer r.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			// Only content modifications move the offset. Renames and
			// removals are log rotation concerns handled by the resync below.
			if ev.Op&fsnotify.Write == 0 {
				continue
			}
			if err := r.drain(ev.Name); err != nil {
				r.Log.Error("tail: read failed, stopping", "path", r.path, "error", err)
				if r.OnError != nil {
					r.OnError(err)
				}
				return
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.Log.Error("tail: watch failed, stopping", "path", r.path, "error", err)
			if r.OnError != nil {
				r.OnError(err)
			}
			return
		}
	}
}

// drain reads every byte currently available past the offset and delivers
// them as one chunk. A short read marks the end of the available data.
func (r *Reader) drain(name string) error {
	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() < r.offset {
		// The file shrank under us (rotation). Resync instead of reading at
		// an offset that no longer exists.
		r.Log.Warn("tail: file truncated, resyncing to start", "path", r.path, "size", st.Size(), "offset", r.offset)
		r.mu.Lock()
		r.offset = 0
		r.mu.Unlock()
	}

	var chunks [][]byte
	for {
		n, rerr := f.ReadAt(r.buf, r.offset)
		if n > 0 {
			c := make([]byte, n)
			copy(c, r.buf[:n])
			chunks = append(chunks, c)
			r.mu.Lock()
			r.offset += int64(n)
			r.mu.Unlock()
		}
		if rerr != nil && rerr != io.EOF {
			return rerr
		}
		if rerr == io.EOF || n < len(r.buf) {
			break
		}
	}

	if len(chunks) == 0 {
		return nil
	}
	data := chunks[0]
	if len(chunks) > 1 {
		var total int
		for _, c := range chunks {
			total += len(c)
		}
		data = make([]byte, 0, total)
		for _, c := range chunks {
			data = append(data, c...)
		}
	}
	if r.OnChunk != nil {
		r.OnChunk(data, filepath.Base(name))
	}
	return nil
}
