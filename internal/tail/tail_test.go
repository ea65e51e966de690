package tail

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector gathers delivered chunks behind a mutex so tests can poll them.
type collector struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *collector) add(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Write(data)
}

func (c *collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

func startReader(t *testing.T, path string, wipe bool, bufSize int) (*Reader, *collector) {
	t.Helper()

	r, err := New(path, wipe)
	require.NoError(t, err)

	c := &collector{}
	r.OnChunk = func(data []byte, _ string) { c.add(data) }
	if bufSize > 0 {
		r.BufferSize = bufSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, r.Start(ctx))
	t.Cleanup(r.Stop)
	return r, c
}

func appendFile(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(s)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestReaderDeliversAppendsExactly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	r, c := startReader(t, path, true, 0)

	want := ""
	for _, s := range []string{"first line\n", "second\n", "third line here\n"} {
		appendFile(t, path, s)
		want += s
	}

	assert.Eventually(t, func() bool { return c.String() == want },
		5*time.Second, 10*time.Millisecond, "delivered bytes must match appended bytes")
	assert.Equal(t, int64(len(want)), r.Offset())
}

func TestReaderDrainsPastBufferCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	// Tiny buffer forces the drain loop through several reads per chunk.
	r, c := startReader(t, path, true, 8)

	want := strings.Repeat("0123456789", 20)
	appendFile(t, path, want)

	assert.Eventually(t, func() bool { return c.String() == want },
		5*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(len(want)), r.Offset())
}

func TestNewWipeTruncatesExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	require.NoError(t, os.WriteFile(path, []byte("stale content from last run\n"), 0644))

	_, c := startReader(t, path, true, 0)
	appendFile(t, path, "fresh\n")

	assert.Eventually(t, func() bool { return c.String() == "fresh\n" },
		5*time.Second, 10*time.Millisecond, "wiped file must start the stream empty")
}

func TestNewWipeFailsOnInaccessiblePath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "console.log"), true)
	require.Error(t, err)
}

func TestReaderResyncsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	r, c := startReader(t, path, true, 0)

	appendFile(t, path, "before rotation\n")
	assert.Eventually(t, func() bool { return c.String() == "before rotation\n" },
		5*time.Second, 10*time.Millisecond)

	// Simulate log rotation: the file shrinks below the delivered offset.
	require.NoError(t, os.Truncate(path, 0))
	appendFile(t, path, "after rotation\n")

	assert.Eventually(t, func() bool {
		return strings.HasSuffix(c.String(), "after rotation\n")
	}, 5*time.Second, 10*time.Millisecond, "reader must resync to offset zero after truncation")
	assert.Equal(t, int64(len("after rotation\n")), r.Offset())
}

func TestReaderStartTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	r, _ := startReader(t, path, true, 0)
	require.Error(t, r.Start(context.Background()))
}
