package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorCopyPass(t *testing.T) {
	c := NewCollector()
	c.SetTotals(5, 5000)

	// Two tagged copies, one without crtime, one failure, one FIFO skipped,
	// then verification finds the failed file missing.
	c.AddFilesCopied(2)
	c.AddBytesCopied(2000)
	c.AddFilesNoMetadata(1)
	c.AddBytesCopied(1000)
	c.AddFilesFailed(1)
	c.AddFilesSkipped(1)
	c.AddFilesMissing(1)

	s := c.Snapshot()
	assert.Equal(t, int64(5), s.FilesTotal)
	assert.Equal(t, int64(5000), s.BytesTotal)
	assert.Equal(t, int64(4), s.Done(), "skipped entries are not counted as done")
	assert.Equal(t, int64(3000), s.BytesCopied)
	assert.Equal(t, "total=5 copied=2 partial=1 skipped=1 failed=1 bytes=3000 missing=1", s.String())
}

func TestCollectorConcurrentReaders(t *testing.T) {
	c := NewCollector()
	const files = 2000

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range files {
			c.AddFilesCopied(1)
			c.AddBytesCopied(512)
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			c.Tick()
			_ = c.Snapshot()
			_ = c.ETA()
		}
	}()
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(files), s.FilesCopied)
	assert.Equal(t, int64(files*512), s.BytesCopied)
}

func TestRollingSpeed(t *testing.T) {
	tests := []struct {
		name   string
		deltas []int64
		window int
		want   float64
	}{
		{"no samples", nil, 5, 0},
		{"steady", []int64{1000, 1000, 1000, 1000, 1000}, 5, 1000},
		{"window shorter than history", []int64{0, 0, 3000, 3000}, 2, 3000},
		{"partial window", []int64{500, 500}, 10, 500},
		{"zero window", []int64{500}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector()
			for _, d := range tt.deltas {
				c.AddBytesCopied(d)
				c.Tick()
			}
			assert.InDelta(t, tt.want, c.RollingSpeed(tt.window), 0.01)
		})
	}
}

func TestRollingSpeedWraparound(t *testing.T) {
	c := NewCollector()
	for range ringSize + 10 {
		c.AddBytesCopied(10)
		c.Tick()
	}
	assert.InDelta(t, 10.0, c.RollingSpeed(ringSize*2), 0.01)
}

func TestETA(t *testing.T) {
	c := NewCollector()
	c.SetTotals(10, 10000)
	assert.Zero(t, c.ETA(), "unknown before any throughput")

	for range 5 {
		c.AddBytesCopied(1000)
		c.Tick()
	}
	assert.InDelta(t, 5.0, c.ETA().Seconds(), 1.0)

	c.AddBytesCopied(5000)
	assert.Zero(t, c.ETA(), "nothing left")
}

func TestFormatBytes(t *testing.T) {
	for in, want := range map[int64]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		320000:  "312.5 KiB",
		1 << 30: "1.0 GiB",
		5 << 40: "5.0 TiB",
	} {
		assert.Equal(t, want, FormatBytes(in), in)
	}
}

func TestElapsed(t *testing.T) {
	c := NewCollector()
	time.Sleep(5 * time.Millisecond)
	assert.Positive(t, c.Snapshot().Elapsed)
}
