package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Writer is the side of the collector the engine uses.
type Writer interface {
	SetTotals(files, bytes int64)
	AddFilesCopied(n int64)
	AddFilesNoMetadata(n int64)
	AddFilesSkipped(n int64)
	AddFilesFailed(n int64)
	AddBytesCopied(n int64)
	AddFilesMissing(n int64)
}

// Reader is the side presenters use.
type Reader interface {
	Snapshot() Snapshot
}

// ReadTicker is a Reader that also maintains the rolling throughput window.
type ReadTicker interface {
	Reader
	Tick()
	RollingSpeed(seconds int) float64
	ETA() time.Duration
}

// Collector tracks run statistics. Counters are atomic because the
// presenter goroutine reads them while the engine writes.
type Collector struct {
	filesTotal      atomic.Int64
	bytesTotal      atomic.Int64
	filesCopied     atomic.Int64
	filesNoMetadata atomic.Int64
	filesSkipped    atomic.Int64
	filesFailed     atomic.Int64
	bytesCopied     atomic.Int64
	filesMissing    atomic.Int64
	startTime       time.Time

	// Ring buffer, written only by Tick.
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes delta per tick
	ringIdx    int
	ringCount  int
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotals records scan totals (called once when the scan completes).
func (c *Collector) SetTotals(files, bytes int64) {
	c.filesTotal.Store(files)
	c.bytesTotal.Store(bytes)
}

func (c *Collector) AddFilesCopied(n int64)     { c.filesCopied.Add(n) }
func (c *Collector) AddFilesNoMetadata(n int64) { c.filesNoMetadata.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)    { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)     { c.filesFailed.Add(n) }
func (c *Collector) AddBytesCopied(n int64)     { c.bytesCopied.Add(n) }
func (c *Collector) AddFilesMissing(n int64)    { c.filesMissing.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesTotal      int64
	BytesTotal      int64
	FilesCopied     int64
	FilesNoMetadata int64
	FilesSkipped    int64
	FilesFailed     int64
	BytesCopied     int64
	FilesMissing    int64
	Elapsed         time.Duration
}

// Done is the number of files that reached a terminal outcome.
func (s Snapshot) Done() int64 {
	return s.FilesCopied + s.FilesNoMetadata + s.FilesFailed
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesTotal:      c.filesTotal.Load(),
		BytesTotal:      c.bytesTotal.Load(),
		FilesCopied:     c.filesCopied.Load(),
		FilesNoMetadata: c.filesNoMetadata.Load(),
		FilesSkipped:    c.filesSkipped.Load(),
		FilesFailed:     c.filesFailed.Load(),
		BytesCopied:     c.bytesCopied.Load(),
		FilesMissing:    c.filesMissing.Load(),
		Elapsed:         c.Elapsed(),
	}
}

// Tick records the byte delta since the previous tick. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	current := c.bytesCopied.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		sum += c.throughput[(c.ringIdx-1-i+ringSize)%ringSize]
	}
	return float64(sum) / float64(count)
}

// ETA estimates remaining time from the rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesCopied.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"total=%d copied=%d partial=%d skipped=%d failed=%d bytes=%d missing=%d",
		s.FilesTotal, s.FilesCopied, s.FilesNoMetadata, s.FilesSkipped,
		s.FilesFailed, s.BytesCopied, s.FilesMissing,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
