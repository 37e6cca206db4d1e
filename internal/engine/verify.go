package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bamsammich/crtcopy/internal/event"
	"github.com/bamsammich/crtcopy/internal/filter"
	"github.com/bamsammich/crtcopy/internal/stats"
)

// VerifyConfig controls the post-copy verification pass.
type VerifyConfig struct {
	SrcRoot  string
	DstRoot  string
	Filter   *filter.Chain
	Checksum bool // compare BLAKE3 digests of files present on both sides
	Workers  int  // checksum goroutines, default 4
	Events   chan<- event.Event
	Stats    stats.Writer
}

// VerifyResult compares the regular files of two trees. It is derived from
// the filesystem only, never from a copy manifest.
type VerifyResult struct {
	Expected   int      // regular files under SrcRoot
	Found      int      // regular files under DstRoot
	Missing    []string // in source, not in destination; sorted
	Extra      []string // in destination, not in source; sorted
	Mismatched []Mismatch
}

// Mismatch is a file whose content differs between the trees. Err is set
// when one side could not be hashed.
type Mismatch struct {
	Path    string
	SrcHash string
	DstHash string
	Err     error
}

// OK reports whether the destination matches the source.
func (v VerifyResult) OK() bool {
	return len(v.Missing) == 0 && len(v.Extra) == 0 && len(v.Mismatched) == 0
}

// Err returns nil when OK, else an error wrapping ErrVerificationMismatch.
func (v VerifyResult) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("%w: expected %d, found %d, missing %d, extra %d, mismatched %d",
		ErrVerificationMismatch, v.Expected, v.Found, len(v.Missing), len(v.Extra), len(v.Mismatched))
}

// Verify re-enumerates both trees with the same filter and reports what
// differs. A root that cannot be listed is a *FatalEnumerationError.
func Verify(ctx context.Context, cfg VerifyConfig) (VerifyResult, error) {
	emitEvent(cfg.Events, event.Event{Type: event.VerifyStarted})

	srcFiles, err := EnumerateFiles(cfg.SrcRoot, cfg.Filter)
	if err != nil {
		return VerifyResult{}, err
	}
	dstFiles, err := EnumerateFiles(cfg.DstRoot, cfg.Filter)
	if err != nil {
		return VerifyResult{}, err
	}

	result := VerifyResult{
		Expected: len(srcFiles),
		Found:    len(dstFiles),
		Missing:  difference(srcFiles, dstFiles),
		Extra:    difference(dstFiles, srcFiles),
	}

	for _, p := range result.Missing {
		if cfg.Stats != nil {
			cfg.Stats.AddFilesMissing(1)
		}
		emitEvent(cfg.Events, event.Event{Type: event.VerifyMissing, Path: p})
	}

	if cfg.Checksum {
		result.Mismatched = compareChecksums(ctx, cfg, intersection(srcFiles, dstFiles))
		for _, m := range result.Mismatched {
			emitEvent(cfg.Events, event.Event{Type: event.VerifyMismatch, Path: m.Path, Error: m.Err})
		}
	}

	emitEvent(cfg.Events, event.Event{Type: event.VerifyComplete, Total: result.Expected})
	return result, nil
}

func compareChecksums(ctx context.Context, cfg VerifyConfig, files []string) []Mismatch {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	taskCh := make(chan string, workers*2)
	var mu sync.Mutex
	var out []Mismatch
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for relPath := range taskCh {
				if m, bad := compareOne(ctx, cfg, relPath); bad {
					mu.Lock()
					out = append(out, m)
					mu.Unlock()
				}
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case <-ctx.Done():
			break feed
		case taskCh <- f:
		}
	}
	close(taskCh)
	wg.Wait()

	slices.SortFunc(out, func(a, b Mismatch) int { return strings.Compare(a.Path, b.Path) })
	return out
}

func compareOne(ctx context.Context, cfg VerifyConfig, relPath string) (Mismatch, bool) {
	m := Mismatch{Path: relPath}
	srcHash, err := HashFile(ctx, filepath.Join(cfg.SrcRoot, filepath.FromSlash(relPath)))
	if err != nil {
		m.Err = err
		return m, true
	}
	m.SrcHash = srcHash
	dstHash, err := HashFile(ctx, filepath.Join(cfg.DstRoot, filepath.FromSlash(relPath)))
	if err != nil {
		m.Err = err
		return m, true
	}
	m.DstHash = dstHash
	return m, srcHash != dstHash
}

// difference returns the sorted elements of a not present in b.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}

func intersection(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// emitEvent sends e without blocking. Presenters that fall behind lose
// events, never the engine's progress.
func emitEvent(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
