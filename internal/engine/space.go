package engine

import (
	"github.com/shirou/gopsutil/disk"

	"github.com/bamsammich/crtcopy/internal/stats"
)

// checkSpace warns when the destination filesystem reports less free space
// than the source needs. Running short is not fatal: files that do not fit
// fail individually.
func (r *run) checkSpace(need int64) {
	usage, err := disk.Usage(r.cfg.Dst)
	if err != nil {
		r.log.Debug("free space unknown", "dst", r.cfg.Dst, "error", err)
		return
	}
	if need > 0 && usage.Free < uint64(need) {
		r.log.Warn("destination may run out of space",
			"dst", r.cfg.Dst,
			"need", stats.FormatBytes(need),
			"free", stats.FormatBytes(int64(usage.Free)))
	}
}
