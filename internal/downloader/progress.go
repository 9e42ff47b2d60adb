package downloader

import "math"

// Progress is the value published through the downloader's reactive
// property: bytes transferred so far, and the total size if known.
type Progress struct {
	BytesDone uint64
	Total     *uint64
}

// Pct returns bytes-done as a percentage of total, or NaN if total is
// unknown or zero.
func (p Progress) Pct() float64 {
	if p.Total == nil || *p.Total == 0 {
		return math.NaN()
	}
	return float64(p.BytesDone) / float64(*p.Total) * 100
}

func totalPtr(size *int64) *uint64 {
	if size == nil {
		return nil
	}
	v := uint64(*size)
	return &v
}
