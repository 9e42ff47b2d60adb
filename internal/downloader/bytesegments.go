package downloader

import "sort"

// ByteSegment is one contiguous run of bytes starting at Offset, as produced
// by one chunked-download task.
type ByteSegment struct {
	Offset int64
	Data   []byte
}

// ByteSegments is an ordered, contiguous, non-overlapping collection of
// byte segments covering [0, TotalLen). It is the output shape of a chunked
// download run with output-bytes enabled, since the segments arrive out of
// order from concurrent tasks and must be reassembled into an
// address-indexed view without necessarily copying them into one buffer.
type ByteSegments struct {
	segments []ByteSegment
	totalLen int64
}

// NewByteSegments sorts segments by offset and computes TotalLen from the
// last segment. It does not defensively re-validate contiguity/overlap —
// callers (the chunked downloader) are responsible for producing a valid
// partition of [0, total); this constructor only establishes order.
func NewByteSegments(segments []ByteSegment) *ByteSegments {
	sorted := make([]ByteSegment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var total int64
	if n := len(sorted); n > 0 {
		last := sorted[n-1]
		total = last.Offset + int64(len(last.Data))
	}

	return &ByteSegments{segments: sorted, totalLen: total}
}

// TotalLen returns the full logical length covered by the segments.
func (b *ByteSegments) TotalLen() int64 { return b.totalLen }

// ReadAt returns a freshly-allocated slice spanning
// [offset, min(offset+length, TotalLen)). Requesting past the end, or a
// zero length, yields an empty (non-nil) slice.
func (b *ByteSegments) ReadAt(offset, length int64) []byte {
	if offset >= b.totalLen || length <= 0 {
		return []byte{}
	}
	end := offset + length
	if end > b.totalLen {
		end = b.totalLen
	}

	out := make([]byte, 0, end-offset)
	for _, seg := range b.segments {
		segEnd := seg.Offset + int64(len(seg.Data))
		if segEnd <= offset || seg.Offset >= end {
			continue
		}
		lo := offset
		if seg.Offset > lo {
			lo = seg.Offset
		}
		hi := end
		if segEnd < hi {
			hi = segEnd
		}
		out = append(out, seg.Data[lo-seg.Offset:hi-seg.Offset]...)
	}
	return out
}
