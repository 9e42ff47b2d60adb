package downloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewByteSegments_SortsByOffsetAndComputesTotalLen(t *testing.T) {
	segs := NewByteSegments([]ByteSegment{
		{Offset: 8, Data: []byte("world")},
		{Offset: 0, Data: []byte("hello, ")},
	})

	assert.Equal(t, int64(13), segs.TotalLen())
	assert.Equal(t, []byte("hello, "), segs.ReadAt(0, 7))
}

func TestByteSegments_ReadAtSpansMultipleSegments(t *testing.T) {
	segs := NewByteSegments([]ByteSegment{
		{Offset: 0, Data: []byte("AAAA")},
		{Offset: 4, Data: []byte("BBBB")},
		{Offset: 8, Data: []byte("CCCC")},
	})

	assert.Equal(t, []byte("AAAABBBBCCCC"), segs.ReadAt(0, 12))
	assert.Equal(t, []byte("ABBBBC"), segs.ReadAt(3, 6))
}

func TestByteSegments_ReadAtClipsPastEnd(t *testing.T) {
	segs := NewByteSegments([]ByteSegment{{Offset: 0, Data: []byte("hello")}})

	assert.Equal(t, []byte("llo"), segs.ReadAt(2, 100))
	assert.Equal(t, []byte{}, segs.ReadAt(10, 5))
	assert.Equal(t, []byte{}, segs.ReadAt(0, 0))
}

func TestByteSegments_Empty(t *testing.T) {
	segs := NewByteSegments(nil)
	assert.Equal(t, int64(0), segs.TotalLen())
	assert.Equal(t, []byte{}, segs.ReadAt(0, 10))
}
