package webdav

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidDepth(t *testing.T) {
	assert.True(t, validDepth(DepthZero))
	assert.True(t, validDepth(DepthOne))
	assert.True(t, validDepth(DepthInfinity))
	assert.False(t, validDepth("2"))
	assert.False(t, validDepth(""))
}

func TestPropfindBody_ContainsAllprop(t *testing.T) {
	assert.True(t, strings.Contains(propfindBody, "allprop"))
	assert.True(t, strings.Contains(propfindBody, "propfind"))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size     int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatSize(tt.size), "size %d", tt.size)
	}
}

func TestCompareETags_IgnoresQuoting(t *testing.T) {
	assert.True(t, CompareETags(`"abc123"`, "abc123"))
	assert.True(t, CompareETags(" \"abc123\" ", `"abc123"`))
	assert.False(t, CompareETags(`"abc123"`, `"def456"`))
}

func TestIsRecent(t *testing.T) {
	assert.True(t, IsRecent(time.Now().Add(-time.Minute), time.Hour))
	assert.False(t, IsRecent(time.Now().Add(-2*time.Hour), time.Hour))
}

func TestHasPrivilege(t *testing.T) {
	privileges := []string{"read", "write"}
	assert.True(t, hasPrivilege(privileges, "read"))
	assert.False(t, hasPrivilege(privileges, "all"))
}
