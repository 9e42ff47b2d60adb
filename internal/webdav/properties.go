package webdav

import (
	"fmt"
	"time"
)

// Depth values for PROPFIND requests.
const (
	DepthZero     = "0"
	DepthOne      = "1"
	DepthInfinity = "infinity"
)

// validDepth reports whether d is one of the three recognized Depth values.
func validDepth(d string) bool {
	switch d {
	case DepthZero, DepthOne, DepthInfinity:
		return true
	default:
		return false
	}
}

// propfindBody is the fixed PROPFIND request body. The protocol always
// requests all properties via <D:allprop/>; there is no per-call property
// selection, since the projection in responses.go reads whatever the server
// chose to return.
const propfindBody = `<?xml version="1.0" encoding="utf-8" ?>
<D:propfind xmlns:D="DAV:"><D:allprop/></D:propfind>`

// FormatSize renders a byte count in human-readable binary units, used by
// the CLI's "ls" output.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// CompareETags compares two ETags after normalization, so differing
// quoting conventions do not produce a false mismatch.
func CompareETags(a, b string) bool {
	return normalizeETag(a) == normalizeETag(b)
}

// IsRecent reports whether modTime falls within the given duration of now.
func IsRecent(modTime time.Time, within time.Duration) bool {
	return time.Since(modTime) <= within
}

// hasPrivilege reports whether token is present among privileges.
func hasPrivilege(privileges []string, token string) bool {
	for _, p := range privileges {
		if p == token {
			return true
		}
	}
	return false
}
