package webdav

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// newPropfindRequest builds a PROPFIND request for absoluteURL at the given
// depth, using the fixed allprop body.
func newPropfindRequest(ctx context.Context, absoluteURL, depth string) (*http.Request, error) {
	if !validDepth(depth) {
		return nil, fmt.Errorf("webdav: invalid depth %q", depth)
	}

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", absoluteURL, strings.NewReader(propfindBody))
	if err != nil {
		return nil, fmt.Errorf("webdav: failed to create PROPFIND request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("Depth", depth)
	req.ContentLength = int64(len(propfindBody))
	return req, nil
}

// newGetRequest builds a plain GET request for absoluteURL.
func newGetRequest(ctx context.Context, absoluteURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, absoluteURL, nil)
	if err != nil {
		return nil, fmt.Errorf("webdav: failed to create GET request: %w", err)
	}
	return req, nil
}

// newRangeGetRequest builds a GET request restricted to the inclusive byte
// interval [lo, hi].
func newRangeGetRequest(ctx context.Context, absoluteURL string, lo, hi int64) (*http.Request, error) {
	req, err := newGetRequest(ctx, absoluteURL)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", "bytes="+strconv.FormatInt(lo, 10)+"-"+strconv.FormatInt(hi, 10))
	return req, nil
}
