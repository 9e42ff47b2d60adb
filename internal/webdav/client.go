package webdav

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/rtx750ti/webdav-fs/internal/auth"
)

// Entry is the typed projection of one multistatus response entry. It
// carries everything package remotefile needs to build a File, but stays
// free of the downloader/remotefile import so this package never depends
// on them.
type Entry struct {
	Href         string
	Name         string
	IsDir        bool
	Size         *int64
	LastModified *string
	MimeType     string
	Owner        string
	ETag         string
	Privileges   []string
}

// Client issues PROPFIND requests against a WebDAV endpoint and projects
// the multistatus responses into Entry values.
type Client struct {
	auth *auth.Handle
}

// New wraps an authenticated handle for PROPFIND/GET use.
func New(handle *auth.Handle) *Client {
	return &Client{auth: handle}
}

// JoinPath resolves relPath against the client's base URL, rejecting any
// result that would escape the base (e.g. via "../" segments, or an
// absolute href pointing at a different host), and returns the absolute
// URL string to request.
func (c *Client) JoinPath(relPath string) (string, error) {
	base := c.auth.BaseURL()

	ref, err := url.Parse(relPath)
	if err != nil {
		return "", fmt.Errorf("webdav: invalid path %q: %w", relPath, err)
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != base.Scheme || resolved.Host != base.Host {
		return "", fmt.Errorf("webdav: path %q escapes the configured server", relPath)
	}

	cleaned := path.Clean(resolved.Path)
	if !strings.HasPrefix(cleaned+"/", path.Clean(base.Path)+"/") {
		return "", fmt.Errorf("webdav: path %q escapes the configured base path", relPath)
	}

	return resolved.String(), nil
}

// Propfind issues a PROPFIND against absoluteURL at the given depth and
// returns the parsed multistatus document.
func (c *Client) Propfind(ctx context.Context, absoluteURL, depth string) (*Multistatus, error) {
	req, err := newPropfindRequest(ctx, absoluteURL, depth)
	if err != nil {
		return nil, err
	}

	resp, err := c.auth.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("webdav: PROPFIND request failed: %w", err)
	}
	defer resp.Body.Close()

	// Some servers answer PROPFIND with a plain 2xx instead of 207 when the
	// request resolves to a single resource; treat either as success.
	if resp.StatusCode != http.StatusMultiStatus && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return nil, NewStatusError(resp.StatusCode, "PROPFIND", absoluteURL)
	}

	return parseMultistatus(resp.Body)
}

// Stat returns the Entry describing exactly the resource at relPath, via a
// Depth:0 PROPFIND.
func (c *Client) Stat(ctx context.Context, relPath string) (*Entry, error) {
	absoluteURL, err := c.JoinPath(relPath)
	if err != nil {
		return nil, err
	}

	ms, err := c.Propfind(ctx, absoluteURL, DepthZero)
	if err != nil {
		return nil, err
	}
	entries := projectEntries(ms, absoluteURL, false)
	if len(entries) == 0 {
		return nil, NewStatusError(http.StatusNotFound, "PROPFIND", absoluteURL)
	}
	return entries[0], nil
}

// ListDirectory returns the entries immediately contained in the
// collection at relPath, via a Depth:1 PROPFIND. The collection itself is
// excluded from the result.
func (c *Client) ListDirectory(ctx context.Context, relPath string) ([]*Entry, error) {
	absoluteURL, err := c.JoinPath(relPath)
	if err != nil {
		return nil, err
	}

	ms, err := c.Propfind(ctx, absoluteURL, DepthOne)
	if err != nil {
		return nil, err
	}
	return projectEntries(ms, absoluteURL, true), nil
}

// AbsoluteURL exposes JoinPath for callers (the CLI, remotefile) that need
// to resolve a path without issuing a request.
func (c *Client) AbsoluteURL(relPath string) (string, error) {
	return c.JoinPath(relPath)
}

// HTTPClient returns the underlying authenticated client, for building a
// Downloader.
func (c *Client) HTTPClient() *http.Client {
	return c.auth.Client()
}

// projectEntries turns a multistatus document into Entry values, applying
// the collection-self-entry drop rule when dropSelf is set (Depth:1
// listings report the directory itself as one of the responses).
func projectEntries(ms *Multistatus, requestedPath string, dropSelf bool) []*Entry {
	entries := make([]*Entry, 0, len(ms.Responses))
	total := len(ms.Responses)

	for i, r := range ms.Responses {
		if dropSelf && shouldDropResponse(r, requestedPath, i, total) {
			continue
		}

		prop, ok := firstSuccessfulPropstat(r)
		if !ok {
			continue
		}

		entry := &Entry{
			Href:       r.Href,
			Name:       decodeName(prop, r.Href),
			IsDir:      prop.ResourceType.Collection != nil,
			MimeType:   prop.ContentType,
			Owner:      prop.Owner,
			ETag:       normalizeETag(prop.ETag),
			Privileges: extractPrivileges(prop.CurrentUserPrivilegeSet),
		}

		if prop.ContentLength != "" {
			if n, err := strconv.ParseInt(prop.ContentLength, 10, 64); err == nil {
				entry.Size = &n
			}
		}
		if prop.LastModified != "" {
			if _, ok := parseHTTPDate(prop.LastModified); ok {
				lm := prop.LastModified
				entry.LastModified = &lm
			}
		}

		entries = append(entries, entry)
	}

	return entries
}
