package webdav

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Multistatus is a faithful structural projection of a WebDAV
// <D:multistatus> document. Namespaces are stripped to local names by the
// XML decoder's default matching (it compares only the element's local
// name), so this parses responses regardless of which namespace prefix the
// server chose.
type Multistatus struct {
	XMLName   xml.Name   `xml:"multistatus"`
	Responses []Response `xml:"response"`
}

// Response is one <D:response> entry: an href plus zero or more propstat
// blocks, one per distinct status the server chose to report properties
// under.
type Response struct {
	Href      string     `xml:"href"`
	Propstats []Propstat `xml:"propstat"`
}

// Propstat pairs a property bag with the HTTP status line it was returned
// under.
type Propstat struct {
	Prop   Prop   `xml:"prop"`
	Status string `xml:"status"`
}

// Prop is the WebDAV property bag this parser understands. Unknown elements
// are ignored by encoding/xml's default "skip unmatched" behavior.
type Prop struct {
	DisplayName   string             `xml:"displayname"`
	ContentLength string             `xml:"getcontentlength"`
	LastModified  string             `xml:"getlastmodified"`
	ContentType   string             `xml:"getcontenttype"`
	ETag          string             `xml:"getetag"`
	Owner         string             `xml:"owner"`
	ResourceType  ResourceType       `xml:"resourcetype"`
	CurrentUserPrivilegeSet PrivilegeSet `xml:"current-user-privilege-set"`
}

// ResourceType carries the <D:collection/> marker that distinguishes
// directories from files.
type ResourceType struct {
	Collection *struct{} `xml:"collection"`
}

// PrivilegeSet is the <D:current-user-privilege-set> element: zero or more
// <D:privilege> entries, each wrapping exactly one recognized token element.
type PrivilegeSet struct {
	Privileges []Privilege `xml:"privilege"`
}

// Privilege holds the recognized WebDAV ACL privilege markers. At most one
// is expected to be present per entry in practice, but the struct does not
// enforce that — extractPrivileges flattens whichever are set.
type Privilege struct {
	Read      *struct{} `xml:"read"`
	Write     *struct{} `xml:"write"`
	All       *struct{} `xml:"all"`
	ReadACL   *struct{} `xml:"read-acl"`
	WriteACL  *struct{} `xml:"write-acl"`
}

// parseMultistatus decodes a WebDAV multistatus response body.
func parseMultistatus(body io.Reader) (*Multistatus, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("webdav: failed to read response body: %w", err)
	}

	var ms Multistatus
	if err := xml.Unmarshal(data, &ms); err != nil {
		return nil, fmt.Errorf("webdav: failed to parse multistatus XML: %w", err)
	}
	return &ms, nil
}

// isSuccessStatus reports whether a WebDAV "HTTP/1.1 200 OK"-shaped status
// line carries a 2xx code.
func isSuccessStatus(status string) bool {
	fields := strings.Fields(status)
	for _, f := range fields {
		if code, err := strconv.Atoi(f); err == nil {
			return code >= 200 && code <= 299
		}
	}
	return false
}

// firstSuccessfulPropstat returns the first Propstat in r carrying a 2xx
// status, per the rule that only that entry contributes to the projected
// descriptor; later propstats (e.g. describing properties the server could
// not supply) are discarded.
func firstSuccessfulPropstat(r Response) (Prop, bool) {
	for _, ps := range r.Propstats {
		if isSuccessStatus(ps.Status) {
			return ps.Prop, true
		}
	}
	return Prop{}, false
}

// shouldDropResponse reports whether r describes the queried collection
// itself rather than one of its members, by comparing hrefs with trailing
// slashes normalized away. This is the href-keyed rule called for in the
// design notes rather than an unconditional "drop index 0", since some
// servers omit the collection entry for Depth:0 or order responses
// differently.
func shouldDropResponse(r Response, requestedPath string, responseIndex, totalResponses int) bool {
	if totalResponses <= 1 {
		return false
	}
	normResp := strings.TrimSuffix(responsePath(r.Href), "/")
	normReq := strings.TrimSuffix(responsePath(requestedPath), "/")
	if normResp == normReq {
		return true
	}
	// Fall back to positional convention (first entry) only when the href
	// comparison has nothing to compare: one side has an empty path (an
	// empty href, or a URL with no path component).
	if (normResp == "" || normReq == "") && responseIndex == 0 {
		return true
	}
	return false
}

// responsePath extracts the URL path component from s, whether s is a
// server-relative href or a full absolute URL; this is what lets
// shouldDropResponse compare a response's href (almost always relative)
// against a requested path that may have been passed in as either.
func responsePath(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	return u.Path
}

func decodeName(prop Prop, href string) string {
	if prop.DisplayName != "" {
		return prop.DisplayName
	}
	trimmed := strings.TrimSuffix(href, "/")
	idx := strings.LastIndex(trimmed, "/")
	segment := trimmed
	if idx >= 0 {
		segment = trimmed[idx+1:]
	}
	if decoded, err := url.PathUnescape(segment); err == nil {
		return decoded
	}
	return segment
}

// normalizeETag trims whitespace then strips one pair of surrounding double
// quotes, matching how WebDAV servers conventionally quote strong ETags.
func normalizeETag(etag string) string {
	etag = strings.TrimSpace(etag)
	if len(etag) >= 2 && strings.HasPrefix(etag, `"`) && strings.HasSuffix(etag, `"`) {
		return etag[1 : len(etag)-1]
	}
	return etag
}

// extractPrivileges flattens a PrivilegeSet into tokens drawn from
// {read, write, all, read_acl, write_acl}, in declaration order.
func extractPrivileges(set PrivilegeSet) []string {
	var tokens []string
	for _, p := range set.Privileges {
		if p.Read != nil {
			tokens = append(tokens, "read")
		}
		if p.Write != nil {
			tokens = append(tokens, "write")
		}
		if p.All != nil {
			tokens = append(tokens, "all")
		}
		if p.ReadACL != nil {
			tokens = append(tokens, "read_acl")
		}
		if p.WriteACL != nil {
			tokens = append(tokens, "write_acl")
		}
	}
	return tokens
}

// parseHTTPDate parses a WebDAV getlastmodified value, which RFC 4918
// specifies as an RFC 2822 (RFC 1123) date, tolerating the handful of
// format variants real servers emit.
func parseHTTPDate(s string) (time.Time, bool) {
	formats := []string{
		time.RFC1123,
		time.RFC1123Z,
		"Mon, 2 Jan 2006 15:04:05 GMT",
		"Mon, 2 Jan 2006 15:04:05 MST",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
