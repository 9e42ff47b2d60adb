// Package remotefile describes a single entry returned by a WebDAV PROPFIND
// and builds a Downloader for it.
package remotefile

import (
	"net/http"
	"time"

	"github.com/rtx750ti/webdav-fs/internal/auth"
	"github.com/rtx750ti/webdav-fs/internal/downloader"
	"github.com/rtx750ti/webdav-fs/internal/webdav"
)

// Data is the typed projection of one WebDAV multistatus response entry.
type Data struct {
	AbsoluteURL  string
	Href         string
	Name         string
	IsDir        bool
	Size         *int64
	LastModified *time.Time
	MimeType     string
	Owner        string
	ETag         string
	Privileges   []string
}

// File pairs a remote descriptor with the credentials needed to act on it.
type File struct {
	Data *Data
	auth *auth.Handle
}

// FromEntry converts a webdav.Entry (already resolved against absoluteURL)
// into a File carrying the auth handle used to build its Downloader.
func FromEntry(entry *webdav.Entry, absoluteURL string, handle *auth.Handle) *File {
	data := &Data{
		AbsoluteURL: absoluteURL,
		Href:        entry.Href,
		Name:        entry.Name,
		IsDir:       entry.IsDir,
		Size:        entry.Size,
		MimeType:    entry.MimeType,
		Owner:       entry.Owner,
		ETag:        entry.ETag,
		Privileges:  entry.Privileges,
	}
	if entry.LastModified != nil {
		if t, ok := parseLastModified(*entry.LastModified); ok {
			data.LastModified = &t
		}
	}
	return &File{Data: data, auth: handle}
}

// BuildDownloader returns a Downloader preconfigured for this file's URL,
// size, and directory status. Callers still choose SaveTo/OutputBytes/
// Chunked before calling Send.
func (f *File) BuildDownloader() *downloader.Downloader {
	return downloader.New(f.httpClient(), f.Data.AbsoluteURL, f.Data.Size, f.Data.IsDir)
}

func (f *File) httpClient() *http.Client {
	if f.auth == nil {
		return http.DefaultClient
	}
	return f.auth.Client()
}

// HasPrivilege reports whether the current user's privilege set on this
// entry includes token ("read", "write", "all", "read_acl", "write_acl").
func (f *File) HasPrivilege(token string) bool {
	for _, p := range f.Data.Privileges {
		if p == token {
			return true
		}
	}
	return false
}

func parseLastModified(s string) (time.Time, bool) {
	formats := []string{time.RFC1123, time.RFC1123Z, time.RFC3339}
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
