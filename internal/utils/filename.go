package utils

import (
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/vfaronov/httpheader"
)

// DefaultFilename is used when neither the caller, the server, nor the URL
// yields a usable file name.
const DefaultFilename = "downloaded_file"

// maxFilenameLen caps sanitized file names; longer names are truncated while
// keeping the extension.
const maxFilenameLen = 100

// DeriveFilename picks a file name for a download, in priority order: the
// Content-Disposition filename from the response headers (if any), then the
// last path segment of the URL, then DefaultFilename. The result is always
// sanitized.
func DeriveFilename(rawurl string, header http.Header) string {
	var candidate string

	if header != nil {
		if _, name, err := httpheader.ContentDisposition(header); err == nil && name != "" {
			candidate = name
		}
	}

	if candidate == "" {
		if parsed, err := url.Parse(rawurl); err == nil {
			base := path.Base(parsed.Path)
			if base != "." && base != "/" {
				candidate = base
			}
		}
	}

	return SanitizeFilename(candidate)
}

// SanitizeFilename maps a candidate name onto the safe character set
// [A-Za-z0-9._-], replacing everything else with underscores, and truncates
// the result to at most 100 characters while preserving the extension.
// An empty candidate yields DefaultFilename.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return DefaultFilename
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name = b.String()

	if len(name) > maxFilenameLen {
		ext := filepath.Ext(name)
		if len(ext) >= maxFilenameLen {
			ext = ""
		}
		base := name[:len(name)-len(ext)]
		name = base[:maxFilenameLen-len(ext)] + ext
	}

	if strings.Trim(name, "._-") == "" {
		return DefaultFilename
	}
	return name
}
