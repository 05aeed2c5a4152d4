package services

import (
	"path"
	"strings"
)

const maxFileNameLen = 255

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".epub": "application/epub+zip",
}

// SanitizeFileName replaces every character outside [A-Za-z0-9._-] with '_',
// collapses runs of '_' and caps the result at 255 bytes.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastUnderscore := false
	for _, r := range name {
		ok := r == '.' || r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			r = '_'
		}
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > maxFileNameLen {
		out = out[:maxFileNameLen]
	}
	return out
}

// FileExtension returns the extension of name including the dot, as written.
func FileExtension(name string) string {
	return path.Ext(name)
}

// AllowedExtension reports whether ext is .pdf or .epub, ignoring case.
func AllowedExtension(ext string) bool {
	_, ok := mimeTypes[strings.ToLower(ext)]
	return ok
}

// MimeTypeForExtension returns the content type for an allowed extension
// and "application/octet-stream" for anything else.
func MimeTypeForExtension(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}

// BuildObjectPath returns "{ownerID}/{id}{ext}".
func BuildObjectPath(ownerID, id, ext string) string {
	return ownerID + "/" + id + ext
}
