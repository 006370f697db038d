package filestore

import (
	"net/url"
	"strings"
)

// Storage layout: one file per reviewed source path under
// <workspace>/.review/files/, named by percent-encoding the path (with
// backslashes normalized to forward slashes) plus a .jsonl.gz suffix.
const (
	reviewDirName = ".review"
	filesDirName  = "files"
	storageSuffix = ".jsonl.gz"
	upperHex      = "0123456789ABCDEF"
)

// encodeComponent percent-encodes a source path for use as a storage
// filename. The escape set matches JavaScript's encodeURIComponent
// byte-for-byte (unreserved: alphanumerics and - _ . ! ~ * ' ( )), because
// existing storage directories were written by tooling using exactly that
// encoding.
func encodeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// normalizePath converts backslashes to forward slashes so Windows-style
// paths map to the same storage file as their slash form.
func normalizePath(file string) string {
	return strings.ReplaceAll(file, `\`, "/")
}

// storageName returns the storage filename for a source path.
func storageName(file string) string {
	return encodeComponent(normalizePath(file)) + storageSuffix
}

// DecodeStorageName recovers the source path from a storage filename.
// Returns false for names that are not valid collection files.
func DecodeStorageName(name string) (string, bool) {
	if !strings.HasSuffix(name, storageSuffix) {
		return "", false
	}
	decoded, err := url.PathUnescape(strings.TrimSuffix(name, storageSuffix))
	if err != nil {
		return "", false
	}
	return decoded, true
}
