// Package formats provides input format detection for Outlook .msg
// containers and filename sanitation shared by the CLI and the export
// bundler. Detection checks content (magic bytes) first and falls back
// to extension matching.
package formats

import (
	"bytes"
	"path/filepath"
	"strings"
)

// cfbMagic is the OLE2 compound file signature every .msg file starts with.
var cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// IsMSG returns true if data begins with the OLE2 compound file magic.
// The same container wraps legacy .doc and .xls files too, so a positive
// match means "plausibly a .msg", not a guarantee; the decoder makes the
// final call.
func IsMSG(data []byte) bool {
	if len(data) < len(cfbMagic) {
		return false
	}
	return bytes.Equal(data[:len(cfbMagic)], cfbMagic)
}

// Accepts reports whether a file should be fed to the decoder, by
// content first and extension second.
func Accepts(filename string, data []byte) bool {
	if IsMSG(data) {
		return true
	}
	return strings.ToLower(filepath.Ext(filename)) == ".msg"
}

// SanitizeFilename replaces characters that are unsafe in file paths
// and strips control characters to prevent header injection.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1 // drop control characters
		}
		return r
	}, name)
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "_")
	}
	if name == "" {
		name = "unnamed"
	}
	return name
}
