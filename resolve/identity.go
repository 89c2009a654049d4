// Package resolve implements the metadata resolution pipeline: the
// precedence-ordered heuristics that turn the noisy, inconsistently
// populated address fields of a decoded .msg into clean display names
// and valid SMTP addresses, the signature phone heuristic, and the
// attachment collector. One Process call yields exactly one normalized
// record, success or failure.
package resolve

import (
	"regexp"
	"strings"
)

var (
	emailRE        = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	bracketEmailRE = regexp.MustCompile(`<([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})>`)
	guidPrefixRE   = regexp.MustCompile(`^[0-9a-fA-F]{10,}-(.+)$`)
	cnSplitRE      = regexp.MustCompile(`(?i)/cn=`)
)

// IsDirectoryID reports whether text is a legacy Exchange X.500
// distinguished name (an address-book reference) rather than a routable
// address.
func IsDirectoryID(text string) bool {
	if text == "" {
		return false
	}
	t := strings.ToUpper(text)
	return strings.HasPrefix(t, "/O=") ||
		strings.HasPrefix(t, "/CN=") ||
		strings.Contains(t, "/O=EXCHANGELABS")
}

// CleanDisplayName recovers a human-readable name from a directory
// identifier by taking the segment after the last "/cn=" marker and
// stripping a long hex GUID prefix ("3948593485ab-john.doe") when one is
// present. Non-identifier input is returned unchanged.
func CleanDisplayName(text string) string {
	if !IsDirectoryID(text) {
		return text
	}
	parts := cnSplitRE.Split(text, -1)
	if len(parts) < 2 {
		return text
	}
	namePart := parts[len(parts)-1]
	if m := guidPrefixRE.FindStringSubmatch(namePart); m != nil {
		namePart = m[1]
	}
	return namePart
}

// ExtractEmail returns the first valid SMTP address recoverable from
// text, or "" when there is none. A mailto: prefix is stripped, an
// address inside angle brackets wins over a bare one, and a directory
// identifier is never returned as an address.
func ExtractEmail(text string) string {
	if text == "" {
		return ""
	}
	clean := strings.TrimSpace(text)
	if len(clean) >= 7 && strings.EqualFold(clean[:7], "mailto:") {
		clean = clean[7:]
	}

	// A pure DN with no @ can never hold an address.
	if IsDirectoryID(clean) && !strings.Contains(clean, "@") {
		return ""
	}

	if m := bracketEmailRE.FindStringSubmatch(clean); m != nil && !IsDirectoryID(m[1]) {
		return m[1]
	}
	if m := emailRE.FindString(clean); m != "" && !IsDirectoryID(m) {
		return m
	}
	return ""
}
