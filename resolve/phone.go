// phone.go locates a signature-block phone number in the trailing
// window of a message body.

package resolve

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// signatureWindow is how many trailing characters of the body are
// assumed to contain the sender's signature.
const signatureWindow = 2000

var (
	// labeledPhoneRE matches "M: 0412 345 678", "Tel. +61 2 9999 0000"
	// and similar labeled numbers.
	labeledPhoneRE = regexp.MustCompile(`(?i)(?:M|P|T|Mob|Mobile|Ph|Tel)[.:\s]+([+\d\s().-]{8,20})(?:\s|$|<)`)

	// defaultLoosePhoneRE is the unlabeled fallback. It is deliberately
	// narrow (Australian mobile and landline prefixes) so long numeric
	// IDs in URLs are not mistaken for numbers.
	defaultLoosePhoneRE = regexp.MustCompile(`(?:\+61|04|02|03)\d{2}[-. ]?\d{3}[-. ]?\d{3,4}\b`)
)

// ExtractPhone scans the signature window of body for a phone number.
// The labeled pattern is tried first; loose is the fallback pattern, with
// the package default used when nil. Returns "" when neither matches,
// never a partial or guessed value.
func ExtractPhone(body string, loose *regexp.Regexp) string {
	if body == "" {
		return ""
	}
	window := body
	if utf8.RuneCountInString(window) > signatureWindow {
		runes := []rune(window)
		window = string(runes[len(runes)-signatureWindow:])
	}

	if m := labeledPhoneRE.FindStringSubmatch(window); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loose == nil {
		loose = defaultLoosePhoneRE
	}
	if m := loose.FindString(window); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}
