// normalize.go — Message normalization via ordered placeholder substitution.
// Replaces volatile tokens (UUIDs, IPs, hex literals, integer runs) so that
// log lines differing only in those tokens produce identical signatures.
package parse

import (
	"regexp"
	"strings"
)

// Substitution order matters: UUIDs contain digit substrings and dotted IPv4
// quads contain integer runs, so both must be replaced before the catch-all
// integer pattern runs.
var (
	uuidRegex = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	ipv4Regex = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	hexRegex  = regexp.MustCompile(`\b0[xX][0-9a-fA-F]+\b`)
	numRegex  = regexp.MustCompile(`\d+`)
)

// Normalize replaces volatile tokens with stable placeholders and trims
// surrounding whitespace.
func Normalize(s string) string {
	s = uuidRegex.ReplaceAllString(s, "<uuid>")
	s = ipv4Regex.ReplaceAllString(s, "<ip>")
	s = hexRegex.ReplaceAllString(s, "<hex>")
	s = numRegex.ReplaceAllString(s, "<num>")
	return strings.TrimSpace(s)
}
