package match

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SanitizeName canonicalizes scorer-entered team and player names: NFC so
// visually identical entries compare equal, whitespace collapsed. Returns
// "" when nothing printable remains.
func SanitizeName(name string) string {
	name = norm.NFC.String(name)
	return strings.Join(strings.Fields(name), " ")
}
