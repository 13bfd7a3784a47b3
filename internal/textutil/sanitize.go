// Package textutil normalizes text before it enters a document writer.
// Curly quotes, long dashes, and stray control characters from pasted
// Word content otherwise corrupt the generated output.
package textutil

import "strings"

// specialChars maps typographic and legacy cp1252 punctuation to safe
// ASCII equivalents.
var specialChars = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"–", "-", // en dash
	"—", "--", // em dash
	" ", " ", // non-breaking space
	"\x91", "'",
	"\x92", "'",
	"\x93", `"`,
	"\x94", `"`,
	"\x96", "-",
	"\x97", "--",
)

// Sanitize normalizes typographic punctuation and drops control
// characters (NUL included) that document writers cannot represent.
// Newlines and tabs survive; everything else below 0x20 is removed.
func Sanitize(s string) string {
	s = specialChars.Replace(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
