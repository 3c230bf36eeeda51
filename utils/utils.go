package utils

import (
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// --- Text Sanitization ---

// Decompose, drop combining marks, recompose. "José" and "jose" must
// compare equal everywhere guest names are matched.
var quitarDiacriticos = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitizar strips diacritics and case-folds a name for comparison.
func Sanitizar(s string) string {
	limpio, _, err := transform.String(quitarDiacriticos, s)
	if err != nil {
		limpio = s
	}
	return strings.ToLower(strings.TrimSpace(limpio))
}

// --- Directory Helper ---

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
