// Package export writes rendered sheets as PNG files, ZIP bundles or one PDF.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultListName is used when a list has no usable name.
const DefaultListName = "amiibo-list"

// RemoveDiacritics removes diacritical marks from a string (e.g., "Pokémon" -> "Pokemon").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SafeName turns a list name into a file name component: diacritics are
// removed, whitespace and path separators become dashes.
func SafeName(name string) string {
	name = RemoveDiacritics(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return DefaultListName
	}
	return out
}

// PageFileName returns "<list>-<type>-page<n>.png" for the 0-based page index.
func PageFileName(list, templateType string, index int) string {
	return fmt.Sprintf("%s-%s-page%d.png", SafeName(list), templateType, index+1)
}

// PDFFileName returns "<list>-<type>-<n>pages.pdf".
func PDFFileName(list, templateType string, pages int) string {
	return fmt.Sprintf("%s-%s-%dpages.pdf", SafeName(list), templateType, pages)
}

// ZipFileName returns "<list>-<type>-pages.zip".
func ZipFileName(list, templateType string) string {
	return fmt.Sprintf("%s-%s-pages.zip", SafeName(list), templateType)
}
