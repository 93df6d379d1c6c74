package formatter

import (
	"strings"
	"unicode"
)

// commodityNeedsQuotes reports whether hledger requires a commodity symbol to
// be written in double quotes: symbols containing digits, whitespace or one
// of hledger's amount syntax characters.
func commodityNeedsQuotes(c string) bool {
	if c == "" {
		return false
	}
	for _, r := range c {
		if unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(`-+.,@*;"{}=()[]/`, r) {
			return true
		}
	}
	return false
}

// quoteCommodity writes c the way hledger reads it back.
func quoteCommodity(c string) string {
	if !commodityNeedsQuotes(c) {
		return c
	}
	return `"` + strings.ReplaceAll(c, `"`, ``) + `"`
}

// isSymbol reports whether c is a single non-letter symbol such as "$" or
// "€", which hledger conventionally writes before the number.
func isSymbol(c string) bool {
	runes := []rune(c)
	return len(runes) == 1 && !unicode.IsLetter(runes[0]) && !commodityNeedsQuotes(c)
}

// sanitizeText keeps free text on a single journal line.
func sanitizeText(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
}
