package learning

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinKeywordLength is the shortest token kept as a keyword
const MinKeywordLength = 3

var separatorPattern = regexp.MustCompile(`[-_\s.]+`)

// ExtractKeywords splits a filename's stem into lowercase keywords.
// Tokens shorter than MinKeywordLength or made only of digits are dropped.
func ExtractKeywords(filename string) []string {
	stem := strings.ToLower(fileStem(filename))

	var keywords []string
	for _, token := range separatorPattern.Split(stem, -1) {
		if utf8.RuneCountInString(token) < MinKeywordLength || isNumeric(token) {
			continue
		}
		keywords = append(keywords, token)
	}

	return keywords
}

// fileStem strips directories and the final extension; dot-files keep their name
func fileStem(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	ext := filepath.Ext(base)
	if ext == base {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
