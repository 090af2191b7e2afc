package util

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ContainsAnyCaseInsensitive returns true if text contains any of the needles (case-insensitive).
func ContainsAnyCaseInsensitive(text string, needles []string) bool {
	lt := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lt, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// CountMatchesCaseInsensitive returns how many needles appear in text (case-insensitive).
func CountMatchesCaseInsensitive(text string, needles []string) (int, []string) {
	lt := strings.ToLower(text)
	count := 0
	var matched []string
	for _, n := range needles {
		if strings.Contains(lt, strings.ToLower(n)) {
			count++
			matched = append(matched, n)
		}
	}
	return count, matched
}
