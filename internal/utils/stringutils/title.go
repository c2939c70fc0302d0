package stringutils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
	multiSpacePattern   = regexp.MustCompile(`\s+`)
)

const ellipsis = "..."

// NormalizeTitleContent flattens markdown links and collapses whitespace so a message can serve as a title.
func NormalizeTitleContent(content string) string {
	content = markdownLinkPattern.ReplaceAllString(content, "$1")
	content = multiSpacePattern.ReplaceAllString(content, " ")
	return strings.TrimSpace(content)
}

// TruncateTitle bounds a title to maxLen runes, preferring to cut on a word boundary.
// The result, ellipsis included, never exceeds maxLen runes.
func TruncateTitle(title string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}

	runes := []rune(title)
	if maxLen <= len(ellipsis) {
		return string(runes[:maxLen])
	}

	contentLimit := maxLen - len(ellipsis)
	truncated := string(runes[:contentLimit])
	minLen := contentLimit / 2

	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 && utf8.RuneCountInString(truncated[:lastSpace]) > minLen {
		truncated = strings.TrimRight(truncated[:lastSpace], " ")
	}

	return truncated + ellipsis
}

// GenerateTitle creates a clean, bounded title from a message.
func GenerateTitle(content string, maxLen int) string {
	normalized := NormalizeTitleContent(content)
	if normalized == "" {
		return ""
	}
	return TruncateTitle(normalized, maxLen)
}
