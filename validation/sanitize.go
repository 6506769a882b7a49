package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field length limits; longer values are truncated, not rejected
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxTagLength         = 20
	MaxTags              = 10
	MaxCategoryLength    = 50
)

var markupReplacer = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")

var (
	scriptBlockPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	scriptTagPattern   = regexp.MustCompile(`(?i)</?script\b[^>]*>`)
	jsSchemePattern    = regexp.MustCompile(`(?i)javascript\s*:`)
	eventAttrPattern   = regexp.MustCompile(`(?i)(<[^>]*?[\s"'/])on[a-z]+\s*=`)
)

// SanitizeText strips markup characters, trims and truncates to maxLen runes
func SanitizeText(s string, maxLen int) string {
	s = markupReplacer.Replace(s)
	return truncate(strings.TrimSpace(s), maxLen)
}

// SanitizeAppName cleans an app name
func SanitizeAppName(s string) string {
	return SanitizeText(s, MaxNameLength)
}

// SanitizeCategory cleans a category name
func SanitizeCategory(s string) string {
	return SanitizeText(s, MaxCategoryLength)
}

// SanitizeTags cleans each tag, drops empty ones and keeps at most MaxTags
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, min(len(tags), MaxTags))
	for _, tag := range tags {
		if len(out) == MaxTags {
			break
		}
		if tag = SanitizeText(tag, MaxTagLength); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// SanitizeDescription removes script tags, javascript: prefixes and inline
// event handler attributes, then truncates.
func SanitizeDescription(s string) string {
	// repeat until stable so removals cannot splice a new pattern together
	for {
		cleaned := scriptBlockPattern.ReplaceAllString(s, "")
		cleaned = scriptTagPattern.ReplaceAllString(cleaned, "")
		cleaned = jsSchemePattern.ReplaceAllString(cleaned, "")
		cleaned = eventAttrPattern.ReplaceAllString(cleaned, "${1}")
		if cleaned == s {
			break
		}
		s = cleaned
	}
	return truncate(strings.TrimSpace(s), MaxDescriptionLength)
}

// truncate cuts s to at most n runes, dropping trailing space left by the cut
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}
