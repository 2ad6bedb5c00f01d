package crawler

import (
	"net/url"
	"strings"
)

// slugForURL derives the dedup slug from the last non-empty path segment
// of the article URL, falling back to the title. Slugs from the same
// listing structure collide deliberately: the last-seen entry wins.
func slugForURL(rawURL, title string) string {
	if parsed, err := url.Parse(rawURL); err == nil {
		segments := strings.Split(parsed.Path, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if segment := strings.TrimSpace(segments[i]); segment != "" {
				return Slugify(segment)
			}
		}
	}
	return Slugify(title)
}

// Slugify lowercases text and reduces it to hyphen-separated alphanumeric
// runs.
func Slugify(text string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
