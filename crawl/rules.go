// Package crawl — URL rules.
// Helpers to filter, normalize, and relate page URLs during ingestion.
package crawl

import (
	"net/url"
	"path"
	"strings"
)

// staticExtensions are file extensions ingested as resources (if
// referenced from content) rather than crawled as pages.
var staticExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".ico": true, ".bmp": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
	".mp4": true, ".webm": true, ".mp3": true, ".wav": true,
	".zip": true, ".tar": true, ".gz": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// IsSameDomain checks if the given URL belongs to the specified domain.
func IsSameDomain(rawURL string, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Host == domain
}

// IsStaticAsset checks if a URL points to a static asset (image, CSS,
// JS, archive, ...).
func IsStaticAsset(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return staticExtensions[ext]
}

// NormalizeURL strips fragments and trailing slashes for deduplication.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String()
}

// ParentURL returns the URL one path level above rawURL, or "" when the
// URL is already at the site root. The result is normalized; query
// strings do not survive the climb.
func ParentURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	p := strings.TrimSuffix(parsed.Path, "/")
	if p == "" {
		return ""
	}

	idx := strings.LastIndex(p, "/")
	if idx <= 0 {
		// Direct child of the root page.
		return parsed.Scheme + "://" + parsed.Host
	}
	return parsed.Scheme + "://" + parsed.Host + p[:idx]
}

// LastSegment returns the final path segment of a URL, de-slugged for
// use as a fallback title. The site root yields the host name.
func LastSegment(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	p := strings.TrimSuffix(parsed.Path, "/")
	if p == "" {
		return parsed.Host
	}
	seg := p[strings.LastIndex(p, "/")+1:]
	seg = strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	return strings.TrimSpace(seg)
}
