// Package crawl — site ingestion.
// Walks a website breadth-first, upserting each page as a node and
// relating pages by URL path structure, so the classifier later sees a
// real hierarchy instead of a flat page list. Sitemap entries, when
// available, seed the queue before link crawling.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/gaurav-prasanna/cardsync/core"
)

// defaultMaxPages bounds a crawl to avoid runaway ingestion.
const defaultMaxPages = 100

// Target receives ingested pages. *sync.Sync satisfies it.
type Target interface {
	Node(spec core.NodeSpec) (*core.Node, error)
}

// Options tunes one Ingest run.
type Options struct {
	// MaxPages caps the number of pages fetched (default 100).
	MaxPages int
	// Logger receives per-page progress at debug level.
	Logger *log.Logger
}

// Ingest crawls baseURL and upserts every same-domain page into target.
// Pages link to their path-structure parent; missing intermediate levels
// get placeholder nodes so the tree stays connected. Returns the number
// of pages ingested.
func Ingest(ctx context.Context, baseURL string, target Target, fetcher core.Fetcher, opts Options) (int, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return 0, fmt.Errorf("invalid base URL %q", baseURL)
	}
	domain := parsed.Host

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	queue := NewQueue()
	queue.Add(NormalizeURL(baseURL))

	// Sitemap entries join the queue up front; link crawling fills in
	// whatever the sitemap misses.
	for _, u := range sitemapURLs(ctx, parsed.Scheme, domain) {
		queue.Add(u)
	}

	ingested := 0
	for queue.HasNext() && ingested < maxPages {
		pageURL := queue.Next()

		result, err := fetcher.Fetch(ctx, pageURL)
		if err != nil {
			// Skip failed pages; an unreachable page must not block the
			// rest of the crawl.
			logger.Debug("skipping page", "url", pageURL, "err", err)
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
		if err != nil {
			logger.Debug("skipping unparsable page", "url", pageURL, "err", err)
			continue
		}

		if err := ingestPage(target, pageURL, doc, logger); err != nil {
			return ingested, err
		}
		ingested++
		logger.Debug("ingested page", "url", pageURL, "n", ingested)

		for _, link := range pageLinks(doc, pageURL) {
			if IsSameDomain(link, domain) && !IsStaticAsset(link) {
				queue.Add(NormalizeURL(link))
			}
		}
	}

	return ingested, nil
}

// ingestPage upserts one page and wires it to its path-structure parent,
// creating placeholder ancestors as needed.
func ingestPage(target Target, pageURL string, doc *goquery.Document, logger *log.Logger) error {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = LastSegment(pageURL)
	}

	node, err := target.Node(core.NodeSpec{
		URL:     pageURL,
		Title:   title,
		Content: pageContent(doc),
	})
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", pageURL, err)
	}

	return attachToParent(target, node, pageURL, logger)
}

// attachToParent walks up the URL path, upserting placeholder nodes for
// levels that have no page of their own, and links each level to the one
// above it.
func attachToParent(target Target, node *core.Node, pageURL string, logger *log.Logger) error {
	child := node
	for u := pageURL; ; {
		parentRaw := ParentURL(u)
		if parentRaw == "" {
			return nil
		}
		parentURL := NormalizeURL(parentRaw)

		parent, err := target.Node(core.NodeSpec{
			URL:   parentURL,
			Title: LastSegment(parentURL),
		})
		if err != nil {
			return fmt.Errorf("creating placeholder for %s: %w", parentURL, err)
		}

		if err := parent.AddChild(child, false); err != nil {
			// A cycle here means the site's URL space is degenerate;
			// keep the page reachable from wherever it already is.
			logger.Debug("not linking page", "url", pageURL, "err", err)
			return nil
		}

		// Stop as soon as we reach a level that was already connected.
		if len(parent.Parents) > 0 || len(parent.Children) > 1 {
			return nil
		}
		child = parent
		u = parentURL
	}
}

// pageContent selects the page's main content fragment: <main> when
// present, then <article>, then <body>.
func pageContent(doc *goquery.Document) string {
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content, err := sel.First().Html()
			if err == nil && strings.TrimSpace(content) != "" {
				return content
			}
		}
	}
	return ""
}

// pageLinks extracts all hyperlink targets, resolved against the page URL.
func pageLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if resolved := resolveLink(href, base); resolved != "" {
			links = append(links, resolved)
		}
	})
	return links
}

// resolveLink resolves a potentially relative URL against a base,
// dropping mail, script, and fragment-only targets.
func resolveLink(href string, base *url.URL) string {
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}

// --- sitemap ---

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapIndex struct {
	URLs []sitemapURL `xml:"url"`
}

// sitemapURLs fetches and parses /sitemap.xml, returning same-domain
// page URLs. Any failure just means an empty seed list.
func sitemapURLs(ctx context.Context, scheme, domain string) []string {
	sitemapAddr := fmt.Sprintf("%s://%s/sitemap.xml", scheme, domain)

	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapAddr, nil)
	if err != nil {
		return nil
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var sitemap sitemapIndex
	if err := xml.Unmarshal(body, &sitemap); err != nil {
		return nil
	}

	var urls []string
	for _, u := range sitemap.URLs {
		if IsSameDomain(u.Loc, domain) && !IsStaticAsset(u.Loc) {
			urls = append(urls, NormalizeURL(u.Loc))
		}
	}
	return urls
}
