package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gaurav-prasanna/cardsync/core"
)

// regTarget backs Target with a bare registry.
type regTarget struct {
	reg *core.Registry
}

func (t *regTarget) Node(spec core.NodeSpec) (*core.Node, error) {
	return t.reg.Upsert(spec)
}

// mapFetcher serves canned HTML and records what was requested.
type mapFetcher struct {
	pages     map[string]string
	requested []string
}

func (f *mapFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	f.requested = append(f.requested, url)
	html, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page at %s", url)
	}
	return &core.FetchResult{URL: url, StatusCode: 200, HTML: html}, nil
}

// noSitemap serves 404 for everything, so sitemap seeding finds nothing.
func noSitemap(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	return srv
}

func TestIngestCrawlsSameDomainLinks(t *testing.T) {
	srv := noSitemap(t)
	base := srv.URL

	fetcher := &mapFetcher{pages: map[string]string{
		base: `<html><head><title>Home</title></head><body>
			<a href="/alpha">alpha</a>
			<a href="/beta">beta</a>
			<a href="/logo.png">logo</a>
			<a href="https://elsewhere.example.com/x">off-site</a>
			<a href="mailto:x@y.z">mail</a>
		</body></html>`,
		base + "/alpha": `<html><head><title>Alpha</title></head><body><main><p>a</p></main></body></html>`,
		base + "/beta":  `<html><body><p>b</p></body></html>`,
	}}

	target := &regTarget{reg: core.NewRegistry(nil)}
	count, err := Ingest(context.Background(), base, target, fetcher, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("ingested %d pages, want 3", count)
	}

	if slices.Contains(fetcher.requested, base+"/logo.png") {
		t.Error("static asset was fetched as a page")
	}
	for _, u := range fetcher.requested {
		if !IsSameDomain(u, srv.Listener.Addr().String()) {
			t.Errorf("fetched off-site URL %s", u)
		}
	}

	root, ok := target.reg.Lookup(core.IDFromURL(base, false))
	if !ok {
		t.Fatal("root page not registered")
	}
	if root.Title != "Home" {
		t.Errorf("root title = %q", root.Title)
	}
	if len(root.Children) != 2 {
		t.Errorf("root children = %v, want the two crawled pages", root.Children)
	}

	alpha, ok := target.reg.Lookup(core.IDFromURL(base+"/alpha", false))
	if !ok {
		t.Fatal("alpha not registered")
	}
	if alpha.Title != "Alpha" {
		t.Errorf("alpha title = %q", alpha.Title)
	}
	if alpha.Content != "<p>a</p>" {
		t.Errorf("alpha content = %q, want the <main> fragment", alpha.Content)
	}

	// No <title> falls back to the de-slugged path segment.
	beta, _ := target.reg.Lookup(core.IDFromURL(base+"/beta", false))
	if beta == nil || beta.Title != "beta" {
		t.Errorf("beta = %+v, want fallback title", beta)
	}
}

func TestIngestCreatesPlaceholderAncestors(t *testing.T) {
	srv := noSitemap(t)
	page := srv.URL + "/docs/guide/intro"

	fetcher := &mapFetcher{pages: map[string]string{
		page: `<html><head><title>Intro</title></head><body><p>x</p></body></html>`,
	}}

	target := &regTarget{reg: core.NewRegistry(nil)}
	count, err := Ingest(context.Background(), page, target, fetcher, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("ingested %d pages, want 1", count)
	}

	// intro hangs off a chain of placeholders up to the site root.
	for parent, child := range map[string]string{
		srv.URL:                 srv.URL + "/docs",
		srv.URL + "/docs":       srv.URL + "/docs/guide",
		srv.URL + "/docs/guide": page,
	} {
		p, ok := target.reg.Lookup(core.IDFromURL(parent, false))
		if !ok {
			t.Fatalf("placeholder %s not registered", parent)
		}
		childID := core.IDFromURL(child, false)
		if !slices.Contains(p.Children, childID) {
			t.Errorf("%s does not contain %s: %v", parent, child, p.Children)
		}
	}

	guide, _ := target.reg.Lookup(core.IDFromURL(srv.URL+"/docs/guide", false))
	if guide == nil || guide.Title != "guide" {
		t.Errorf("placeholder title = %+v", guide)
	}
}

func TestIngestHonorsMaxPages(t *testing.T) {
	srv := noSitemap(t)
	base := srv.URL

	fetcher := &mapFetcher{pages: map[string]string{
		base:        `<html><body><a href="/a">a</a><a href="/b">b</a></body></html>`,
		base + "/a": `<html><body><p>a</p></body></html>`,
		base + "/b": `<html><body><p>b</p></body></html>`,
	}}

	target := &regTarget{reg: core.NewRegistry(nil)}
	count, err := Ingest(context.Background(), base, target, fetcher, Options{MaxPages: 2})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("ingested %d pages, want 2", count)
	}
}

func TestIngestSeedsFromSitemap(t *testing.T) {
	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<?xml version="1.0"?>
<urlset>
  <url><loc>%s/hidden</loc></url>
  <url><loc>https://elsewhere.example.com/x</loc></url>
</urlset>`, base)
	}))
	t.Cleanup(srv.Close)
	base = srv.URL

	fetcher := &mapFetcher{pages: map[string]string{
		base:             `<html><head><title>Home</title></head><body><p>no links</p></body></html>`,
		base + "/hidden": `<html><head><title>Hidden</title></head><body><p>h</p></body></html>`,
	}}

	target := &regTarget{reg: core.NewRegistry(nil)}
	count, err := Ingest(context.Background(), base, target, fetcher, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("ingested %d pages, want base plus the sitemap entry", count)
	}

	hidden, ok := target.reg.Lookup(core.IDFromURL(base+"/hidden", false))
	if !ok || hidden.Title != "Hidden" {
		t.Errorf("sitemap page not ingested: %+v", hidden)
	}
}

func TestIngestRejectsBadBaseURL(t *testing.T) {
	target := &regTarget{reg: core.NewRegistry(nil)}
	if _, err := Ingest(context.Background(), "not-a-url", target, &mapFetcher{}, Options{}); err == nil {
		t.Fatal("invalid base accepted")
	}
}
