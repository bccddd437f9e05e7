// Package resolve rewrites the HTML of finalized cards: media and link
// references become stable, de-duplicated resource paths, and links
// between ingested documents become card-to-card references.
//
// It must run after classification and repair are complete for every
// node, because the link rewrite compares against every node's final
// origin URL.
package resolve

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/gaurav-prasanna/cardsync/core"
)

// Config wires a Resolver to one finalize session.
type Config struct {
	// Resources maps resource identity → local file path. Shared across
	// every card of the session so identical references resolve once.
	Resources map[string]string
	// Dest returns the local destination path for a resource identity.
	Dest func(resourceID string) string
	// Downloader, when non-nil, decides whether and how to fetch remote
	// references (it typically carries auth headers the engine knows
	// nothing about).
	Downloader core.Downloader
	// Compare, when non-nil, replaces string equality for matching link
	// addresses against node origin URLs.
	Compare core.LinkComparator
	// Logger receives per-reference decisions at debug level.
	Logger *log.Logger
}

// Resolver rewrites card content for one session.
type Resolver struct {
	reg *core.Registry
	cfg Config
}

// New creates a Resolver over the given registry. The resource map in
// cfg must be scoped to a single finalize session.
func New(reg *core.Registry, cfg Config) *Resolver {
	if cfg.Resources == nil {
		cfg.Resources = make(map[string]string)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Resolver{reg: reg, cfg: cfg}
}

// Run normalizes the content of every card in registry order.
func (r *Resolver) Run() error {
	for _, n := range r.reg.Nodes() {
		if err := r.CleanupNode(n); err != nil {
			return err
		}
	}
	return nil
}

// CleanupNode rewrites one node's content. Nodes that are not cards, or
// cards without content, are left alone. The stored content is replaced
// only if at least one attribute value actually changed.
func (r *Resolver) CleanupNode(n *core.Node) error {
	if n.Type != core.TypeCard || n.Content == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(n.Content))
	if err != nil {
		return fmt.Errorf("parsing content of %s: %w", n.ID, err)
	}

	updated := false
	// Per-card rewrite cache: two references to the identical literal
	// value always resolve identically and trigger one decision.
	rewrites := make(map[string]string)

	// Images and iframes both carry src attributes that may reference
	// files to download, or URLs to fix up (e.g. make absolute).
	doc.Find("[src]").Each(func(_ int, s *goquery.Selection) {
		if r.checkElement(n, s, "src", rewrites) {
			updated = true
		}
	})

	// Links to other ingested documents become card references; the rest
	// are treated as attachments like src values.
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}

		if id, ok := r.matchNode(n.URL, href); ok {
			s.SetAttr("href", "cards/"+id)
			updated = true
			return
		}

		if r.checkElement(n, s, "href", rewrites) {
			updated = true
		}
	})

	if updated {
		out, err := doc.Find("body").Html()
		if err != nil {
			return fmt.Errorf("serializing content of %s: %w", n.ID, err)
		}
		n.Content = out
	}
	return nil
}

// matchNode resolves href against the card's origin and compares the
// result to every node's origin URL in registry order. First match wins.
func (r *Resolver) matchNode(base, href string) (string, bool) {
	abs := joinURL(base, href)
	for _, other := range r.reg.Nodes() {
		if other.URL == "" {
			continue
		}
		if (r.cfg.Compare != nil && r.cfg.Compare(other.URL, abs)) || other.URL == abs {
			return other.ID, true
		}
	}
	return "", false
}

// checkElement rewrites one reference attribute. It reports whether the
// value changed.
func (r *Resolver) checkElement(n *core.Node, s *goquery.Selection, attr string, rewrites map[string]string) bool {
	value, _ := s.Attr(attr)
	if strings.HasPrefix(value, "data:") || strings.HasPrefix(value, "mailto:") {
		return false
	}

	// If we've already rewritten this exact value in this card, repeat
	// the recorded replacement verbatim.
	if replacement, ok := rewrites[value]; ok {
		s.SetAttr(attr, replacement)
		return true
	}

	abs := joinURL(n.URL, value)
	resourceID := core.IDFromURL(abs, true)

	switch {
	case r.recorded(resourceID):
		// Recorded by this or an earlier card: reuse the relative path.
		s.SetAttr(attr, "resources/"+resourceID)

	case r.cfg.Downloader != nil:
		dest := r.cfg.Dest(resourceID)
		r.cfg.Logger.Debug("checking if we should download attachment", "url", abs, "file", dest)
		ok, err := r.cfg.Downloader.Download(abs, dest)
		if err != nil {
			// A failing downloader degrades to the absolute address; it
			// never aborts the run.
			r.cfg.Logger.Debug("download failed", "url", abs, "err", err)
			ok = false
		}
		if ok {
			r.cfg.Logger.Debug("download successful", "url", abs, "file", dest)
			r.cfg.Resources[resourceID] = dest
			s.SetAttr(attr, "resources/"+resourceID)
		} else {
			r.cfg.Logger.Debug("did not download", "url", abs, "file", dest)
			s.SetAttr(attr, abs)
		}

	case isLocal(n.URL) && isLocal(value):
		// A local page referencing a local file: copy the file into the
		// resource set.
		dest := r.cfg.Dest(resourceID)
		if err := copyFile(abs, dest); err != nil {
			r.cfg.Logger.Debug("could not copy local resource", "file", abs, "err", err)
			break
		}
		r.cfg.Resources[resourceID] = dest
		s.SetAttr(attr, "resources/"+resourceID)

	case isLocal(value):
		// The page is remote but the reference is relative: absolutize.
		s.SetAttr(attr, abs)

	case strings.HasPrefix(value, "//"):
		// Scheme-relative references need an explicit scheme.
		s.SetAttr(attr, "https:"+value)
	}

	now, _ := s.Attr(attr)
	if now != value {
		rewrites[value] = now
		return true
	}
	return false
}

func (r *Resolver) recorded(resourceID string) bool {
	_, ok := r.cfg.Resources[resourceID]
	return ok
}

// joinURL resolves ref against base. Plain filesystem-style paths resolve
// path-wise; an unparsable value is returned as-is.
func joinURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}

// isLocal reports whether a value names a local filesystem location
// rather than a remote or scheme-relative address.
func isLocal(urlOrPath string) bool {
	return !strings.HasPrefix(urlOrPath, "http") &&
		!strings.HasPrefix(urlOrPath, "mailto:") &&
		!strings.HasPrefix(urlOrPath, "//")
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
