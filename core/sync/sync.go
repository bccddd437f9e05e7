// Package sync owns one import session: a Registry of nodes, the
// session-scoped resource map, and the event trail. Finalize runs the
// three passes — classify, repair, resolve — in strict order and freezes
// the graph for export.
package sync

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gaurav-prasanna/cardsync/core"
	"github.com/gaurav-prasanna/cardsync/core/classify"
	"github.com/gaurav-prasanna/cardsync/core/clean"
	"github.com/gaurav-prasanna/cardsync/core/resolve"
)

// ErrFinalized is returned when Finalize is called more than once on the
// same session. A session is single-use: repeated structural repair of an
// already-repaired graph is not supported.
var ErrFinalized = errors.New("sync already finalized")

// Sync is one import session.
type Sync struct {
	ID       string
	Registry *core.Registry

	// Resources maps resource identity → local file path. Populated
	// during Finalize, scoped to this session only.
	Resources map[string]string

	events    []Event
	start     time.Time
	dir       string
	logger    *log.Logger
	finalized bool
}

// Config configures a new session. All fields are optional.
type Config struct {
	// ID names the session; it is slugified for use in paths. Defaults
	// to a random id.
	ID string
	// Dir is the working folder holding the bundle. Defaults to the
	// system temp directory.
	Dir string
	// Clear removes any previous bundle for the same id.
	Clear bool
	// Logger receives progress events at debug level.
	Logger *log.Logger
}

// New creates an empty session.
func New(cfg Config) (*Sync, error) {
	id := Slugify(cfg.ID)
	if id == "" {
		id = uuid.NewString()
	}
	dir := cfg.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Sync{
		ID:        id,
		Registry:  core.NewRegistry(clean.New()),
		Resources: make(map[string]string),
		start:     time.Now(),
		dir:       dir,
		logger:    logger,
	}

	if cfg.Clear {
		if err := os.RemoveAll(s.ContentDir()); err != nil {
			return nil, fmt.Errorf("clearing %s: %w", s.ContentDir(), err)
		}
	}
	return s, nil
}

// Node upserts a node into the session. Nodes may be identified before
// all of their info is known — a page can be registered from a link to
// it, related to its parent, and filled in later once fetched.
func (s *Sync) Node(spec core.NodeSpec) (*core.Node, error) {
	return s.Registry.Upsert(spec)
}

// --- Bundle paths ---

// ContentDir is the root of the unpacked bundle.
func (s *Sync) ContentDir() string { return filepath.Join(s.dir, s.ID) }

// ArchivePath is where the zipped bundle lands.
func (s *Sync) ArchivePath() string {
	return filepath.Join(s.dir, "collection_"+s.ID+".zip")
}

// ResourcePath is the on-disk location for one resource identity.
func (s *Sync) ResourcePath(resourceID string) string {
	return filepath.Join(s.ContentDir(), "resources", idToFilename(resourceID))
}

// FinalizeOptions selects the policy and the optional capabilities for
// one Finalize call.
type FinalizeOptions struct {
	Policy     classify.Policy
	Downloader core.Downloader
	Compare    core.LinkComparator
}

// Result is the outcome of a Finalize call: the finalized node set and
// the resource identity → local path mapping.
type Result struct {
	Nodes     []*core.Node
	Resources map[string]string
}

// Finalize marks the end of ingestion and runs the three passes in
// order: classification assigns every node's type, repair inserts
// synthetic content holders, and resolution rewrites card HTML. The
// order is load-bearing — repair decisions need final types, and link
// rewriting inspects every node's final origin URL.
//
// Finalize is single-use; a second call returns ErrFinalized.
func (s *Sync) Finalize(opts FinalizeOptions) (*Result, error) {
	if s.finalized {
		return nil, ErrFinalized
	}

	policy, err := classify.ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}

	s.Log("assigning node types", "policy", string(policy))
	classify.Run(s.Registry, policy)

	s.Log("inserting content nodes")
	if err := classify.Repair(s.Registry); err != nil {
		return nil, fmt.Errorf("repairing tree: %w", err)
	}

	resolver := resolve.New(s.Registry, resolve.Config{
		Resources:  s.Resources,
		Dest:       s.ResourcePath,
		Downloader: opts.Downloader,
		Compare:    opts.Compare,
		Logger:     s.logger,
	})
	total := s.Registry.Len()
	for i, n := range s.Registry.Nodes() {
		s.Log(fmt.Sprintf("post-processing node %d / %d", i+1, total), "node", n.ID)
		if err := resolver.CleanupNode(n); err != nil {
			return nil, fmt.Errorf("normalizing content: %w", err)
		}
	}

	s.finalized = true
	return &Result{Nodes: s.Registry.Nodes(), Resources: s.Resources}, nil
}

// Finalized reports whether Finalize has completed.
func (s *Sync) Finalized() bool { return s.finalized }

// PrintTree writes an indented listing of the tree to w, one line per
// node with its type and origin URL. Indentation is capped at 3 levels.
func (s *Sync) PrintTree(w io.Writer) {
	s.Registry.Walk(func(n, parent *core.Node, depth int) {
		indent := strings.Repeat("  ", min(3, depth))
		name := n.Title
		if name == "" {
			name = n.ID
		}
		if n.URL != "" {
			fmt.Fprintf(w, "%s- %s (%s, url=%s)\n", indent, name, n.Type, n.URL)
		} else {
			fmt.Fprintf(w, "%s- %s (%s)\n", indent, name, n.Type)
		}
	}, nil)
}

var slugRe = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// Slugify turns free text into a path-safe identifier.
func Slugify(text string) string {
	return slugRe.ReplaceAllString(strings.ReplaceAll(text, " ", "_"), "")
}

// idToFilename makes a node or resource id safe as a file name.
func idToFilename(id string) string {
	return strings.ReplaceAll(id, "/", "_")
}
