// Package core — collaborator contracts and export record shapes.
// The engine mutates the node graph; everything at the edges (fetching,
// downloading, archiving, uploading) is a small interface implemented
// elsewhere so the passes stay testable.
package core

import "context"

// Cleaner is the deterministic HTML cleanup transform applied to content
// on its way into the Registry. Implementations must be idempotent:
// cleaning already-cleaned HTML is a no-op.
type Cleaner interface {
	Clean(html string) (string, error)
}

// Downloader fetches a remote resource to a local destination path.
// It returns true when the file was downloaded (the reference should be
// rewritten to the local resource path) and false when it chose not to
// fetch. Errors are treated by the caller as "did not download", never as
// fatal — a broken downloader must not abort a finalize run.
type Downloader interface {
	Download(absoluteURL, destPath string) (bool, error)
}

// LinkComparator decides whether a node's origin URL and a resolved
// absolute link address refer to the same document. When nil, plain
// string equality is used.
type LinkComparator func(nodeURL, absoluteURL string) bool

// FetchResult holds raw HTML and response metadata from a page fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Fetcher retrieves raw HTML from a URL. Used during site ingestion.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Archiver bundles a directory tree into a single artifact.
type Archiver interface {
	Archive(dir, destPath string) error
}

// UploadMode selects how an uploaded archive is applied to a collection.
type UploadMode string

const (
	// ModeReplace replaces the entire collection content.
	ModeReplace UploadMode = "replace"
	// ModeAppend adds the archive's content to the collection.
	ModeAppend UploadMode = "append"
)

// Uploader pushes a finished archive to the knowledge-base service.
// Failures propagate unmodified; there are no internal retries.
type Uploader interface {
	Upload(archivePath, collectionNameOrID string, mode UploadMode) error
}

// --- Export record shapes ---
//
// One YAML record per node, written into the bundle by the serializer.
// Field names follow the collection format, not Go conventions.

// CardRecord describes a card; its HTML body is written alongside.
type CardRecord struct {
	Title       string   `yaml:"Title"`
	ExternalID  string   `yaml:"ExternalId"`
	ExternalURL string   `yaml:"ExternalUrl,omitempty"`
	Tags        []string `yaml:"Tags,omitempty"`
}

// BoardItem is one entry in a board's ordered item list: a card
// ({ID, Type: card}), a section ({Type: section, Title, Items}), or a
// nested board referenced by id ({ID, Type: board}).
type BoardItem struct {
	ID    string      `yaml:"ID,omitempty"`
	Type  string      `yaml:"Type,omitempty"`
	Title string      `yaml:"Title,omitempty"`
	Items []BoardItem `yaml:"Items,omitempty"`
}

// BoardRecord describes a board and its flattened item list.
type BoardRecord struct {
	Title       string      `yaml:"Title"`
	ExternalID  string      `yaml:"ExternalId"`
	Items       []BoardItem `yaml:"Items"`
	ExternalURL string      `yaml:"ExternalUrl,omitempty"`
	Description string      `yaml:"Description,omitempty"`
}

// BoardGroupRecord describes a board group: an ordered list of child
// board ids.
type BoardGroupRecord struct {
	Title       string   `yaml:"Title"`
	ExternalID  string   `yaml:"ExternalId"`
	Boards      []string `yaml:"Boards"`
	ExternalURL string   `yaml:"ExternalUrl,omitempty"`
	Description string   `yaml:"Description,omitempty"`
}

// CollectionItem is one top-level entry in the root listing.
type CollectionItem struct {
	ID    string `yaml:"ID"`
	Type  string `yaml:"Type"`
	Title string `yaml:"Title"`
}

// CollectionRecord is the root listing: top-level boards and groups plus
// the de-duplicated union of all card tags, in first-seen order.
type CollectionRecord struct {
	Title string           `yaml:"Title"`
	Items []CollectionItem `yaml:"Items"`
	Tags  []string         `yaml:"Tags"`
}
