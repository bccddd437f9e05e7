package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/cardsync/core"
	"github.com/gaurav-prasanna/cardsync/core/output"
)

// WriteBundle writes the finalized graph into the session content dir:
// one YAML record per board-group/board/card (cards also get their HTML
// body), the root collection.yaml, the event log, and any recorded
// resource that still lives outside the bundle.
func (s *Sync) WriteBundle() error {
	if !s.finalized {
		return fmt.Errorf("bundle requested before finalize")
	}

	w, err := output.NewWriter(s.ContentDir())
	if err != nil {
		return err
	}

	for _, n := range s.Registry.Nodes() {
		if err := s.writeNode(w, n); err != nil {
			return err
		}
	}

	if err := s.writeYAML(w, "collection.yaml", s.Collection()); err != nil {
		return err
	}

	if err := s.consolidateResources(); err != nil {
		return err
	}

	// The event log goes last so it covers the bundle writes themselves.
	s.Log("writing event log")
	csvData, err := s.EventCSV()
	if err != nil {
		return err
	}
	if _, err := w.Write("log.csv", csvData); err != nil {
		return err
	}
	return nil
}

func (s *Sync) writeNode(w *output.Writer, n *core.Node) error {
	name := idToFilename(n.ID)
	switch n.Type {
	case core.TypeCard:
		if err := s.writeYAML(w, "cards/"+name+".yaml", s.CardRecord(n)); err != nil {
			return err
		}
		if _, err := w.WriteText("cards/"+name+".html", n.Content); err != nil {
			return err
		}
	case core.TypeBoard:
		return s.writeYAML(w, "boards/"+name+".yaml", s.BoardRecord(n))
	case core.TypeBoardGroup:
		return s.writeYAML(w, "board-groups/"+name+".yaml", s.BoardGroupRecord(n))
	}
	return nil
}

func (s *Sync) writeYAML(w *output.Writer, relPath string, record any) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", relPath, err)
	}
	if _, err := w.Write(relPath, data); err != nil {
		return err
	}
	return nil
}

// consolidateResources copies any recorded resource file that lives
// outside the content dir into resources/. Downloads already land there;
// this catches local files recorded in place.
func (s *Sync) consolidateResources() error {
	for id, src := range s.Resources {
		if strings.HasPrefix(src, s.ContentDir()) {
			continue
		}
		s.Log("add local file to resources", "file", src, "resource", id)
		if err := copyFile(src, s.ResourcePath(id)); err != nil {
			return fmt.Errorf("consolidating resource %s: %w", id, err)
		}
	}
	return nil
}

// Zip packages the bundle with the given archiver and returns the
// archive path.
func (s *Sync) Zip(archiver core.Archiver) (string, error) {
	dest := s.ArchivePath()
	s.Log("building archive", "file", dest)
	if err := archiver.Archive(s.ContentDir(), dest); err != nil {
		return "", err
	}
	return dest, nil
}

// Upload pushes the built archive with the given uploader.
func (s *Sync) Upload(uploader core.Uploader, collection string, mode core.UploadMode) error {
	s.Log("uploading archive", "collection", collection, "mode", string(mode))
	return uploader.Upload(s.ArchivePath(), collection, mode)
}

// --- Export records ---

// CardRecord builds the export record for a card.
func (s *Sync) CardRecord(n *core.Node) core.CardRecord {
	return core.CardRecord{
		Title:       n.Title,
		ExternalID:  n.ID,
		ExternalURL: n.URL,
		Tags:        n.Tags,
	}
}

// BoardRecord builds the export record for a board, with its ordered,
// flattened item list.
func (s *Sync) BoardRecord(n *core.Node) core.BoardRecord {
	return core.BoardRecord{
		Title:       n.Title,
		ExternalID:  n.ID,
		Items:       s.itemsList(n),
		ExternalURL: n.URL,
		Description: n.Desc,
	}
}

// BoardGroupRecord builds the export record for a board group: the
// ordered list of its child board ids.
func (s *Sync) BoardGroupRecord(n *core.Node) core.BoardGroupRecord {
	boards := []string{}
	for _, id := range n.Children {
		if child, ok := s.Registry.Lookup(id); ok && child.Type == core.TypeBoard {
			boards = append(boards, child.ID)
		}
	}
	return core.BoardGroupRecord{
		Title:       n.Title,
		ExternalID:  n.ID,
		Boards:      boards,
		ExternalURL: n.URL,
		Description: n.Desc,
	}
}

// itemsList flattens a container's children into the board item list:
// cards recursively inline any nested children, sections nest their own
// item lists, nested boards appear as id references.
func (s *Sync) itemsList(n *core.Node) []core.BoardItem {
	items := []core.BoardItem{}
	for _, id := range n.Children {
		child, ok := s.Registry.Lookup(id)
		if !ok {
			continue
		}
		switch child.Type {
		case core.TypeCard:
			items = append(items, core.BoardItem{ID: child.ID, Type: "card"})
			// Cards cannot hold children in the export; flatten them out.
			items = append(items, s.itemsList(child)...)
		case core.TypeSection:
			items = append(items, core.BoardItem{
				Type:  "section",
				Title: child.Title,
				Items: s.itemsList(child),
			})
		case core.TypeBoard:
			items = append(items, core.BoardItem{ID: child.ID, Type: "board"})
		}
	}
	return items
}

// Collection builds the root listing: top-level boards and all board
// groups, plus the de-duplicated union of card tags in first-seen order.
func (s *Sync) Collection() core.CollectionRecord {
	items := []core.CollectionItem{}
	tags := []string{}
	seen := map[string]bool{}

	for _, n := range s.Registry.Nodes() {
		switch n.Type {
		case core.TypeBoard:
			if len(n.Parents) == 0 {
				items = append(items, core.CollectionItem{ID: n.ID, Type: "board", Title: n.Title})
			}
		case core.TypeBoardGroup:
			items = append(items, core.CollectionItem{ID: n.ID, Type: "section", Title: n.Title})
		case core.TypeCard:
			for _, tag := range n.Tags {
				if !seen[tag] {
					seen[tag] = true
					tags = append(tags, tag)
				}
			}
		}
	}

	return core.CollectionRecord{Title: s.ID, Items: items, Tags: tags}
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
