package output

import (
	"archive/zip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gaurav-prasanna/cardsync/core"
)

func TestWriterCreatesParentDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "bundle")
	w, err := NewWriter(root)
	if err != nil {
		t.Fatal(err)
	}

	full, err := w.Write("cards/deep/x.yaml", []byte("Title: x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if full != filepath.Join(root, "cards", "deep", "x.yaml") {
		t.Errorf("returned path = %s", full)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Title: x\n" {
		t.Errorf("written content = %q", data)
	}

	if _, err := w.WriteText("note.txt", "hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, "note.txt")); err != nil {
		t.Errorf("WriteText missing: %v", err)
	}
}

func TestZipArchiver(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"collection.yaml": "Title: t\n",
		"cards/a.html":    "<p>a</p>",
		".hidden":         "skip me",
		"cards/.DS_Store": "skip me too",
	}
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	dest := filepath.Join(t.TempDir(), "out.zip")
	if err := NewZipArchiver().Archive(dir, dest); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"cards/a.html", "collection.yaml"}) {
		t.Fatalf("archive entries = %v", names)
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != files[zr.File[0].Name] {
		t.Errorf("entry %s content = %q", zr.File[0].Name, data)
	}
}

func TestHTTPUploader(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "collection_x.zip")
	if err := os.WriteFile(archive, []byte("zip-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	var gotCollection, gotMode, gotAuth, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing upload: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		gotCollection = r.FormValue("collection")
		gotMode = r.FormValue("mode")
		gotAuth = r.Header.Get("Authorization")

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("reading file part: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFile = header.Filename
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "secret")
	if err := u.Upload(archive, "Docs", core.ModeAppend); err != nil {
		t.Fatal(err)
	}

	if gotCollection != "Docs" {
		t.Errorf("collection = %q", gotCollection)
	}
	if gotMode != "append" {
		t.Errorf("mode = %q", gotMode)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotFile != "collection_x.zip" {
		t.Errorf("file name = %q", gotFile)
	}
}

func TestHTTPUploaderFailures(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "a.zip")
	if err := os.WriteFile(archive, []byte("z"), 0644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	u := NewHTTPUploader(srv.URL, "")
	if err := u.Upload(archive, "Docs", core.ModeReplace); err == nil {
		t.Error("403 response did not error")
	}
	if err := u.Upload(archive, "", core.ModeReplace); err == nil {
		t.Error("empty collection accepted")
	}
}
