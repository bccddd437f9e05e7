package output

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gaurav-prasanna/cardsync/core"
)

const uploadTimeout = 5 * time.Minute

// HTTPUploader posts a finished archive to the knowledge-base service as
// a multipart upload. It implements core.Uploader. Failures propagate to
// the caller unmodified; there are no retries.
type HTTPUploader struct {
	Endpoint string
	Token    string
	client   *http.Client
}

// NewHTTPUploader creates an uploader targeting the given endpoint.
// token, when non-empty, is sent as a bearer credential.
func NewHTTPUploader(endpoint, token string) *HTTPUploader {
	return &HTTPUploader{
		Endpoint: endpoint,
		Token:    token,
		client:   &http.Client{Timeout: uploadTimeout},
	}
}

// Upload sends the archive with its collection name-or-id and mode.
func (u *HTTPUploader) Upload(archivePath, collection string, mode core.UploadMode) error {
	if collection == "" {
		return fmt.Errorf("collection name or id is required")
	}

	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filepath.Base(archivePath))
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	if err := form.WriteField("collection", collection); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if err := form.WriteField("mode", string(mode)); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, u.Endpoint, &body)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("uploading to %s: %w", u.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d uploading to %s", resp.StatusCode, u.Endpoint)
	}
	return nil
}
