package certificate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/youruser/certportal/internal/util"
)

// DefaultFilename is used by Download when no filename is supplied.
const DefaultFilename = "certificate.png"

// Blob returns the PNG encoding of the current surface contents.
// Valid only after a successful Load; reads do not mutate the surface.
func (r *Renderer) Blob() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.surface.EncodePNG(&buf); err != nil {
		return nil, &EncodingError{Err: err}
	}
	return buf.Bytes(), nil
}

// DataURL returns the surface as a PNG data URL.
func (r *Renderer) DataURL() (string, error) {
	b, err := r.Blob()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b), nil
}

// Download saves the surface as a PNG file, creating parent
// directories as needed. An empty filename saves to DefaultFilename.
func (r *Renderer) Download(filename string) error {
	if filename == "" {
		filename = DefaultFilename
	}
	b, err := r.Blob()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return fmt.Errorf("save certificate: %w", err)
		}
	}
	if err := os.WriteFile(filename, b, 0o644); err != nil {
		return fmt.Errorf("save certificate: %w", err)
	}
	return nil
}
