// Package images locates pet photos on disk and renders them for display.
package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage"
)

// PlaceholderURL is shown for pets without a photo.
const PlaceholderURL = "https://placekitten.com/400/300"

// ErrImageDirRequired is returned when the image directory is empty.
var ErrImageDirRequired = errors.New("image directory required")

// Locator finds the primary photo of a pet, stored as "{id}-1.jpg" in one directory.
type Locator struct {
	dir     string
	baseURL string
}

// Option configures a Locator.
type Option func(*Locator) error

// WithBaseURL serves photos from baseURL instead of file:// URLs.
func WithBaseURL(baseURL string) Option {
	return func(l *Locator) error {
		if _, err := url.Parse(baseURL); err != nil {
			return fmt.Errorf("invalid image base url: %w", err)
		}
		l.baseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// NewLocator creates a Locator over dir.
func NewLocator(dir string, opts ...Option) (*Locator, error) {
	if dir == "" {
		return nil, ErrImageDirRequired
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	l := &Locator{dir: abs}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Dir returns the absolute image directory.
func (l *Locator) Dir() string {
	return l.dir
}

// Path returns the expected photo path for petID and whether the file exists.
func (l *Locator) Path(petID string) (string, bool) {
	if storage.ValidateKey(petID) != nil {
		return "", false
	}
	p := filepath.Join(l.dir, schema.ImageFileName(petID))
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return p, false
	}
	return p, true
}

// ImageURL returns the photo URL for petID when the photo exists.
func (l *Locator) ImageURL(petID string) (string, bool) {
	p, ok := l.Path(petID)
	if !ok {
		return "", false
	}
	if l.baseURL != "" {
		return l.baseURL + "/" + url.PathEscape(schema.ImageFileName(petID)), true
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String(), true
}

// URL returns the photo URL for petID, or PlaceholderURL.
func (l *Locator) URL(petID string) string {
	if u, ok := l.ImageURL(petID); ok {
		return u
	}
	return PlaceholderURL
}

// DataURI returns the photo inlined as a base64 JPEG data URI.
func (l *Locator) DataURI(petID string) (string, error) {
	p, ok := l.Path(petID)
	if !ok {
		return "", fmt.Errorf("%w: no photo for %q", core.ErrSourceRead, petID)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrSourceRead, err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Source returns the inline photo for petID, falling back to PlaceholderURL
// when the photo is missing or unreadable.
func (l *Locator) Source(petID string) string {
	uri, err := l.DataURI(petID)
	if err != nil {
		return PlaceholderURL
	}
	return uri
}
