// Package assets stores uploaded car images and removes them again.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/car-service/internal/apperr"
)

const (
	// MaxFileSize is the largest accepted image in bytes
	MaxFileSize = 5 << 20
	// MaxFiles is the largest number of images accepted in one request
	MaxFiles = 10

	sniffLen = 512
)

// ErrNotExist is returned by a Storage when the named object is already gone
var ErrNotExist = errors.New("asset does not exist")

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Storage is a durable home for asset bytes
type Storage interface {
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, name string) error
}

// Manager validates uploads, writes them to a Storage and maps references to public URLs
type Manager struct {
	storage    Storage
	publicBase string
	log        *logrus.Logger
}

// NewManager creates an asset manager. publicBase is the URL prefix the stored names are served under.
func NewManager(storage Storage, publicBase string, log *logrus.Logger) *Manager {
	return &Manager{
		storage:    storage,
		publicBase: strings.TrimRight(publicBase, "/"),
		log:        log,
	}
}

// Store persists every file under a fresh unique name and returns the references in input order.
// If any file is rejected or fails to write, the files already written by this call are discarded.
func (m *Manager) Store(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxFiles {
		return nil, apperr.Validation("too many files. Maximum is %d images", MaxFiles)
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		ref, err := m.storeOne(ctx, fh)
		if err != nil {
			m.Discard(ctx, refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (m *Manager) storeOne(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", apperr.Validation("file %q is too large. Maximum size is 5MB", fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperr.Server(fmt.Errorf("failed to open upload %q: %w", fh.Filename, err))
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", apperr.Server(fmt.Errorf("failed to read upload %q: %w", fh.Filename, err))
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := extensions[contentType]
	if !ok {
		return "", apperr.Validation("file %q must be a JPEG or PNG image", fh.Filename)
	}

	name := uuid.NewString() + ext
	body := io.MultiReader(bytes.NewReader(head), f)
	if err := m.storage.Put(ctx, name, contentType, body, fh.Size); err != nil {
		return "", apperr.Server(fmt.Errorf("failed to store upload %q: %w", fh.Filename, err))
	}

	m.log.WithFields(logrus.Fields{"asset": name, "size": fh.Size, "content_type": contentType}).Debug("asset stored")
	return name, nil
}

// ResolveURLs maps stored references to fetchable URLs
func (m *Manager) ResolveURLs(refs []string) []string {
	urls := make([]string, len(refs))
	for i, ref := range refs {
		urls[i] = m.publicBase + "/" + ref
	}
	return urls
}

// Discard deletes the referenced assets. Failures are logged, never returned.
func (m *Manager) Discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		err := m.storage.Delete(ctx, ref)
		switch {
		case err == nil:
			m.log.WithField("asset", ref).Debug("asset deleted")
		case errors.Is(err, ErrNotExist):
			m.log.WithField("asset", ref).Debug("asset already deleted")
		default:
			m.log.WithError(err).WithField("asset", ref).Warn("failed to delete asset")
		}
	}
}
