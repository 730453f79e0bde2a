// Package blob implements the upload collaborator's "give me document bytes"
// contract against a local directory.
package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrBlobNotFound = errors.New("document blob not found")

type FSStore struct {
	rootDir string
}

func NewFSStore(rootDir string) *FSStore {
	return &FSStore{rootDir: rootDir}
}

// GetDocumentBytes reads the stored payload for a storage path. Paths may not
// escape the configured root.
func (s *FSStore) GetDocumentBytes(ctx context.Context, storagePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(storagePath)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid storage path %q", storagePath)
	}

	b, err := os.ReadFile(filepath.Join(s.rootDir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, storagePath)
		}
		return nil, fmt.Errorf("read document blob failed: %w", err)
	}
	return b, nil
}
