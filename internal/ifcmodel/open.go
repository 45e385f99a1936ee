package ifcmodel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"ifcqa/internal/blob"
	"ifcqa/pkg/domain"
)

// BlobScheme prefixes model paths that live in the configured blob store.
const BlobScheme = "blob://"

// Open reads a snapshot from the local filesystem.
func Open(_ context.Context, path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return load(path, data)
}

// OpenFromStore reads a snapshot stored under key.
func OpenFromStore(ctx context.Context, store blob.Store, key string) (*Model, error) {
	if _, err := store.Head(ctx, key); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s%s", domain.ErrModelNotFound, BlobScheme, key)
		}
		return nil, fmt.Errorf("head model %s: %w", key, err)
	}
	_, rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get model %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("read model %s: %w", key, err)
	}
	return load(BlobScheme+key, buf.Bytes())
}

// Opener returns a domain.ModelOpener that resolves blob:// paths against
// store (when non-nil) and everything else against the filesystem.
func Opener(store blob.Store) domain.ModelOpener {
	return func(ctx context.Context, path string) (domain.Model, error) {
		if key, ok := strings.CutPrefix(path, BlobScheme); ok {
			if store == nil {
				return nil, fmt.Errorf("model %s requires a blob store", path)
			}
			return OpenFromStore(ctx, store, key)
		}
		return Open(ctx, path)
	}
}

func load(path string, data []byte) (*Model, error) {
	snap, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := FromSnapshot(path, snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
