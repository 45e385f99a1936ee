package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"ifcqa/internal/blob"
)

// RunPrefix returns the blob key prefix holding a run's artifacts.
func RunPrefix(runID string) string {
	return path.Join("runs", runID) + "/"
}

// Publish stores artifacts under runs/<runID>/ and returns their keys in
// artifact order. Keys are create-only; a second publish for the same run
// fails with blob.ErrAlreadyExists.
func Publish(ctx context.Context, store blob.Store, runID string, artifacts []Artifact) ([]string, error) {
	if store == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}
	prefix := RunPrefix(runID)
	keys := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		key := prefix + a.Name
		_, err := store.Put(ctx, key, bytes.NewReader(a.Payload), blob.PutOptions{
			ContentType: a.ContentType,
			Metadata: map[string]string{
				"run":   runID,
				"bytes": strconv.Itoa(len(a.Payload)),
			},
		})
		if err != nil {
			return keys, fmt.Errorf("store artifact %s: %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// WriteDir writes artifacts into dir, creating it when needed, and returns
// the written paths.
func WriteDir(dir string, artifacts []Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p := filepath.Join(dir, a.Name)
		if err := os.WriteFile(p, a.Payload, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
