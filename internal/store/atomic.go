// Package store persists snapshots and change records as one JSON file per
// capture in append-only directories.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// WriteAtomic writes data to path using the temp-file, fsync, rename
// pattern. On failure the temp file is removed and path is left untouched.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".artifact-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// encodeJSON renders v as indented UTF-8 JSON without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeArtifact encodes v and writes it to dir/name, refusing to replace an
// existing artifact.
func writeArtifact(kind, dir, name string, v any) (string, error) {
	path := filepath.Join(dir, name)
	data, err := encodeJSON(v)
	if err != nil {
		return "", &types.PersistError{Artifact: kind, Path: path, Err: err}
	}
	if _, err := os.Lstat(path); err == nil {
		return "", &types.PersistError{Artifact: kind, Path: path, Err: os.ErrExist}
	}
	if err := WriteAtomic(path, data); err != nil {
		return "", &types.PersistError{Artifact: kind, Path: path, Err: err}
	}
	return path, nil
}
