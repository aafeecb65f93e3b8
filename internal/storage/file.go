package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const snapshotFile = "snapshot.json"

// FileStore keeps every document in a single <dir>/snapshot.json, a JSON
// object mapping key to document. Documents must themselves be JSON.
//
// SetMany writes the merged object to a temporary file and renames it over
// the old one. The rename is the only commit point, so a failed write leaves
// the previous snapshot untouched.
type FileStore struct {
	dir    string
	rename func(oldpath, newpath string) error
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir, rename: os.Rename}, nil
}

// Dir returns the directory holding the snapshot.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path() string {
	return filepath.Join(f.dir, snapshotFile)
}

// load returns the committed documents, or an empty map before the first write.
func (f *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read snapshot: %w", err)
	}
	docs := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("file store: decode snapshot: %w", err)
	}
	return docs, nil
}

// Get reads one document.
func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	docs, err := f.load()
	if err != nil {
		return nil, err
	}
	doc, ok := docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(doc), nil
}

// SetMany replaces the given documents in one atomic rename. Keys not in
// docs keep their committed value.
func (f *FileStore) SetMany(ctx context.Context, docs map[string][]byte) error {
	for key, doc := range docs {
		if err := ValidateKey(key); err != nil {
			return err
		}
		if !json.Valid(doc) {
			return fmt.Errorf("file store: document %s is not valid JSON", key)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	merged, err := f.load()
	if err != nil {
		return err
	}
	for key, doc := range docs {
		merged[key] = json.RawMessage(doc)
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("file store: encode snapshot: %w", err)
	}

	tmp, err := f.stage(data)
	if err != nil {
		return err
	}
	if err := f.rename(tmp, f.path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("file store: commit snapshot: %w", err)
	}
	return nil
}

func (f *FileStore) stage(data []byte) (string, error) {
	tmp, err := os.CreateTemp(f.dir, "snapshot.*.tmp")
	if err != nil {
		return "", fmt.Errorf("file store: stage snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("file store: write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("file store: sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("file store: close snapshot: %w", err)
	}
	return tmp.Name(), nil
}

// Close is a no-op.
func (f *FileStore) Close() error { return nil }
