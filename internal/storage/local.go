package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a directory served at /uploads/
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the directory if needed. baseURL is the public
// prefix objects are served from, e.g. "http://localhost:8080/uploads".
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory objects are written to
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", &Error{Backend: s.Name(), Op: "put", Key: key, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &Error{Backend: s.Name(), Op: "put", Key: key, Err: err}
	}

	// Write to a temp file first so a failed copy never leaves a partial object
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", &Error{Backend: s.Name(), Op: "put", Key: key, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", &Error{Backend: s.Name(), Op: "put", Key: key, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &Error{Backend: s.Name(), Op: "put", Key: key, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", &Error{Backend: s.Name(), Op: "put", Key: key, Err: err}
	}

	return s.URL(key), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return &Error{Backend: s.Name(), Op: "delete", Key: key, Err: err}
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &Error{Backend: s.Name(), Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, &Error{Backend: s.Name(), Op: "stat", Key: key, Err: err}
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Backend: s.Name(), Op: "stat", Key: key, Err: err}
	}
	return true, nil
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *LocalStore) Name() string { return "local" }

// path resolves key inside dir, refusing keys that escape it
func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", errors.New("empty key")
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
