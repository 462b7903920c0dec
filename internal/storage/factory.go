package storage

import (
	"fmt"
	"strings"
)

// Config selects and configures a backend
type Config struct {
	Backend   string // "local" or "s3"
	LocalDir  string
	PublicURL string // base URL of this server, used by the local backend
	S3        S3Config
}

// New builds the configured backend
func New(cfg Config) (BlobStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, strings.TrimRight(cfg.PublicURL, "/")+"/uploads")
	case "s3":
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported upload backend: %s", cfg.Backend)
	}
}
