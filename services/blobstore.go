package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// ErrBlobMissing means nothing has been saved yet.
var ErrBlobMissing = errors.New("blob not found")

// BlobStore keeps one opaque value, such as the table list.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// FileBlobStore keeps the value in a local file.
type FileBlobStore struct {
	Path string
}

func NewFileBlobStore(path string) *FileBlobStore {
	return &FileBlobStore{Path: path}
}

func (s *FileBlobStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return data, nil
}

// Save replaces the file through a rename so a crash never leaves half a list.
func (s *FileBlobStore) Save(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("replace %s: %w", s.Path, err)
	}
	return nil
}

const DefaultTablesKey = "ocna:tables"

// RedisBlobStore keeps the value under a single Redis key.
type RedisBlobStore struct {
	client *redis.Client
	key    string
}

func NewRedisBlobStore(client *redis.Client, key string) *RedisBlobStore {
	if key == "" {
		key = DefaultTablesKey
	}
	return &RedisBlobStore{client: client, key: key}
}

func (s *RedisBlobStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobMissing
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return data, nil
}

func (s *RedisBlobStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}
