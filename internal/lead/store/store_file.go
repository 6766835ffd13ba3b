package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"landing/internal/lead/models"
)

// FileStore keeps every lead in a single JSON array, newest first. This is
// the on-disk format of the original leads.json so existing files keep working.
//
// Writes go to a temp file that is fsynced and renamed over the target, so a
// crash mid-write never leaves a truncated array behind.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Append(ctx context.Context, lead *models.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := s.read()
	if err != nil {
		return err
	}
	leads = append([]*models.Lead{lead}, leads...)
	return s.write(leads)
}

func (s *FileStore) List(ctx context.Context, limit int) ([]*models.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	leads, err := s.read()
	if err != nil {
		return nil, err
	}
	return leads[:clampLimit(limit, len(leads))], nil
}

func (s *FileStore) Count(ctx context.Context) (int, error) {
	leads, err := s.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	return len(leads), nil
}

// read loads the array. A missing or empty file is an empty store.
func (s *FileStore) read() ([]*models.Lead, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read leads file: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var leads []*models.Lead
	if err := json.Unmarshal(raw, &leads); err != nil {
		return nil, fmt.Errorf("decode leads file: %w", err)
	}
	return leads, nil
}

func (s *FileStore) write(leads []*models.Lead) error {
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("encode leads: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create leads dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".leads-*.json")
	if err != nil {
		return fmt.Errorf("create temp leads file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write leads file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync leads file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close leads file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace leads file: %w", err)
	}
	return nil
}
