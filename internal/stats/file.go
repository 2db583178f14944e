package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// FileStore keeps the whole document in one JSON file, rewritten through a
// temp file and rename so readers only ever see complete documents.
type FileStore struct {
	path   string
	limit  int
	mu     sync.Mutex
	logger *logrus.Entry
}

func NewFileStore(path string, limit int, logger *logrus.Entry) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return &FileStore{
		path:   path,
		limit:  limit,
		logger: logger,
	}, nil
}

func (f *FileStore) Init(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	f.logger.Infof("creating statistics file %s", f.path)
	return f.write(Empty())
}

func (f *FileStore) Load(ctx context.Context) (*Statistics, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	s, skipped, err := decodeStatistics(data)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		f.logger.Warnf("dropped %d unreadable history entries from %s", skipped, f.path)
	}
	return s, nil
}

func (f *FileStore) Append(ctx context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.Load(ctx)
	if err != nil {
		return err
	}
	s.Apply(ev, f.limit)
	return f.write(s)
}

func (f *FileStore) write(s *Statistics) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write statistics file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename statistics file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error {
	return nil
}
