package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ppiankov/filesort/internal/model"
)

// FileStore keeps the learning record in a single JSON document
type FileStore struct {
	path string
}

// NewFileStore creates a JSON file store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the JSON document; a missing file yields an empty record
func (s *FileStore) Load(ctx context.Context) (*model.LearningRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewLearningRecord(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read learning data: %w", err)
	}

	record := model.NewLearningRecord()
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("unmarshal learning data: %w", err)
	}
	record.Normalize()

	return record, nil
}

// Save writes the record through a temp file and rename so readers never see a torn document
func (s *FileStore) Save(ctx context.Context, record *model.LearningRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal learning data: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create learning dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write learning data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace learning data: %w", err)
	}

	return nil
}
