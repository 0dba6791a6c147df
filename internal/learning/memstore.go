package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ppiankov/filesort/internal/model"
)

// MemoryStore keeps a deep copy of the record in memory
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the last saved record
func (s *MemoryStore) Load(_ context.Context) (*model.LearningRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := model.NewLearningRecord()
	if s.data == nil {
		return record, nil
	}
	if err := json.Unmarshal(s.data, record); err != nil {
		return nil, fmt.Errorf("unmarshal learning data: %w", err)
	}
	record.Normalize()
	return record, nil
}

// Save stores a copy of the record
func (s *MemoryStore) Save(_ context.Context, record *model.LearningRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal learning data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
