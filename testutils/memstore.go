package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/mo"

	"github.com/rschick/cloud-slackbot/db"
	"github.com/rschick/cloud-slackbot/models"
)

// MemoryStore is an in-memory db.Store used by unit tests. It mirrors the
// Postgres repository's semantics, including the shallow JSON merge on
// Merge and key-ordered prefix scans.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.StoreRecord
}

var _ db.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.StoreRecord)}
}

func (s *MemoryStore) Put(
	ctx context.Context,
	key, label string,
	value json.RawMessage,
) (*models.StoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	record := &models.StoreRecord{
		Key:       key,
		Label:     label,
		Value:     append(json.RawMessage(nil), value...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, ok := s.records[key]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.records[key] = record

	return copyRecord(record), nil
}

func (s *MemoryStore) Merge(
	ctx context.Context,
	key, label string,
	value json.RawMessage,
) (*models.StoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := map[string]any{}
	now := time.Now()
	createdAt := now
	if existing, ok := s.records[key]; ok {
		if err := json.Unmarshal(existing.Value, &merged); err != nil {
			return nil, fmt.Errorf("failed to unmarshal existing value: %w", err)
		}
		createdAt = existing.CreatedAt
	}

	incoming := map[string]any{}
	if err := json.Unmarshal(value, &incoming); err != nil {
		return nil, fmt.Errorf("failed to unmarshal merge value: %w", err)
	}
	for k, v := range incoming {
		merged[k] = v
	}

	mergedValue, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merged value: %w", err)
	}

	record := &models.StoreRecord{
		Key:       key,
		Label:     label,
		Value:     mergedValue,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	s.records[key] = record

	return copyRecord(record), nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (mo.Option[*models.StoreRecord], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key]
	if !ok {
		return mo.None[*models.StoreRecord](), nil
	}
	return mo.Some(copyRecord(record)), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

func (s *MemoryStore) ListByKeyPrefix(ctx context.Context, prefix string) ([]*models.StoreRecord, error) {
	return s.list(func(r *models.StoreRecord) bool {
		return strings.HasPrefix(r.Key, prefix)
	}), nil
}

func (s *MemoryStore) ListByLabelPrefix(ctx context.Context, prefix string) ([]*models.StoreRecord, error) {
	return s.list(func(r *models.StoreRecord) bool {
		return strings.HasPrefix(r.Label, prefix)
	}), nil
}

func (s *MemoryStore) list(match func(*models.StoreRecord) bool) []*models.StoreRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []*models.StoreRecord{}
	for _, record := range s.records {
		if match(record) {
			records = append(records, copyRecord(record))
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records
}

func copyRecord(record *models.StoreRecord) *models.StoreRecord {
	copied := *record
	copied.Value = append(json.RawMessage(nil), record.Value...)
	return &copied
}
