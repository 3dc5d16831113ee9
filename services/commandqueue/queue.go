package commandqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rschick/cloud-slackbot/core"
	"github.com/rschick/cloud-slackbot/db"
	"github.com/rschick/cloud-slackbot/models"
)

// Intake records are keyed command_<ULID>; the ULID makes keys time-sortable
// so a key-ordered scan yields records in roughly arrival order.
const commandKeyPrefix = "command_"

// Handler processes one dequeued command record. The handler owns the
// record for the duration of the call and is responsible for removing it
// via Remove on every outcome; a record left behind is re-dispatched on a
// later poll (at-least-once semantics).
type Handler func(ctx context.Context, record *models.CommandRecord) error

// QueueService is the durable command queue: the intake handler enqueues,
// and a polling loop stands in for store change notifications, invoking the
// registered handler once per newly persisted record.
type QueueService struct {
	store        db.Store
	pollInterval time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}

	stopCh  chan struct{}
	wg      sync.WaitGroup
	started bool
}

func NewQueueService(store db.Store, pollInterval time.Duration) *QueueService {
	return &QueueService{
		store:        store,
		pollInterval: pollInterval,
		inflight:     make(map[string]struct{}),
		stopCh:       make(chan struct{}),
	}
}

// Enqueue durably records one command invocation. This is the intake
// handler's single store write; no interpretation happens here.
func (s *QueueService) Enqueue(
	ctx context.Context,
	req models.CommandRequest,
) (*models.CommandRecord, error) {
	key := core.NewID("command")

	value, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command request: %w", err)
	}

	record, err := s.store.Put(ctx, key, "", value)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue command: %w", err)
	}

	log.Printf("📥 Enqueued command record %s for user %s", key, req.UserID)
	return &models.CommandRecord{
		Key:       record.Key,
		Request:   req,
		CreatedAt: record.CreatedAt,
	}, nil
}

// Remove deletes a processed intake record. It is idempotent.
func (s *QueueService) Remove(ctx context.Context, key string) error {
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to remove command record: %w", err)
	}
	log.Printf("🗑️ Removed command record %s", key)
	return nil
}

// Start begins polling for newly persisted records and dispatching each to
// handler in its own goroutine. Records already being handled are skipped
// until their handler returns.
func (s *QueueService) Start(handler Handler) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.dispatchPending(handler)
			}
		}
	}()

	log.Printf("✅ Command queue polling every %s", s.pollInterval)
}

// Stop halts polling and waits for in-flight handlers to finish.
func (s *QueueService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	log.Printf("✅ Command queue stopped")
}

func (s *QueueService) dispatchPending(handler Handler) {
	ctx := context.Background()

	records, err := s.store.ListByKeyPrefix(ctx, commandKeyPrefix)
	if err != nil {
		log.Printf("❌ Failed to scan for pending command records: %v", err)
		return
	}

	for _, stored := range records {
		if !s.claim(stored.Key) {
			continue
		}

		var req models.CommandRequest
		if err := json.Unmarshal(stored.Value, &req); err != nil {
			// A record that can never dispatch would be retried forever;
			// drop it and move on.
			log.Printf("❌ Dropping malformed command record %s: %v", stored.Key, err)
			if err := s.store.Delete(ctx, stored.Key); err != nil {
				log.Printf("❌ Failed to delete malformed command record %s: %v", stored.Key, err)
			}
			s.release(stored.Key)
			continue
		}

		record := &models.CommandRecord{
			Key:       stored.Key,
			Request:   req,
			CreatedAt: stored.CreatedAt,
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release(record.Key)

			if err := handler(context.Background(), record); err != nil {
				log.Printf("❌ Handler failed for command record %s: %v", record.Key, err)
			}
		}()
	}
}

func (s *QueueService) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[key]; ok {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *QueueService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inflight, key)
}
