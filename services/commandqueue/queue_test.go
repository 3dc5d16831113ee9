package commandqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rschick/cloud-slackbot/models"
	"github.com/rschick/cloud-slackbot/testutils"
)

func testRequest(userID string) models.CommandRequest {
	return models.CommandRequest{
		Command:     "/cloud",
		Text:        "status",
		UserID:      userID,
		ResponseURL: "https://hooks.slack.com/commands/T1/123/abc",
	}
}

// recordCollector gathers dispatched records across handler goroutines.
type recordCollector struct {
	mu      sync.Mutex
	records []*models.CommandRecord
}

func (c *recordCollector) add(record *models.CommandRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
}

func (c *recordCollector) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := []string{}
	for _, record := range c.records {
		keys = append(keys, record.Key)
	}
	return keys
}

func TestQueueService_Enqueue(t *testing.T) {
	store := testutils.NewMemoryStore()
	service := NewQueueService(store, 10*time.Millisecond)
	ctx := context.Background()

	record, err := service.Enqueue(ctx, testRequest("U123"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(record.Key, "command_"))
	assert.Equal(t, "U123", record.Request.UserID)

	// Exactly one store record, holding the request verbatim
	stored, err := store.ListByKeyPrefix(ctx, "command_")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	var req models.CommandRequest
	require.NoError(t, json.Unmarshal(stored[0].Value, &req))
	assert.Equal(t, record.Request, req)
}

func TestQueueService_DispatchesEachRecordOnce(t *testing.T) {
	store := testutils.NewMemoryStore()
	service := NewQueueService(store, 10*time.Millisecond)
	ctx := context.Background()

	collector := &recordCollector{}
	service.Start(func(ctx context.Context, record *models.CommandRecord) error {
		collector.add(record)
		// Contract: the handler removes the record it processed
		return service.Remove(ctx, record.Key)
	})
	defer service.Stop()

	var keys []string
	for i := 0; i < 3; i++ {
		record, err := service.Enqueue(ctx, testRequest(fmt.Sprintf("U%d", i)))
		require.NoError(t, err)
		keys = append(keys, record.Key)
	}

	require.Eventually(t, func() bool {
		return len(collector.keys()) == 3
	}, 2*time.Second, 10*time.Millisecond, "expected all records dispatched")

	assert.ElementsMatch(t, keys, collector.keys())

	// The store must be drained once every handler completed
	require.Eventually(t, func() bool {
		remaining, err := store.ListByKeyPrefix(ctx, "command_")
		return err == nil && len(remaining) == 0
	}, 2*time.Second, 10*time.Millisecond, "expected all records removed")
}

func TestQueueService_InflightRecordNotRedispatched(t *testing.T) {
	store := testutils.NewMemoryStore()
	service := NewQueueService(store, 10*time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	invocations := 0
	release := make(chan struct{})

	service.Start(func(ctx context.Context, record *models.CommandRecord) error {
		mu.Lock()
		invocations++
		mu.Unlock()
		// Hold the record in flight across several poll ticks
		<-release
		return service.Remove(ctx, record.Key)
	})
	defer service.Stop()

	_, err := service.Enqueue(ctx, testRequest("U123"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return invocations == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Several more polls happen while the handler is blocked
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, invocations, "in-flight record must not be re-dispatched")
	mu.Unlock()

	close(release)
}

func TestQueueService_RedispatchesRecordLeftBehind(t *testing.T) {
	store := testutils.NewMemoryStore()
	service := NewQueueService(store, 10*time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	invocations := 0

	service.Start(func(ctx context.Context, record *models.CommandRecord) error {
		mu.Lock()
		invocations++
		count := invocations
		mu.Unlock()

		// Simulate a handler that fails before it can clean up; the
		// record stays in the store and must be re-dispatched.
		if count == 1 {
			return fmt.Errorf("transient failure")
		}
		return service.Remove(ctx, record.Key)
	})
	defer service.Stop()

	_, err := service.Enqueue(ctx, testRequest("U123"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return invocations >= 2
	}, 2*time.Second, 10*time.Millisecond, "expected at-least-once redispatch")

	require.Eventually(t, func() bool {
		remaining, err := store.ListByKeyPrefix(ctx, "command_")
		return err == nil && len(remaining) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueueService_DropsMalformedRecord(t *testing.T) {
	store := testutils.NewMemoryStore()
	service := NewQueueService(store, 10*time.Millisecond)
	ctx := context.Background()

	_, err := store.Put(ctx, "command_malformed", "", json.RawMessage(`not json`))
	require.NoError(t, err)

	collector := &recordCollector{}
	service.Start(func(ctx context.Context, record *models.CommandRecord) error {
		collector.add(record)
		return service.Remove(ctx, record.Key)
	})
	defer service.Stop()

	require.Eventually(t, func() bool {
		remaining, err := store.ListByKeyPrefix(ctx, "command_")
		return err == nil && len(remaining) == 0
	}, 2*time.Second, 10*time.Millisecond, "malformed record should be dropped")

	assert.Empty(t, collector.keys(), "malformed record must never reach the handler")
}
