package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const saveTimeout = 500 * time.Millisecond

// Update is the last reported state of an ingestion run, polled by the upload
// UI while a file is being processed.
type Update struct {
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Phase     string    `json:"phase"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps per-run progress in redis with a TTL so abandoned runs expire on
// their own.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a redis-backed progress store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(runID string) string {
	return fmt.Sprintf("ingest:progress:%s", runID)
}

// Save writes the latest progress snapshot for a run.
func (s *Store) Save(ctx context.Context, runID string, u Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(runID), data, s.ttl).Err()
}

// Get returns the last snapshot for a run, or redis.Nil when unknown.
func (s *Store) Get(ctx context.Context, runID string) (*Update, error) {
	result, err := s.client.Get(ctx, s.key(runID)).Result()
	if err != nil {
		return nil, err
	}
	var u Update
	if err := json.Unmarshal([]byte(result), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Reporter adapts the store to the engine's progress callback. The write uses
// its own short timeout and swallows failures: progress reporting must never
// slow down or cancel a batch.
func (s *Store) Reporter(runID string, logger *zap.Logger) func(processed, total int, phase string) {
	return func(processed, total int, phase string) {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		err := s.Save(ctx, runID, Update{
			Processed: processed,
			Total:     total,
			Phase:     phase,
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil && logger != nil {
			logger.Debug("progress save failed", zap.String("run_id", runID), zap.Error(err))
		}
	}
}
