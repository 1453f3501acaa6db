package ingest

import (
	"context"
	"sync"

	"fleetsync/internal/models"
)

// Hand-rolled fakes over the store interfaces. They mimic the storage layer's
// get-or-create semantics in memory so orchestration tests need no database.

type fakeClientStore struct {
	mu    sync.Mutex
	ids   map[string]int64
	next  int64
	calls int
	err   error
}

func newFakeClientStore() *fakeClientStore {
	return &fakeClientStore{ids: make(map[string]int64)}
}

func (f *fakeClientStore) GetOrCreate(ctx context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if id, ok := f.ids[name]; ok {
		return id, nil
	}
	f.next++
	f.ids[name] = f.next
	return f.next, nil
}

type fakeVehicleStore struct {
	mu     sync.Mutex
	ids    map[string]int64
	owners map[string]int64
	next   int64
	calls  int
	errFor map[string]error
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{
		ids:    make(map[string]int64),
		owners: make(map[string]int64),
		errFor: make(map[string]error),
	}
}

func (f *fakeVehicleStore) GetOrCreate(ctx context.Context, plate string, clientID int64, assetID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errFor[plate]; err != nil {
		return 0, err
	}
	if id, ok := f.ids[plate]; ok {
		return id, nil
	}
	f.next++
	f.ids[plate] = f.next
	f.owners[plate] = clientID
	return f.next, nil
}

type fakeRecordStore struct {
	mu      sync.Mutex
	batches [][]models.TelematicsRecord
	failOn  int // 1-based batch index that fails, 0 = never
	err     error
}

func (f *fakeRecordStore) InsertBatch(ctx context.Context, records []models.TelematicsRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn > 0 && len(f.batches)+1 == f.failOn {
		f.batches = append(f.batches, nil)
		return f.err
	}
	f.batches = append(f.batches, records)
	return nil
}

func (f *fakeRecordStore) inserted() []models.TelematicsRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.TelematicsRecord
	for _, b := range f.batches {
		all = append(all, b...)
	}
	return all
}

type fakeHistoryStore struct {
	mu   sync.Mutex
	rows []models.ProcessingHistory
}

func (f *fakeHistoryStore) Insert(ctx context.Context, h *models.ProcessingHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *h)
	return nil
}
