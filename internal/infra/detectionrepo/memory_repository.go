package detectionrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/skinscan/internal/domain/detection"
	"github.com/yanqian/skinscan/pkg/util"
)

// MemoryRepository keeps detection records in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	seq      int64
	records  map[int64]detection.Record
	patients detection.PatientLookup
}

// NewMemoryRepository constructs the repository; patients resolves names for reads.
func NewMemoryRepository(patients detection.PatientLookup) *MemoryRepository {
	return &MemoryRepository{
		records:  make(map[int64]detection.Record),
		patients: patients,
	}
}

// Create stores a record and assigns its id.
func (r *MemoryRepository) Create(_ context.Context, record detection.Record) (detection.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	record.ID = r.seq
	record.CreatedAt = util.NowUTC()
	r.records[record.ID] = record
	return record, nil
}

// Get fetches a record by id.
func (r *MemoryRepository) Get(ctx context.Context, id int64) (detection.Record, bool, error) {
	r.mu.RLock()
	record, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return detection.Record{}, false, nil
	}
	if err := r.attachName(ctx, &record); err != nil {
		return detection.Record{}, false, err
	}
	return record, true, nil
}

// List returns matching records, newest first.
func (r *MemoryRepository) List(ctx context.Context, filter detection.HistoryFilter) ([]detection.Record, error) {
	diagnoses := make(map[string]struct{}, len(filter.Diagnoses))
	for _, d := range filter.Diagnoses {
		diagnoses[d] = struct{}{}
	}

	r.mu.RLock()
	items := make([]detection.Record, 0, len(r.records))
	for _, record := range r.records {
		if filter.PatientID > 0 && record.PatientID != filter.PatientID {
			continue
		}
		if len(diagnoses) > 0 {
			if _, ok := diagnoses[record.Prediction]; !ok {
				continue
			}
		}
		items = append(items, record)
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	for i := range items {
		if err := r.attachName(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *MemoryRepository) attachName(ctx context.Context, record *detection.Record) error {
	if r.patients == nil {
		return nil
	}
	name, _, err := r.patients.PatientName(ctx, record.PatientID)
	if err != nil {
		return err
	}
	record.PatientName = name
	return nil
}

var _ detection.Repository = (*MemoryRepository)(nil)
