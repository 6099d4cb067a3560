package clinicianrepo

import (
	"context"
	"sync"

	"github.com/yanqian/skinscan/internal/domain/auth"
	"github.com/yanqian/skinscan/pkg/util"
)

// MemoryRepository provides an in-memory clinician store for tests/dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	clinicians map[int64]auth.Clinician
	emailIndex map[string]int64
	seq        int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		clinicians: make(map[int64]auth.Clinician),
		emailIndex: make(map[string]int64),
	}
}

// Create stores the clinician record.
func (r *MemoryRepository) Create(_ context.Context, clinician auth.Clinician) (auth.Clinician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[clinician.Email]; exists {
		return auth.Clinician{}, auth.ErrEmailExists
	}
	r.seq++
	clinician.ID = r.seq
	clinician.CreatedAt = util.NowUTC()
	r.clinicians[clinician.ID] = clinician
	r.emailIndex[clinician.Email] = clinician.ID
	return clinician, nil
}

// GetByEmail returns a clinician by email.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.Clinician, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.clinicians[id], true, nil
	}
	return auth.Clinician{}, false, nil
}

// GetByID fetches by ID.
func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.Clinician, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clinician, ok := r.clinicians[id]
	return clinician, ok, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
