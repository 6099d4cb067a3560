package patientrepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yanqian/skinscan/internal/domain/patient"
	"github.com/yanqian/skinscan/pkg/util"
)

// MemoryRepository keeps patients in process memory for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	seq      int64
	patients map[int64]patient.Patient
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{patients: make(map[int64]patient.Patient)}
}

// Create implements patient.Repository.
func (r *MemoryRepository) Create(_ context.Context, p patient.Patient) (patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = r.seq
	p.CreatedAt = util.NowUTC()
	r.patients[p.ID] = p
	return p, nil
}

// Get implements patient.Repository.
func (r *MemoryRepository) Get(_ context.Context, id int64) (patient.Patient, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	return p, ok, nil
}

// List returns every patient, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]patient.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(patient.Patient) bool { return true }), nil
}

// SearchByName matches a case-insensitive substring of the name.
func (r *MemoryRepository) SearchByName(_ context.Context, query string) ([]patient.Patient, error) {
	needle := strings.ToLower(query)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(p patient.Patient) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}), nil
}

// Update applies the non-empty fields of update.
func (r *MemoryRepository) Update(_ context.Context, id int64, update patient.Update) (patient.Patient, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return patient.Patient{}, false, nil
	}
	if update.Name != "" {
		p.Name = update.Name
	}
	if update.Age != 0 {
		p.Age = update.Age
	}
	if update.Gender != "" {
		p.Gender = update.Gender
	}
	if update.Contact != "" {
		p.Contact = update.Contact
	}
	if update.Address != "" {
		p.Address = update.Address
	}
	if update.MedicalHistory != "" {
		p.MedicalHistory = update.MedicalHistory
	}
	r.patients[id] = p
	return p, true, nil
}

func (r *MemoryRepository) collect(keep func(patient.Patient) bool) []patient.Patient {
	items := make([]patient.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		if keep(p) {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

var _ patient.Repository = (*MemoryRepository)(nil)
