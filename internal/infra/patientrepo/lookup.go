package patientrepo

import (
	"context"

	"github.com/yanqian/skinscan/internal/domain/patient"
)

// NameLookup resolves patient names for the detection domain.
type NameLookup struct {
	repo patient.Repository
}

// NewNameLookup wraps a patient repository.
func NewNameLookup(repo patient.Repository) *NameLookup {
	return &NameLookup{repo: repo}
}

// PatientName returns the name of the patient with the given id.
func (l *NameLookup) PatientName(ctx context.Context, id int64) (string, bool, error) {
	p, found, err := l.repo.Get(ctx, id)
	if err != nil || !found {
		return "", found, err
	}
	return p.Name, true, nil
}
