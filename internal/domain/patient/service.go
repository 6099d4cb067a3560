package patient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
)

// Service manages the patient registry.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (Patient, error)
	Get(ctx context.Context, id int64) (Patient, error)
	List(ctx context.Context) ([]Patient, error)
	Search(ctx context.Context, name string) ([]Patient, error)
	Update(ctx context.Context, id int64, update Update) (Patient, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService wires up the patient domain.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "patient.service"),
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (Patient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Patient{}, apperrors.Wrap(apperrors.CodeInvalidInput, "name cannot be empty", nil)
	}
	if err := validateAge(req.Age); err != nil {
		return Patient{}, err
	}
	gender, err := normalizeGender(req.Gender)
	if err != nil {
		return Patient{}, err
	}
	created, err := s.repo.Create(ctx, Patient{
		Name:           name,
		Age:            req.Age,
		Gender:         gender,
		Contact:        strings.TrimSpace(req.Contact),
		Address:        strings.TrimSpace(req.Address),
		MedicalHistory: strings.TrimSpace(req.MedicalHistory),
	})
	if err != nil {
		return Patient{}, apperrors.Wrap(apperrors.CodePatient, "failed to register patient", err)
	}
	s.logger.Info("patient registered", "patient_id", created.ID)
	return created, nil
}

func (s *service) Get(ctx context.Context, id int64) (Patient, error) {
	if id <= 0 {
		return Patient{}, apperrors.Wrap(apperrors.CodeInvalidInput, "patient id must be positive", nil)
	}
	p, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Patient{}, apperrors.Wrap(apperrors.CodePatient, "failed to load patient", err)
	}
	if !found {
		return Patient{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("patient %d not found", id), nil)
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]Patient, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePatient, "failed to list patients", err)
	}
	return items, nil
}

func (s *service) Search(ctx context.Context, name string) ([]Patient, error) {
	query := strings.TrimSpace(name)
	if query == "" {
		return s.List(ctx)
	}
	items, err := s.repo.SearchByName(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePatient, "failed to search patients", err)
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, id int64, update Update) (Patient, error) {
	if id <= 0 {
		return Patient{}, apperrors.Wrap(apperrors.CodeInvalidInput, "patient id must be positive", nil)
	}
	update = trimUpdate(update)
	if update.IsEmpty() {
		return Patient{}, apperrors.Wrap(apperrors.CodeInvalidInput, "no fields to update", nil)
	}
	if update.Age != 0 {
		if err := validateAge(update.Age); err != nil {
			return Patient{}, err
		}
	}
	if update.Gender != "" {
		gender, err := normalizeGender(update.Gender)
		if err != nil {
			return Patient{}, err
		}
		update.Gender = gender
	}
	updated, found, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return Patient{}, apperrors.Wrap(apperrors.CodePatient, "failed to update patient", err)
	}
	if !found {
		return Patient{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("patient %d not found", id), nil)
	}
	return updated, nil
}

func validateAge(age int) error {
	if age < minAge || age > maxAge {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("age must be between %d and %d", minAge, maxAge), nil)
	}
	return nil
}

func normalizeGender(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	for _, g := range Genders {
		if strings.EqualFold(g, value) {
			return g, nil
		}
	}
	return "", apperrors.Wrap(apperrors.CodeInvalidInput, "gender must be one of "+strings.Join(Genders, ", "), nil)
}

func trimUpdate(u Update) Update {
	return Update{
		Name:           strings.TrimSpace(u.Name),
		Age:            u.Age,
		Gender:         strings.TrimSpace(u.Gender),
		Contact:        strings.TrimSpace(u.Contact),
		Address:        strings.TrimSpace(u.Address),
		MedicalHistory: strings.TrimSpace(u.MedicalHistory),
	}
}
