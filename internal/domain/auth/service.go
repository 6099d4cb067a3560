package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
)

// Service exposes clinician authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (ClinicianView, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Profile(ctx context.Context, clinicianID int64) (ClinicianView, error)
}

type service struct {
	tokens *tokenIssuer
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	return &service{
		tokens: newTokenIssuer(cfg, time.Now),
		repo:   repo,
		logger: logger.With("component", "auth.service"),
	}
}

// Register relies on the repository's unique email constraint.
func (s *service) Register(ctx context.Context, req RegisterRequest) (ClinicianView, error) {
	clinician, err := req.normalize()
	if err != nil {
		return ClinicianView{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return ClinicianView{}, apperrors.Wrap(apperrors.CodeAuth, "failed to hash password", err)
	}
	clinician.PasswordHash = string(hash)

	created, err := s.repo.Create(ctx, clinician)
	switch {
	case errors.Is(err, ErrEmailExists):
		return ClinicianView{}, apperrors.Wrap(apperrors.CodeEmailExists, "email already registered", err)
	case err != nil:
		return ClinicianView{}, apperrors.Wrap(apperrors.CodeAuth, "failed to create clinician", err)
	}
	s.logger.Info("clinician registered", "clinician_id", created.ID, "role", created.Role)
	return toView(created), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}
	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "password cannot be empty", nil)
	}
	clinician, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeAuth, "failed to fetch clinician", err)
	}
	// Unknown emails still pay for one bcrypt comparison.
	hash := []byte(clinician.PasswordHash)
	if !found {
		hash = placeholderHash()
	}
	matched := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) == nil
	if !found || !matched {
		if found {
			s.logger.Warn("login rejected", "clinician_id", clinician.ID)
		}
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidCredentials, "invalid email or password", nil)
	}
	return s.issuePair(clinician)
}

func (s *service) ValidateToken(_ context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token missing", nil)
	}
	return s.tokens.parse(token, tokenAccess)
}

func (s *service) Profile(ctx context.Context, clinicianID int64) (ClinicianView, error) {
	clinician, err := s.lookup(ctx, clinicianID)
	if err != nil {
		return ClinicianView{}, err
	}
	return toView(clinician), nil
}

// Refresh issues a new pair from the stored account, so a role change applies
// from the next refresh.
func (s *service) Refresh(ctx context.Context, refreshToken string) (LoginResponse, error) {
	claims, err := s.tokens.parse(refreshToken, tokenRefresh)
	if err != nil {
		return LoginResponse{}, err
	}
	clinician, err := s.lookup(ctx, claims.ClinicianID)
	if err != nil {
		return LoginResponse{}, err
	}
	return s.issuePair(clinician)
}

func (s *service) lookup(ctx context.Context, id int64) (Clinician, error) {
	clinician, found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Clinician{}, apperrors.Wrap(apperrors.CodeAuth, "failed to load clinician", err)
	}
	if !found {
		return Clinician{}, apperrors.Wrap(apperrors.CodeUserNotFound, "clinician not found", nil)
	}
	return clinician, nil
}

func (s *service) issuePair(clinician Clinician) (LoginResponse, error) {
	resp := LoginResponse{Clinician: toView(clinician)}
	var err error
	if resp.Token, err = s.tokens.issue(clinician, tokenAccess); err != nil {
		return LoginResponse{}, err
	}
	if resp.RefreshToken, err = s.tokens.issue(clinician, tokenRefresh); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

var placeholderHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcrypt.DefaultCost)
	return hash
})

func toView(c Clinician) ClinicianView {
	return ClinicianView{
		ID:          c.ID,
		Email:       c.Email,
		DisplayName: c.DisplayName,
		Role:        c.Role,
		CreatedAt:   c.CreatedAt,
	}
}
