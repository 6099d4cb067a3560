package clinicianrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/skinscan/internal/domain/auth"
)

const uniqueViolation = "23505"

// PostgresRepository persists clinicians in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new clinician row.
func (r *PostgresRepository) Create(ctx context.Context, c auth.Clinician) (auth.Clinician, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clinicians (email, display_name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, display_name, role, password_hash, created_at
	`, c.Email, c.DisplayName, string(c.Role), c.PasswordHash)
	clinician, err := scanClinician(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.Clinician{}, auth.ErrEmailExists
		}
		return auth.Clinician{}, err
	}
	return clinician, nil
}

// GetByEmail fetches a clinician by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.Clinician, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, display_name, role, password_hash, created_at
		FROM clinicians
		WHERE email = $1
		LIMIT 1
	`, email)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.Clinician, bool, error) {
	return r.getOne(ctx, `
		SELECT id, email, display_name, role, password_hash, created_at
		FROM clinicians
		WHERE id = $1
		LIMIT 1
	`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (auth.Clinician, bool, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return auth.Clinician{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.Clinician{}, false, rows.Err()
	}
	clinician, err := scanClinician(rows)
	if err != nil {
		return auth.Clinician{}, false, err
	}
	return clinician, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClinician(row rowScanner) (auth.Clinician, error) {
	var (
		clinician auth.Clinician
		role      string
		created   time.Time
	)
	if err := row.Scan(&clinician.ID, &clinician.Email, &clinician.DisplayName, &role, &clinician.PasswordHash, &created); err != nil {
		return auth.Clinician{}, err
	}
	clinician.Role = auth.Role(role)
	clinician.CreatedAt = created.UTC()
	return clinician, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
