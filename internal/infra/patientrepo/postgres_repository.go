package patientrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/skinscan/internal/domain/patient"
)

const patientColumns = `id, name, age, gender, contact, address, medical_history, created_at`

// PostgresRepository implements patient.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a patient row.
func (r *PostgresRepository) Create(ctx context.Context, p patient.Patient) (patient.Patient, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (name, age, gender, contact, address, medical_history)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+patientColumns,
		p.Name, p.Age, p.Gender, p.Contact, p.Address, p.MedicalHistory)
	return scanPatient(row)
}

// Get fetches a patient by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (patient.Patient, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE id = $1
		LIMIT 1
	`, id)
	if err != nil {
		return patient.Patient{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return patient.Patient{}, false, rows.Err()
	}
	p, err := scanPatient(rows)
	if err != nil {
		return patient.Patient{}, false, err
	}
	return p, true, rows.Err()
}

// List returns all patients, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]patient.Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	return collectPatients(rows)
}

// SearchByName matches a case-insensitive substring of the name.
func (r *PostgresRepository) SearchByName(ctx context.Context, query string) ([]patient.Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC, id DESC
	`, escapeLike(query))
	if err != nil {
		return nil, err
	}
	return collectPatients(rows)
}

// Update applies the non-empty fields of update.
func (r *PostgresRepository) Update(ctx context.Context, id int64, update patient.Update) (patient.Patient, bool, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != "" {
		add("name", update.Name)
	}
	if update.Age != 0 {
		add("age", update.Age)
	}
	if update.Gender != "" {
		add("gender", update.Gender)
	}
	if update.Contact != "" {
		add("contact", update.Contact)
	}
	if update.Address != "" {
		add("address", update.Address)
	}
	if update.MedicalHistory != "" {
		add("medical_history", update.MedicalHistory)
	}
	if len(sets) == 0 {
		return r.Get(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE patients SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), patientColumns)
	p, err := scanPatient(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return patient.Patient{}, false, nil
		}
		return patient.Patient{}, false, err
	}
	return p, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (patient.Patient, error) {
	var (
		p       patient.Patient
		created time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Address, &p.MedicalHistory, &created); err != nil {
		return patient.Patient{}, err
	}
	p.CreatedAt = created.UTC()
	return p, nil
}

func collectPatients(rows pgx.Rows) ([]patient.Patient, error) {
	defer rows.Close()
	var items []patient.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func escapeLike(raw string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(raw)
}

var _ patient.Repository = (*PostgresRepository)(nil)
