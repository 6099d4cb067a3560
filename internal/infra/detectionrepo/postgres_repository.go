package detectionrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/skinscan/internal/domain/detection"
)

const selectRecord = `
	SELECT d.id, d.patient_id, COALESCE(p.name, ''), d.image_key, d.content_type,
		d.prediction, d.confidence, d.distribution, d.features,
		d.lesion_location, d.notes, d.created_at
	FROM detection_results d
	LEFT JOIN patients p ON p.id = d.patient_id
`

// PostgresRepository implements detection.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a detection row.
func (r *PostgresRepository) Create(ctx context.Context, record detection.Record) (detection.Record, error) {
	distribution, err := json.Marshal(record.Distribution)
	if err != nil {
		return detection.Record{}, fmt.Errorf("encode distribution: %w", err)
	}
	features, err := json.Marshal(record.Features)
	if err != nil {
		return detection.Record{}, fmt.Errorf("encode features: %w", err)
	}
	var created time.Time
	err = r.pool.QueryRow(ctx, `
		INSERT INTO detection_results
			(patient_id, image_key, content_type, prediction, confidence, distribution, features, lesion_location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, record.PatientID, record.ImageKey, record.ContentType, record.Prediction, record.Confidence,
		distribution, features, record.LesionLocation, record.Notes,
	).Scan(&record.ID, &created)
	if err != nil {
		return detection.Record{}, err
	}
	record.CreatedAt = created.UTC()
	return record, nil
}

// Get fetches a record by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (detection.Record, bool, error) {
	record, err := scanRecord(r.pool.QueryRow(ctx, selectRecord+` WHERE d.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return detection.Record{}, false, nil
		}
		return detection.Record{}, false, err
	}
	return record, true, nil
}

// List returns matching records, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter detection.HistoryFilter) ([]detection.Record, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.PatientID > 0 {
		args = append(args, filter.PatientID)
		clauses = append(clauses, fmt.Sprintf("d.patient_id = $%d", len(args)))
	}
	if len(filter.Diagnoses) > 0 {
		args = append(args, filter.Diagnoses)
		clauses = append(clauses, fmt.Sprintf("d.prediction = ANY($%d)", len(args)))
	}
	query := selectRecord
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY d.created_at DESC, d.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []detection.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, record)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (detection.Record, error) {
	var (
		record       detection.Record
		distribution []byte
		features     []byte
		created      time.Time
	)
	if err := row.Scan(
		&record.ID, &record.PatientID, &record.PatientName, &record.ImageKey, &record.ContentType,
		&record.Prediction, &record.Confidence, &distribution, &features,
		&record.LesionLocation, &record.Notes, &created,
	); err != nil {
		return detection.Record{}, err
	}
	if len(distribution) > 0 {
		if err := json.Unmarshal(distribution, &record.Distribution); err != nil {
			return detection.Record{}, fmt.Errorf("decode distribution: %w", err)
		}
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &record.Features); err != nil {
			return detection.Record{}, fmt.Errorf("decode features: %w", err)
		}
	}
	record.CreatedAt = created.UTC()
	return record, nil
}

var _ detection.Repository = (*PostgresRepository)(nil)
