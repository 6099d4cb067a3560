package detection

import (
	"context"
	"io"
)

// Classifier predicts a lesion class for an image.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Prediction, error)
}

// ImageStorage persists lesion images.
type ImageStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
}

// Repository persists detection records. List filters by patient and
// diagnosis code and returns newest first with patient names joined.
type Repository interface {
	Create(ctx context.Context, record Record) (Record, error)
	Get(ctx context.Context, id int64) (Record, bool, error)
	List(ctx context.Context, filter HistoryFilter) ([]Record, error)
}

// PatientLookup resolves a patient's display name.
type PatientLookup interface {
	PatientName(ctx context.Context, id int64) (string, bool, error)
}
