package patient

import "context"

// Repository persists patient records.
type Repository interface {
	Create(ctx context.Context, p Patient) (Patient, error)
	Get(ctx context.Context, id int64) (Patient, bool, error)
	List(ctx context.Context) ([]Patient, error)
	SearchByName(ctx context.Context, query string) ([]Patient, error)
	Update(ctx context.Context, id int64, update Update) (Patient, bool, error)
}
