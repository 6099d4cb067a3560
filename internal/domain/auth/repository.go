package auth

import (
	"context"
	"errors"
)

// ErrEmailExists is returned by Create when the email is already registered.
var ErrEmailExists = errors.New("email already exists")

// Repository abstracts clinician persistence. Emails are stored lowercased
// and are unique.
type Repository interface {
	// Create assigns ID and CreatedAt.
	Create(ctx context.Context, clinician Clinician) (Clinician, error)
	GetByEmail(ctx context.Context, email string) (Clinician, bool, error)
	GetByID(ctx context.Context, id int64) (Clinician, bool, error)
}
