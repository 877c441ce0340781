package quote

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ListOrder string

const (
	OrderAsc  ListOrder = "asc"
	OrderDesc ListOrder = "desc"
)

// Repository is the durable store for quotes. GetByID returns ErrNotFound when
// the id is absent; any other error is a storage failure.
type Repository interface {
	Insert(ctx context.Context, q Quote) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (Quote, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, order ListOrder) ([]Quote, error)
	// UpdateByID applies p in one statement. When expected is non-nil the row is
	// only touched if its current status equals *expected.
	UpdateByID(ctx context.Context, id uuid.UUID, p Patch, expected *Status) (int64, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
	ListExpirable(ctx context.Context, updatedBefore time.Time, limit int) ([]uuid.UUID, error)
}
