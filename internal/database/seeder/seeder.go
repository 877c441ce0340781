package seeder

import (
	"context"

	"guardquote/internal/database"
)

// Seeder inserts fixed demo rows. Running a seeder twice must not duplicate data.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
