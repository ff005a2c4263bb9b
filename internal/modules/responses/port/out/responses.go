package out

import (
	"context"

	"kreosurvey/internal/modules/responses/domain"
)

// MutateFunc receives the stored record (found=false when absent) and
// returns the record to write back.
type MutateFunc func(record domain.Record, found bool) (domain.Record, error)

type DocumentStore interface {
	Mutate(ctx context.Context, id string, fn MutateFunc) (domain.Record, error)
	Get(ctx context.Context, id string) (domain.Record, error)
	List(ctx context.Context) ([]domain.Record, error)
	Delete(ctx context.Context, id string) error
}
