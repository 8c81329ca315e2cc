package internal

import (
	"context"

	"github.com/google/uuid"
)

type runIDKey struct{}

// WithRunID stores the seeding run id in ctx.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// GetRunIDFromContext extracts the seeding run id from ctx
func GetRunIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(runIDKey{})
	if value == nil {
		return uuid.Nil, false
	}

	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}

	return id, true
}
