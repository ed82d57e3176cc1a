package service

import (
	"context"
	"errors"
	"fmt"

	"todo-tracker/internal/model"
)

type owned interface {
	Owner() model.UserID
}

// ownedBy loads a record and checks it belongs to user. A missing record and a
// record owned by someone else produce the same error.
func ownedBy[T owned](ctx context.Context, get func(context.Context, string) (*T, error), user model.UserID, kind, id string) (*T, error) {
	record, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, notFound(kind, id)
		}
		return nil, err
	}
	if (*record).Owner() != user {
		return nil, notFound(kind, id)
	}
	return record, nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, model.ErrNotFound)
}
