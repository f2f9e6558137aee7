package usecase

import (
	"context"

	apperrors "github.com/tyratox/lazuli-auth/internal/errors"
)

// retryTransient runs an idempotent lookup and retries it exactly once when
// the store reports a transient failure. Anything else, including a transient
// failure on the retry, is returned as-is. Writes must not go through this
// helper.
func retryTransient[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err == nil || !apperrors.Is(err, apperrors.ErrTransient) {
		return result, err
	}
	if ctx.Err() != nil {
		return result, err
	}
	return fn(ctx)
}
