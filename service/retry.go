package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"video-platform/repository"
)

const (
	raceRetries    = 3
	raceRetryDelay = 10 * time.Millisecond
)

func isRace(err error) bool {
	return errors.Is(err, repository.ErrDuplicate) || errors.Is(err, repository.ErrStale)
}

// retryOnRace reruns a read-then-write transaction when a concurrent request won the
// race: a unique constraint rejected the insert or a conditional write matched no row.
// Each attempt reads again. Any other error stops immediately.
func retryOnRace[T any](ctx context.Context, repo repository.Repository, fn func(ctx context.Context) (T, error)) (T, error) {
	operation := func() (T, error) {
		var result T
		err := repo.Transaction(ctx, func(ctx context.Context) error {
			var err error
			result, err = fn(ctx)
			return err
		})
		if err == nil {
			return result, nil
		}
		if isRace(err) {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("concurrent write, retrying")
			return result, err
		}
		return result, backoff.Permanent(err)
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(raceRetryDelay)),
		backoff.WithMaxTries(raceRetries),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if isRace(err) {
		return result, fmt.Errorf("%w: the resource changed concurrently, try again", ErrConflict)
	}
	return result, err
}
