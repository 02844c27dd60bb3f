package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mattn/go-sqlite3"
)

// Writes that lose a lock race with another process past the driver's busy
// timeout are retried with exponential backoff.
const (
	busyRetryTries    = 4
	busyRetryInitial  = 50 * time.Millisecond
	busyRetryInterval = time.Second
	busyRetryWindow   = 5 * time.Second
)

func isBusy(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked)
}

// retryBusy runs op until it succeeds, fails with anything other than a busy
// or locked database, or the retry budget runs out.
func retryBusy[T any](ctx context.Context, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = busyRetryInitial
	b.MaxInterval = busyRetryInterval

	res, err := backoff.Retry(ctx, func() (T, error) {
		res, err := op()
		if err != nil && !isBusy(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(busyRetryTries),
		backoff.WithMaxElapsedTime(busyRetryWindow),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	return res, err
}
