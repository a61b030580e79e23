package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/branch-ledger/internal/domain"
)

// DefaultMaxRetries reintentos por defecto ante domain.ErrConflict.
const DefaultMaxRetries = 3

// Policy reintentos acotados con backoff exponencial ante domain.ErrConflict.
// Notify (opcional) se llama antes de cada reintento.
type Policy struct {
	MaxRetries int
	Notify     func(err error, wait time.Duration)
}

// Do ejecuta fn y la reintenta mientras devuelva domain.ErrConflict, como máximo MaxRetries veces.
// Cualquier otro error se devuelve de inmediato.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 20 * time.Millisecond
	eb.MaxInterval = 500 * time.Millisecond
	eb.MaxElapsedTime = 5 * time.Second

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxRetries)), ctx)
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}
	if p.Notify == nil {
		return backoff.Retry(op, b)
	}
	return backoff.RetryNotify(op, b, p.Notify)
}
