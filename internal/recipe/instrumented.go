package recipe

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/pkg/metrics"
)

// Instrumented counts lookups per record as found, missing or error.
type Instrumented struct {
	Store
	backend string
	m       *metrics.Metrics
}

// Instrument wraps s so that lookups are recorded in m under backend.
func Instrument(s Store, backend string, m *metrics.Metrics) Store {
	if m == nil {
		return s
	}
	return &Instrumented{Store: s, backend: backend, m: m}
}

func (i *Instrumented) Get(ctx context.Context, id string) (*Recipe, error) {
	r, err := i.Store.Get(ctx, id)
	switch {
	case errors.Is(err, apperrors.ErrRecordNotFound):
		i.count("missing", 1)
	case err != nil:
		i.count("error", 1)
	default:
		i.count("found", 1)
	}
	return r, err
}

func (i *Instrumented) GetMany(ctx context.Context, ids []string) (map[string]*Recipe, error) {
	out, err := i.Store.GetMany(ctx, ids)
	if err != nil {
		i.count("error", len(ids))
		return nil, err
	}
	i.count("found", len(out))
	i.count("missing", len(dedupe(ids))-len(out))
	return out, nil
}

// Put forwards to the wrapped store when it is a Loader.
func (i *Instrumented) Put(ctx context.Context, recipes []*Recipe) error {
	l, ok := i.Store.(Loader)
	if !ok {
		return fmt.Errorf("%w: %s store does not accept writes", apperrors.ErrInvalidInput, i.backend)
	}
	return l.Put(ctx, recipes)
}

func (i *Instrumented) count(status string, n int) {
	if n > 0 {
		i.m.StoreLookupsTotal.WithLabelValues(i.backend, status).Add(float64(n))
	}
}
