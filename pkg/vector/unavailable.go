package vector

import (
	"context"
	"fmt"
)

// UnavailableDriver stands in for a store that could not be reached at
// startup. Every operation fails with ErrStore and ErrUnavailable, which the
// retrieval cascade absorbs like any other store failure.
type UnavailableDriver struct {
	Err error
}

func (d *UnavailableDriver) err() error {
	return fmt.Errorf("%w: %w: %v", ErrStore, ErrUnavailable, d.Err)
}

func (d *UnavailableDriver) Upsert(context.Context, []Document) error {
	return d.err()
}

func (d *UnavailableDriver) Query(context.Context, []float32, int) ([]QueryResult, error) {
	return nil, d.err()
}

func (d *UnavailableDriver) Scan(context.Context, int) ([]QueryResult, error) {
	return nil, d.err()
}

func (d *UnavailableDriver) Count(context.Context) (int, error) {
	return 0, d.err()
}

func (d *UnavailableDriver) Close() error {
	return nil
}

var _ Driver = (*UnavailableDriver)(nil)
