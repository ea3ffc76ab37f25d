// Package vectorutils constructs vector.Driver implementations from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/kauni/pkg/vector"
	"github.com/papercomputeco/kauni/pkg/vector/chroma"
	"github.com/papercomputeco/kauni/pkg/vector/inmemory"
	"github.com/papercomputeco/kauni/pkg/vector/postgres"
	"github.com/papercomputeco/kauni/pkg/vector/qdrant"
	"github.com/papercomputeco/kauni/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType  string
	Target        string
	Table         string
	MatchFunction string
	Dimensions    uint
	APIKey        string
	Logger        *slog.Logger
}

// ProviderTypes lists the supported store providers.
func ProviderTypes() []string {
	return []string{"postgres", "sqlite", "chroma", "qdrant", "memory"}
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "postgres":
		return postgres.NewDriver(ctx, postgres.Config{
			ConnString:    o.Target,
			Table:         o.Table,
			MatchFunction: o.MatchFunction,
		}, o.Logger)
	case "sqlite":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Table:      o.Table,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chroma":
		return chroma.NewDriver(ctx, chroma.Config{
			URL:            o.Target,
			CollectionName: o.Table,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewDriver(ctx, qdrant.Config{
			Target:         o.Target,
			APIKey:         o.APIKey,
			CollectionName: o.Table,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
