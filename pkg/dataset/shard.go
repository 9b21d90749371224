package dataset

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/David-Botos/irma-ingress/pkg/model"
)

// ImageFunc receives each decoded image with its record index
type ImageFunc func(ctx context.Context, index int, record model.Record, img *RGB) error

// LoadImages decodes the images of records on up to workers goroutines
// (runtime.NumCPU() when workers <= 0). fn may be called concurrently. The
// first error from the loader or fn cancels the remaining work and is returned.
func LoadImages(ctx context.Context, loader *ImageLoader, records []model.Record, workers int, fn ImageFunc) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, record := range records {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := loader.LoadImage(record.Path)
			if err != nil {
				return err
			}
			return fn(gctx, i, record, img)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
