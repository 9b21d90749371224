package dataset

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/irma-ingress/pkg/model"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestLoadImageGrayscale(t *testing.T) {
	dir := t.TempDir()
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(1, 1, color.Gray{Y: 200})
	path := ImagePath(dir, "1880")
	writePNG(t, path, gray)

	img, err := NewImageLoader(nil, nil, nil).LoadImage(path)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, 3, img.Channels())
	assert.Len(t, img.Pix, 3*3*2)
	assert.Equal(t, color.RGBA{R: 200, G: 200, B: 200, A: 0xff}, img.RGBAt(1, 1))
	assert.Equal(t, color.RGBA{A: 0xff}, img.RGBAt(0, 0))
}

func TestLoadImageDropsAlpha(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0x40})
	src.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 128, B: 0, A: 0xff})
	path := filepath.Join(dir, "rgba.png")
	writePNG(t, path, src)

	img, err := NewImageLoader(FileStore{}, nil, nil).LoadImage(path)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xff}, img.RGBAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 0xff}, img.RGBAt(1, 1))
	assert.Equal(t, color.RGBA{}, img.RGBAt(5, 5))
}

func TestLoadImageErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))

	metrics, err := NewLoadMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	loader := NewImageLoader(nil, nil, metrics)

	_, err = loader.LoadImage(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = loader.LoadImage(garbage)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageDecode)
	assert.NotErrorIs(t, err, ErrImageNotFound)

	var imgErr *ImageError
	require.True(t, errors.As(err, &imgErr))
	assert.Equal(t, garbage, imgErr.Path)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.images.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.images.WithLabelValues("decode_error")))
}

type memoryStore map[string][]byte

func (m memoryStore) ReadImage(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func TestLoadImageCustomStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, image.NewGray(image.Rect(0, 0, 1, 1)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	loader := NewImageLoader(memoryStore{"mem/a.png": data}, nil, nil)

	img, err := loader.LoadImage("mem/a.png")
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())

	_, err = loader.LoadImage("mem/b.png")
	assert.ErrorIs(t, err, ErrImageNotFound)
}

func TestLoadImagesSharded(t *testing.T) {
	dir := t.TempDir()
	var records []model.Record
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		path := ImagePath(dir, id)
		writePNG(t, path, image.NewGray(image.Rect(0, 0, 2, 2)))
		records = append(records, model.Record{ImageID: id, Path: path})
	}

	var mu sync.Mutex
	seen := make(map[int]string)
	err := LoadImages(context.Background(), NewImageLoader(nil, nil, nil), records, 2,
		func(_ context.Context, i int, r model.Record, img *RGB) error {
			mu.Lock()
			defer mu.Unlock()
			seen[i] = r.ImageID
			return nil
		})
	require.NoError(t, err)
	assert.Len(t, seen, 5)
	assert.Equal(t, "3", seen[2])
}

func TestLoadImagesStopsOnError(t *testing.T) {
	dir := t.TempDir()
	records := []model.Record{
		{ImageID: "missing", Path: ImagePath(dir, "missing")},
	}
	var calls int32
	err := LoadImages(context.Background(), NewImageLoader(nil, nil, nil), records, 0,
		func(context.Context, int, model.Record, *RGB) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = LoadImages(ctx, NewImageLoader(nil, nil, nil), records, 1,
		func(context.Context, int, model.Record, *RGB) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
