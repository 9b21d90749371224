package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// ImageStore returns the raw bytes stored at a record path
type ImageStore interface {
	ReadImage(path string) ([]byte, error)
}

// FileStore reads images from the local filesystem
type FileStore struct{}

// ReadImage reads the whole file. A missing file yields ErrImageNotFound.
func (FileStore) ReadImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ImageError{Path: path, Kind: ErrImageNotFound, Err: err}
	}
	return data, err
}

// ImageLoader decodes dataset images into RGB. Nothing is cached.
type ImageLoader struct {
	store   ImageStore
	metrics *LoadMetrics
	logger  *zap.Logger
}

// NewImageLoader creates an image loader. A nil store reads from disk.
func NewImageLoader(store ImageStore, logger *zap.Logger, metrics *LoadMetrics) *ImageLoader {
	if store == nil {
		store = FileStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageLoader{store: store, metrics: metrics, logger: logger}
}

// LoadImage reads and decodes the image at path
func (l *ImageLoader) LoadImage(path string) (*RGB, error) {
	img, err := l.loadImage(path)
	l.metrics.observeImage(err)
	if err != nil {
		l.logger.Debug("Failed to load image", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return img, nil
}

func (l *ImageLoader) loadImage(path string) (*RGB, error) {
	data, err := l.store.ReadImage(path)
	if err != nil {
		var imgErr *ImageError
		if errors.As(err, &imgErr) {
			return nil, err
		}
		return nil, &ImageError{Path: path, Kind: ErrImageNotFound, Err: err}
	}
	return DecodeRGB(path, bytes.NewReader(data))
}

// DecodeRGB decodes any registered image format and converts it to RGB
func DecodeRGB(path string, r io.Reader) (*RGB, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, &ImageError{Path: path, Kind: ErrImageDecode, Err: err}
	}
	return ToRGB(src), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrImageNotFound)
}

// RGB is an 8-bit, 3-channel image. Pix holds R, G, B per pixel, row-major.
type RGB struct {
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewRGB allocates a black image with the given bounds
func NewRGB(r image.Rectangle) *RGB {
	return &RGB{
		Pix:    make([]uint8, 3*r.Dx()*r.Dy()),
		Stride: 3 * r.Dx(),
		Rect:   r,
	}
}

// ToRGB converts src to RGB. Alpha is discarded without compositing and
// grayscale is replicated across the three channels.
func ToRGB(src image.Image) *RGB {
	b := src.Bounds()
	dst := NewRGB(b)

	switch s := src.(type) {
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				v := s.GrayAt(x, y).Y
				dst.set(x, y, v, v, v)
			}
		}
	case *image.Gray16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				v := uint8(s.Gray16At(x, y).Y >> 8)
				dst.set(x, y, v, v, v)
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				dst.set(x, y, c.R, c.G, c.B)
			}
		}
	}
	return dst
}

func (p *RGB) offset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
}

func (p *RGB) set(x, y int, r, g, b uint8) {
	i := p.offset(x, y)
	p.Pix[i], p.Pix[i+1], p.Pix[i+2] = r, g, b
}

// ColorModel implements image.Image
func (p *RGB) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image
func (p *RGB) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image
func (p *RGB) At(x, y int) color.Color {
	return p.RGBAt(x, y)
}

// RGBAt returns the opaque color at (x, y)
func (p *RGB) RGBAt(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := p.offset(x, y)
	return color.RGBA{R: p.Pix[i], G: p.Pix[i+1], B: p.Pix[i+2], A: 0xff}
}

// Channels returns the number of color channels
func (p *RGB) Channels() int {
	return 3
}

func (p *RGB) String() string {
	return fmt.Sprintf("RGB %dx%d", p.Rect.Dx(), p.Rect.Dy())
}
