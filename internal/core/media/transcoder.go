package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"math"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/semaphore"
)

// Transcoder normalizes raw uploads into a bounded, fixed-format image.
type Transcoder interface {
	// Transcode decodes data, fits it inside the configured bounding box without
	// upscaling, and re-encodes it as JPEG. Undecodable input yields ErrInvalidImage.
	Transcode(ctx context.Context, data []byte) (*Image, error)
}

// ImageTranscoder implements Transcoder using the imaging library.
// Concurrent calls are bounded by a weighted semaphore.
type ImageTranscoder struct {
	sem            *semaphore.Weighted
	maxDimension   int
	quality        int
	maxSourceBytes int64
	maxPixels      int64
}

// NewTranscoder creates a transcoder from a validated Config.
func NewTranscoder(cfg Config) (*ImageTranscoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ImageTranscoder{
		sem:            semaphore.NewWeighted(int64(cfg.Workers)),
		maxDimension:   cfg.MaxDimension,
		quality:        cfg.Quality,
		maxSourceBytes: cfg.MaxSourceBytes(),
		maxPixels:      int64(cfg.MaxSourcePixels),
	}, nil
}

// Transcode implements Transcoder.
func (t *ImageTranscoder) Transcode(ctx context.Context, data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image data", ErrInvalidImage)
	}
	if int64(len(data)) > t.maxSourceBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d bytes", ErrInvalidImage, len(data), t.maxSourceBytes)
	}

	// Headers are cheap to read; a small file can still declare a huge canvas.
	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if pixels := int64(header.Width) * int64(header.Height); pixels > t.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds limit of %d pixels", ErrInvalidImage, header.Width, header.Height, t.maxPixels)
	}

	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for transcode slot: %w", err)
	}
	defer t.sem.Release(1)

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	width, height := FitWithin(img.Bounds().Dx(), img.Bounds().Dy(), t.maxDimension)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrInvalidImage)
	}

	var processed image.Image = img
	if width != img.Bounds().Dx() || height != img.Bounds().Dy() {
		processed = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	processed = flatten(processed)

	// The resize can take a while on large sources; don't encode for a caller
	// that has already gone away.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return &Image{
		Data:     buf.Bytes(),
		MimeType: OutputMimeType,
		Width:    width,
		Height:   height,
	}, nil
}

// FitWithin returns the dimensions of a width x height image scaled to fit a
// maxDimension square, preserving aspect ratio. Images already inside the box
// keep their size. Each side is rounded to the nearest pixel, minimum 1.
func FitWithin(width, height, maxDimension int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}

	scale := math.Min(float64(maxDimension)/float64(width), float64(maxDimension)/float64(height))
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	return max(w, 1), max(h, 1)
}

// flatten composites images with transparency onto white, since JPEG has no
// alpha channel and the encoder would otherwise render transparent pixels black.
func flatten(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}
