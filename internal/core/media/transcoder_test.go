package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestJPEG creates a test JPEG image with the specified dimensions.
func createTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 128, B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// createTestPNG creates a test PNG with a fully transparent left half.
func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.NRGBA{})
				continue
			}
			img.Set(x, y, color.NRGBA{R: 64, G: 128, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR dimensions of an encoded PNG without
// touching its pixel data.
func withDeclaredSize(t *testing.T, data []byte, width, height uint32) []byte {
	t.Helper()
	require.Equal(t, "IHDR", string(data[12:16]))
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func newTestTranscoder(t *testing.T) *ImageTranscoder {
	t.Helper()
	tr, err := NewTranscoder(DefaultConfig())
	require.NoError(t, err)
	return tr
}

func decodeDimensions(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy(), format
}

func TestTranscoder_Transcode_FitsInsideBox(t *testing.T) {
	tr := newTestTranscoder(t)

	tests := []struct {
		name       string
		srcWidth   int
		srcHeight  int
		wantWidth  int
		wantHeight int
	}{
		{name: "landscape 4:3", srcWidth: 1200, srcHeight: 900, wantWidth: 800, wantHeight: 600},
		{name: "portrait 9:16", srcWidth: 900, srcHeight: 1600, wantWidth: 450, wantHeight: 800},
		{name: "square", srcWidth: 1000, srcHeight: 1000, wantWidth: 800, wantHeight: 800},
		{name: "only width over limit", srcWidth: 1000, srcHeight: 300, wantWidth: 800, wantHeight: 240},
		{name: "small image is not upscaled", srcWidth: 320, srcHeight: 200, wantWidth: 320, wantHeight: 200},
		{name: "exactly at limit", srcWidth: 800, srcHeight: 800, wantWidth: 800, wantHeight: 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tr.Transcode(context.Background(), createTestJPEG(t, tt.srcWidth, tt.srcHeight))
			require.NoError(t, err)

			assert.Equal(t, OutputMimeType, out.MimeType)
			assert.Equal(t, tt.wantWidth, out.Width)
			assert.Equal(t, tt.wantHeight, out.Height)

			w, h, format := decodeDimensions(t, out.Data)
			assert.Equal(t, "jpeg", format)
			assert.Equal(t, tt.wantWidth, w)
			assert.Equal(t, tt.wantHeight, h)
		})
	}
}

func TestTranscoder_Transcode_PNGBecomesOpaqueJPEG(t *testing.T) {
	tr := newTestTranscoder(t)

	out, err := tr.Transcode(context.Background(), createTestPNG(t, 1600, 400))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	// Transparent pixels are composited onto white, not black.
	r, g, b, _ := img.At(10, 100).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestTranscoder_Transcode_InvalidInput(t *testing.T) {
	tr := newTestTranscoder(t)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "nil data", data: nil},
		{name: "empty data", data: []byte{}},
		{name: "not an image", data: []byte("definitely not an image")},
		{name: "truncated jpeg", data: createTestJPEG(t, 100, 100)[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tr.Transcode(context.Background(), tt.data)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestTranscoder_Transcode_SourceTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSourceSizeMB = 1
	tr, err := NewTranscoder(cfg)
	require.NoError(t, err)

	data := make([]byte, 1024*1024+1)
	_, err = tr.Transcode(context.Background(), data)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestTranscoder_Transcode_DeclaredPixelsOverLimit(t *testing.T) {
	tr := newTestTranscoder(t)
	data := withDeclaredSize(t, createTestPNG(t, 4, 4), 20000, 20000)
	require.Less(t, len(data), 1024)

	_, err := tr.Transcode(context.Background(), data)
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "20000x20000")
}

func TestTranscoder_Transcode_PixelLimitIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSourcePixels = 64 * 64
	tr, err := NewTranscoder(cfg)
	require.NoError(t, err)

	_, err = tr.Transcode(context.Background(), createTestPNG(t, 64, 64))
	require.NoError(t, err)

	_, err = tr.Transcode(context.Background(), createTestPNG(t, 65, 64))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestTranscoder_Transcode_CanceledWhileWaitingForSlot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1
	tr, err := NewTranscoder(cfg)
	require.NoError(t, err)

	// Occupy the only slot.
	require.NoError(t, tr.sem.Acquire(context.Background(), 1))
	defer tr.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = tr.Transcode(ctx, createTestJPEG(t, 10, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{1200, 900, 800, 800, 600},
		{900, 1200, 800, 600, 800},
		{4000, 1, 800, 800, 1},
		{1, 4000, 800, 1, 800},
		{799, 10, 800, 799, 10},
		{0, 10, 800, 0, 0},
		{1333, 1000, 800, 800, 600},
	}

	for _, tt := range tests {
		w, h := FitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w, "width for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "height for %dx%d", tt.w, tt.h)
	}
}

func TestNewTranscoder_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality = 0
	_, err := NewTranscoder(cfg)
	assert.ErrorIs(t, err, ErrInvalidQuality)
}
