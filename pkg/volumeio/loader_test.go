package volumeio

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volumepipe/pkg/region"
)

func writePNG(t *testing.T, path string, w, h int, value uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestLoadSlicesOrdersByNumber(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "slice10.png"), 4, 3, 255)
	writePNG(t, filepath.Join(dir, "slice2.png"), 4, 3, 0)
	writePNG(t, filepath.Join(dir, "slice1.png"), 4, 3, 51)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	vol, slices, err := LoadSlices(dir, WithThreads(2))
	require.NoError(t, err)

	assert.True(t, region.FromSize(4, 3, 3).Equal(vol.Region()))
	require.Len(t, slices, 3)
	assert.Equal(t, "slice1.png", slices[0].Filename)
	assert.Equal(t, "slice2.png", slices[1].Filename)
	assert.Equal(t, "slice10.png", slices[2].Filename)
	assert.Equal(t, 2, slices[2].Index)
	assert.Equal(t, 4, slices[0].Width)

	assert.InDelta(t, 0.2, vol.At(region.Index{1, 1, 0}), 1e-9)
	assert.Zero(t, vol.At(region.Index{3, 2, 1}))
	assert.InDelta(t, 1.0, vol.At(region.Index{0, 0, 2}), 1e-9)
}

func TestLoadSlicesReadsJPEG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	f, err := os.Create(filepath.Join(dir, "001.jpg"))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 100}))
	require.NoError(t, f.Close())

	vol, slices, err := LoadSlices(dir)
	require.NoError(t, err)
	require.Len(t, slices, 1)
	assert.InDelta(t, 128.0/255.0, vol.At(region.Index{4, 4, 0}), 0.02)
}

func TestLoadSlicesEmptyDirectory(t *testing.T) {
	_, _, err := LoadSlices(t.TempDir())
	assert.ErrorIs(t, err, ErrNoSlices)
}

func TestLoadSlicesMissingDirectory(t *testing.T) {
	_, _, err := LoadSlices(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestLoadSlicesRejectsMixedSizes(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "1.png"), 4, 4, 10)
	writePNG(t, filepath.Join(dir, "2.png"), 5, 4, 10)
	writePNG(t, filepath.Join(dir, "3.png"), 4, 4, 10)

	_, _, err := LoadSlices(dir, WithThreads(3))
	assert.ErrorIs(t, err, ErrSliceSize)
}

func TestExtractNumber(t *testing.T) {
	tests := map[string]int{
		"slice_042.jpg":   42,
		"IMG-7-of-9.png":  79,
		"no-digits.jpeg":  0,
		"dir/sub/12.png":  12,
	}
	for name, want := range tests {
		assert.Equal(t, want, extractNumber(name), name)
	}
}

func TestImageToFloatHonoursBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(2, 3, 4, 5))
	img.Set(3, 4, color.RGBA{R: 255, A: 255})
	dst := make([]float64, 4)
	imageToFloat(img, dst)
	assert.Equal(t, []float64{0, 0, 0, 1}, dst)
}
