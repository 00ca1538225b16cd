package visualization

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"volumepipe/pkg/region"
	"volumepipe/pkg/volume"
)

// testVolume builds a volume whose value encodes its coordinates.
func testVolume(width, height, depth int) *volume.Image[float64] {
	img := volume.New[float64](region.FromSize(uint64(width), uint64(height), uint64(depth)))
	img.ForEachIndex(img.Region(), func(idx region.Index, off int) {
		img.Buffer()[off] = float64(idx[0]+10*idx[1]+100*idx[2]) / 1000
	})
	return img
}

func TestNewViewerRejectsNonVolumes(t *testing.T) {
	if _, err := NewViewer(nil); err == nil {
		t.Error("Expected error for nil volume")
	}
	flat := volume.New[float64](region.FromSize(4, 4))
	if _, err := NewViewer(flat); err == nil {
		t.Error("Expected error for 2D image")
	}
}

// TestExtractSlice verifies that every axis yields the expected plane
func TestExtractSlice(t *testing.T) {
	vol := testVolume(6, 5, 4)
	viewer, err := NewViewer(vol, WithThreads(3))
	if err != nil {
		t.Fatalf("NewViewer failed: %v", err)
	}

	tests := []struct {
		axis, position int
		width, height  int
		at             func(x, y int) region.Index
	}{
		{0, 2, 5, 4, func(x, y int) region.Index { return region.Index{2, int64(x), int64(y)} }},
		{1, 3, 6, 4, func(x, y int) region.Index { return region.Index{int64(x), 3, int64(y)} }},
		{2, 1, 6, 5, func(x, y int) region.Index { return region.Index{int64(x), int64(y), 1} }},
	}
	for _, tt := range tests {
		img, err := viewer.ExtractSlice(tt.axis, tt.position)
		if err != nil {
			t.Fatalf("axis %d: %v", tt.axis, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() != tt.width || bounds.Dy() != tt.height {
			t.Fatalf("axis %d: expected %dx%d, got %dx%d", tt.axis, tt.width, tt.height, bounds.Dx(), bounds.Dy())
		}
		gray := img.(*image.Gray16)
		for y := 0; y < tt.height; y++ {
			for x := 0; x < tt.width; x++ {
				want := toGray16(vol.At(tt.at(x, y)))
				if got := gray.Gray16At(x, y).Y; got != want {
					t.Errorf("axis %d (%d,%d): expected %d, got %d", tt.axis, x, y, want, got)
				}
			}
		}
	}
}

func TestExtractSliceInvalidArguments(t *testing.T) {
	viewer, _ := NewViewer(testVolume(4, 4, 4))
	for _, c := range [][2]int{{3, 0}, {-1, 0}, {0, 4}, {2, -1}} {
		if _, err := viewer.ExtractSlice(c[0], c[1]); err == nil {
			t.Errorf("Expected error for axis %d position %d", c[0], c[1])
		}
	}
}

// TestExtractRegion verifies sub-volume extraction keeps values and indices
func TestExtractRegion(t *testing.T) {
	vol := testVolume(8, 8, 8)
	viewer, _ := NewViewer(vol, WithThreads(2))

	r := region.New(region.Index{2, 3, 4}, region.Size{3, 2, 4})
	sub, err := viewer.ExtractRegion(r)
	if err != nil {
		t.Fatalf("ExtractRegion failed: %v", err)
	}
	if !sub.Region().Equal(r) {
		t.Fatalf("Expected region %s, got %s", r, sub.Region())
	}
	sub.ForEachIndex(r, func(idx region.Index, _ int) {
		if sub.At(idx) != vol.At(idx) {
			t.Errorf("Value mismatch at %v", idx)
		}
	})

	outside := region.New(region.Index{6, 0, 0}, region.Size{4, 1, 1})
	if _, err := viewer.ExtractRegion(outside); err == nil {
		t.Error("Expected error for region beyond volume")
	}
	if _, err := viewer.ExtractRegion(region.New(region.Index{0, 0, 0}, region.Size{0, 1, 1})); err == nil {
		t.Error("Expected error for empty region")
	}
}

// TestSaveSlice verifies that a slice round-trips through PNG
func TestSaveSlice(t *testing.T) {
	viewer, _ := NewViewer(testVolume(5, 5, 2))
	img, err := viewer.ExtractSlice(2, 1)
	if err != nil {
		t.Fatalf("ExtractSlice failed: %v", err)
	}

	filename := filepath.Join(t.TempDir(), "slice.png")
	if err := viewer.SaveSlice(img, filename); err != nil {
		t.Fatalf("SaveSlice failed: %v", err)
	}

	file, err := os.Open(filename)
	if err != nil {
		t.Fatalf("Failed to open saved slice: %v", err)
	}
	defer file.Close()
	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Failed to decode saved slice: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}
	r1, _, _, _ := decoded.At(3, 4).RGBA()
	r2, _, _, _ := img.At(3, 4).RGBA()
	if r1 != r2 {
		t.Errorf("Expected pixel %d, got %d", r2, r1)
	}
}

// TestSaveSliceSequence verifies one file is written per position
func TestSaveSliceSequence(t *testing.T) {
	viewer, _ := NewViewer(testVolume(4, 3, 5))
	dir := filepath.Join(t.TempDir(), "seq")

	if err := viewer.SaveSliceSequence(1, dir); err != nil {
		t.Fatalf("SaveSliceSequence failed: %v", err)
	}
	for pos := 0; pos < 3; pos++ {
		name := filepath.Join(dir, fmt.Sprintf("slice_1_%03d.png", pos))
		if _, err := os.Stat(name); err != nil {
			t.Errorf("Expected file %s: %v", name, err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Errorf("Expected 3 files, got %d", len(entries))
	}

	if err := viewer.SaveSliceSequence(7, dir); err == nil {
		t.Error("Expected error for invalid axis")
	}
}
