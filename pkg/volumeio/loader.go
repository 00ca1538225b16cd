// Package volumeio reads stacks of 2D slice images from disk into volumes.
package volumeio

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"volumepipe/internal/logger"
	"volumepipe/internal/models"
	"volumepipe/pkg/region"
	"volumepipe/pkg/splitter"
	"volumepipe/pkg/threader"
	"volumepipe/pkg/volume"
)

const component = "volumeio"

// ErrNoSlices is returned when a directory holds no readable slice images.
var ErrNoSlices = errors.New("no slice images found")

// ErrSliceSize is returned when a slice's dimensions differ from the first slice.
var ErrSliceSize = errors.New("slice dimensions differ")

var sliceExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type options struct {
	threads int
	logger  logger.Logger
}

// Option configures LoadSlices.
type Option func(*options)

// WithThreads sets how many slices are decoded concurrently.
func WithThreads(n int) Option {
	return func(o *options) { o.threads = n }
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// LoadSlices reads every JPEG and PNG file in dir, ordered by the number
// embedded in the file name, into a volume of size (width, height, slices).
// Pixel values are the red channel scaled to [0, 1].
func LoadSlices(dir string, opts ...Option) (*volume.Image[float64], []models.Slice, error) {
	o := options{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	names, err := sliceFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	first, err := loadImage(filepath.Join(dir, names[0]))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load image %s: %w", names[0], err)
	}
	width, height := first.Bounds().Dx(), first.Bounds().Dy()
	if width == 0 || height == 0 {
		return nil, nil, fmt.Errorf("image %s is empty: %w", names[0], ErrNoSlices)
	}

	vol := volume.New[float64](region.FromSize(uint64(width), uint64(height), uint64(len(names))))
	slices := make([]models.Slice, len(names))
	planeSize := width * height

	th := threader.NewDomainThreader[splitter.IndexRange](splitter.IndexRangeSplitter{}, o.threads,
		threader.WithLogger(o.logger))
	err = th.Execute(splitter.IndexRange{Start: 0, End: len(names)}, threader.WorkFunc[splitter.IndexRange](
		func(item threader.WorkItem[splitter.IndexRange]) error {
			for i := item.Domain.Start; i < item.Domain.End; i++ {
				img := first
				if i > 0 {
					var err error
					if img, err = loadImage(filepath.Join(dir, names[i])); err != nil {
						return fmt.Errorf("failed to load image %s: %w", names[i], err)
					}
				}
				b := img.Bounds()
				if b.Dx() != width || b.Dy() != height {
					return fmt.Errorf("%s is %dx%d, want %dx%d: %w", names[i], b.Dx(), b.Dy(), width, height, ErrSliceSize)
				}
				imageToFloat(img, vol.Buffer()[i*planeSize:(i+1)*planeSize])
				slices[i] = models.Slice{Index: i, Filename: names[i], Width: width, Height: height}
			}
			return nil
		}))
	if err != nil {
		return nil, nil, err
	}

	o.logger.Info(component, "loaded slices", map[string]interface{}{
		"dir":     dir,
		"slices":  len(names),
		"width":   width,
		"height":  height,
		"threads": th.NumberOfThreadsUsed(),
	})
	return vol, slices, nil
}

// sliceFiles lists the slice images in dir in slice order.
func sliceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sliceExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoSlices)
	}

	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names, nil
}

// extractNumber returns the digits of a file name read as one number, or 0.
func extractNumber(filename string) int {
	var digits strings.Builder
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// imageToFloat writes the red channel of img, scaled to [0, 1], into dst in
// row-major order.
func imageToFloat(img image.Image, dst []float64) {
	b := img.Bounds()
	width := b.Dx()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			dst[y*width+x] = float64(r) / 65535.0
		}
	}
}
