package visualization

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"volumepipe/internal/logger"
	"volumepipe/pkg/filter"
	"volumepipe/pkg/region"
	"volumepipe/pkg/threader"
	"volumepipe/pkg/volume"
)

// ErrNotVolume is returned for images that are not three-dimensional.
var ErrNotVolume = errors.New("viewer needs a 3D image")

// Viewer cuts 2D slices and sub-volumes out of a 3D volume with values in
// [0, 1]. Slices are filled in parallel, one piece of the slice per worker.
type Viewer struct {
	volume     *volume.Image[float64]
	threads    int
	logger     logger.Logger
	dispatcher *threader.Dispatcher
}

// Option configures a Viewer.
type Option func(*Viewer)

func WithThreads(n int) Option {
	return func(v *Viewer) { v.threads = threader.ClampThreads(n) }
}

func WithLogger(l logger.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewViewer creates a viewer over img.
func NewViewer(img *volume.Image[float64], opts ...Option) (*Viewer, error) {
	if img == nil || img.Dimension() != 3 {
		return nil, ErrNotVolume
	}
	v := &Viewer{
		volume:  img,
		threads: threader.ClampThreads(0),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.dispatcher = threader.NewDispatcher(threader.GlobalMaximumThreads, threader.WithLogger(v.logger))
	return v, nil
}

// ExtractSlice returns the plane of the volume at position along axis. The
// image's columns follow the lower remaining axis and its rows the higher.
func (v *Viewer) ExtractSlice(axis, position int) (image.Image, error) {
	whole := v.volume.Region()
	if axis < 0 || axis >= whole.Dimension() {
		return nil, fmt.Errorf("invalid axis: %d (must be 0, 1 or 2)", axis)
	}
	if position < 0 || uint64(position) >= whole.SizeAt(axis) {
		return nil, fmt.Errorf("position %d outside [0, %d) on axis %d", position, whole.SizeAt(axis), axis)
	}

	plane := whole.Clone()
	plane.SetIndexAt(axis, whole.IndexAt(axis)+int64(position))
	plane.SetSizeAt(axis, 1)

	cols, rows := whole.Slice(axis).SizeAt(0), whole.Slice(axis).SizeAt(1)
	colAxis, rowAxis := 0, 1
	if axis <= colAxis {
		colAxis++
	}
	if axis <= rowAxis {
		rowAxis++
	}

	img := image.NewGray16(image.Rect(0, 0, int(cols), int(rows)))
	buf := v.volume.Buffer()
	_, err := v.dispatcher.Execute(plane, v.threads, func(sub region.Region, _ int) error {
		v.volume.ForEachIndex(sub, func(idx region.Index, off int) {
			x := int(idx[colAxis] - whole.IndexAt(colAxis))
			y := int(idx[rowAxis] - whole.IndexAt(rowAxis))
			img.SetGray16(x, y, color.Gray16{Y: toGray16(buf[off])})
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ExtractRegion copies the sub-volume r out of the volume. r must lie
// entirely inside it.
func (v *Viewer) ExtractRegion(r region.Region) (*volume.Image[float64], error) {
	if r.IsEmpty() {
		return nil, fmt.Errorf("region %s is empty", r)
	}
	if !v.volume.Region().IsInsideRegion(r) {
		return nil, fmt.Errorf("region %s extends beyond volume %s", r, v.volume.Region())
	}
	f := filter.NewExtractFilter[float64](filter.WithThreads(v.threads), filter.WithLogger(v.logger))
	f.SetInput(v.volume)
	f.SetExtractionRegion(r)
	if err := f.Update(); err != nil {
		return nil, err
	}
	return f.Output(), nil
}

// SaveSlice writes img to filename as a 16-bit PNG.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SaveSliceSequence writes every slice along axis into outputDir.
func (v *Viewer) SaveSliceSequence(axis int, outputDir string) error {
	whole := v.volume.Region()
	if axis < 0 || axis >= whole.Dimension() {
		return fmt.Errorf("invalid axis: %d (must be 0, 1 or 2)", axis)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	count := int(whole.SizeAt(axis))
	for pos := 0; pos < count; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%d_%03d.png", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	v.logger.Info("visualization", "saved slice sequence", map[string]interface{}{
		"axis":   axis,
		"slices": count,
		"dir":    outputDir,
	})
	return nil
}

func toGray16(v float64) uint16 {
	return uint16(math.Max(0, math.Min(65535, v*65535)))
}
