package filter

import (
	"volumepipe/pkg/region"
	"volumepipe/pkg/volume"
)

// ExtractFilter copies the part of its input that falls inside an extraction
// region. The output keeps the input's indices: it covers the extraction
// region cropped to the input.
type ExtractFilter[T volume.Pixel] struct {
	Base
	input      *volume.Image[T]
	extraction region.Region
	hasRegion  bool
	output     *volume.Image[T]
	pending    *volume.Image[T]
}

// NewExtractFilter creates an extract filter with no input or region set.
func NewExtractFilter[T volume.Pixel](opts ...Option) *ExtractFilter[T] {
	f := &ExtractFilter[T]{}
	f.init("ExtractFilter", opts...)
	return f
}

// SetInput sets the image to copy from.
func (f *ExtractFilter[T]) SetInput(img *volume.Image[T]) { f.input = img }

// SetExtractionRegion sets the region to copy out of the input.
func (f *ExtractFilter[T]) SetExtractionRegion(r region.Region) {
	f.extraction = r.Clone()
	f.hasRegion = true
}

// Output returns the image produced by the last successful Update.
func (f *ExtractFilter[T]) Output() *volume.Image[T] { return f.output }

// Update copies the extraction region, cropped to the input, into a new
// output image. An extraction region that misses the input entirely is a
// configuration error.
func (f *ExtractFilter[T]) Update() error {
	out := f.extraction.Clone()
	var invalid error
	if f.input != nil && f.hasRegion && (!out.Crop(f.input.Region()) || out.IsEmpty()) {
		invalid = ErrEmptyExtraction
	}
	inputs := []Input{
		{Name: "Input", Present: f.input != nil},
		{Name: "ExtractionRegion", Present: f.hasRegion, Invalid: invalid},
	}
	err := f.GenerateData(out, inputs, func() error {
		f.pending = volume.New[T](out)
		return nil
	}, f.threadedGenerateData)
	if err == nil {
		f.output = f.pending
	}
	f.pending = nil
	return err
}

func (f *ExtractFilter[T]) threadedGenerateData(sub region.Region, threadID int) error {
	in, out := f.input.Buffer(), f.pending.Buffer()
	f.pending.ForEachIndex(sub, func(idx region.Index, off int) {
		out[off] = in[f.input.Offset(idx)]
	})
	f.completed(sub.NumberOfPixels())
	return nil
}
