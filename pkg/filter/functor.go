package filter

import (
	"volumepipe/pkg/region"
	"volumepipe/pkg/volume"
)

// UnaryFunctorFilter computes output[p] = f(input[p]) for every pixel.
type UnaryFunctorFilter[I, O volume.Pixel] struct {
	Base
	input   *volume.Image[I]
	functor func(I) O
	output  *volume.Image[O]
	pending *volume.Image[O]
}

// NewUnaryFunctorFilter creates a filter applying functor to every pixel.
func NewUnaryFunctorFilter[I, O volume.Pixel](functor func(I) O, opts ...Option) *UnaryFunctorFilter[I, O] {
	f := &UnaryFunctorFilter[I, O]{functor: functor}
	f.init("UnaryFunctorFilter", opts...)
	return f
}

// SetInput sets the image the functor reads.
func (f *UnaryFunctorFilter[I, O]) SetInput(img *volume.Image[I]) { f.input = img }

// SetFunctor replaces the per-pixel function.
func (f *UnaryFunctorFilter[I, O]) SetFunctor(fn func(I) O) { f.functor = fn }

// Output returns the image produced by the last successful Update. A failed
// Update leaves it unchanged.
func (f *UnaryFunctorFilter[I, O]) Output() *volume.Image[O] { return f.output }

// Update runs the filter over the whole input region.
func (f *UnaryFunctorFilter[I, O]) Update() error {
	var out region.Region
	if f.input != nil {
		out = f.input.Region()
	}
	inputs := []Input{
		imageInput("Input", f.input),
		{Name: "Functor", Present: f.functor != nil},
	}
	err := f.GenerateData(out, inputs, func() error {
		f.pending = volume.New[O](out)
		return nil
	}, f.threadedGenerateData)
	if err == nil {
		f.output = f.pending
	}
	f.pending = nil
	return err
}

func (f *UnaryFunctorFilter[I, O]) threadedGenerateData(sub region.Region, threadID int) error {
	in, out := f.input.Buffer(), f.pending.Buffer()
	f.pending.ForEachIndex(sub, func(_ region.Index, off int) {
		out[off] = f.functor(in[off])
	})
	f.completed(sub.NumberOfPixels())
	return nil
}

// BinaryFunctorFilter computes output[p] = f(input1[p], input2[p]).
type BinaryFunctorFilter[I1, I2, O volume.Pixel] struct {
	Base
	input1  *volume.Image[I1]
	input2  *volume.Image[I2]
	functor func(I1, I2) O
	output  *volume.Image[O]
	pending *volume.Image[O]
}

// NewBinaryFunctorFilter creates a filter combining two images pixel by pixel.
func NewBinaryFunctorFilter[I1, I2, O volume.Pixel](functor func(I1, I2) O, opts ...Option) *BinaryFunctorFilter[I1, I2, O] {
	f := &BinaryFunctorFilter[I1, I2, O]{functor: functor}
	f.init("BinaryFunctorFilter", opts...)
	return f
}

// SetInput1 sets the first image; its region becomes the output region.
func (f *BinaryFunctorFilter[I1, I2, O]) SetInput1(img *volume.Image[I1]) { f.input1 = img }

// SetInput2 sets the second image.
func (f *BinaryFunctorFilter[I1, I2, O]) SetInput2(img *volume.Image[I2]) { f.input2 = img }

// SetFunctor replaces the per-pixel function.
func (f *BinaryFunctorFilter[I1, I2, O]) SetFunctor(fn func(I1, I2) O) { f.functor = fn }

// Output returns the image produced by the last successful Update.
func (f *BinaryFunctorFilter[I1, I2, O]) Output() *volume.Image[O] { return f.output }

// Update runs the filter over the region of the first input. Both inputs
// must cover exactly that region.
func (f *BinaryFunctorFilter[I1, I2, O]) Update() error {
	var out region.Region
	if f.input1 != nil {
		out = f.input1.Region()
	}
	inputs := []Input{
		imageInput("Input1", f.input1),
		imageInput("Input2", f.input2),
		{Name: "Functor", Present: f.functor != nil},
	}
	err := f.GenerateData(out, inputs, func() error {
		f.pending = volume.New[O](out)
		return nil
	}, f.threadedGenerateData)
	if err == nil {
		f.output = f.pending
	}
	f.pending = nil
	return err
}

func (f *BinaryFunctorFilter[I1, I2, O]) threadedGenerateData(sub region.Region, threadID int) error {
	in1, in2, out := f.input1.Buffer(), f.input2.Buffer(), f.pending.Buffer()
	f.pending.ForEachIndex(sub, func(_ region.Index, off int) {
		out[off] = f.functor(in1[off], in2[off])
	})
	f.completed(sub.NumberOfPixels())
	return nil
}

// TernaryFunctorFilter computes output[p] = f(input1[p], input2[p], input3[p]).
type TernaryFunctorFilter[I1, I2, I3, O volume.Pixel] struct {
	Base
	input1  *volume.Image[I1]
	input2  *volume.Image[I2]
	input3  *volume.Image[I3]
	functor func(I1, I2, I3) O
	output  *volume.Image[O]
	pending *volume.Image[O]
}

// NewTernaryFunctorFilter creates a filter combining three images pixel by pixel.
func NewTernaryFunctorFilter[I1, I2, I3, O volume.Pixel](functor func(I1, I2, I3) O, opts ...Option) *TernaryFunctorFilter[I1, I2, I3, O] {
	f := &TernaryFunctorFilter[I1, I2, I3, O]{functor: functor}
	f.init("TernaryFunctorFilter", opts...)
	return f
}

// SetInput1 sets the first image; its region becomes the output region.
func (f *TernaryFunctorFilter[I1, I2, I3, O]) SetInput1(img *volume.Image[I1]) { f.input1 = img }

// SetInput2 sets the second image.
func (f *TernaryFunctorFilter[I1, I2, I3, O]) SetInput2(img *volume.Image[I2]) { f.input2 = img }

// SetInput3 sets the third image.
func (f *TernaryFunctorFilter[I1, I2, I3, O]) SetInput3(img *volume.Image[I3]) { f.input3 = img }

// SetFunctor replaces the per-pixel function.
func (f *TernaryFunctorFilter[I1, I2, I3, O]) SetFunctor(fn func(I1, I2, I3) O) { f.functor = fn }

// Output returns the image produced by the last successful Update.
func (f *TernaryFunctorFilter[I1, I2, I3, O]) Output() *volume.Image[O] { return f.output }

// Update runs the filter over the region of the first input. All three
// inputs must be set and cover exactly that region.
func (f *TernaryFunctorFilter[I1, I2, I3, O]) Update() error {
	var out region.Region
	if f.input1 != nil {
		out = f.input1.Region()
	}
	inputs := []Input{
		imageInput("Input1", f.input1),
		imageInput("Input2", f.input2),
		imageInput("Input3", f.input3),
		{Name: "Functor", Present: f.functor != nil},
	}
	err := f.GenerateData(out, inputs, func() error {
		f.pending = volume.New[O](out)
		return nil
	}, f.threadedGenerateData)
	if err == nil {
		f.output = f.pending
	}
	f.pending = nil
	return err
}

func (f *TernaryFunctorFilter[I1, I2, I3, O]) threadedGenerateData(sub region.Region, threadID int) error {
	in1, in2, in3, out := f.input1.Buffer(), f.input2.Buffer(), f.input3.Buffer(), f.pending.Buffer()
	f.pending.ForEachIndex(sub, func(_ region.Index, off int) {
		out[off] = f.functor(in1[off], in2[off], in3[off])
	})
	f.completed(sub.NumberOfPixels())
	return nil
}
