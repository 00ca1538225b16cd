package filter

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"volumepipe/pkg/region"
	"volumepipe/pkg/splitter"
	"volumepipe/pkg/threader"
	"volumepipe/pkg/volume"
)

// Statistics summarises the pixels of an image.
type Statistics struct {
	Minimum  float64
	Maximum  float64
	Sum      float64
	Mean     float64
	Variance float64
	Sigma    float64
	Count    uint64
}

type partialStatistics struct {
	min, max   float64
	sum, sumSq float64
	count      uint64
}

// StatisticsFilter computes Statistics over its input. Each worker reduces
// its own piece and the partial results are merged once all of them finish.
// Variance is the unbiased estimate; it is zero for fewer than two pixels.
type StatisticsFilter[T volume.Pixel] struct {
	Base
	input    *volume.Image[T]
	partials []partialStatistics
	result   Statistics
}

// NewStatisticsFilter creates a statistics filter with no input set.
func NewStatisticsFilter[T volume.Pixel](opts ...Option) *StatisticsFilter[T] {
	f := &StatisticsFilter[T]{}
	f.init("StatisticsFilter", opts...)
	return f
}

// SetInput sets the image to summarise.
func (f *StatisticsFilter[T]) SetInput(img *volume.Image[T]) { f.input = img }

// Statistics returns the result of the last successful Update.
func (f *StatisticsFilter[T]) Statistics() Statistics { return f.result }

// Update computes the statistics of the whole input.
func (f *StatisticsFilter[T]) Update() error {
	var whole region.Region
	if f.input != nil {
		whole = f.input.Region()
	}
	inputs := []Input{imageInput("Input", f.input)}
	return f.generate(whole, inputs, nil, func() (int, error) {
		th := threader.NewDomainThreader[region.Region](splitter.RegionPartitioner{}, f.numThreads, f.threaderOptions()...)
		err := th.Execute(whole, f)
		return th.NumberOfThreadsUsed(), err
	})
}

// BeforeThreadedExecution sizes the per-worker partial results.
func (f *StatisticsFilter[T]) BeforeThreadedExecution(used int) error {
	if used < 1 {
		return errors.New("no workers to run")
	}
	f.partials = make([]partialStatistics, used)
	return nil
}

// ThreadedExecution reduces one piece of the input into its worker's slot.
func (f *StatisticsFilter[T]) ThreadedExecution(item threader.WorkItem[region.Region]) error {
	n := item.Domain.NumberOfPixels()
	if n == 0 {
		return nil
	}
	buf := f.input.Buffer()
	values := make([]float64, 0, n)
	f.input.ForEachIndex(item.Domain, func(_ region.Index, off int) {
		values = append(values, float64(buf[off]))
	})
	f.partials[item.ThreadID] = partialStatistics{
		min:   floats.Min(values),
		max:   floats.Max(values),
		sum:   floats.Sum(values),
		sumSq: floats.Dot(values, values),
		count: n,
	}
	f.completed(n)
	return nil
}

// AfterThreadedExecution merges the partial results.
func (f *StatisticsFilter[T]) AfterThreadedExecution() error {
	s := Statistics{Minimum: math.Inf(1), Maximum: math.Inf(-1)}
	var sumSq float64
	for _, p := range f.partials {
		if p.count == 0 {
			continue
		}
		s.Minimum = math.Min(s.Minimum, p.min)
		s.Maximum = math.Max(s.Maximum, p.max)
		s.Sum += p.sum
		sumSq += p.sumSq
		s.Count += p.count
	}
	if s.Count == 0 {
		f.result = Statistics{}
		return nil
	}
	n := float64(s.Count)
	s.Mean = s.Sum / n
	if s.Count > 1 {
		s.Variance = math.Max(0, (sumSq-s.Sum*s.Sum/n)/(n-1))
	}
	s.Sigma = math.Sqrt(s.Variance)
	f.result = s
	f.partials = nil
	return nil
}
