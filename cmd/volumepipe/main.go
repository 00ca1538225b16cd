package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"volumepipe/internal/logger"
	"volumepipe/pkg/config"
	"volumepipe/pkg/filter"
	"volumepipe/pkg/region"
	"volumepipe/pkg/splitter"
	"volumepipe/pkg/threader"
	"volumepipe/pkg/visualization"
	"volumepipe/pkg/volume"
	"volumepipe/pkg/volumeio"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "volumepipe: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("volumepipe", flag.ContinueOnError)
	configPath := fs.String("config", "volumepipe.yaml", "YAML configuration file")
	inputDir := fs.String("input", "", "Directory of 2D slices; a synthetic volume is used when empty")
	size := fs.String("size", "64x64x32", "Size of the synthetic volume, e.g. 64x64x32")
	threads := fs.Int("threads", 0, "Number of threads (default: from config)")
	op := fs.String("op", "identity", "Operation: identity, scale, multiply3 or stats")
	scale := fs.Float64("scale", 2.0, "Factor for the scale operation")
	split := fs.Bool("split", false, "Print how the volume is split across threads and exit")
	slicesDir := fs.String("slices-dir", "", "Directory to save result slices (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *threads > 0 {
		cfg.Threading.NumThreads = *threads
	}
	if *slicesDir != "" {
		cfg.Output.SaveSlices = true
		cfg.Output.SlicesDir = *slicesDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var log logger.Logger = logger.NewConsoleLogger(logger.ParseLevel(cfg.Logging.Level))
	if !cfg.Logging.Console {
		log = logger.NewZerolog(os.Stderr, logger.ParseLevel(cfg.Logging.Level))
	}

	vol, err := loadVolume(*inputDir, *size, cfg.Threads(), log)
	if err != nil {
		return err
	}

	if *split {
		printSplit(out, vol.Region(), cfg.Threads())
		return nil
	}

	opts := []filter.Option{filter.WithThreads(cfg.Threads()), filter.WithLogger(log)}
	if cfg.Threading.UsePool {
		pool := threader.NewPool(cfg.Threads())
		defer pool.Close()
		opts = append(opts, filter.WithPool(pool))
	}

	start := time.Now()
	result, used, err := apply(*op, *scale, vol, opts, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s on %s: %d threads, %.3fs\n", *op, vol.Region(), used, time.Since(start).Seconds())

	if cfg.Output.SaveSlices && result != nil {
		viewer, err := visualization.NewViewer(result, visualization.WithThreads(cfg.Threads()), visualization.WithLogger(log))
		if err != nil {
			return err
		}
		if err := viewer.SaveSliceSequence(cfg.Output.Axis, cfg.Output.SlicesDir); err != nil {
			return fmt.Errorf("save slices: %w", err)
		}
		fmt.Fprintf(out, "slices saved to %s\n", cfg.Output.SlicesDir)
	}
	return nil
}

func loadVolume(dir, size string, threads int, log logger.Logger) (*volume.Image[float64], error) {
	if dir != "" {
		vol, _, err := volumeio.LoadSlices(dir, volumeio.WithThreads(threads), volumeio.WithLogger(log))
		return vol, err
	}
	dims, err := parseSize(size)
	if err != nil {
		return nil, err
	}
	vol := volume.New[float64](region.FromSize(dims...))
	buf := vol.Buffer()
	for i := range buf {
		buf[i] = float64(i%256) / 255
	}
	return vol, nil
}

func parseSize(s string) ([]uint64, error) {
	parts := strings.Split(s, "x")
	dims := make([]uint64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", s, err)
		}
		dims = append(dims, v)
	}
	if len(dims) != 3 {
		return nil, fmt.Errorf("invalid size %q: want WxHxD", s)
	}
	return dims, nil
}

func printSplit(out io.Writer, whole region.Region, threads int) {
	var s splitter.RegionSplitter
	n := s.NumberOfSplits(whole, uint(threads))
	pieces := s.Pieces(whole, uint(threads))
	d := s.Describe(0, n, whole)
	fmt.Fprintf(out, "region %s: requested %d, %d pieces on axis %d (%d per piece)\n",
		whole, threads, len(pieces), d.SplitAxis, d.ValuesPerPiece)
	for i, p := range pieces {
		fmt.Fprintf(out, "  %d: %s\n", i, p)
	}
}

// apply runs op over vol and returns the output image, if op produces one.
func apply(op string, scale float64, vol *volume.Image[float64], opts []filter.Option, out io.Writer) (*volume.Image[float64], int, error) {
	switch op {
	case "identity", "scale":
		fn := filter.Identity[float64]()
		if op == "scale" {
			fn = filter.Scale[float64](scale)
		}
		f := filter.NewUnaryFunctorFilter(fn, opts...)
		f.SetInput(vol)
		if err := f.Update(); err != nil {
			return nil, 0, err
		}
		return f.Output(), f.NumberOfThreadsUsed(), nil
	case "multiply3":
		f := filter.NewTernaryFunctorFilter(filter.Multiply3[float64](), opts...)
		f.SetInput1(vol)
		f.SetInput2(vol)
		f.SetInput3(vol)
		if err := f.Update(); err != nil {
			return nil, 0, err
		}
		return f.Output(), f.NumberOfThreadsUsed(), nil
	case "stats":
		f := filter.NewStatisticsFilter[float64](opts...)
		f.SetInput(vol)
		if err := f.Update(); err != nil {
			return nil, 0, err
		}
		s := f.Statistics()
		fmt.Fprintf(out, "count=%d min=%.6f max=%.6f mean=%.6f sigma=%.6f\n",
			s.Count, s.Minimum, s.Maximum, s.Mean, s.Sigma)
		return nil, f.NumberOfThreadsUsed(), nil
	default:
		return nil, 0, fmt.Errorf("unknown operation %q", op)
	}
}
