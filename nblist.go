package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/nblist/lib"
	g_error "github.com/phil-mansfield/nblist/lib/error"
	"github.com/phil-mansfield/nblist/lib/logging"
	"github.com/phil-mansfield/nblist/lib/metrics"
	"github.com/phil-mansfield/nblist/lib/nblio"
	"github.com/phil-mansfield/nblist/lib/neighbours"
	"github.com/phil-mansfield/nblist/lib/search"
)

// confirmEps is the largest difference in distances and displacements that
// "confirm" accepts between two pair searches.
const confirmEps = 1e-9

func main() {
	// Parse arguments.
	mode, configFile, flags, err := lib.ParseCommandLine(os.Args[1:])
	if err != nil {
		g_error.External("%s", err.Error())
	}
	if mode == lib.HelpMode {
		lib.PrintHelp(os.Stdout)
		return
	}

	rawArgs, err := lib.Load(configFile, flags)
	if err != nil {
		g_error.External("%s", err.Error())
	}

	// Do processing that doesn't need external validation.
	args, err := rawArgs.Process()
	if err != nil {
		g_error.External("%s", err.Error())
	}

	log, err := logging.NewLogger(args.Log)
	if err != nil {
		g_error.External("%s", err.Error())
	}
	logging.Set(log)
	defer func() { _ = log.Sync() }()

	if err := lib.Check(mode, args); err != nil {
		g_error.External("%s", err.Error())
	}
	lib.SetThreads(args.Threads)

	log.Info("starting", zap.Stringer("mode", mode),
		zap.String("input", args.Input), zap.Float64("cutoff", args.Cutoff),
		zap.String("method", args.Method), zap.Int("threads", args.Threads))

	// Run the chosen mode.
	switch mode {
	case lib.CheckMode:
		fmt.Println("No errors detected.")
	case lib.BuildMode:
		err = Build(args, log)
	case lib.StatsMode:
		err = Stats(args, log)
	case lib.ConfirmMode:
		err = Confirm(args, log)
		if err == nil {
			fmt.Println("No errors detected.")
		}
	default:
		g_error.Internal("ParseCommandLine returned the unhandled mode %s.",
			mode)
	}
	if err != nil {
		g_error.External("%s", err.Error())
	}

	if args.MetricsFile != "" {
		if err := metrics.WriteTextfile(args.MetricsFile); err != nil {
			g_error.External("could not write metrics: %s", err.Error())
		}
	}
}

// buildFrames builds a list for every frame with enum, handling up to
// args.Threads frames at once. Lists are returned in frame order.
func buildFrames(
	args *lib.Args, frames []lib.Frame, enum neighbours.Enumerator,
	mode string, log *zap.Logger,
) ([]*neighbours.List, error) {
	b := neighbours.NewBuilder(enum, neighbours.WithLogger(log))
	lists := make([]*neighbours.List, len(frames))

	g := &errgroup.Group{}
	g.SetLimit(args.Threads)
	for k := range frames {
		g.Go(func() error {
			l, err := b.Build(frames[k].Atoms, args.Cutoff, args.Quantities,
				args.ConvertArrays)
			if err != nil {
				return fmt.Errorf("frame %d: %w", frames[k].Index, err)
			}
			lists[k] = l
			metrics.FramesTotal.WithLabelValues(mode).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

// Build runs nblist's "build" mode, which writes a neighbour list for every
// selected frame.
func Build(args *lib.Args, log *zap.Logger) error {
	frames, err := lib.CollectFrames(args)
	if err != nil {
		return err
	}
	lists, err := buildFrames(args, frames, args.Enumerator, "build", log)
	if err != nil {
		return err
	}

	idx := make([]int, len(frames))
	for k := range frames {
		idx[k] = frames[k].Index
		if args.Output == nil {
			continue
		}
		fname := args.Output.Expand(idx[k])
		if err := nblio.WriteFile(fname, lists[k]); err != nil {
			return err
		}
		log.Debug("wrote list", zap.String("file", fname),
			zap.Int("frame", idx[k]), zap.Int("pairs", lists[k].PairCount()))
	}

	if args.Parquet != "" {
		if err := nblio.WriteParquetFile(args.Parquet, idx, lists); err != nil {
			return err
		}
	}

	log.Info("built lists", zap.Int("frames", len(frames)))
	return nil
}

// Stats runs nblist's "stats" mode, which prints coordination statistics for
// the .nbl files written by "build".
func Stats(args *lib.Args, log *zap.Logger) error {
	idx, err := lib.FrameIndices(args)
	if err != nil {
		return err
	}

	stats := make([]lib.Stats, len(idx))
	for k, i := range idx {
		fname := args.Output.Expand(i)
		l, err := nblio.ReadFile(fname)
		if err != nil {
			return fmt.Errorf("could not read %s: %w", fname, err)
		}
		stats[k] = lib.SiteStats(i, l)
		metrics.FramesTotal.WithLabelValues("stats").Inc()
	}

	lib.PrintStats(os.Stdout, stats)
	log.Debug("printed stats", zap.Int("frames", len(idx)))
	return nil
}

// Confirm runs nblist's "confirm" mode, which checks the configured pair
// search against a brute force search on every selected frame.
func Confirm(args *lib.Args, log *zap.Logger) error {
	frames, err := lib.CollectFrames(args)
	if err != nil {
		return err
	}

	got, err := buildFrames(args, frames, args.Enumerator, "confirm", log)
	if err != nil {
		return err
	}
	want, err := buildFrames(args, frames, search.BruteForce{}, "confirm", log)
	if err != nil {
		return err
	}

	for k := range frames {
		if err := lib.Confirm(got[k], want[k], confirmEps); err != nil {
			return fmt.Errorf("frame %d: %w", frames[k].Index, err)
		}
	}
	return nil
}
