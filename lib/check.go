package lib

/* check.go contains the core functions of nblist's "check" mode. */

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Check tests Args against the file system for the given mode: input files
// need to exist and output directories need to be writable. It returns every
// problem it finds, joined.
func Check(mode RunMode, args *Args) error {
	errs := []error{}

	if info, err := os.Stat(args.Input); err != nil {
		errs = append(errs, fmt.Errorf("Input: %w", err))
	} else if info.IsDir() {
		errs = append(errs, fmt.Errorf("Input = %s is a directory", args.Input))
	}

	switch mode {
	case BuildMode:
		if args.Output == nil && args.Parquet == "" {
			errs = append(errs, fmt.Errorf("the build mode needs Output, "+
				"Parquet or both to be set"))
		}
		if args.Output != nil {
			if args.Output.Variables() == 0 && len(args.Frames) != 1 {
				errs = append(errs, fmt.Errorf("Output = '%s' has no "+
					"{%%d,frame} variable, so every frame would be written "+
					"to the same file", args.Output))
			}
			first := 0
			if len(args.Frames) > 0 {
				first = args.Frames[0]
			}
			errs = appendDirCheck(errs, "Output", args.Output.Expand(first))
		}
		if args.Parquet != "" {
			errs = appendDirCheck(errs, "Parquet", args.Parquet)
		}
	case StatsMode:
		if args.Output == nil {
			errs = append(errs, fmt.Errorf("the stats mode reads the .nbl "+
				"files named by Output, but Output isn't set"))
		}
	}

	if args.MetricsFile != "" {
		errs = appendDirCheck(errs, "MetricsFile", args.MetricsFile)
	}

	return errors.Join(errs...)
}

// appendDirCheck appends an error to errs if the directory fileName would be
// written to doesn't exist.
func appendDirCheck(errs []error, variable, fileName string) []error {
	dir := filepath.Dir(fileName)
	info, err := os.Stat(dir)
	if err != nil {
		return append(errs, fmt.Errorf("%s: the directory of %s: %w",
			variable, fileName, err))
	} else if !info.IsDir() {
		return append(errs, fmt.Errorf("%s: %s is not a directory",
			variable, dir))
	}
	return errs
}
