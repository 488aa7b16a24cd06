package lib

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/nblist/lib/format"
	"github.com/phil-mansfield/nblist/lib/logging"
	"github.com/phil-mansfield/nblist/lib/neighbours"
	"github.com/phil-mansfield/nblist/lib/search"
)

// EnvPrefix is the prefix of environment variables that set config
// variables, e.g. NBLIST_CUTOFF or NBLIST_CONVERT_ARRAYS.
const EnvPrefix = "NBLIST"

// RawArgs stores the unprocessed values which the user assigned to each config
// variable. Each variable can be set in the [nblist] section of the config
// file, through the environment and with a command line flag, in increasing
// order of priority.
type RawArgs struct {
	// Input is the XYZ file to read frames from.
	Input string
	// Frames is a sequence format selecting frames. Empty means every frame.
	Frames string
	// Output is the file format for .nbl files, e.g. out/f{%03d,frame}.nbl.
	Output string
	// Parquet is an optional Parquet file that every list is exported to.
	Parquet string
	// Cutoff is the neighbour cutoff radius.
	Cutoff float64
	// Quantities is the quantity request, e.g. ijdDS.
	Quantities string
	// ConvertArrays stores D and S with one vector per pair.
	ConvertArrays bool `split_words:"true"`
	// Method is the pair search: kdtree or brute.
	Method string
	// Threads is the number of frames handled at once. -1 uses every core.
	Threads int
	// LogLevel and LogFormat configure logging.
	LogLevel  string `split_words:"true"`
	LogFormat string `split_words:"true"`
	// MetricsFile is an optional file that Prometheus metrics are written to
	// when nblist exits.
	MetricsFile string `split_words:"true"`
}

// Args stores configuration information. It is a post-processed version of
// RawArgs.
type Args struct {
	Input string
	// Frames is nil when every frame should be used.
	Frames []int
	// Output is nil if no .nbl files should be written.
	Output        *format.FileFormat
	Parquet       string
	Cutoff        float64
	Quantities    string
	ConvertArrays bool
	Method        string
	Enumerator    neighbours.Enumerator
	Threads       int
	Log           logging.Config
	MetricsFile   string
}

// DefaultRawArgs returns the values config variables take when nobody sets
// them.
func DefaultRawArgs() *RawArgs {
	return &RawArgs{
		Quantities:    neighbours.DefaultQuantities,
		ConvertArrays: true,
		Method:        "kdtree",
		Threads:       -1,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// configFile is the layout gcfg expects: one struct per section.
type configFile struct {
	Nblist RawArgs
}

// ParseCommandLine splits the command line arguments (without the program
// name) into the mode, the name of the config file and the remaining flag
// arguments. Expects that the arguments are presented in the order:
// $ nblist <mode> <config file> [--<Arg1> <Value1>] [--<Arg2> <Value2>]
// The config file may be left out of "help".
func ParseCommandLine(argv []string) (mode RunMode, configFile string, flags []string, err error) {
	if len(argv) == 0 {
		return HelpMode, "", nil, nil
	}

	mode, err = ParseMode(argv[0])
	if err != nil {
		return mode, "", nil, err
	}

	rest := argv[1:]
	if len(rest) > 0 && !strings.HasPrefix(rest[0], "-") {
		configFile, rest = rest[0], rest[1:]
	} else if mode != HelpMode {
		return mode, "", nil, fmt.Errorf("the '%s' mode needs a config "+
			"file: nblist %s <config file> [--<Var> <Value> ...]", mode, mode)
	}

	return mode, configFile, rest, nil
}

// ParseConfigFile reads the [nblist] section of a config file into args.
// Variables the file doesn't mention keep their current values.
func (args *RawArgs) ParseConfigFile(fileName string) error {
	cfg := &configFile{Nblist: *args}
	if err := gcfg.ReadFileInto(cfg, fileName); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", fileName, err)
	}
	*args = cfg.Nblist
	return nil
}

// ParseEnv overwrites args with any NBLIST_* environment variables.
func (args *RawArgs) ParseEnv() error {
	if err := envconfig.Process(EnvPrefix, args); err != nil {
		return fmt.Errorf("could not parse environment: %w", err)
	}
	return nil
}

// ParseFlags overwrites args with command line flags. Every config variable
// has a flag with the same name, e.g. --Cutoff 2.5.
func (args *RawArgs) ParseFlags(flags []string) error {
	fs := pflag.NewFlagSet("nblist", pflag.ContinueOnError)
	fs.StringVar(&args.Input, "Input", args.Input, "XYZ file to read frames from")
	fs.StringVar(&args.Frames, "Frames", args.Frames, "sequence format selecting frames")
	fs.StringVar(&args.Output, "Output", args.Output, "file format for .nbl output")
	fs.StringVar(&args.Parquet, "Parquet", args.Parquet, "Parquet file to export pairs to")
	fs.Float64Var(&args.Cutoff, "Cutoff", args.Cutoff, "neighbour cutoff radius")
	fs.StringVar(&args.Quantities, "Quantities", args.Quantities, "quantity letters, starting with ij")
	fs.BoolVar(&args.ConvertArrays, "ConvertArrays", args.ConvertArrays, "store vectors one per pair")
	fs.StringVar(&args.Method, "Method", args.Method, "pair search method: kdtree or brute")
	fs.IntVar(&args.Threads, "Threads", args.Threads, "frames handled at once, -1 for every core")
	fs.StringVar(&args.LogLevel, "LogLevel", args.LogLevel, "debug, info, warn or error")
	fs.StringVar(&args.LogFormat, "LogFormat", args.LogFormat, "text or json")
	fs.StringVar(&args.MetricsFile, "MetricsFile", args.MetricsFile, "file to write metrics to")

	if err := fs.Parse(flags); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments %s; config variables are "+
			"set with --<Var> <Value>", fs.Args())
	}
	return nil
}

// Load builds RawArgs from defaults, the config file (if any), the
// environment and flags, in that order.
func Load(configFile string, flags []string) (*RawArgs, error) {
	args := DefaultRawArgs()
	if configFile != "" {
		if err := args.ParseConfigFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := args.ParseEnv(); err != nil {
		return nil, err
	}
	if err := args.ParseFlags(flags); err != nil {
		return nil, err
	}
	return args, nil
}

// Process converts the raw user input to a format which is more useful for
// internal functions. Very simple validation will be done here, but nothing
// which requires interacting with external files. Every problem found is
// reported.
func (args *RawArgs) Process() (*Args, error) {
	out := &Args{
		Input:         args.Input,
		Parquet:       args.Parquet,
		Cutoff:        args.Cutoff,
		Quantities:    args.Quantities,
		ConvertArrays: args.ConvertArrays,
		Method:        args.Method,
		MetricsFile:   args.MetricsFile,
		Log:           logging.Config{Format: args.LogFormat, Level: args.LogLevel},
	}
	errs := []error{}

	if args.Input == "" {
		errs = append(errs, fmt.Errorf("Input must be set to an XYZ file"))
	}

	if strings.TrimSpace(args.Frames) != "" {
		frames, err := format.ExpandSequenceFormat(args.Frames)
		if err != nil {
			errs = append(errs, fmt.Errorf("Frames = '%s': %w", args.Frames, err))
		} else if len(frames) > 0 && frames[0] < 0 {
			errs = append(errs, fmt.Errorf("Frames = '%s' includes the "+
				"negative frame %d", args.Frames, frames[0]))
		} else {
			out.Frames = frames
		}
	}

	if args.Output != "" {
		f, err := format.ParseFileFormat(args.Output)
		if err != nil {
			errs = append(errs, fmt.Errorf("Output: %w", err))
		}
		out.Output = f
	}

	if !(args.Cutoff > 0) {
		errs = append(errs, fmt.Errorf("Cutoff must be positive, got %g",
			args.Cutoff))
	}

	if err := checkQuantities(args.Quantities); err != nil {
		errs = append(errs, err)
	}

	enum, err := search.New(args.Method)
	if err != nil {
		errs = append(errs, fmt.Errorf("Method: %w", err))
	}
	out.Enumerator = enum

	threads, err := processThreads(args.Threads)
	if err != nil {
		errs = append(errs, err)
	}
	out.Threads = threads

	if _, err := logging.ParseLevel(args.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LogLevel: %w", err))
	}
	switch strings.ToLower(args.LogFormat) {
	case "text", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("LogFormat must be 'text' or 'json', "+
			"got '%s'", args.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func checkQuantities(q string) error {
	if !strings.HasPrefix(q, "ij") {
		return fmt.Errorf("Quantities = '%s' must start with 'ij'", q)
	}
	for k := 0; k < len(q); k++ {
		if strings.IndexByte(neighbours.Letters, q[k]) < 0 {
			return fmt.Errorf("Quantities = '%s' contains '%c'; valid "+
				"letters are '%s'", q, q[k], neighbours.Letters)
		}
		if strings.IndexByte(q[:k], q[k]) >= 0 {
			return fmt.Errorf("Quantities = '%s' repeats '%c'", q, q[k])
		}
	}
	return nil
}

func processThreads(n int) (int, error) {
	switch {
	case n == -1:
		return runtime.NumCPU(), nil
	case n < 1:
		return 0, fmt.Errorf("Threads must be positive or -1, got %d", n)
	case n > runtime.NumCPU():
		return 0, fmt.Errorf("%d threads requested, but your system only "+
			"has %d cores. If you want nblist to use every core, set "+
			"Threads = -1", n, runtime.NumCPU())
	}
	return n, nil
}
