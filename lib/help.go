package lib

import (
	"fmt"
	"io"
)

// ExampleConfig is a config file with every variable and its default.
const ExampleConfig = `[nblist]
# XYZ file to read frames from. Extended XYZ Lattice="..." and pbc="T T T"
# comment keys give the cell; plain XYZ frames are open systems.
Input = frames.xyz

# Frames to use, as a sequence format, e.g. 0..100 - 63. Leave empty for
# every frame.
Frames =

# File format for .nbl output. {%03d,frame} is replaced by the frame index.
Output = out/frame{%03d,frame}.nbl

# Optional Parquet file that every pair of every frame is exported to.
Parquet =

# Neighbour cutoff radius, in the units of the positions.
Cutoff = 3.0

# Quantities to store: i, j (site indices), d (distance), D (displacement)
# and S (periodic shift). Must start with ij.
Quantities = ijdDS

# Store D and S with one 3-vector per pair (true) or as pair-major rows.
ConvertArrays = true

# Pair search: kdtree or brute.
Method = kdtree

# Frames handled at once. -1 uses every core.
Threads = -1

# debug, info, warn or error; text or json.
LogLevel = info
LogFormat = text

# Optional file that Prometheus metrics are written to on exit.
MetricsFile =
`

// PrintHelp writes usage information to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `nblist %s builds neighbour lists for particle configurations.

Usage:
    nblist <mode> <config file> [--<Var> <Value> ...]

Modes:
    help    - print this message
    check   - check the config file for errors
    build   - build neighbour lists for each frame and write them to Output
              and/or Parquet
    stats   - read the .nbl files named by Output and report coordination
              statistics for each frame
    confirm - rebuild each frame with brute force pair search and compare
              it against Method

Variables are read from the [nblist] section of the config file, then from
%s_<VAR> environment variables (e.g. %s_CUTOFF, %s_CONVERT_ARRAYS),
then from flags. An example config file:

%s`, Version, EnvPrefix, EnvPrefix, EnvPrefix, ExampleConfig)
}
