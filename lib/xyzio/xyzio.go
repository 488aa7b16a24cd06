/*package xyzio reads particle configurations from (extended) XYZ files.

An XYZ file is a sequence of frames. Each frame is a line with the number of
sites, a comment line, and one line per site with a species name followed by
Cartesian x, y and z. Additional columns are ignored.

The comment line may hold extended XYZ key=value pairs. Two keys are
understood:

   Lattice="ax ay az bx by bz cx cy cz" - the cell vectors a, b and c
   pbc="T T F"                          - which cell vectors are periodic

A frame with a Lattice but no pbc key is periodic in every direction. A frame
without a Lattice is an open system.
*/
package xyzio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/phil-mansfield/nblist/lib/atoms"
)

const (
	// MaxLineSize is the longest line a Reader will accept.
	MaxLineSize = 1 << 20
	// preallocSites bounds how many sites are allocated ahead of reading
	// them, whatever the site count line claims.
	preallocSites = 1 << 16
)

// ErrFormat is returned when a file isn't valid XYZ.
var ErrFormat = errors.New("invalid XYZ file")

// Reader reads frames one at a time.
type Reader struct {
	sc   *bufio.Scanner
	line int
	// Frame is the index of the next frame that Next will return.
	Frame int
}

// NewReader creates a Reader for the stream rd.
func NewReader(rd io.Reader) *Reader {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{sc: sc}
}

// Next reads the next frame. It returns io.EOF once there are no frames left.
// Blank lines between frames are skipped.
func (r *Reader) Next() (*atoms.Atoms, error) {
	header, err := r.nextNonBlank()
	if err != nil {
		return nil, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || n < 0 {
		return nil, r.errorf("expected a site count, got '%s'", header)
	}

	comment, ok := r.scan()
	if !ok {
		return nil, r.errorf("frame %d ends before its comment line", r.Frame)
	}
	cell, pbc, err := parseComment(comment)
	if err != nil {
		return nil, r.errorf("%s", err.Error())
	}

	species := make([]string, 0, min(n, preallocSites))
	positions := make([][3]float64, 0, min(n, preallocSites))
	for i := 0; i < n; i++ {
		line, ok := r.scan()
		if !ok {
			return nil, r.errorf("frame %d has %d of %d sites",
				r.Frame, i, n)
		}
		sp, x, err := parseSite(line)
		if err != nil {
			return nil, r.errorf("%s", err.Error())
		}
		species, positions = append(species, sp), append(positions, x)
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}

	a, err := atoms.New(species, positions, cell, pbc)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", r.Frame, err)
	}
	r.Frame++
	return a, nil
}

// ReadFrames reads every frame in rd.
func ReadFrames(rd io.Reader) ([]*atoms.Atoms, error) {
	r := NewReader(rd)
	frames := []*atoms.Atoms{}
	for {
		a, err := r.Next()
		if err == io.EOF {
			return frames, nil
		} else if err != nil {
			return nil, err
		}
		frames = append(frames, a)
	}
}

// ReadFile reads every frame in the file fname.
func ReadFile(fname string) ([]*atoms.Atoms, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frames, err := ReadFrames(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return frames, nil
}

func (r *Reader) scan() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	r.line++
	return r.sc.Text(), true
}

func (r *Reader) nextNonBlank() (string, error) {
	for {
		line, ok := r.scan()
		if !ok {
			if err := r.sc.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: line %d: %s", ErrFormat, r.line,
		fmt.Sprintf(format, args...))
}

func parseSite(line string) (string, [3]float64, error) {
	x := [3]float64{}
	tok := strings.Fields(line)
	if len(tok) < 4 {
		return "", x, fmt.Errorf("site line '%s' needs a species and "+
			"three coordinates", line)
	}

	for dim := 0; dim < 3; dim++ {
		var err error
		x[dim], err = strconv.ParseFloat(tok[dim+1], 64)
		if err != nil {
			return "", x, fmt.Errorf("coordinate '%s' isn't a number",
				tok[dim+1])
		}
	}
	return tok[0], x, nil
}

// parseComment finds the cell and periodicity in an extended XYZ comment.
func parseComment(comment string) ([3][3]float64, [3]bool, error) {
	cell, pbc := [3][3]float64{}, [3]bool{}

	kv, err := keyValues(comment)
	if err != nil {
		return cell, pbc, err
	}

	lattice, hasLattice := kv["lattice"]
	if hasLattice {
		tok := strings.Fields(lattice)
		if len(tok) != 9 {
			return cell, pbc, fmt.Errorf("Lattice needs 9 numbers, got %d",
				len(tok))
		}
		for k := range tok {
			v, err := strconv.ParseFloat(tok[k], 64)
			if err != nil {
				return cell, pbc, fmt.Errorf("Lattice value '%s' isn't a "+
					"number", tok[k])
			}
			cell[k/3][k%3] = v
		}
		pbc = [3]bool{true, true, true}
	}

	if val, ok := kv["pbc"]; ok {
		tok := strings.Fields(val)
		if len(tok) != 3 {
			return cell, pbc, fmt.Errorf("pbc needs 3 flags, got '%s'", val)
		}
		for k := range tok {
			if pbc[k], err = parseBool(tok[k]); err != nil {
				return cell, pbc, err
			}
		}
		if !hasLattice && (pbc[0] || pbc[1] || pbc[2]) {
			return cell, pbc, fmt.Errorf("pbc='%s' is set without a Lattice",
				val)
		}
	}

	return cell, pbc, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "t", "true", "1":
		return true, nil
	case "f", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("'%s' isn't a boolean", s)
}

// keyValues splits an extended XYZ comment into lower-cased keys and their
// values. Values may be quoted with double quotes. Words without an '=' are
// ignored.
func keyValues(s string) (map[string]string, error) {
	out := map[string]string{}
	for i := 0; i < len(s); {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		start := i
		for i < len(s) && !isSpace(s[i]) && s[i] != '=' {
			i++
		}
		key := strings.ToLower(s[start:i])
		if i >= len(s) || s[i] != '=' {
			continue
		}
		i++ // '='

		if i < len(s) && s[i] == '"' {
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote after '%s='", key)
			}
			out[key] = s[i+1 : i+1+end]
			i += end + 2
		} else {
			start = i
			for i < len(s) && !isSpace(s[i]) {
				i++
			}
			out[key] = s[start:i]
		}
	}
	return out, nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }
