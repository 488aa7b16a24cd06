/*package format handles nblist's miniature formatting languages for picking
frames and naming output files, e.g:

   Frames = 0..100 - 63
   Output = out/run{%02d,frame}.nbl

Sequence formats are a generic way to specify non-contiguous sequences of
natural numbers. They consist of a series of tokens separated by "+" or "-".
Each token can be either a number or two numbers separated by "..". E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

These strings build up sequences of numbers by adding/removing individual
numbers and contiguous sequences. For example, 1, 2, 3, 15, 16, 17 could be
written as 1..17 - 4..14. All spaces around "-" and "+" are ignored.

File formats are a combination of fixed text and variables. Variables are
written as {verb,rule}, where verb is a printf() integer verb (e.g. %03d)
and rule says which value the variable takes on. The only rule is "frame",
the index of the frame being written.
*/
package format

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// Any expanded formats which would have more than BigNumber elements are
	// assumed to be bugs.
	BigNumber = 1 << 20
)

var (
	// ErrSequence is returned for invalid sequence formats.
	ErrSequence = errors.New("invalid sequence format")
	// ErrFileFormat is returned for invalid file formats.
	ErrFileFormat = errors.New("invalid file format")
)

// ExpandSequenceFormat expands a sequence format string into a sorted sequence
// of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	tok, err := tokeniseSequenceFormat(format)
	if err != nil {
		return nil, err
	}
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil {
		return nil, err
	}

	// Count the size first so that "0..1000000000" fails before it
	// allocates.
	total := 0
	for i := range adds {
		lo, hi := sequenceTokenBounds(adds[i])
		total += hi - lo + 1
		if total > BigNumber {
			return nil, fmt.Errorf("%w: '%s' adds more than %d numbers, "+
				"which is almost certainly a mistake", ErrSequence, format,
				BigNumber)
		}
	}

	m := map[int]bool{}
	for i := range adds {
		for _, n := range parseSequenceFormatToken(adds[i]) {
			if m[n] {
				return nil, fmt.Errorf("%w: %d is added more than once",
					ErrSequence, n)
			}
			m[n] = true
		}
	}

	for i := range subs {
		for _, n := range parseSequenceFormatToken(subs[i]) {
			if !m[n] {
				return nil, fmt.Errorf("%w: %d is removed more times than "+
					"it was added", ErrSequence, n)
			}
			delete(m, n)
		}
	}

	out := make([]int, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)

	return out, nil
}

// tokeniseSequenceFormat splits a sequence format into numbers, ranges and
// the "+" and "-" operators.
func tokeniseSequenceFormat(format string) ([]string, error) {
	clean := strings.ReplaceAll(format, "+", " + ")
	clean = strings.ReplaceAll(clean, "-", " - ")

	tok := strings.Fields(clean)
	if len(tok) == 0 {
		return nil, fmt.Errorf("%w: the format string is empty", ErrSequence)
	}
	return tok, nil
}

func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("%w: the format string is empty",
			ErrSequence)
	}

	// The leading "+" may be dropped.
	adds, subs = []string{}, []string{}
	start := 0
	if tok[0] != "+" && tok[0] != "-" {
		if err := isSequenceFormatToken(tok[0]); err != nil {
			return nil, nil, fmt.Errorf("%w: element 1, '%s', cannot be "+
				"parsed because %s", ErrSequence, tok[0], err.Error())
		}
		adds = append(adds, tok[0])
		start = 1
	}

	for i := start; i < len(tok); i += 2 {
		if tok[i] != "-" && tok[i] != "+" {
			return nil, nil, fmt.Errorf("%w: element %d, '%s', should be "+
				"'-' or '+'", ErrSequence, i+1, tok[i])
		}
		if i+1 >= len(tok) {
			return nil, nil, fmt.Errorf("%w: trailing '%s'",
				ErrSequence, tok[i])
		}
		if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf("%w: element %d, '%s', cannot be "+
				"parsed because %s", ErrSequence, i+2, tok[i+1], err.Error())
		}

		if tok[i] == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns a nil error if tok is a number or a range and
// an error describing the problem otherwise. The message reads well after
// "because".
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("it is empty")
	}

	bounds := strings.Split(tok, "..")
	switch len(bounds) {
	case 1:
		if _, err := strconv.Atoi(bounds[0]); err != nil {
			return fmt.Errorf("'%s' is not an integer", bounds[0])
		}
		return nil
	case 2:
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer", bounds[0])
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return fmt.Errorf("'%s' is not an integer", bounds[1])
		}
		if end < start {
			return fmt.Errorf("lower bound %d is larger than upper bound %d",
				start, end)
		}
		return nil
	}
	return fmt.Errorf("it has more than one '..'")
}

// sequenceTokenBounds returns the first and last number of a token which has
// already passed isSequenceFormatToken.
func sequenceTokenBounds(tok string) (lo, hi int) {
	bounds := strings.Split(tok, "..")
	lo, _ = strconv.Atoi(bounds[0])
	hi = lo
	if len(bounds) == 2 {
		hi, _ = strconv.Atoi(bounds[1])
	}
	return lo, hi
}

// parseSequenceFormatToken expands a single token that has already passed
// isSequenceFormatToken.
func parseSequenceFormatToken(tok string) []int {
	lo, hi := sequenceTokenBounds(tok)
	out := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, n)
	}
	return out
}

// FileFormat is a parsed file format string.
type FileFormat struct {
	format string
	// Fixed text around the variables: len(separators) = len(verbs) + 1.
	separators []string
	verbs      []string
}

// ParseFileFormat parses and checks a file format string.
func ParseFileFormat(format string) (*FileFormat, error) {
	starts, ends, err := startsEndsFormatString(format)
	if err != nil {
		return nil, err
	}

	f := &FileFormat{format: format}
	prev := 0
	for i := range starts {
		f.separators = append(f.separators, format[prev:starts[i]])
		prev = ends[i]

		v := format[starts[i]+1 : ends[i]-1]
		tok := strings.Split(v, ",")
		if len(tok) != 2 {
			return nil, fmt.Errorf("%w: '%s' has the variable '{%s}'. "+
				"Variables should contain a printf() verb, a comma and a "+
				"rule, e.g. {%%03d,frame}", ErrFileFormat, format, v)
		}

		verb, rule := strings.TrimSpace(tok[0]), strings.TrimSpace(tok[1])
		if rule != "frame" {
			return nil, fmt.Errorf("%w: '%s' uses the rule '%s', but the "+
				"only rule is 'frame'", ErrFileFormat, format, rule)
		}
		if err := checkVerb(verb); err != nil {
			return nil, fmt.Errorf("%w: '%s' has the verb '%s', which %s",
				ErrFileFormat, format, verb, err.Error())
		}
		f.verbs = append(f.verbs, verb)
	}
	f.separators = append(f.separators, format[prev:])

	return f, nil
}

// checkVerb returns an error unless verb is a single printf() integer verb.
func checkVerb(verb string) error {
	if len(verb) < 2 || verb[0] != '%' {
		return fmt.Errorf("doesn't start with '%%'")
	}
	if strings.Count(verb, "%") != 1 {
		return fmt.Errorf("has more than one '%%'")
	}
	switch verb[len(verb)-1] {
	case 'd', 'x', 'X', 'o', 'b':
	default:
		return fmt.Errorf("isn't an integer verb")
	}
	for _, c := range verb[1 : len(verb)-1] {
		if !strings.ContainsRune("0123456789+- ", c) {
			return fmt.Errorf("has the unsupported flag '%c'", c)
		}
	}
	return nil
}

// Expand returns the file name for frame.
func (f *FileFormat) Expand(frame int) string {
	sb := &strings.Builder{}
	for i := range f.verbs {
		sb.WriteString(f.separators[i])
		fmt.Fprintf(sb, f.verbs[i], frame)
	}
	sb.WriteString(f.separators[len(f.separators)-1])
	return sb.String()
}

// Variables returns the number of variables in the format.
func (f *FileFormat) Variables() int { return len(f.verbs) }

// String returns the unparsed format.
func (f *FileFormat) String() string { return f.format }

// startsEndsFormatString returns the indices of the opening '{' and one past
// the closing '}' of each variable.
func startsEndsFormatString(format string) (starts, ends []int, err error) {
	starts, ends = []int{}, []int{}
	nested := 0

	for i := range format {
		switch format[i] {
		case '{':
			nested++
			starts = append(starts, i)
		case '}':
			nested--
			ends = append(ends, i+1)
		}

		if nested > 1 {
			n := len(starts)
			return nil, nil, fmt.Errorf("%w: '%s' has nested '{' characters "+
				"at indices %d and %d", ErrFileFormat, format,
				starts[n-2], starts[n-1])
		} else if nested < 0 {
			return nil, nil, fmt.Errorf("%w: '%s' has a '}' without a "+
				"'{' at index %d", ErrFileFormat, format, i)
		}
	}

	if nested != 0 {
		return nil, nil, fmt.Errorf("%w: '%s' has a '{' without a matching "+
			"'}' at index %d", ErrFileFormat, format, starts[len(starts)-1])
	}

	return starts, ends, nil
}
