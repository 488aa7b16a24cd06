/*package nblio reads and writes neighbour lists.

A .nbl file has the layout

   uint32 magic number
   uint32 version
   FixedWidthHeader
   uint32 length of the quantity string, then the string itself
   one block per quantity letter, in order:
      uint64 compressed size, uint64 uncompressed size, zstd data

Columns hold 1-based site indices and pair-major vector rows, exactly as in
neighbours.Columns. Integers are stored as int64 and reals as float64. Files
are written little-endian; the byte order of a file is detected from its
magic number when it's read.

Lists can also be exported as Parquet tables with one PairRow per pair.
*/
package nblio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/zstd"

	"github.com/phil-mansfield/nblist/lib/neighbours"
)

const (
	// MagicNumber is an arbitrary number at the start of every .nbl file.
	MagicNumber = 0xbadf00d5
	// ReverseMagicNumber is the magic number read with the wrong byte order.
	ReverseMagicNumber = 0xd500dfba
	// Version is the newest file version this package can read.
	Version = 1
	// CompressionLevel is the zstd level used for columns.
	CompressionLevel = 3

	// MaxPairs is the largest pair count Read accepts.
	MaxPairs = 1 << 32

	// maxQuantities bounds the quantity string so that corrupt files don't
	// trigger huge allocations.
	maxQuantities = 64
)

var (
	// ErrNotNBL is returned for files that don't start with MagicNumber.
	ErrNotNBL = errors.New("not a .nbl file")
	// ErrVersion is returned for files newer than Version.
	ErrVersion = errors.New("unsupported .nbl version")
	// ErrCorrupt is returned when a file's header and columns disagree.
	ErrCorrupt = errors.New("corrupt .nbl file")
)

// FixedWidthHeader is the binary header of a .nbl file.
type FixedWidthHeader struct {
	// Pairs and Sites are the number of pairs and sites in the list.
	Pairs, Sites int64
	// Cutoff is the cutoff radius the list was built with.
	Cutoff float64
	// Layout is the neighbours.Layout the list used for vectors.
	Layout int64
}

// Header is everything in a .nbl file other than the columns.
type Header struct {
	FixedWidthHeader
	Quantities string
}

// Write writes l to wr in .nbl format.
func Write(wr io.Writer, l *neighbours.List) error {
	order := binary.ByteOrder(binary.LittleEndian)
	hd := &Header{
		FixedWidthHeader{
			int64(l.PairCount()), int64(l.SiteCount()),
			l.Cutoff(), int64(l.Layout()),
		},
		l.Quantities(),
	}

	if err := binary.Write(wr, order, uint32(MagicNumber)); err != nil {
		return err
	}
	if err := binary.Write(wr, order, uint32(Version)); err != nil {
		return err
	}
	if err := hd.write(wr, order); err != nil {
		return err
	}

	cols := l.Columns()
	buf := &bytes.Buffer{}
	for k := 0; k < len(hd.Quantities); k++ {
		buf.Reset()
		if err := encodeColumn(buf, order, &cols, hd.Quantities[k]); err != nil {
			return err
		}
		if err := writeBlock(wr, order, buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// WriteFile writes l to the file fname, creating or truncating it.
func WriteFile(fname string, l *neighbours.List) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := Write(f, l); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", fname, err)
	}
	return f.Close()
}

// Read reads a List from rd. The List is validated by neighbours.NewList, so
// files with unsorted or out-of-range indices are rejected.
func Read(rd io.Reader) (*neighbours.List, error) {
	order, err := checkFile(rd)
	if err != nil {
		return nil, err
	}

	hd := &Header{}
	if err := hd.read(rd, order); err != nil {
		return nil, err
	}
	if hd.Pairs < 0 || hd.Sites < 0 || hd.Pairs > MaxPairs {
		return nil, fmt.Errorf("%w: header has %d pairs and %d sites",
			ErrCorrupt, hd.Pairs, hd.Sites)
	}

	cols := neighbours.Columns{Quantities: hd.Quantities}
	for k := 0; k < len(hd.Quantities); k++ {
		letter := hd.Quantities[k]
		n, err := columnLen(letter, int(hd.Pairs))
		if err != nil {
			return nil, err
		}
		raw, err := readBlock(rd, order, uint64(8*n))
		if err != nil {
			return nil, err
		}
		if err := decodeColumn(raw, order, &cols, letter, n); err != nil {
			return nil, err
		}
	}

	return neighbours.NewList(hd.Cutoff, int(hd.Sites), cols,
		neighbours.Layout(hd.Layout))
}

// ReadFile reads a List from the file fname.
func ReadFile(fname string) (*neighbours.List, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return l, nil
}

func (hd *Header) write(wr io.Writer, order binary.ByteOrder) error {
	if err := binary.Write(wr, order, &hd.FixedWidthHeader); err != nil {
		return err
	}
	if err := binary.Write(wr, order, uint32(len(hd.Quantities))); err != nil {
		return err
	}
	_, err := io.WriteString(wr, hd.Quantities)
	return err
}

func (hd *Header) read(rd io.Reader, order binary.ByteOrder) error {
	if err := binary.Read(rd, order, &hd.FixedWidthHeader); err != nil {
		return err
	}

	var nQ uint32
	if err := binary.Read(rd, order, &nQ); err != nil {
		return err
	}
	if nQ > maxQuantities {
		return fmt.Errorf("%w: quantity string has length %d", ErrCorrupt, nQ)
	}

	b := make([]byte, nQ)
	if _, err := io.ReadFull(rd, b); err != nil {
		return err
	}
	hd.Quantities = string(b)
	return nil
}

// checkFile reads the magic number and version and returns the file's byte
// order.
func checkFile(rd io.Reader) (binary.ByteOrder, error) {
	var magicNumber, version uint32

	order := binary.ByteOrder(binary.LittleEndian)
	if err := binary.Read(rd, order, &magicNumber); err != nil {
		return nil, err
	}

	switch magicNumber {
	case MagicNumber:
	case ReverseMagicNumber:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: files begin with %x or %x, got %x",
			ErrNotNBL, MagicNumber, ReverseMagicNumber, magicNumber)
	}

	if err := binary.Read(rd, order, &version); err != nil {
		return nil, err
	}
	if version > Version {
		return nil, fmt.Errorf("%w: file has version %d, but this build "+
			"reads up to version %d", ErrVersion, version, Version)
	}

	return order, nil
}

func writeBlock(wr io.Writer, order binary.ByteOrder, raw []byte) error {
	// Empty columns are stored as a zero-length block.
	comp := []byte{}
	if len(raw) > 0 {
		var err error
		comp, err = zstd.CompressLevel(nil, raw, CompressionLevel)
		if err != nil {
			return err
		}
	}

	sizes := [2]uint64{uint64(len(comp)), uint64(len(raw))}
	if err := binary.Write(wr, order, sizes); err != nil {
		return err
	}
	_, err := wr.Write(comp)
	return err
}

// readBlock reads a block which must decompress to exactly want bytes.
func readBlock(rd io.Reader, order binary.ByteOrder, want uint64) ([]byte, error) {
	var sizes [2]uint64
	if err := binary.Read(rd, order, &sizes); err != nil {
		return nil, err
	}
	if sizes[1] != want {
		return nil, fmt.Errorf("%w: block holds %d bytes, expected %d",
			ErrCorrupt, sizes[1], want)
	}
	if sizes[0] == 0 {
		if want != 0 {
			return nil, fmt.Errorf("%w: empty block should hold %d bytes",
				ErrCorrupt, want)
		}
		return []byte{}, nil
	}
	if sizes[0] > uint64(zstd.CompressBound(int(want))) {
		return nil, fmt.Errorf("%w: %d compressed bytes can't hold %d bytes",
			ErrCorrupt, sizes[0], want)
	}

	comp := make([]byte, sizes[0])
	if _, err := io.ReadFull(rd, comp); err != nil {
		return nil, err
	}
	raw, err := zstd.Decompress(nil, comp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorrupt, err.Error())
	}
	if uint64(len(raw)) != want {
		return nil, fmt.Errorf("%w: block decompressed to %d bytes, "+
			"expected %d", ErrCorrupt, len(raw), want)
	}
	return raw, nil
}

// columnLen returns the number of values in the column for letter.
func columnLen(letter byte, pairs int) (int, error) {
	switch letter {
	case 'i', 'j', 'd':
		return pairs, nil
	case 'D', 'S':
		return 3 * pairs, nil
	}
	return 0, fmt.Errorf("%w: unknown quantity '%c'", ErrCorrupt, letter)
}

func encodeColumn(
	buf *bytes.Buffer, order binary.ByteOrder,
	cols *neighbours.Columns, letter byte,
) error {
	switch letter {
	case 'i':
		return binary.Write(buf, order, toInt64s(cols.I))
	case 'j':
		return binary.Write(buf, order, toInt64s(cols.J))
	case 'd':
		return binary.Write(buf, order, cols.R)
	case 'D':
		return binary.Write(buf, order, cols.D)
	case 'S':
		return binary.Write(buf, order, toInt64s(cols.S))
	}
	return fmt.Errorf("no .nbl encoding for quantity '%c'", letter)
}

func decodeColumn(
	raw []byte, order binary.ByteOrder,
	cols *neighbours.Columns, letter byte, n int,
) error {
	if len(raw) != 8*n {
		return fmt.Errorf("%w: column '%c' has %d bytes, expected %d",
			ErrCorrupt, letter, len(raw), 8*n)
	}

	rd := bytes.NewReader(raw)
	switch letter {
	case 'd', 'D':
		x := make([]float64, n)
		if err := binary.Read(rd, order, x); err != nil {
			return err
		}
		if letter == 'd' {
			cols.R = x
		} else {
			cols.D = x
		}
	case 'i', 'j', 'S':
		x64 := make([]int64, n)
		if err := binary.Read(rd, order, x64); err != nil {
			return err
		}
		x := fromInt64s(x64)
		switch letter {
		case 'i':
			cols.I = x
		case 'j':
			cols.J = x
		default:
			cols.S = x
		}
	default:
		return fmt.Errorf("%w: unknown quantity '%c'", ErrCorrupt, letter)
	}
	return nil
}

func toInt64s(x []int) []int64 {
	out := make([]int64, len(x))
	for i := range x {
		out[i] = int64(x[i])
	}
	return out
}

func fromInt64s(x []int64) []int {
	out := make([]int, len(x))
	for i := range x {
		out[i] = int(x[i])
	}
	return out
}
