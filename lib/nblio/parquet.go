package nblio

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/phil-mansfield/nblist/lib/neighbours"
)

// PairRow is one pair of a neighbour list in a Parquet table. Quantities the
// list doesn't have are written as zeros.
type PairRow struct {
	Frame int64   `parquet:"frame"`
	I     int64   `parquet:"i"`
	J     int64   `parquet:"j"`
	R     float64 `parquet:"r"`
	DX    float64 `parquet:"dx"`
	DY    float64 `parquet:"dy"`
	DZ    float64 `parquet:"dz"`
	SX    int64   `parquet:"sx"`
	SY    int64   `parquet:"sy"`
	SZ    int64   `parquet:"sz"`
}

// Rows converts l into PairRows labelled with frame.
func Rows(frame int, l *neighbours.List) []PairRow {
	rows := make([]PairRow, 0, l.PairCount())
	for p := range l.Pairs() {
		rows = append(rows, PairRow{
			Frame: int64(frame),
			I:     int64(p.I), J: int64(p.J), R: p.R,
			DX: p.D[0], DY: p.D[1], DZ: p.D[2],
			SX: int64(p.S[0]), SY: int64(p.S[1]), SZ: int64(p.S[2]),
		})
	}
	return rows
}

// WriteParquet writes the pairs of every list in lists to w as a single
// zstd-compressed Parquet table. frames[k] labels the rows of lists[k].
func WriteParquet(w io.Writer, frames []int, lists []*neighbours.List) error {
	if len(frames) != len(lists) {
		return fmt.Errorf("%d frame labels given for %d lists",
			len(frames), len(lists))
	}

	pw := parquet.NewGenericWriter[PairRow](w, parquet.Compression(&parquet.Zstd))
	for k := range lists {
		if _, err := pw.Write(Rows(frames[k], lists[k])); err != nil {
			pw.Close()
			return err
		}
	}
	return pw.Close()
}

// WriteParquetFile writes lists to the Parquet file fname.
func WriteParquetFile(fname string, frames []int, lists []*neighbours.List) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := WriteParquet(f, frames, lists); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadParquetFile reads every PairRow in the Parquet file fname.
func ReadParquetFile(fname string) ([]PairRow, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, err
	}

	pr := parquet.NewGenericReader[PairRow](pf)
	defer pr.Close()

	rows := make([]PairRow, pr.NumRows())
	n, err := pr.Read(rows)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return rows[:n], nil
}
