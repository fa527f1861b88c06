package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/ftrl/pkg/errors"
)

// naTokens are the cell values read as missing.
var naTokens = map[string]struct{}{
	"":    {},
	"NA":  {},
	"N/A": {},
	"NaN": {},
	"nan": {},
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer fh.Close()
	return ReadCSV(fh)
}

// ReadCSVFileWithTypes opens path and reads it with ReadCSVWithTypes.
func ReadCSVFileWithTypes(path string, types map[string]Type) (*Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer fh.Close()
	return ReadCSVWithTypes(fh, types)
}

// ReadCSV reads a header row followed by data rows and infers a type for each
// column: bool if every present value is true/false, else int64, else
// float64, else string. Cells in naTokens are missing.
func ReadCSV(r io.Reader) (*Frame, error) {
	return ReadCSVWithTypes(r, nil)
}

// ReadCSVWithTypes is ReadCSV with the type of the columns named in types
// fixed instead of inferred. A present cell that does not parse as the fixed
// type is an error.
func ReadCSVWithTypes(r io.Reader, types map[string]Type) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "csv has no header")
	}

	header := records[0]
	rows := records[1:]
	cols := make([]Column, len(header))
	cells := make([]string, len(rows))
	for j, name := range header {
		for i, rec := range rows {
			cells[i] = strings.TrimSpace(rec[j])
		}
		name = strings.TrimSpace(name)
		var col Column
		var err error
		if t, ok := types[name]; ok {
			col, err = parseColumn(name, cells, t)
		} else {
			col, err = inferColumn(name, cells)
		}
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return New(cols...)
}

// naMask returns the validity mask of cells (nil when nothing is missing)
// and the number of present cells.
func naMask(cells []string) ([]bool, int) {
	valid := make([]bool, len(cells))
	present := 0
	for i, s := range cells {
		if _, na := naTokens[s]; !na {
			valid[i] = true
			present++
		}
	}
	if present == len(cells) {
		return nil, present
	}
	return valid, present
}

func parseInt(s string) (int64, error)     { return strconv.ParseInt(s, 10, 64) }
func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

func parseColumn(name string, cells []string, t Type) (Column, error) {
	valid, _ := naMask(cells)
	isNA := func(i int) bool { return valid != nil && !valid[i] }

	var col Column
	var err error
	ok := true
	switch t {
	case Bool:
		var v []bool
		if v, ok = parseAll(cells, isNA, parseBool); ok {
			col, err = NewBoolColumn(name, v, valid)
		}
	case Int:
		var v []int64
		if v, ok = parseAll(cells, isNA, parseInt); ok {
			col, err = NewIntColumn(name, v, valid)
		}
	case Float:
		var v []float64
		if v, ok = parseAll(cells, isNA, parseFloat); ok {
			col, err = NewFloatColumn(name, v, valid)
		}
	case String:
		col, err = NewStringColumn(name, cells, valid)
	default:
		return nil, errors.NewValueError("frame.ReadCSV", fmt.Sprintf("column %q: unknown type %s", name, t))
	}
	if !ok {
		return nil, errors.NewValueError("frame.ReadCSV", fmt.Sprintf("column %q: values cannot be read as %s", name, t))
	}
	return col, err
}

func inferColumn(name string, cells []string) (Column, error) {
	valid, present := naMask(cells)
	isNA := func(i int) bool { return valid != nil && !valid[i] }

	if b, ok := parseAll(cells, isNA, parseBool); ok && present > 0 {
		return NewBoolColumn(name, b, valid)
	}
	if v, ok := parseAll(cells, isNA, parseInt); ok && present > 0 {
		return NewIntColumn(name, v, valid)
	}
	if v, ok := parseAll(cells, isNA, parseFloat); ok && present > 0 {
		return NewFloatColumn(name, v, valid)
	}
	return NewStringColumn(name, cells, valid)
}

func parseAll[T any](cells []string, isNA func(int) bool, parse func(string) (T, error)) ([]T, bool) {
	out := make([]T, len(cells))
	for i, s := range cells {
		if isNA(i) {
			continue
		}
		v, err := parse(s)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, errors.Newf("not a bool: %q", s)
}

// WriteCSV writes f with a header row. Missing values are written as empty cells.
func WriteCSV(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Names()); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	rec := make([]string, f.NCols())
	for i := 0; i < f.NRows(); i++ {
		for j, c := range f.cols {
			rec[j] = formatCell(c, i)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "write csv row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

func formatCell(c Column, i int) string {
	if c.IsNA(i) {
		return ""
	}
	switch col := c.(type) {
	case *BoolColumn:
		return strconv.FormatBool(col.Value(i))
	case *IntColumn:
		return strconv.FormatInt(col.Value(i), 10)
	case *FloatColumn:
		return strconv.FormatFloat(col.Value(i), 'g', -1, 64)
	case *StringColumn:
		return col.Value(i)
	}
	return ""
}
