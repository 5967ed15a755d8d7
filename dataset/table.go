package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/gullibility/pkg/errors"
)

// Table is a feature table: one row per entity, one named column per feature.
// Missing cells are stored as NaN.
type Table struct {
	// Index is the header of the identifier column.
	Index   string
	IDs     []string
	Columns []string
	Values  [][]float64
}

// NewTable creates an empty table with the given feature columns.
func NewTable(index string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Index: index, Columns: cols}
}

// AddRow appends an entity. len(values) must match the column count.
func (t *Table) AddRow(id string, values []float64) error {
	if len(values) != len(t.Columns) {
		return errors.NewShapeMismatchError("Table.AddRow", "row length", len(t.Columns), len(values))
	}
	row := make([]float64, len(values))
	copy(row, values)
	t.IDs = append(t.IDs, id)
	t.Values = append(t.Values, row)
	return nil
}

// Rows returns the number of entities.
func (t *Table) Rows() int {
	return len(t.Values)
}

// ColumnIndex returns the position of name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ColumnSums returns the total of every column, ignoring missing cells.
func (t *Table) ColumnSums() []float64 {
	sums := make([]float64, len(t.Columns))
	for _, row := range t.Values {
		for j, v := range row {
			if !math.IsNaN(v) {
				sums[j] += v
			}
		}
	}
	return sums
}

// ReadCSV parses a delimited table whose first column is the entity id.
// Empty cells become NaN.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewInsufficientDataError("ReadCSV", "missing header", 1, 0)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read csv header")
	}
	if len(header) < 1 {
		return nil, errors.NewInsufficientDataError("ReadCSV", "header has no id column", 1, 0)
	}

	t := NewTable(header[0], header[1:])
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read csv line %d", line+1)
		}
		line++

		values := make([]float64, len(t.Columns))
		for j := range values {
			cell := strings.TrimSpace(record[j+1])
			if cell == "" || strings.EqualFold(cell, "nan") {
				values[j] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d column %q", line, t.Columns[j])
			}
			values[j] = v
		}
		if err := t.AddRow(record[0], values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return t, nil
}

// WriteCSV writes the table in the format read by ReadCSV.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	header := append([]string{t.Index}, t.Columns...)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	record := make([]string, len(header))
	for i, row := range t.Values {
		record[0] = t.IDs[i]
		for j, v := range row {
			if math.IsNaN(v) {
				record[j+1] = ""
				continue
			}
			record[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "write csv row %d", i)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}

// WriteCSVFile writes the table to path, replacing any existing file.
func (t *Table) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
