package exporter

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts"
)

// MetadataFormatVersion is the schema metadata key carrying the data format
// version of an exported table.
const MetadataFormatVersion = "format_version"

func arrowSchema(t *table.Table) *arrow.Schema {
	cols := t.Columns()
	fields := make([]arrow.Field, len(cols))
	for i, col := range cols {
		f := arrow.Field{Name: col.Name()}
		switch col.Kind() {
		case table.KindInt:
			f.Type = arrow.PrimitiveTypes.Int64
		case table.KindFloat:
			f.Type = arrow.PrimitiveTypes.Float64
			f.Nullable = true
		default:
			f.Type = arrow.BinaryTypes.String
			f.Nullable = true
		}
		fields[i] = f
	}
	md := arrow.NewMetadata([]string{MetadataFormatVersion}, []string{contracts.DataFormatVersion})
	return arrow.NewSchema(fields, &md)
}

// WriteArrow encodes t as one record batch in the Arrow IPC file format.
// NaN floats and undefined labels are written as nulls.
func WriteArrow(w io.Writer, t *table.Table) error {
	pool := memory.NewGoAllocator()
	schema := arrowSchema(t)

	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	for i, col := range t.Columns() {
		switch b := builder.Field(i).(type) {
		case *array.Int64Builder:
			b.AppendValues(col.Ints(), nil)
		case *array.Float64Builder:
			for _, v := range col.Floats() {
				if math.IsNaN(v) {
					b.AppendNull()
					continue
				}
				b.Append(v)
			}
		case *array.StringBuilder:
			labels, defined := col.Labels()
			b.AppendValues(labels, defined)
		default:
			return fmt.Errorf("unsupported builder %T for column %s", b, col.Name())
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	if err != nil {
		return fmt.Errorf("failed to create Arrow writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		fw.Close()
		return fmt.Errorf("failed to write record batch: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow writer: %w", err)
	}
	return nil
}

// WriteArrowFile writes t to path.
func WriteArrowFile(path string, t *table.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteArrow(file, t); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadArrow decodes a file written by WriteArrow. Batches are concatenated.
func ReadArrow(data []byte) (*table.Table, error) {
	reader, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}
	defer reader.Close()

	fields := reader.Schema().Fields()
	ints := make([][]int64, len(fields))
	floats := make([][]float64, len(fields))
	labels := make([][]string, len(fields))
	defined := make([][]bool, len(fields))

	for b := 0; b < reader.NumRecords(); b++ {
		record, err := reader.Record(b)
		if err != nil {
			return nil, fmt.Errorf("failed to read record batch %d: %w", b, err)
		}
		for i := range fields {
			switch arr := record.Column(i).(type) {
			case *array.Int64:
				for r := 0; r < arr.Len(); r++ {
					ints[i] = append(ints[i], arr.Value(r))
				}
			case *array.Float64:
				for r := 0; r < arr.Len(); r++ {
					if arr.IsNull(r) {
						floats[i] = append(floats[i], math.NaN())
						continue
					}
					floats[i] = append(floats[i], arr.Value(r))
				}
			case *array.String:
				for r := 0; r < arr.Len(); r++ {
					labels[i] = append(labels[i], arr.Value(r))
					defined[i] = append(defined[i], arr.IsValid(r))
				}
			default:
				return nil, fmt.Errorf("unsupported Arrow type %s for column %s", arr.DataType(), fields[i].Name)
			}
		}
	}

	cols := make([]*table.Column, len(fields))
	for i, f := range fields {
		switch f.Type.ID() {
		case arrow.INT64:
			cols[i] = table.NewIntColumn(f.Name, ints[i])
		case arrow.FLOAT64:
			cols[i] = table.NewFloatColumn(f.Name, floats[i])
		default:
			cols[i] = table.NewStringColumn(f.Name, labels[i], defined[i])
		}
	}
	return table.New(cols...)
}
