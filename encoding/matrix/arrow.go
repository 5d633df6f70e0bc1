// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package matrix

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/ipc"
	"github.com/apache/arrow/go/v14/arrow/memory"
)

// CellColumn is the name of the first column of an exported matrix.
const CellColumn = "cell"

// ArrowWriter writes count rows as an Arrow IPC stream. The schema is a
// string "cell" column followed by one uint32 column per gene. Rows are
// buffered and written as one record batch every chunkSize rows. The stream
// format needs no seeking, so any io.Writer will do.
type ArrowWriter struct {
	schema         *arrow.Schema
	writer         *ipc.Writer
	cells          *array.StringBuilder
	genes          []*array.Uint32Builder
	chunkSize      int
	numRowsInChunk int
}

// NewArrowWriter creates a writer for the given gene labels.
func NewArrowWriter(w io.Writer, genes []string, chunkSize int) (*ArrowWriter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("matrix: chunk size must be positive, got %d", chunkSize)
	}
	pool := memory.NewGoAllocator()
	fields := make([]arrow.Field, len(genes)+1)
	fields[0] = arrow.Field{Name: CellColumn, Type: arrow.BinaryTypes.String}
	for i, name := range genes {
		fields[i+1] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint32}
	}
	schema := arrow.NewSchema(fields, nil)
	writer := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	builders := make([]*array.Uint32Builder, len(genes))
	for i := range builders {
		builders[i] = array.NewUint32Builder(pool)
	}
	return &ArrowWriter{
		schema:    schema,
		writer:    writer,
		cells:     array.NewStringBuilder(pool),
		genes:     builders,
		chunkSize: chunkSize,
	}, nil
}

// Write appends the counts of one cell.
func (aw *ArrowWriter) Write(cell string, row []uint32) error {
	if len(row) != len(aw.genes) {
		return fmt.Errorf("matrix: mismatch in number of genes: expected %d, got %d", len(aw.genes), len(row))
	}
	aw.cells.Append(cell)
	for i, v := range row {
		aw.genes[i].Append(v)
	}
	aw.numRowsInChunk++
	if aw.numRowsInChunk == aw.chunkSize {
		return aw.writeChunk()
	}
	return nil
}

func (aw *ArrowWriter) writeChunk() error {
	cols := make([]arrow.Array, 0, len(aw.genes)+1)
	// NewArray resets the builder for the next chunk.
	cols = append(cols, aw.cells.NewArray())
	for _, b := range aw.genes {
		cols = append(cols, b.NewArray())
	}
	record := array.NewRecord(aw.schema, cols, int64(aw.numRowsInChunk))
	for _, c := range cols {
		c.Release()
	}
	defer record.Release()
	if err := aw.writer.Write(record); err != nil {
		return err
	}
	aw.numRowsInChunk = 0
	return nil
}

// Close flushes buffered rows and writes the end-of-stream marker. It does
// not close the underlying writer.
func (aw *ArrowWriter) Close() error {
	if aw.numRowsInChunk > 0 {
		if err := aw.writeChunk(); err != nil {
			return err
		}
	}
	return aw.writer.Close()
}
