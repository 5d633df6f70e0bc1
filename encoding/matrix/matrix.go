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

// Package matrix exports simulated count matrices, one row per cell and one
// column per gene, as TSV or Arrow IPC streams.
package matrix

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/scexpr/expression"
)

// Supported export formats.
const (
	FormatTSV   = "tsv"
	FormatArrow = "arrow"
)

// DefaultChunkSize is the number of cells per Arrow record batch.
const DefaultChunkSize = 1024

// Ext returns the file name suffix used for format.
func Ext(format string) (string, error) {
	switch format {
	case FormatTSV:
		return ".counts.tsv", nil
	case FormatArrow:
		return ".counts.arrows", nil
	}
	return "", errors.E(errors.Invalid, fmt.Sprintf("matrix: unknown format %q, expected %q or %q", format, FormatTSV, FormatArrow))
}

// WriteTSV writes c as a TSV with a "cell" header column followed by the gene
// labels.
func WriteTSV(w io.Writer, c *expression.Counts) error {
	out := tsv.NewWriter(w)
	out.WriteString(CellColumn)
	for _, g := range c.Genes {
		out.WriteString(g)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for i, cell := range c.Cells {
		out.WriteString(cell)
		for _, v := range c.Row(i) {
			out.WriteUint32(v)
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteArrow writes c as an Arrow IPC stream.
func WriteArrow(w io.Writer, c *expression.Counts, chunkSize int) error {
	aw, err := NewArrowWriter(w, c.Genes, chunkSize)
	if err != nil {
		return err
	}
	for i, cell := range c.Cells {
		if err := aw.Write(cell, c.Row(i)); err != nil {
			return err
		}
	}
	return aw.Close()
}

// writeAtomic creates path and fills it with encode. On error the partial
// output is discarded, so nothing appears at path.
func writeAtomic(ctx context.Context, path string, encode func(w io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "matrix: create", path)
	}
	defer func() {
		if err != nil {
			out.Discard(ctx)
			return
		}
		if e := out.Close(ctx); e != nil {
			err = errors.E(e, "matrix: close", path)
		}
	}()
	// The bufio layer also keeps the encoders from closing the file.
	w := bufio.NewWriterSize(out.Writer(ctx), 1<<20)
	if err = encode(w); err == nil {
		err = w.Flush()
	}
	if err != nil {
		return errors.E(err, "matrix: write", path)
	}
	return nil
}

// Write writes c to path in the given format. Like vcf.Write, the output
// appears at path only once complete.
func Write(ctx context.Context, path string, c *expression.Counts, format string) error {
	if _, err := Ext(format); err != nil {
		return err
	}
	return writeAtomic(ctx, path, func(w io.Writer) error {
		if format == FormatArrow {
			return WriteArrow(w, c, DefaultChunkSize)
		}
		return WriteTSV(w, c)
	})
}
