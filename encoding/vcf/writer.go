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
package vcf

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// Metadata lines written at the top of every output file.
const (
	FileFormatLine = "##fileformat=VCFv4.3"
	SourceLine     = "##source=Updated with zero-expression filtering"
)

// Format writes t to w: the two metadata lines, the header, then the records
// in order.
func Format(w io.Writer, t *Table) error {
	// bufio.Writer errors are sticky; Flush reports the first one.
	bw := bufio.NewWriterSize(w, 1<<20)
	bw.WriteString(FileFormatLine)
	bw.WriteByte('\n')
	bw.WriteString(SourceLine)
	bw.WriteByte('\n')
	bw.WriteString(strings.Join(t.Columns, "\t"))
	bw.WriteByte('\n')
	for _, rec := range t.Records {
		for i, f := range rec.Fields {
			if i > 0 {
				bw.WriteByte('\t')
			}
			if i == PosIdx {
				bw.WriteString(strconv.Itoa(rec.Pos))
				continue
			}
			bw.WriteString(f)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// writeAtomic creates path and fills it with encode. On error the partial
// output is discarded, so nothing appears at path.
func writeAtomic(ctx context.Context, path string, encode func(w io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "vcf: create", path)
	}
	defer func() {
		if err != nil {
			out.Discard(ctx)
			return
		}
		if e := out.Close(ctx); e != nil {
			err = errors.E(e, "vcf: close", path)
		}
	}()
	if err = encode(out.Writer(ctx)); err != nil {
		return errors.E(err, "vcf: write", path)
	}
	return nil
}

// Write writes t to path. Paths ending in ".gz" are gzip-compressed. The
// output becomes visible under path only once it is complete; on error,
// nothing is left at path.
func Write(ctx context.Context, path string, t *Table) error {
	if !strings.HasSuffix(path, ".gz") {
		return writeAtomic(ctx, path, func(w io.Writer) error { return Format(w, t) })
	}
	return writeAtomic(ctx, path, func(w io.Writer) error {
		gz := gzip.NewWriter(w)
		if err := Format(gz, t); err != nil {
			return err
		}
		return gz.Close()
	})
}
