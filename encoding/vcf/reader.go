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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// maxLineSize bounds the length of one VCF line. Lines grow with the number
// of cells.
const maxLineSize = 1 << 30

// ReadOpts controls Parse and Read.
type ReadOpts struct {
	// Outgroup names a per-cell column to remove after reading, typically
	// DefaultOutgroup. Empty keeps every column.
	Outgroup string
}

// DefaultReadOpts drops DefaultOutgroup.
var DefaultReadOpts = ReadOpts{Outgroup: DefaultOutgroup}

func parseError(lineno int, msg string) error {
	return errors.E(errors.Invalid, fmt.Sprintf("vcf: line %d: %s", lineno, msg))
}

func checkHeader(cols []string) error {
	if len(cols) < len(MandatoryColumns) {
		return fmt.Errorf("header has %d columns, expected at least %d", len(cols), len(MandatoryColumns))
	}
	for i, want := range MandatoryColumns {
		got := cols[i]
		if i == ChromIdx {
			got = strings.TrimPrefix(got, "#")
		}
		if got != want {
			return fmt.Errorf("header column %d is %q, expected %q", i+1, cols[i], want)
		}
	}
	return nil
}

// Parse reads a VCF table from r. Surrounding whitespace is trimmed from
// every line. Lines starting with "##" and blank lines are skipped; the first
// other line is the header. Every record must have
// exactly as many fields as the header, and a non-negative integer POS.
func Parse(r io.Reader, opts ReadOpts) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	t := &Table{}
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "##") {
			continue
		}
		fields := strings.Split(line, "\t")
		if t.Columns == nil {
			if err := checkHeader(fields); err != nil {
				return nil, parseError(lineno, err.Error())
			}
			t.Columns = fields
			continue
		}
		if len(fields) != len(t.Columns) {
			return nil, parseError(lineno, fmt.Sprintf("found %d fields, header has %d", len(fields), len(t.Columns)))
		}
		pos, err := strconv.Atoi(fields[PosIdx])
		if err != nil || pos < 0 {
			return nil, parseError(lineno, fmt.Sprintf("invalid POS %q", fields[PosIdx]))
		}
		t.Records = append(t.Records, Record{Pos: pos, Fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(err, "vcf: read")
	}
	if t.Columns == nil {
		if lineno == 0 {
			return nil, errors.E(errors.Invalid, "vcf: empty file")
		}
		return nil, errors.E(errors.Invalid, "vcf: missing header line")
	}
	if opts.Outgroup != "" && t.DropColumn(opts.Outgroup) {
		log.Debug.Printf("vcf: dropped outgroup column %s", opts.Outgroup)
	}
	return t, nil
}

// Read parses the VCF file at path, which may be any path supported by
// grailbio/base/file. Paths ending in ".gz" are decompressed.
func Read(ctx context.Context, path string, opts ReadOpts) (t *Table, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "vcf: open", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "vcf: close", path)
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(path, ".gz") {
		gz, e := gzip.NewReader(r)
		if e != nil {
			return nil, errors.E(errors.Invalid, e, "vcf: gzip", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	return Parse(r, opts)
}
