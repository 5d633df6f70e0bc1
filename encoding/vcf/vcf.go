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

// Package vcf reads and writes multi-sample VCF files as in-memory tables.
// Only the column layout is interpreted; INFO and FORMAT contents are kept as
// text.
package vcf

// Indexes of the mandatory columns.
const (
	ChromIdx = iota
	PosIdx
	IDIdx
	RefIdx
	AltIdx
	QualIdx
	FilterIdx
	InfoIdx
	FormatIdx
	// FirstSampleIdx is the index of the first per-cell column.
	FirstSampleIdx
)

// MandatoryColumns are the names of the first FirstSampleIdx columns of a VCF
// header, in order. The leading '#' of "#CHROM" is optional when reading.
var MandatoryColumns = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}

// DefaultOutgroup is the name of the non-tumor reference cell emitted by the
// tumor-evolution simulator. It is dropped on read by default.
const DefaultOutgroup = "healthycell"

// Record is one variant line.
type Record struct {
	// Pos is the parsed POS column. Writers render POS from this value, not
	// from Fields[PosIdx].
	Pos int
	// Fields holds every tab-separated column of the line, one per
	// Table.Columns entry.
	Fields []string
}

// Table is a parsed VCF file, minus the "##" metadata lines.
type Table struct {
	// Columns is the header line, split on tabs.
	Columns []string
	Records []Record
}

// Samples returns the names of the per-cell columns.
func (t *Table) Samples() []string {
	if len(t.Columns) <= FirstSampleIdx {
		return nil
	}
	return t.Columns[FirstSampleIdx:]
}

// SampleIndex returns the column index of the named cell, or -1.
func (t *Table) SampleIndex(name string) int {
	for i := FirstSampleIdx; i < len(t.Columns); i++ {
		if t.Columns[i] == name {
			return i
		}
	}
	return -1
}

// DropColumn removes the named per-cell column from the header and from every
// record. It returns false if there is no such column. Mandatory columns
// cannot be dropped.
func (t *Table) DropColumn(name string) bool {
	col := t.SampleIndex(name)
	if col < 0 {
		return false
	}
	t.Columns = append(t.Columns[:col:col], t.Columns[col+1:]...)
	for i := range t.Records {
		f := t.Records[i].Fields
		t.Records[i].Fields = append(f[:col:col], f[col+1:]...)
	}
	return true
}
