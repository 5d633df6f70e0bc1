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

// Package mask blanks out genotype calls of a VCF table for every cell and
// variant whose gene has zero simulated expression in that cell.
package mask

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/scexpr/encoding/vcf"
	"github.com/grailbio/scexpr/expression"
	"github.com/grailbio/scexpr/interval"
)

// MissingGenotype replaces the "a|b" prefix of a masked genotype field.
const MissingGenotype = ".|."

// Stats summarizes one Mask call.
type Stats struct {
	// Masked is the number of genotype fields rewritten.
	Masked int
	// Unmapped is the number of records whose position falls past the last
	// gene. They are never masked.
	Unmapped int
	// Cells is the number of cells present in both the table and the counts.
	Cells int
	// SkippedCells lists cells present in only one of the table and the counts.
	SkippedCells []string
}

// MaskGenotype returns gt with its leading "a|b:" (a, b in {0, 1}) replaced by
// ".|.:". The second result is false, and gt is returned unchanged, if gt
// does not start with such a prefix.
func MaskGenotype(gt string) (string, bool) {
	if len(gt) < 4 || gt[1] != '|' || gt[3] != ':' || !isAllele(gt[0]) || !isAllele(gt[2]) {
		return gt, false
	}
	return MissingGenotype + gt[3:], true
}

func isAllele(c byte) bool { return c == '0' || c == '1' }

// Mask rewrites, in place, the genotype of every (cell, record) pair of t
// where the record's gene has a zero count for the cell. Genes are the
// counts.NGenes() equal-width intervals of [0, genomeLength). It returns an
// errors.Invalid error, before touching t, if the gene count is zero or
// exceeds genomeLength.
func Mask(t *vcf.Table, counts *expression.Counts, genomeLength int) (Stats, error) {
	var stats Stats
	genes, err := interval.NewGeneMap(genomeLength, counts.NGenes())
	if err != nil {
		return stats, err
	}
	// recordGene[i] is the gene of t.Records[i], or -1.
	recordGene := make([]int, len(t.Records))
	for i, rec := range t.Records {
		g, ok := genes.Gene(rec.Pos)
		if !ok {
			g = -1
			stats.Unmapped++
		}
		recordGene[i] = g
	}
	if stats.Unmapped > 0 {
		log.Debug.Printf("mask: %d of %d records fall past the last gene (width %d)", stats.Unmapped, len(t.Records), genes.Width)
	}

	zero := make([]bool, genes.NGenes)
	inTable := make(map[string]bool, len(t.Columns))
	for col := vcf.FirstSampleIdx; col < len(t.Columns); col++ {
		cell := t.Columns[col]
		inTable[cell] = true
		row, ok := counts.CellIndex(cell)
		if !ok {
			stats.SkippedCells = append(stats.SkippedCells, cell)
			continue
		}
		stats.Cells++
		anyZero := false
		for g, v := range counts.Row(row) {
			zero[g] = v == 0
			anyZero = anyZero || zero[g]
		}
		if !anyZero {
			continue
		}
		for i, g := range recordGene {
			if g < 0 || !zero[g] {
				continue
			}
			fields := t.Records[i].Fields
			if gt, ok := MaskGenotype(fields[col]); ok {
				fields[col] = gt
				stats.Masked++
			}
		}
	}
	for _, cell := range counts.Cells {
		if !inTable[cell] {
			stats.SkippedCells = append(stats.SkippedCells, cell)
		}
	}
	return stats, nil
}
