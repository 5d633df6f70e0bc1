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
package interval

import (
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// Entry is a single gene interval, in BED coordinates.
type Entry struct {
	RefName string
	Start0  int
	End     int
	Name    string
}

// GeneMap partitions a genome into equal-width genes.
type GeneMap struct {
	GenomeLength int
	NGenes       int
	// Width is the length of every gene, GenomeLength / NGenes.
	Width int
}

// NewGeneMap returns the partition of [0, genomeLength) into ngenes genes. It
// returns an errors.Invalid error if ngenes is not in [1, genomeLength].
func NewGeneMap(genomeLength, ngenes int) (GeneMap, error) {
	if ngenes <= 0 {
		return GeneMap{}, errors.E(errors.Invalid, fmt.Sprintf("interval: number of genes must be positive, got %d", ngenes))
	}
	if ngenes > genomeLength {
		return GeneMap{}, errors.E(errors.Invalid,
			fmt.Sprintf("interval: number of genes (%d) cannot be greater than genome length (%d)", ngenes, genomeLength))
	}
	return GeneMap{
		GenomeLength: genomeLength,
		NGenes:       ngenes,
		Width:        genomeLength / ngenes,
	}, nil
}

// Gene returns the index of the gene containing pos. It returns false for
// negative positions and for positions past the last gene; those are not
// errors.
func (m GeneMap) Gene(pos int) (int, bool) {
	if pos < 0 {
		return -1, false
	}
	g := pos / m.Width
	if g >= m.NGenes {
		return g, false
	}
	return g, true
}

// Interval returns the half-open range [start, end) covered by gene g.
func (m GeneMap) Interval(g int) (start, end int) {
	return g * m.Width, (g + 1) * m.Width
}

// Unmapped returns the number of genome positions past the last gene.
func (m GeneMap) Unmapped() int {
	return m.GenomeLength - m.NGenes*m.Width
}

// Entries lists the genes on the given reference. Gene names follow
// expression.GeneNames.
func (m GeneMap) Entries(refName string) []Entry {
	entries := make([]Entry, m.NGenes)
	for g := range entries {
		start, end := m.Interval(g)
		entries[g] = Entry{RefName: refName, Start0: start, End: end, Name: fmt.Sprintf("Gene%d", g+1)}
	}
	return entries
}

// WriteBED writes the genes on refName as a 4-column BED file.
func (m GeneMap) WriteBED(w io.Writer, refName string) error {
	out := tsv.NewWriter(w)
	for _, e := range m.Entries(refName) {
		out.WriteString(e.RefName)
		out.WriteUint32(uint32(e.Start0))
		out.WriteUint32(uint32(e.End))
		out.WriteString(e.Name)
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
