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
package expression

import (
	"fmt"
	"strconv"

	"github.com/grailbio/base/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Counts is the ncells x ngenes matrix of simulated read counts.
type Counts struct {
	// Cells labels the rows, Genes the columns.
	Cells []string
	Genes []string
	data  []uint32 // row-major len(Cells)*len(Genes) array.

	cellIndex map[string]int
}

// NewCounts returns a zero-filled matrix with the given labels.
func NewCounts(cells, genes []string) *Counts {
	c := &Counts{
		Cells:     cells,
		Genes:     genes,
		data:      make([]uint32, len(cells)*len(genes)),
		cellIndex: make(map[string]int, len(cells)),
	}
	for i, name := range cells {
		c.cellIndex[name] = i
	}
	return c
}

// GeneNames returns the labels Gene1, ..., Gene<n>.
func GeneNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = "Gene" + strconv.Itoa(i+1)
	}
	return names
}

// NCells returns the number of rows.
func (c *Counts) NCells() int { return len(c.Cells) }

// NGenes returns the number of columns.
func (c *Counts) NGenes() int { return len(c.Genes) }

// At returns the count of gene g in cell i.
func (c *Counts) At(i, g int) uint32 { return c.data[i*len(c.Genes)+g] }

// Set sets the count of gene g in cell i.
func (c *Counts) Set(i, g int, v uint32) { c.data[i*len(c.Genes)+g] = v }

// Row returns the counts of cell i. The slice aliases the matrix.
func (c *Counts) Row(i int) []uint32 {
	n := len(c.Genes)
	return c.data[i*n : (i+1)*n]
}

// CellIndex returns the row of the named cell, or false if there is none.
func (c *Counts) CellIndex(cell string) (int, bool) {
	i, ok := c.cellIndex[cell]
	return i, ok
}

// ZeroGenes returns the indexes of the genes with a zero count in cell i, in
// increasing order.
func (c *Counts) ZeroGenes(i int) []int {
	var genes []int
	for g, v := range c.Row(i) {
		if v == 0 {
			genes = append(genes, g)
		}
	}
	return genes
}

// SimulateCounts draws the count matrix for the cells of a. Each cell gets a
// library size drawn uniformly from [minLib, maxLib); its count for gene g is
// Poisson with mean libsize * profiles.At(state, g).
func SimulateCounts(src rand.Source, a *Assignment, profiles *Profiles, minLib, maxLib float64) (*Counts, error) {
	if maxLib < minLib {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("expression: maxlib (%v) must be >= minlib (%v)", maxLib, minLib))
	}
	counts := NewCounts(a.Cells, GeneNames(profiles.NGenes))
	lib := distuv.Uniform{Min: minLib, Max: maxLib, Src: src}
	for i, state := range a.States {
		if state < 0 || state >= profiles.NStates {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("expression: cell %s has state %d, but only %d profiles exist", a.Cells[i], state, profiles.NStates))
		}
		size := lib.Rand()
		row := counts.Row(i)
		for g, frac := range profiles.Row(state) {
			mean := frac * size
			if mean <= 0 {
				continue
			}
			row[g] = uint32(distuv.Poisson{Lambda: mean, Src: src}.Rand())
		}
	}
	return counts, nil
}
