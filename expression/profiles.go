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
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// Profiles is the nstates x ngenes matrix of relative expression. Each row is
// a probability distribution over genes.
type Profiles struct {
	NStates, NGenes int
	data            []float64 // row-major NStates*NGenes array.
}

// Row returns the profile of state s. The slice aliases the matrix.
func (p *Profiles) Row(s int) []float64 {
	return p.data[s*p.NGenes : (s+1)*p.NGenes]
}

// At returns the relative expression of gene g in state s.
func (p *Profiles) At(s, g int) float64 {
	return p.data[s*p.NGenes+g]
}

// SampleProfiles draws one profile per state from a symmetric Dirichlet
// distribution with concentration alpha for every gene.
func SampleProfiles(src rand.Source, nstates, ngenes int, alpha float64) *Profiles {
	alphas := make([]float64, ngenes)
	for i := range alphas {
		alphas[i] = alpha
	}
	return SampleProfilesAlpha(src, nstates, alphas)
}

// SampleProfilesAlpha is like SampleProfiles, but takes one concentration
// per gene.
func SampleProfilesAlpha(src rand.Source, nstates int, alphas []float64) *Profiles {
	p := &Profiles{
		NStates: nstates,
		NGenes:  len(alphas),
		data:    make([]float64, nstates*len(alphas)),
	}
	if len(alphas) == 0 {
		return p
	}
	dir := distmv.NewDirichlet(alphas, src)
	for s := 0; s < nstates; s++ {
		dir.Rand(p.Row(s))
	}
	return p
}
