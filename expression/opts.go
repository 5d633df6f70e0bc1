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

	"github.com/grailbio/base/errors"
)

// Opts holds the simulation parameters shared by every file of a run. It is
// read-only once a run starts.
type Opts struct {
	// GenomeLength is the length of the simulated genome. It is partitioned
	// into NumGenes equal-width genes.
	GenomeLength int `yaml:"genome_length" split_words:"true"`
	// NumStates is the number of discrete expression states cells are
	// assigned to.
	NumStates int `yaml:"num_states" split_words:"true"`
	// NumGenes is the number of genes. Must not exceed GenomeLength.
	NumGenes int `yaml:"num_genes" split_words:"true"`
	// AlphaGES is the symmetric Dirichlet concentration used to draw the
	// per-state expression profiles. Small values give sparse profiles.
	AlphaGES float64 `yaml:"alpha_ges" split_words:"true"`
	// MinLib and MaxLib bound the per-cell library size, drawn uniformly from
	// [MinLib, MaxLib).
	MinLib float64 `yaml:"minlib" split_words:"true"`
	MaxLib float64 `yaml:"maxlib" split_words:"true"`
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	GenomeLength: 500000,
	NumStates:    5,
	NumGenes:     30000,
	AlphaGES:     0.5,
	MinLib:       1000,
	MaxLib:       5000,
}

// Validate returns an errors.Invalid error describing the first bad
// parameter in o.
func (o Opts) Validate() error {
	var msg string
	switch {
	case o.GenomeLength <= 0:
		msg = fmt.Sprintf("genome length must be positive, got %d", o.GenomeLength)
	case o.NumStates <= 0:
		msg = fmt.Sprintf("number of states must be positive, got %d", o.NumStates)
	case o.NumGenes <= 0:
		msg = fmt.Sprintf("number of genes must be positive, got %d", o.NumGenes)
	case o.NumGenes > o.GenomeLength:
		msg = fmt.Sprintf("number of genes (%d) cannot be greater than genome length (%d)", o.NumGenes, o.GenomeLength)
	case !(o.AlphaGES > 0):
		msg = fmt.Sprintf("alpha_ges must be positive, got %v", o.AlphaGES)
	case !(o.MinLib > 0):
		msg = fmt.Sprintf("minlib must be positive, got %v", o.MinLib)
	case o.MaxLib < o.MinLib:
		msg = fmt.Sprintf("maxlib (%v) must be >= minlib (%v)", o.MaxLib, o.MinLib)
	default:
		return nil
	}
	return errors.E(errors.Invalid, "expression: "+msg)
}
