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
	"github.com/grailbio/base/log"
	"golang.org/x/exp/rand"
)

// maxAssignAttempts bounds the number of full redraws AssignStates makes
// while looking for an assignment with at least two distinct states. With
// two cells and two states a draw fails with probability 1/2, so reaching
// the cap indicates a bug rather than bad luck.
const maxAssignAttempts = 1000

// Assignment maps each cell to its expression state. Cells[i] is in state
// States[i].
type Assignment struct {
	Cells  []string
	States []int
	// NStates is the number of states the cells were drawn from.
	NStates int

	index map[string]int
}

func newAssignment(cells []string, states []int, nstates int) *Assignment {
	a := &Assignment{
		Cells:   cells,
		States:  states,
		NStates: nstates,
		index:   make(map[string]int, len(cells)),
	}
	for i, c := range cells {
		a.index[c] = i
	}
	return a
}

// State returns the state of the given cell. It returns false if the cell
// was not part of the assignment.
func (a *Assignment) State(cell string) (int, bool) {
	i, ok := a.index[cell]
	if !ok {
		return 0, false
	}
	return a.States[i], true
}

// DistinctStates returns the number of different states in use.
func (a *Assignment) DistinctStates() int {
	seen := make(map[int]struct{}, a.NStates)
	for _, s := range a.States {
		seen[s] = struct{}{}
	}
	return len(seen)
}

// AssignStates draws a uniform state in [0, nstates) for every cell. The
// whole assignment is redrawn until at least two distinct states appear.
// That requirement is waived, with a warning, when nstates == 1 or when there
// are fewer than two cells.
func AssignStates(src rand.Source, cells []string, nstates int) (*Assignment, error) {
	if nstates <= 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("expression: number of states must be positive, got %d", nstates))
	}
	r := rand.New(src)
	states := make([]int, len(cells))
	draw := func() {
		for i := range states {
			states[i] = r.Intn(nstates)
		}
	}
	if nstates == 1 {
		draw()
		log.Printf("expression: only one state specified; all %d cells are assigned to the same state", len(cells))
		return newAssignment(cells, states, nstates), nil
	}
	if len(cells) < 2 {
		draw()
		log.Printf("expression: %d cell(s), cannot use two distinct states", len(cells))
		return newAssignment(cells, states, nstates), nil
	}
	for attempt := 0; attempt < maxAssignAttempts; attempt++ {
		draw()
		for _, s := range states[1:] {
			if s != states[0] {
				return newAssignment(cells, states, nstates), nil
			}
		}
	}
	return nil, errors.E(errors.TooManyTries,
		fmt.Sprintf("expression: no assignment of %d cells used two of %d states after %d draws", len(cells), nstates, maxAssignAttempts))
}
