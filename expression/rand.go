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
	"time"

	"github.com/dgryski/go-farm"
	"golang.org/x/exp/rand"
)

// NewSource returns a new random source seeded with seed. A source is not
// safe for concurrent use; every pipeline invocation must own its own.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// FileSeed derives the seed for one input file from the batch seed and the
// file's base name, so that a file's simulation does not depend on the order
// in which a batch happens to schedule it.
func FileSeed(seed uint64, name string) uint64 {
	return farm.Hash64WithSeed([]byte(name), seed)
}

// TimeSeed returns a nonzero seed derived from the clock, for runs that did
// not ask for a specific one.
func TimeSeed() uint64 {
	if s := uint64(time.Now().UnixNano()); s != 0 {
		return s
	}
	return 1
}
