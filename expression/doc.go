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

/*Package expression simulates single-cell gene expression counts.

  Cells are assigned to discrete expression states (AssignStates), every
  state gets a Dirichlet-distributed profile over genes (SampleProfiles), and
  every cell gets a Poisson count per gene scaled by a uniformly drawn library
  size (SimulateCounts).

  All functions take an explicit rand.Source. Sources are not shared between
  goroutines; callers processing files concurrently create one per file, see
  NewSource and FileSeed.
*/
package expression
