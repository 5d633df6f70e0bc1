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

/*Package interval maps genomic positions of a simulated genome onto genes.
  The genome [0, GenomeLength) is split into NGenes contiguous, half-open,
  equal-width intervals.  The width is GenomeLength / NGenes rounded down, so
  the GenomeLength % NGenes positions past the last gene belong to no gene.
*/
package interval
