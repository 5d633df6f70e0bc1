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

/*
bio-expression-mask simulates single-cell gene expression for the cells of
simulated VCFs and blanks out the genotype calls of every cell at variants
falling in genes that cell does not express. A variant in an unexpressed
gene could not be observed in single-cell RNA data, so its call becomes
".|.".

The genome [0, genome-length) is split into num-genes equal-width genes.
Each cell is assigned one of num-states expression states, each state draws
a Dirichlet expression profile over the genes, and each cell draws a library
size and Poisson counts from its state's profile. Positions past the last
gene are never masked.

Sample usage:
bio-expression-mask run \
    -run 4 \
    -base-root /data/cellcoal \
    -seed 12345

processes /data/cellcoal/run_4/vcf_dir/*.vcf into
/data/cellcoal/run_4/expressed_snvs. Settings can also come from a YAML file
(-config) and SCEXPR_* environment variables; explicit flags take
precedence.
*/
package main
