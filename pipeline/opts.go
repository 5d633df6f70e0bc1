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
package pipeline

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/scexpr/encoding/matrix"
	"github.com/grailbio/scexpr/encoding/vcf"
	"github.com/grailbio/scexpr/expression"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes the environment variables read by LoadOpts. A field's
// variable is EnvPrefix plus its name split into words, e.g.
// SCEXPR_NUM_GENES or SCEXPR_MIN_LIB. Unprefixed names are never read.
const EnvPrefix = "SCEXPR"

// Opts configures the processing of one file.
type Opts struct {
	expression.Opts `yaml:",inline"`
	// Outgroup is the per-cell column dropped before simulation.
	Outgroup string `yaml:"outgroup" split_words:"true"`
	// CountsDir, if set, receives the simulated count matrix of every file.
	CountsDir string `yaml:"counts_dir" split_words:"true"`
	// CountsFormat is matrix.FormatTSV or matrix.FormatArrow.
	CountsFormat string `yaml:"counts_format" split_words:"true"`
}

// BatchOpts configures Run.
type BatchOpts struct {
	Opts `yaml:",inline"`
	// InputDir is scanned for *.vcf and *.vcf.gz files.
	InputDir string `yaml:"input_dir" split_words:"true"`
	// OutputDir receives one output per input, under the input's base name.
	OutputDir string `yaml:"output_dir" split_words:"true"`
	// Parallelism is the number of files processed concurrently;
	// 0 = runtime.NumCPU().
	Parallelism int `yaml:"parallelism" split_words:"true"`
	// Seed is the batch seed every file seed is derived from. 0 picks a
	// time-based seed.
	Seed uint64 `yaml:"seed" split_words:"true"`
	// Overwrite reprocesses inputs whose output already exists.
	Overwrite bool `yaml:"overwrite" split_words:"true"`
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	Opts:         expression.DefaultOpts,
	Outgroup:     vcf.DefaultOutgroup,
	CountsFormat: matrix.FormatTSV,
}

// DefaultBatchOpts sets the default values to BatchOpts.
var DefaultBatchOpts = BatchOpts{
	Opts: DefaultOpts,
}

// Validate checks the simulation parameters and the counts format.
func (o Opts) Validate() error {
	if err := o.Opts.Validate(); err != nil {
		return err
	}
	if o.CountsDir != "" {
		if _, err := matrix.Ext(o.CountsFormat); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks o, including the embedded Opts.
func (o BatchOpts) Validate() error {
	if err := o.Opts.Validate(); err != nil {
		return err
	}
	switch {
	case o.InputDir == "":
		return errors.E(errors.Invalid, "pipeline: input directory not set")
	case o.OutputDir == "":
		return errors.E(errors.Invalid, "pipeline: output directory not set")
	case o.Parallelism < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("pipeline: parallelism must be >= 0, got %d", o.Parallelism))
	}
	return nil
}

// RunDirs returns the input and output directories of simulation run "run"
// under baseRoot: baseRoot/run_<run>/vcf_dir and
// baseRoot/run_<run>/expressed_snvs.
func RunDirs(baseRoot, run string) (inputDir, outputDir string) {
	base := joinPath(baseRoot, "run_"+run)
	return joinPath(base, "vcf_dir"), joinPath(base, "expressed_snvs")
}

func loadYAML(ctx context.Context, path string, opts *BatchOpts) (err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return errors.E(err, "pipeline: open config", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.E(e, "pipeline: close config", path)
		}
	}()
	if err = yaml.NewDecoder(in.Reader(ctx)).Decode(opts); err != nil {
		return errors.E(errors.Invalid, err, "pipeline: parse config", path)
	}
	return nil
}

// LoadOpts updates opts from the YAML file at path, if path is nonempty, and
// then from SCEXPR_* environment variables. Keys absent from both keep their
// current values.
func LoadOpts(ctx context.Context, path string, opts *BatchOpts) error {
	if path != "" {
		if err := loadYAML(ctx, path, opts); err != nil {
			return err
		}
	}
	if err := envconfig.Process(EnvPrefix, opts); err != nil {
		return errors.E(errors.Invalid, err, "pipeline: environment")
	}
	return nil
}
