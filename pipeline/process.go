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

// Package pipeline runs the expression simulation and genotype masking over
// VCF files: Process handles one file, Run a directory of them.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/scexpr/encoding/matrix"
	"github.com/grailbio/scexpr/encoding/vcf"
	"github.com/grailbio/scexpr/expression"
	"github.com/grailbio/scexpr/mask"
)

// Result is the outcome of processing one input file.
type Result struct {
	// Name is the base name of the input.
	Name string
	// Input and Output are the full paths.
	Input, Output string
	// Skipped is set when Run found an existing output and did not reprocess.
	Skipped bool
	// Err is nil on success.
	Err   error
	Stats mask.Stats
}

// String renders r as "SUCCESS: <name>", "SKIPPED: <name>" or
// "Error <name>: <message>".
func (r Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("Error %s: %v", r.Name, r.Err)
	case r.Skipped:
		return "SKIPPED: " + r.Name
	}
	return "SUCCESS: " + r.Name
}

// TrimVCFExt strips a trailing ".vcf" or ".vcf.gz" from name.
func TrimVCFExt(name string) string {
	for _, ext := range []string{".vcf.gz", ".vcf"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// joinPath joins a directory, local or URL, with a base name.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// CountsPath returns the path under dir that receives the count matrix of
// the input named name.
func CountsPath(dir, name, format string) (string, error) {
	ext, err := matrix.Ext(format)
	if err != nil {
		return "", err
	}
	return joinPath(dir, TrimVCFExt(name)+ext), nil
}

// Process reads the VCF at inPath, simulates expression for its cells with a
// random source seeded by seed, masks genotypes of unexpressed genes and
// writes the result to outPath. Errors, and panics from any stage, are
// reported in the returned Result.
func Process(ctx context.Context, inPath, outPath string, opts Opts, seed uint64) (result Result) {
	result = Result{Name: file.Base(inPath), Input: inPath, Output: outPath}
	defer func() {
		if r := recover(); r != nil {
			log.Debug.Printf("%s: panic: %v\n%s", result.Name, r, debug.Stack())
			result.Err = errors.E(fmt.Sprintf("pipeline: panic: %v", r))
		}
	}()
	result.Stats, result.Err = process(ctx, inPath, outPath, opts, seed)
	return
}

func process(ctx context.Context, inPath, outPath string, opts Opts, seed uint64) (mask.Stats, error) {
	if err := opts.Validate(); err != nil {
		return mask.Stats{}, err
	}
	name := file.Base(inPath)
	tbl, err := vcf.Read(ctx, inPath, vcf.ReadOpts{Outgroup: opts.Outgroup})
	if err != nil {
		return mask.Stats{}, err
	}
	cells := tbl.Samples()
	log.Debug.Printf("%s: %d records, %d cells, seed %d", name, len(tbl.Records), len(cells), seed)

	src := expression.NewSource(seed)
	assignment, err := expression.AssignStates(src, cells, opts.NumStates)
	if err != nil {
		return mask.Stats{}, err
	}
	profiles := expression.SampleProfiles(src, opts.NumStates, opts.NumGenes, opts.AlphaGES)
	counts, err := expression.SimulateCounts(src, assignment, profiles, opts.MinLib, opts.MaxLib)
	if err != nil {
		return mask.Stats{}, err
	}
	stats, err := mask.Mask(tbl, counts, opts.GenomeLength)
	if err != nil {
		return stats, err
	}
	if len(stats.SkippedCells) > 0 {
		log.Printf("%s: cells present in only one of the table and the counts: %v", name, stats.SkippedCells)
	}
	if opts.CountsDir != "" {
		path, err := CountsPath(opts.CountsDir, name, opts.CountsFormat)
		if err != nil {
			return stats, err
		}
		if err := matrix.Write(ctx, path, counts, opts.CountsFormat); err != nil {
			return stats, err
		}
	}
	if err := vcf.Write(ctx, outPath, tbl); err != nil {
		return stats, err
	}
	log.Debug.Printf("%s: masked %d genotypes over %d cells, %d unmapped records, %d distinct states",
		name, stats.Masked, stats.Cells, stats.Unmapped, assignment.DistinctStates())
	return stats, nil
}
