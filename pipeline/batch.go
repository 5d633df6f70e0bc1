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
	"os"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/scexpr/expression"
)

// IsVCF reports whether path names a VCF file, plain or gzipped.
func IsVCF(path string) bool {
	return strings.HasSuffix(path, ".vcf") || strings.HasSuffix(path, ".vcf.gz")
}

// ListInputs returns the sorted paths of the VCF files directly under dir.
func ListInputs(ctx context.Context, dir string) ([]string, error) {
	var paths []string
	lister := file.List(ctx, dir, false)
	for lister.Scan() {
		if lister.IsDir() || !IsVCF(lister.Path()) {
			continue
		}
		paths = append(paths, lister.Path())
	}
	if err := lister.Err(); err != nil {
		return nil, errors.E(err, "pipeline: list", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

func exists(ctx context.Context, path string) bool {
	_, err := file.Stat(ctx, path)
	return err == nil
}

// Run processes every VCF file of opts.InputDir into opts.OutputDir. Each
// file gets its own random source, seeded from opts.Seed and the file's base
// name, so the outputs do not depend on scheduling. Results are returned in
// input order. The error is non-nil only if the batch itself could not run;
// per-file failures are reported in the results.
func Run(ctx context.Context, opts BatchOpts) ([]Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	inputs, err := ListInputs(ctx, opts.InputDir)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		log.Printf("no VCF files found in %s", opts.InputDir)
		return nil, nil
	}
	for _, dir := range []string{opts.OutputDir, opts.CountsDir} {
		if dir == "" || strings.Contains(dir, "://") {
			continue
		}
		if err := os.MkdirAll(dir, 0777); err != nil {
			return nil, errors.E(err, "pipeline: create directory", dir)
		}
	}
	seed := opts.Seed
	if seed == 0 {
		seed = expression.TimeSeed()
		log.Printf("using seed %d", seed)
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	if parallelism > len(inputs) {
		parallelism = len(inputs)
	}
	log.Printf("found %d files in %s, processing with %d jobs", len(inputs), opts.InputDir, parallelism)

	var (
		start   = time.Now()
		results = make([]Result, len(inputs))
		nDone   int32
	)
	err = traverse.Each(parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * len(inputs)) / parallelism
		endIdx := ((jobIdx + 1) * len(inputs)) / parallelism
		for i := startIdx; i < endIdx; i++ {
			in := inputs[i]
			name := file.Base(in)
			out := joinPath(opts.OutputDir, name)
			if !opts.Overwrite && exists(ctx, out) {
				results[i] = Result{Name: name, Input: in, Output: out, Skipped: true}
			} else {
				results[i] = Process(ctx, in, out, opts.Opts, expression.FileSeed(seed, name))
			}
			n := atomic.AddInt32(&nDone, 1)
			if results[i].Err != nil {
				log.Error.Printf("[%d/%d] %v", n, len(inputs), results[i])
			} else {
				log.Printf("[%d/%d] %v", n, len(inputs), results[i])
			}
		}
		return nil
	})

	var nOK, nFailed, nSkipped int
	for _, r := range results {
		switch {
		case r.Err != nil:
			nFailed++
		case r.Skipped:
			nSkipped++
		default:
			nOK++
		}
	}
	log.Printf("processed %d files in %v: %d succeeded, %d failed, %d skipped",
		len(inputs), time.Since(start), nOK, nFailed, nSkipped)
	return results, err
}

// Failed returns the number of results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
