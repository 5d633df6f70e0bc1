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
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/scexpr/expression"
	"github.com/grailbio/scexpr/interval"
	"github.com/grailbio/scexpr/pipeline"
	"v.io/x/lib/cmdline"
)

// addSimFlags registers the simulation flags, bound to the fields of opts.
func addSimFlags(fs *flag.FlagSet, opts *pipeline.BatchOpts) {
	fs.StringVar(&opts.Outgroup, "outgroup", opts.Outgroup, "Name of the outgroup column dropped from the input; empty keeps every column")
	fs.IntVar(&opts.GenomeLength, "genome-length", opts.GenomeLength, "Length of the simulated genome")
	fs.IntVar(&opts.NumStates, "num-states", opts.NumStates, "Number of cell expression states")
	fs.IntVar(&opts.NumGenes, "num-genes", opts.NumGenes, "Number of equal-width genes the genome is split into")
	fs.Float64Var(&opts.AlphaGES, "alpha-ges", opts.AlphaGES, "Dirichlet concentration of the per-state expression profiles")
	fs.Float64Var(&opts.MinLib, "minlib", opts.MinLib, "Minimum per-cell library size")
	fs.Float64Var(&opts.MaxLib, "maxlib", opts.MaxLib, "Maximum per-cell library size")
	fs.StringVar(&opts.CountsDir, "counts-dir", opts.CountsDir, "If set, write the simulated count matrix of each input to this directory")
	fs.StringVar(&opts.CountsFormat, "counts-format", opts.CountsFormat, "Count matrix format, 'tsv' or 'arrow'")
	fs.Uint64Var(&opts.Seed, "seed", opts.Seed, "Random seed; 0 picks one from the clock")
}

// loadOpts fills opts from the config file and the environment, then
// reapplies the flags given on the command line so that they win.
func loadOpts(fs *flag.FlagSet, configPath string, opts *pipeline.BatchOpts) error {
	set := map[string]string{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = f.Value.String() })
	*opts = pipeline.DefaultBatchOpts
	if err := pipeline.LoadOpts(context.Background(), configPath, opts); err != nil {
		return err
	}
	for name, value := range set {
		if err := fs.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

func newCmdRun() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "run",
		Short: "Mask every VCF file of a directory",
		Long: `
Run processes every *.vcf and *.vcf.gz file of the input directory and writes
the masked tables, under the same names, to the output directory. Inputs whose
output already exists are skipped unless -overwrite is set. The input and
output directories are given either by -in and -out, or by -run and
-base-root as <base-root>/run_<run>/vcf_dir and
<base-root>/run_<run>/expressed_snvs.`,
	}
	opts := pipeline.DefaultBatchOpts
	configPath := cmd.Flags.String("config", "", "YAML configuration file")
	run := cmd.Flags.String("run", "", "Simulation run identifier, e.g. 4 for run_4")
	baseRoot := cmd.Flags.String("base-root", ".", "Directory containing the run_* directories")
	cmd.Flags.StringVar(&opts.InputDir, "in", "", "Input directory")
	cmd.Flags.StringVar(&opts.OutputDir, "out", "", "Output directory")
	cmd.Flags.IntVar(&opts.Parallelism, "parallelism", 0, "Number of files processed concurrently; 0 = runtime.NumCPU()")
	cmd.Flags.BoolVar(&opts.Overwrite, "overwrite", false, "Reprocess inputs whose output already exists")
	addSimFlags(&cmd.Flags, &opts)
	cmd.Runner = cmdline.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("run takes no arguments, but got %v", argv)
		}
		if err := loadOpts(&cmd.Flags, *configPath, &opts); err != nil {
			return err
		}
		if *run != "" {
			in, out := pipeline.RunDirs(*baseRoot, *run)
			if opts.InputDir == "" {
				opts.InputDir = in
			}
			if opts.OutputDir == "" {
				opts.OutputDir = out
			}
		}
		results, err := pipeline.Run(context.Background(), opts)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Fprintln(env.Stdout, r)
		}
		if n := pipeline.Failed(results); n > 0 {
			return fmt.Errorf("%d of %d files failed", n, len(results))
		}
		return nil
	})
	return cmd
}

func newCmdFile() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "file",
		Short:    "Mask one VCF file",
		ArgsName: "in.vcf out.vcf",
	}
	opts := pipeline.DefaultBatchOpts
	configPath := cmd.Flags.String("config", "", "YAML configuration file")
	addSimFlags(&cmd.Flags, &opts)
	cmd.Runner = cmdline.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("file takes in.vcf out.vcf, but got %v", argv)
		}
		if err := loadOpts(&cmd.Flags, *configPath, &opts); err != nil {
			return err
		}
		seed := opts.Seed
		if seed == 0 {
			seed = expression.TimeSeed()
			log.Printf("using seed %d", seed)
		}
		r := pipeline.Process(context.Background(), argv[0], argv[1], opts.Opts, seed)
		fmt.Fprintln(env.Stdout, r)
		if r.Err != nil {
			return r.Err
		}
		log.Printf("%s: masked %d genotypes over %d cells", r.Name, r.Stats.Masked, r.Stats.Cells)
		return nil
	})
	return cmd
}

func newCmdGenes() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "genes",
		Short: "Print the gene partition of the genome as BED",
	}
	genomeLength := cmd.Flags.Int("genome-length", expression.DefaultOpts.GenomeLength, "Length of the simulated genome")
	numGenes := cmd.Flags.Int("num-genes", expression.DefaultOpts.NumGenes, "Number of genes")
	refName := cmd.Flags.String("ref", "1", "Reference name of the BED entries")
	cmd.Runner = cmdline.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("genes takes no arguments, but got %v", argv)
		}
		m, err := interval.NewGeneMap(*genomeLength, *numGenes)
		if err != nil {
			return err
		}
		if n := m.Unmapped(); n > 0 {
			log.Printf("the last %d positions fall past the last gene", n)
		}
		return m.WriteBED(env.Stdout, *refName)
	})
	return cmd
}

func newCmdRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-expression-mask",
		Short:    "Mask genotypes of unexpressed genes in simulated single-cell VCFs",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdRun(),
			newCmdFile(),
			newCmdGenes(),
		},
	}
}

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newCmdRoot())
}
