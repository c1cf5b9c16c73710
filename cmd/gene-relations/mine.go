// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-relations/internal/corpus"
	"github.com/pdiddy/gene-relations/internal/extract"
	"github.com/pdiddy/gene-relations/internal/lexicon"
	"github.com/pdiddy/gene-relations/internal/output"
	"github.com/pdiddy/gene-relations/internal/pipeline"
	"github.com/pdiddy/gene-relations/internal/store"
	"github.com/pdiddy/gene-relations/pkg/types"
)

// Mining flags are shared by local and download.
func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP("output", "o", "output", "output filename (extension becomes .json)")
	pf.StringP("genes", "g", "", "file of gene names, one per line (default: bundled list)")
	pf.StringP("relations", "r", "", "file of relation stems, one per line (default: bundled list)")
	pf.StringP("synonyms", "s", "", `gene synonym table (JSON); "default" selects the bundled table`)
	pf.String("stopwords", "", "stopword list (JSON array; default: bundled list)")
	pf.StringP("model", "m", string(types.ExtractorRules), "extractor: rules or simple")
	pf.IntP("cores", "c", 0, "number of extraction workers (0 = all cores)")
	pf.Int("batch-size", pipeline.DefaultBatchSize, "papers handed to a worker at a time")
	pf.Int("queue-size", pipeline.DefaultQueueSize, "capacity of the result queue")
	pf.Int("flush-every", output.DefaultFlushEvery, "results buffered between output flushes")
	pf.Int("min-genes", extract.DefaultMinGenes, "distinct genes a sentence needs to be reported (0 = every stem sentence)")
	pf.Int("length-threshold", lexicon.DefaultLengthThreshold, "gene keys up to this length match exactly; longer keys match by containment")
	pf.String("collisions", string(types.CollisionLastWins), "duplicate gene key policy: last-wins or first-wins")
	pf.String("db", "", "also index results into the relation store in this directory")
	pf.Bool("no-progress", false, "disable the progress bar")

	bindFlags(rootCmd, true, "output", "genes", "relations", "synonyms", "stopwords", "model",
		"cores", "batch-size", "queue-size", "flush-every", "min-genes", "length-threshold",
		"collisions", "db", "no-progress")
}

// stdinPath names standard input as the corpus.
const stdinPath = "-"

// miningConfig assembles the mining configuration from flags, environment
// and config file.
func miningConfig() types.MiningConfig {
	return types.MiningConfig{
		LexiconConfig: types.LexiconConfig{
			GenesFile:       viper.GetString("genes"),
			RelationsFile:   viper.GetString("relations"),
			SynonymsFile:    viper.GetString("synonyms"),
			StopwordsFile:   viper.GetString("stopwords"),
			LengthThreshold: viper.GetInt("length_threshold"),
			Collisions:      types.CollisionPolicy(viper.GetString("collisions")),
		},
		Model:      types.ExtractorKind(viper.GetString("model")),
		MinGenes:   viper.GetInt("min_genes"),
		Workers:    viper.GetInt("cores"),
		BatchSize:  viper.GetInt("batch_size"),
		QueueSize:  viper.GetInt("queue_size"),
		FlushEvery: viper.GetInt("flush_every"),
		Output:     viper.GetString("output"),
		DBDir:      viper.GetString("db"),
	}
}

// mine runs the extraction pipeline over xmlPath and reports on w.
// Configuration problems surface before any output is created.
func mine(ctx context.Context, xmlPath string, cfg types.MiningConfig, progress io.Writer, w io.Writer) (pipeline.Summary, error) {
	if xmlPath != stdinPath {
		if _, err := os.Stat(xmlPath); err != nil {
			return pipeline.Summary{}, fmt.Errorf("%w: file %s does not exist", lexicon.ErrConfig, xmlPath)
		}
	}

	lex, err := lexicon.Load(cfg.LexiconConfig)
	if err != nil {
		return pipeline.Summary{}, err
	}
	for _, c := range lex.Index.Collisions {
		fmt.Fprintf(w, "warning: gene key %q maps to %q, not %q\n", c.Key, c.Kept, c.Other)
	}

	ex, err := extract.New(cfg.Model, lex, nil, extract.WithMinGenes(cfg.MinGenes))
	if err != nil {
		return pipeline.Summary{}, err
	}

	src, err := corpus.Open(xmlPath)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer src.Close()

	jsonPath := output.GenerateFilename(cfg.Output, "json")
	jw := output.NewJSONWriter(jsonPath, cfg.FlushEvery)
	sink := output.MultiSink{jw}

	if cfg.DBDir != "" {
		st, err := store.NewStore(types.StoreConfig{Dir: cfg.DBDir})
		if err != nil {
			return pipeline.Summary{}, err
		}
		defer st.Close()
		source := stdinPath
		if xmlPath != stdinPath {
			source, _ = filepath.Abs(xmlPath)
		}
		ss, err := st.NewSink(ctx, source)
		if err != nil {
			return pipeline.Summary{}, err
		}
		sink = append(sink, ss)
	}

	fmt.Fprintf(w, "Processing papers from %s\n", xmlPath)
	fmt.Fprintf(w, "Outputting to %s...\n", jsonPath)

	sum, runErr := pipeline.Run(ctx, pipeline.Options{
		Workers:   cfg.Workers,
		BatchSize: cfg.BatchSize,
		QueueSize: cfg.QueueSize,
		Progress:  progress,
	}, src, ex, sink, w)

	if sum.Written == 0 {
		fmt.Fprintln(w, "No results.")
	}
	fmt.Fprintln(w, sum)
	if runErr != nil {
		return sum, runErr
	}
	if sum.HasFailures() {
		fmt.Fprintf(w, "warning: %d paper(s) failed extraction\n", sum.Failed)
	}
	return sum, nil
}

func progressWriter() io.Writer {
	if viper.GetBool("no_progress") {
		return nil
	}
	return os.Stderr
}

var localCmd = &cobra.Command{
	Use:   "local <xml_file|->",
	Short: "Mine a local PubMed XML file",
	Long: `Local streams a PubMed XML file (as returned by Entrez efetch, optionally
gzipped; "-" reads standard input), extracts gene relations from every
abstract in parallel, and writes the papers with at least one relation to
<output>.json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := mine(cmd.Context(), args[0], miningConfig(), progressWriter(), os.Stdout)
		return err
	},
}

func init() {
	rootCmd.AddCommand(localCmd)
}
