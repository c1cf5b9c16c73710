// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/gene-relations/internal/store"
	"github.com/pdiddy/gene-relations/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the relation store (index, query, pairs, export, stats)",
	Long: `Store manages a local SQLite index of mined relations. Use subcommands to
index result files, query relations by gene, stem, text, paper or year,
rank co-reported gene pairs, or export the index.`,
}

// --- index subcommand ---

var storeIndexCmd = &cobra.Command{
	Use:   "index <result.json...>",
	Short: "Ingest mining result files into the store",
	Long: `Index reads result files written by local or download and ingests them
into the store. A file unchanged since its last ingestion is skipped;
papers seen before have their relations replaced.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStoreIndex,
}

func runStoreIndex(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var failed, papers, relations int
	for _, path := range args {
		sum, err := st.IngestFile(cmd.Context(), path, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", path, err)
			failed++
			continue
		}
		papers += sum.Total()
		relations += sum.Relations
	}

	fmt.Fprintf(os.Stdout, "\n%d file(s), %d paper(s), %d relation(s), %d failed\n",
		len(args), papers, relations, failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed indexing", failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query stored relations",
	Long: `Query lists stored relations matching every given filter. --gene may be
repeated to require several genes in the same sentence.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd)
	if opts.IsEmpty() {
		return fmt.Errorf("filter required: provide --gene, --stem, --text, --pmid or --year")
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-4s  %-24s  %-16s  %s\n",
		"Rank", "PMID", "Year", "Genes", "Stems", "Sentence")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))

	for i, r := range results {
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-4s  %-24s  %-16s  %s\n",
			i+1, r.PMID, r.Year,
			truncate(strings.Join(r.Genes, ","), 24),
			truncate(strings.Join(r.Stems, ","), 16),
			truncate(r.Sentence, 50))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- pairs subcommand ---

var storePairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Rank gene pairs by how often they are reported together",
	RunE:  runStorePairs,
}

func runStorePairs(cmd *cobra.Command, args []string) error {
	gene, _ := cmd.Flags().GetString("gene")
	minRelations, _ := cmd.Flags().GetInt("min")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	pairs, err := st.GenePairs(cmd.Context(), store.PairOptions{
		Gene:         gene,
		MinRelations: minRelations,
		MaxResults:   limit,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(pairs)
	}
	if len(pairs) == 0 {
		fmt.Println("No pairs found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-16s  %-16s  %9s  %6s\n", "Rank", "Gene A", "Gene B", "Relations", "Papers")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 59))
	for i, p := range pairs {
		fmt.Fprintf(os.Stdout, "%-4d  %-16s  %-16s  %9d  %6d\n",
			i+1, truncate(p.GeneA, 16), truncate(p.GeneB, 16), p.Relations, p.Papers)
	}
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to YAML or JSON",
	Long: `Export writes every stored relation (or the subset matching the query
filters) to export.yaml or export.json in the store directory.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := queryOptsFromFlags(cmd)

	var path string
	switch format {
	case "yaml", "":
		path, err = st.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = st.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- stats subcommand ---

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := st.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("papers: %d\nrelations: %d\ngenes: %d\nruns: %d\n", s.Papers, s.Relations, s.Genes, s.Runs)
		return nil
	},
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = "index"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return store.NewStore(types.StoreConfig{Dir: dir, MaxResults: maxResults})
}

func queryOptsFromFlags(cmd *cobra.Command) store.QueryOptions {
	genes, _ := cmd.Flags().GetStringArray("gene")
	stem, _ := cmd.Flags().GetString("stem")
	text, _ := cmd.Flags().GetString("text")
	pmid, _ := cmd.Flags().GetString("pmid")
	year, _ := cmd.Flags().GetString("year")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Genes:      genes,
		Stem:       stem,
		Text:       text,
		PMID:       pmid,
		Year:       year,
		MaxResults: limit,
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("gene", nil, "require this gene (repeatable)")
	cmd.Flags().String("stem", "", "require this relation stem")
	cmd.Flags().String("text", "", "sentence substring (case-insensitive)")
	cmd.Flags().String("pmid", "", "restrict to one paper")
	cmd.Flags().String("year", "", "restrict to one publication year")
	cmd.Flags().Int("limit", 0, "maximum number of results (0 = --max-results)")
}

func init() {
	storeCmd.PersistentFlags().String("dir", "index", "store directory containing relations.db")
	storeCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")

	addFilterFlags(storeQueryCmd)
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	storePairsCmd.Flags().String("gene", "", "only pairs containing this gene")
	storePairsCmd.Flags().Int("min", 1, "minimum relations per pair")
	storePairsCmd.Flags().Int("limit", 0, "maximum number of pairs (0 = --max-results)")
	storePairsCmd.Flags().Bool("json", false, "output pairs as JSON")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIndexCmd, storeQueryCmd, storePairsCmd, storeExportCmd, storeStatsCmd)
	rootCmd.AddCommand(storeCmd)
}
