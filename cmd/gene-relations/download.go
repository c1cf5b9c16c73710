// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/gene-relations/internal/fetch"
	"github.com/pdiddy/gene-relations/internal/secrets"
	"github.com/pdiddy/gene-relations/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download <terms...>",
	Short: "Download PubMed records for a query, then mine them",
	Long: `Download searches PubMed for the given terms, fetches the matching records
as PubMed XML into <output>.xml, and mines the file the way local does.

With --ids-only the matching PMIDs are saved to <output>.ids.json and
nothing is fetched or mined. An existing download is never overwritten.

An NCBI API key (ncbi-api-key in .secrets/, or GENE_RELATIONS_NCBI_API_KEY)
raises the request rate limit.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	f := downloadCmd.Flags()
	f.IntP("number", "n", 10, "number of search results to download")
	f.String("sort", "relevance", "result order: relevance, pub_date, Author or JournalName")
	f.Bool("ids-only", false, "save the PMIDs only, without fetching or mining")
	f.Duration("timeout", 60*time.Second, "HTTP request timeout")
	f.Int("fetch-batch", fetch.DefaultFetchBatchSize, "records per efetch request")
	f.Duration("batch-delay", fetch.DefaultBatchDelay, "pause between efetch requests")
	f.Int("max-retries", 5, "retries on throttled responses")

	rootCmd.AddCommand(downloadCmd)
}

// fetchConfig merges download flags with the ncbi section of the config
// file and the NCBI secrets.
func fetchConfig(cmd *cobra.Command) types.FetchConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	batch, _ := cmd.Flags().GetInt("fetch-batch")
	delay, _ := cmd.Flags().GetDuration("batch-delay")
	retries, _ := cmd.Flags().GetInt("max-retries")

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "gene-relations/" + version,
		},
		BaseURL:        viper.GetString("ncbi.base_url"),
		APIKey:         secretDefault(secrets.NCBIAPIKey, viper.GetString("ncbi.api_key")),
		Email:          secretDefault(secrets.NCBIEmail, viper.GetString("ncbi.email")),
		Tool:           viper.GetString("ncbi.tool"),
		SearchPageSize: viper.GetInt("ncbi.search_page_size"),
		FetchBatchSize: batch,
		BatchDelay:     delay,
		MaxRetries:     retries,
	}
	if !cmd.Flags().Changed("fetch-batch") && viper.IsSet("ncbi.fetch_batch_size") {
		cfg.FetchBatchSize = viper.GetInt("ncbi.fetch_batch_size")
	}
	if !cmd.Flags().Changed("batch-delay") && viper.IsSet("ncbi.batch_delay") {
		cfg.BatchDelay = viper.GetDuration("ncbi.batch_delay")
	}
	return fetch.WithDefaults(cfg)
}

func runDownload(cmd *cobra.Command, args []string) error {
	number, _ := cmd.Flags().GetInt("number")
	sortBy, _ := cmd.Flags().GetString("sort")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	mcfg := miningConfig()
	req := fetch.Request{
		Terms:   strings.Join(args, " "),
		Number:  number,
		Sort:    sortBy,
		Output:  mcfg.Output,
		IDsOnly: idsOnly,
	}

	client := fetch.NewClient(fetchConfig(cmd), os.Stdout)
	path, n, err := client.Download(cmd.Context(), req, os.Stdout)
	if err != nil {
		return err
	}
	if idsOnly {
		fmt.Printf("Saved %d PMIDs to %s\n", n, path)
		return nil
	}

	_, err = mine(cmd.Context(), path, mcfg, progressWriter(), os.Stdout)
	return err
}
