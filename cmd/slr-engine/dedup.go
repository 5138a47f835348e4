// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slr-engine/internal/dedup"
	"github.com/pdiddy/slr-engine/internal/embed"
	"github.com/pdiddy/slr-engine/internal/records"
	"github.com/pdiddy/slr-engine/internal/secrets"
	"github.com/pdiddy/slr-engine/internal/store"
	"github.com/pdiddy/slr-engine/pkg/types"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Deduplicate a records file into publication clusters",
	Long: `Dedup loads bibliographic records from a YAML or JSON file, optionally
applies per-query quality criteria, and clusters records that describe the
same publication. Each cluster carries a fused golden record.

The conservative strategy merges on exact identifiers, exact normalized
titles, and near-identical titles within a year window. The semantic
strategy additionally merges clusters whose representatives embed close
together; it requires an embedding service endpoint.`,
	RunE: runDedup,
}

func runDedup(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	if inputPath == "" {
		return fmt.Errorf("--input is required")
	}

	recs, err := records.LoadRecords(inputPath)
	if err != nil {
		return err
	}

	var criteria map[string]types.QualityCriterion
	if criteriaPath, _ := cmd.Flags().GetString("criteria"); criteriaPath != "" {
		criteria, err = records.LoadCriteria(criteriaPath)
		if err != nil {
			return err
		}
	}

	cfg := dedupConfigFromFlags(cmd)

	var embedder dedup.Embedder
	if cfg.Strategy == types.StrategySemantic {
		embedder, err = embeddingClient(cmd, cfg.EmbeddingModel)
		if err != nil {
			return err
		}
	}

	d, err := dedup.New(cfg, embedder, os.Stderr)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	var progress dedup.ProgressFunc
	if !quiet {
		progress = func(message string, percent int) {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, message)
		}
	}

	start := time.Now()
	res, err := d.Deduplicate(context.Background(), recs, criteria, progress)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if save, _ := cmd.Flags().GetBool("save"); save {
		s, err := store.NewStore(resultsConfigFromFlags(cmd))
		if err != nil {
			return err
		}
		defer s.Close()

		runID, err := s.SaveRun(context.Background(), string(cfg.Strategy), res.Clusters, res.Stats)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved run %d\n", runID)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatDedupOutput(res, elapsed, jsonOutput)
}

// dedupConfigFromFlags builds the engine configuration; Validate applies
// defaults for anything left at zero.
func dedupConfigFromFlags(cmd *cobra.Command) types.DedupConfig {
	strategy, _ := cmd.Flags().GetString("strategy")
	fuzzyThreshold, _ := cmd.Flags().GetInt("fuzzy-threshold")
	maxYearGap, _ := cmd.Flags().GetInt("max-year-gap")
	semanticThreshold, _ := cmd.Flags().GetFloat64("semantic-threshold")
	model, _ := cmd.Flags().GetString("embedding-model")

	return types.DedupConfig{
		Strategy:          types.Strategy(strategy),
		FuzzyThreshold:    fuzzyThreshold,
		MaxYearGap:        maxYearGap,
		SemanticThreshold: semanticThreshold,
		EmbeddingModel:    model,
	}
}

func embeddingClient(cmd *cobra.Command, model string) (*embed.Client, error) {
	endpoint, _ := cmd.Flags().GetString("embedding-endpoint")
	apiKey, _ := cmd.Flags().GetString("embedding-api-key")
	timeout, _ := cmd.Flags().GetDuration("embedding-timeout")

	return embed.NewClient(types.EmbeddingConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "slr-engine/" + version,
		},
		Endpoint: endpoint,
		APIKey:   secretDefault(secrets.EmbeddingAPIKey, apiKey),
	}, model)
}

func resultsConfigFromFlags(cmd *cobra.Command) types.ResultsConfig {
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	if resultsDir == "" {
		resultsDir = "results"
	}
	return types.ResultsConfig{ResultsDir: resultsDir}
}

func formatDedupOutput(res dedup.Result, elapsed time.Duration, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Clusters []types.Cluster  `json:"clusters"`
			Stats    types.DedupStats `json:"stats"`
		}{res.Clusters, res.Stats})
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-5s  %-60s  %-6s  %s\n",
		"ID", "Size", "Title", "Year", "Conf")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, c := range res.Clusters {
		title := c.Representative.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if c.Representative.Year != 0 {
			year = fmt.Sprintf("%d", c.Representative.Year)
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-5d  %-60s  %-6s  %.2f\n",
			c.ID, c.Size(), title, year, c.Confidence)
	}

	st := res.Stats
	fmt.Fprintf(os.Stdout, "\n%d records in, %d removed by filter, %d clusters, %d duplicates (%.1f%%)\n",
		st.InputCount, st.RemovedByFilter, st.ClusterCount, st.DuplicateCount, st.DuplicateRate*100)
	fmt.Fprintf(os.Stdout, "cluster size avg %.2f, max %d\n", st.AvgClusterSize, st.MaxClusterSize)

	if len(st.ProviderCounts) > 0 {
		providers := make([]string, 0, len(st.ProviderCounts))
		for p := range st.ProviderCounts {
			providers = append(providers, p)
		}
		sort.Strings(providers)
		parts := make([]string, 0, len(providers))
		for _, p := range providers {
			parts = append(parts, fmt.Sprintf("%s: %d", p, st.ProviderCounts[p]))
		}
		fmt.Fprintf(os.Stdout, "providers: %s\n", strings.Join(parts, ", "))
	}
	fmt.Fprintf(os.Stdout, "elapsed: %s\n", elapsed.Round(time.Millisecond))
	return nil
}

func init() {
	dedupCmd.Flags().String("input", "", "records file (.yaml, .yml, or .json)")
	dedupCmd.Flags().String("criteria", "", "quality criteria file mapping query IDs to keyword lists")
	dedupCmd.Flags().String("strategy", "conservative", "deduplication strategy: conservative or semantic")
	dedupCmd.Flags().Int("fuzzy-threshold", 0, "minimum title similarity 0-100 for a fuzzy merge (0 = default 97)")
	dedupCmd.Flags().Int("max-year-gap", types.DefaultMaxYearGap, "maximum publication-year difference for a fuzzy merge")
	dedupCmd.Flags().Float64("semantic-threshold", 0, "minimum cosine similarity 0.0-1.0 for a semantic merge (0 = default 0.92)")
	dedupCmd.Flags().String("embedding-endpoint", "", "embedding service URL (required for --strategy semantic)")
	dedupCmd.Flags().String("embedding-model", "", "embedding model identifier (default allenai/specter2)")
	dedupCmd.Flags().String("embedding-api-key", "", "embedding service API key (default: .secrets/embedding-api-key)")
	dedupCmd.Flags().Duration("embedding-timeout", 60*time.Second, "embedding service request timeout")
	dedupCmd.Flags().Bool("save", false, "save the run to the results store")
	dedupCmd.Flags().String("results-dir", "results", "results store directory (contains dedup.db)")
	dedupCmd.Flags().Bool("json", false, "output clusters as JSON")
	dedupCmd.Flags().Bool("quiet", false, "suppress progress output")

	rootCmd.AddCommand(dedupCmd)
}
