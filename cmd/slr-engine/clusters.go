// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slr-engine/internal/store"
)

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Query clusters across stored runs",
}

var clustersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over cluster representatives",
	Long: `Search runs an FTS5 full-text query over the representative titles and
abstracts of every stored cluster, across all runs, ranked by relevance.`,
	RunE: runClustersSearch,
}

func runClustersSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	if query == "" {
		return fmt.Errorf("search query required")
	}

	s, err := store.NewStore(resultsConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := s.SearchClusters(context.Background(), query, limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-4s  %-60s  %-5s  %s\n",
		"Run", "ID", "Title", "Size", "Conf")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 85))
	for _, h := range hits {
		title := h.Cluster.Representative.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-4d  %-60s  %-5d  %.2f\n",
			h.RunID, h.Cluster.ID, title, h.Cluster.Size(), h.Cluster.Confidence)
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(hits))
	return nil
}

func init() {
	clustersCmd.PersistentFlags().String("results-dir", "results", "results store directory (contains dedup.db)")

	clustersSearchCmd.Flags().String("query", "", "full-text search query")
	clustersSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	clustersSearchCmd.Flags().Bool("json", false, "output results as JSON")

	clustersCmd.AddCommand(clustersSearchCmd)
	rootCmd.AddCommand(clustersCmd)
}
