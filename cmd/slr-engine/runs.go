// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/slr-engine/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored deduplication runs",
	Long: `Runs lists and shows deduplication runs saved to the results store with
"dedup --save". Each run records its strategy, statistics, and clusters.`,
}

// --- list subcommand ---

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE:  runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(resultsConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No stored runs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-12s  %-8s  %-9s  %s\n",
		"ID", "Created", "Strategy", "Records", "Clusters", "Duplicates")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 75))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-12s  %-8d  %-9d  %d\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Strategy,
			r.Stats.InputCount, r.Stats.ClusterCount, r.Stats.DuplicateCount)
	}
	return nil
}

// --- show subcommand ---

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one stored run with its clusters",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q", args[0])
	}

	s, err := store.NewStore(resultsConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.GetRun(context.Background(), id)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	st := run.Stats
	fmt.Fprintf(os.Stdout, "Run %d  (%s, %s)\n", run.ID, run.Strategy,
		run.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(os.Stdout, "%d records in, %d removed by filter, %d clusters, %d duplicates (%.1f%%)\n\n",
		st.InputCount, st.RemovedByFilter, st.ClusterCount, st.DuplicateCount, st.DuplicateRate*100)

	for _, c := range run.Clusters {
		fmt.Fprintf(os.Stdout, "[%d] %s (size %d, conf %.2f)\n",
			c.ID, c.Representative.Title, c.Size(), c.Confidence)
		if len(c.DOIs) > 0 {
			fmt.Fprintf(os.Stdout, "    DOIs: %s\n", strings.Join(c.DOIs, ", "))
		}
		if len(c.ArxivIDs) > 0 {
			fmt.Fprintf(os.Stdout, "    arXiv: %s\n", strings.Join(c.ArxivIDs, ", "))
		}
	}
	return nil
}

func init() {
	runsCmd.PersistentFlags().String("results-dir", "results", "results store directory (contains dedup.db)")
	runsCmd.PersistentFlags().Bool("json", false, "output as JSON")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	rootCmd.AddCommand(runsCmd)
}
