// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgen/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Search, export and prune the render history",
	Long: `History reads the SQLite database in which every render is recorded:
template, output path, outcome, unresolved keys and diagnostics.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List recorded renders, newest first",
	Long: `List shows recorded renders. An optional full-text query matches the
template name, output path, unresolved keys and error text, e.g.
"docgen history list TECHNICAL_OWNER".`,
	RunE: runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := historyOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}
	entries, err := store.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No renders recorded.")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		status := okStyle.Render("ok")
		detail := e.OutputPath
		if !e.Success {
			status = errStyle.Render("failed")
			detail = e.Error
		} else if len(e.Unresolved) > 0 {
			status = warnStyle.Render(fmt.Sprintf("%d unresolved", len(e.Unresolved)))
		}
		rows[i] = []string{
			fmt.Sprint(e.ID),
			e.RenderedAt.Local().Format("2006-01-02 15:04:05"),
			e.Template,
			status,
			detail,
		}
	}
	printTable(os.Stdout, []string{"ID", "WHEN", "TEMPLATE", "STATUS", "OUTPUT / ERROR"}, rows)
	fmt.Printf("\n%d renders\n", len(entries))
	return nil
}

var historyExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export the render history to YAML or JSON",
	Long: `Export writes the matching history (all of it by default) to stdout or
to the file named by --output. Supports the same filters as list.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := historyOptsFromFlags(cmd, args)
	if err != nil {
		return err
	}

	w := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = store.ExportYAML(cmd.Context(), w, opts)
	case "json":
		err = store.ExportJSON(cmd.Context(), w, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
	return nil
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete renders older than a given age",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if olderThan <= 0 {
		return fmt.Errorf("--older-than must be positive")
	}

	store, err := history.NewStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d render(s)\n", n)
	return nil
}

// --- shared helpers ---

func historyOptsFromFlags(cmd *cobra.Command, args []string) (history.QueryOptions, error) {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	template, _ := cmd.Flags().GetString("template")
	failed, _ := cmd.Flags().GetBool("failed")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")

	if since < 0 {
		return history.QueryOptions{}, fmt.Errorf("--since must not be negative")
	}
	opts := history.QueryOptions{
		Query:      query,
		Template:   template,
		FailedOnly: failed,
		MaxResults: limit,
	}
	if since > 0 {
		opts.Since = time.Now().Add(-since)
	}
	return opts, nil
}

func addHistoryFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "full-text search query")
	cmd.Flags().String("template", "", "only renders of this template")
	cmd.Flags().Bool("failed", false, "only failed renders")
	cmd.Flags().Duration("since", 0, "only renders newer than this age, e.g. 24h")
	cmd.Flags().Int("limit", 0, "maximum results (0 = default)")
}

func init() {
	addHistoryFilterFlags(historyListCmd)
	historyListCmd.Flags().Bool("json", false, "output results as JSON")

	addHistoryFilterFlags(historyExportCmd)
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	historyPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "delete renders older than this age")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyPruneCmd)

	rootCmd.AddCommand(historyCmd)
}
