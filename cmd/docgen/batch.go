// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docgen/internal/engine"
	"github.com/pdiddy/docgen/internal/placeholder"
)

var batchCmd = &cobra.Command{
	Use:   "batch JOBS_FILE",
	Short: "Render many templates concurrently from a jobs file",
	Long: `Batch reads a YAML jobs file and renders every job, several at a time.
A failing job does not stop the others.

  values:            # shared by every job
    SYSTEM_NAME: LIMS
  jobs:
    - template: IQ
      output: lims-iq.docx
    - template: OQ
      output: lims-oq.docx
      values:
        TECHNICAL_OWNER: QA

Shared values rank below --set and the other value flags, which rank
below a job's own values. Two jobs may not write the same file.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// batchFile is the jobs file layout.
type batchFile struct {
	Values placeholder.Context `yaml:"values"`
	Jobs   []engine.Job        `yaml:"jobs"`
}

func loadBatchFile(path string) (*batchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}
	var bf batchFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing jobs file %s: %w", path, err)
	}
	for i, job := range bf.Jobs {
		if job.Template == "" || job.Output == "" {
			return nil, fmt.Errorf("jobs file %s: job %d needs template and output", path, i+1)
		}
	}
	return &bf, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	bf, err := loadBatchFile(args[0])
	if err != nil {
		return err
	}
	flagValues, err := valuesFromFlags(cmd)
	if err != nil {
		return err
	}

	jobs := make([]engine.Job, len(bf.Jobs))
	for i, job := range bf.Jobs {
		jobs[i] = engine.Job{
			Template: job.Template,
			Values:   placeholder.Merge(bf.Values, flagValues, job.Values),
			Output:   resolveOutput(cfg, job.Output),
		}
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if !cmd.Flags().Changed("workers") {
		workers = cfg.Workers
	}

	a, err := newApp(ctx, cfg, statusWriter(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	results, batchErr := a.eng.RenderBatch(ctx, jobs, workers)
	if results == nil {
		return batchErr
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
		return batchErr
	}

	failed := 0
	for i := range results {
		printResult(os.Stdout, &results[i])
		if !results[i].Success {
			failed++
		}
	}
	summary := fmt.Sprintf("%d rendered, %d failed", len(results)-failed, failed)
	if failed > 0 {
		fmt.Fprintln(os.Stdout, errStyle.Render(summary))
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	fmt.Fprintln(os.Stdout, okStyle.Render(summary))
	return nil
}

func init() {
	addValueFlags(batchCmd)
	batchCmd.Flags().Int("workers", 0, "concurrent renders (default: workers from config, else GOMAXPROCS)")
	batchCmd.Flags().Bool("json", false, "print the render results as JSON")

	rootCmd.AddCommand(batchCmd)
}
