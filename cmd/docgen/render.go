// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docgen/internal/contextfile"
	"github.com/pdiddy/docgen/internal/placeholder"
)

var renderCmd = &cobra.Command{
	Use:   "render TEMPLATE",
	Short: "Render one template into a document",
	Long: `Render fills the placeholders of TEMPLATE and writes the document.
The output extension selects the format: .docx (default), .xlsx or .md.

Values are layered, lowest first: the template and configured defaults,
--values-dir, each --values file in order, then --set assignments.
Placeholders without a value stay in the document as [[KEY]] and are
listed in the summary; --strict turns them into a failure.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	values, err := valuesFromFlags(cmd)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = strings.ToLower(name) + ".docx"
	}

	a, err := newApp(ctx, cfg, statusWriter(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	res, renderErr := a.eng.Render(ctx, name, values, resolveOutput(cfg, output))

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printResult(os.Stdout, res)
	}
	if renderErr != nil {
		return renderErr
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict && len(res.Unresolved) > 0 {
		return fmt.Errorf("%d unresolved placeholder(s): %s", len(res.Unresolved), strings.Join(res.Unresolved, ", "))
	}
	return nil
}

// addValueFlags registers the flags read by valuesFromFlags.
func addValueFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "placeholder value as KEY=VALUE (repeatable)")
	cmd.Flags().StringArray("values", nil, "YAML or JSON file of placeholder values (repeatable)")
	cmd.Flags().String("values-dir", "", "directory holding one file per placeholder key")
	cmd.Flags().Bool("upper-keys", false, "upper-case every value key before rendering")
}

func valuesFromFlags(cmd *cobra.Command) (placeholder.Context, error) {
	set, _ := cmd.Flags().GetStringArray("set")
	files, _ := cmd.Flags().GetStringArray("values")
	dir, _ := cmd.Flags().GetString("values-dir")
	upper, _ := cmd.Flags().GetBool("upper-keys")

	return contextfile.Sources{
		Files:     files,
		Dir:       dir,
		Set:       set,
		UpperKeys: upper,
	}.Load(os.Stderr)
}

func init() {
	addValueFlags(renderCmd)
	renderCmd.Flags().StringP("output", "o", "", "output file (default: <template>.docx in the output directory)")
	renderCmd.Flags().Bool("strict", false, "fail when placeholders remain unresolved")
	renderCmd.Flags().Bool("json", false, "print the render result as JSON")

	rootCmd.AddCommand(renderCmd)
}
