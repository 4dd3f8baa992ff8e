// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List and inspect the available templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates with their titles and sources",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, statusWriter(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	var rows [][]string
	for _, name := range a.eng.Names() {
		d, err := a.eng.Describe(ctx, name)
		if err != nil {
			rows = append(rows, []string{name, errStyle.Render(err.Error()), ""})
			continue
		}
		rows = append(rows, []string{d.Name, d.Title, d.Source})
	}
	if len(rows) == 0 {
		fmt.Println("No templates found.")
		return nil
	}
	printTable(os.Stdout, []string{"NAME", "TITLE", "SOURCE"}, rows)
	return nil
}

var templatesShowCmd = &cobra.Command{
	Use:   "show TEMPLATE",
	Short: "Show the placeholder keys and defaults of a template",
	Long: `Show lists every placeholder key TEMPLATE references, marks the keys
that have no default and must come from the caller, and prints the
defaults. Use --body to print the template text as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplatesShow,
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, statusWriter(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.eng.Describe(ctx, args[0])
	if err != nil {
		return err
	}
	showBody, _ := cmd.Flags().GetBool("body")
	if !showBody {
		d.Body = ""
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}

	fmt.Println(headerStyle.Render(d.Name), d.Title)
	if d.Description != "" {
		fmt.Println(d.Description)
	}
	fmt.Println(dimStyle.Render("source: " + d.Source))
	fmt.Println()

	missing := make(map[string]bool, len(d.Missing))
	for _, k := range d.Missing {
		missing[k] = true
	}
	rows := make([][]string, 0, len(d.Keys))
	for _, k := range d.Keys {
		value, ok := d.Defaults[k]
		switch {
		case ok:
		case missing[k]:
			value = warnStyle.Render("required")
		default:
			value = dimStyle.Render("filled by docgen")
		}
		rows = append(rows, []string{k, value})
	}
	printTable(os.Stdout, []string{"KEY", "DEFAULT"}, rows)

	if unused := unusedDefaults(d.Keys, d.Defaults); len(unused) > 0 {
		fmt.Printf("\n%s %s\n", dimStyle.Render("unused defaults:"), strings.Join(unused, ", "))
	}
	if d.Body != "" {
		fmt.Printf("\n%s\n", d.Body)
	}
	return nil
}

func unusedDefaults(keys []string, defaults map[string]string) []string {
	used := make(map[string]bool, len(keys))
	for _, k := range keys {
		used[k] = true
	}
	var out []string
	for k := range defaults {
		if !used[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func init() {
	templatesShowCmd.Flags().Bool("body", false, "print the template text")
	templatesShowCmd.Flags().Bool("json", false, "print the description as JSON")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)

	rootCmd.AddCommand(templatesCmd)
}
