//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main contains Mage build targets for docgen developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// projectDirs lists the working directories a docgen project uses.
var projectDirs = []string{
	"templates",
	"values",
	"output/samples",
}

const (
	binDir  = "bin"
	binName = "docgen"
	cmdPkg  = "./cmd/docgen"

	// goTags enables FTS5 in go-sqlite3 for the render history.
	goTags = "sqlite_fts5"

	builtinDir = "internal/registry/builtin"
)

// Init creates the project directory structure.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-tags", goTags, "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Install installs the CLI into GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-tags", goTags, "-ldflags", ldflags(), cmdPkg)
}

// Test runs the test suite.
func Test() error {
	return sh.RunV("go", "test", "-tags", goTags, "./...")
}

// Clean removes build output and rendered samples.
func Clean() error {
	for _, dir := range []string{binDir, "output/samples"} {
		if err := sh.Rm(dir); err != nil {
			return err
		}
	}
	return nil
}

// ldflags stamps the version from VERSION or git.
func ldflags() string {
	version := os.Getenv("VERSION")
	if version == "" {
		if out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty"); err == nil {
			version = out
		}
	}
	if version == "" {
		version = "dev"
	}
	return "-X main.version=" + version
}

// Stats prints project metrics: Go production/test LOC and built-in template word count.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	tmplWords, err := countDocWords(builtinDir)
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Words (built-in templates):      %d\n", tmplWords)
	return nil
}

// countGoLines walks the directory tree and counts non-blank lines in Go files.
// If testOnly is true, count only _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), "_") || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				total++
			}
		}
		return nil
	})
	return total, err
}

// countDocWords walks root and counts words in .md and .yaml files.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}

// Sample renders every built-in template into output/samples in each
// output format.
func Sample() error {
	mg.Deps(Build)

	bin := filepath.Join(binDir, binName)
	names, err := builtinNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		for _, ext := range []string{".docx", ".xlsx", ".md"} {
			out := filepath.Join("output", "samples", strings.ToLower(name)+ext)
			if err := sh.RunV(bin, "render", name,
				"--set", "SYSTEM_NAME=Sample System",
				"-o", out); err != nil {
				return fmt.Errorf("rendering %s: %w", name, err)
			}
		}
	}
	return nil
}

// builtinNames lists the embedded templates by their file stems.
func builtinNames() ([]string, error) {
	entries, err := os.ReadDir(builtinDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", builtinDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		names = append(names, strings.ToUpper(strings.TrimSuffix(e.Name(), ".md")))
	}
	return names, nil
}
