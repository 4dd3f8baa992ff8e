// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package writer persists an assembled document to disk in the format
// chosen by the destination extension.
package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docgen/internal/document"
	"github.com/pdiddy/docgen/internal/docx"
	"github.com/pdiddy/docgen/internal/xlsx"
	"github.com/pdiddy/docgen/pkg/types"
)

// ErrWrite matches every WriteError through errors.Is.
var ErrWrite = errors.New("write failed")

// WriteError reports a destination that could not be created or written.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is reports true for ErrWrite so callers need not know the cause.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// FormatFor picks the output format from the destination extension.
// Unknown and missing extensions default to docx.
func FormatFor(dest string) types.OutputFormat {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".md", ".markdown":
		return types.FormatMarkdown
	case ".xlsx":
		return types.FormatXLSX
	}
	return types.FormatDOCX
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc *document.Document, format types.OutputFormat) error {
	switch format {
	case types.FormatMarkdown:
		_, err := io.WriteString(w, doc.Markdown())
		return err
	case types.FormatXLSX:
		return xlsx.Encode(w, doc)
	case types.FormatDOCX, "":
		return docx.Encode(w, doc)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// Write persists doc at dest and returns the absolute path written. Missing
// parent directories are created. The file is written to a temporary name
// in the destination directory and renamed into place, so a failed write
// never leaves a partial document at dest.
func Write(doc *document.Document, dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", &WriteError{Op: "resolve", Path: dest, Err: err}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatFor(abs)); err != nil {
		return "", &WriteError{Op: "encode", Path: abs, Err: err}
	}
	if err := writeAtomic(abs, buf.Bytes()); err != nil {
		return "", err
	}
	return abs, nil
}

// WriteFile persists already encoded content at dest the way Write does.
func WriteFile(data []byte, dest string) (string, error) {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", &WriteError{Op: "resolve", Path: dest, Err: err}
	}
	if err := writeAtomic(abs, data); err != nil {
		return "", err
	}
	return abs, nil
}

func writeAtomic(abs string, data []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(abs)+".*.tmp")
	if err != nil {
		return &WriteError{Op: "create", Path: abs, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return &WriteError{Op: "write", Path: abs, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &WriteError{Op: "write", Path: abs, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return &WriteError{Op: "chmod", Path: abs, Err: err}
	}
	if err := os.Rename(tmpName, abs); err != nil {
		cleanup()
		return &WriteError{Op: "rename", Path: abs, Err: err}
	}
	return nil
}
