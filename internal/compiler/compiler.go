/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package compiler is the Compiler Driver (§4.8): it stages a workspace
// (applying any in-memory document overrides over the on-disk sources),
// shells out to the real Gren compiler via exec.CommandContext under a
// context timeout, and parses its JSON diagnostic report. Concurrent
// compilation work is bounded with golang.org/x/sync/semaphore, in the style
// of kralicky-protocompile.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"golang.org/x/sync/semaphore"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	defaultConcurrency = 4
	defaultTimeout     = 10 * time.Second
	binaryEnvVar       = "GREN_COMPILER_PATH"
	defaultBinary      = "gren"
)

// Override is one in-memory document that should be staged over its
// on-disk counterpart before invoking the compiler.
type Override struct {
	RelPath string // path relative to project_root, e.g. "src/Main.gren"
	Content string
}

// Diagnostic is one compiler-reported problem, already converted to 0-based
// line/column per §4.8's output-parsing rules. It carries no source tag;
// the publishing layer tags it "gren".
type Diagnostic struct {
	Path     string
	Range    protocol.Range
	Severity protocol.DiagnosticSeverity
	Message  string
}

// Result is the outcome of one compile invocation.
type Result struct {
	Success     bool
	Diagnostics []Diagnostic
}

// Driver runs `gren make` against staged copies of workspace sources.
type Driver struct {
	Binary      string
	Concurrency int
	Timeout     time.Duration
	sem         *semaphore.Weighted
}

// New creates a Driver. binaryPath overrides the GREN_COMPILER_PATH
// environment variable and the "gren" PATH lookup when non-empty.
func New(binaryPath string, concurrency int, timeout time.Duration) *Driver {
	if binaryPath == "" {
		binaryPath = os.Getenv(binaryEnvVar)
	}
	if binaryPath == "" {
		binaryPath = defaultBinary
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Driver{
		Binary:      binaryPath,
		Concurrency: concurrency,
		Timeout:     timeout,
		sem:         semaphore.NewWeighted(int64(concurrency)),
	}
}

// Compile stages projectRoot (copying gren.json, gren_packages/, .gren/ and
// every on-disk .gren source, then overlaying overrides), runs `gren make
// <moduleName> --report=json --output=<discard>` inside the staging
// directory, and parses its diagnostic report.
func (d *Driver) Compile(ctx context.Context, projectRoot, moduleName string, overrides []Override) (Result, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return Result{}, err
	}
	defer d.sem.Release(1)

	stageDir, err := stage(projectRoot, overrides)
	if err != nil {
		return Result{}, fmt.Errorf("staging compile: %w", err)
	}
	defer os.RemoveAll(stageDir)

	runCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	outputPath := filepath.Join(stageDir, ".gren-lsp-discard.js")
	cmd := exec.CommandContext(runCtx, d.Binary, "make", moduleName,
		"--report=json", "--output="+outputPath)
	cmd.Dir = stageDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr == nil {
		return Result{Success: true}, nil
	}

	report := stdout.Bytes()
	if len(report) == 0 {
		report = stderr.Bytes()
	}
	if len(report) == 0 {
		return Result{}, fmt.Errorf("gren make failed with no diagnostic output: %w", runErr)
	}

	diags, err := parseReport(report)
	if err != nil {
		return Result{}, fmt.Errorf("parsing compiler report: %w", err)
	}
	return Result{Success: false, Diagnostics: diags}, nil
}

func stage(projectRoot string, overrides []Override) (string, error) {
	stageDir, err := os.MkdirTemp("", "gren-lsp-stage-*")
	if err != nil {
		return "", err
	}

	toCopy := []string{"gren.json", "gren_packages", ".gren"}
	for _, name := range toCopy {
		src := filepath.Join(projectRoot, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyTree(src, filepath.Join(stageDir, name)); err != nil {
			os.RemoveAll(stageDir)
			return "", err
		}
	}

	if err := copyGrenSources(projectRoot, stageDir); err != nil {
		os.RemoveAll(stageDir)
		return "", err
	}

	for _, ov := range overrides {
		dest := filepath.Join(stageDir, ov.RelPath)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			os.RemoveAll(stageDir)
			return "", err
		}
		if err := os.WriteFile(dest, []byte(ov.Content), 0o644); err != nil {
			os.RemoveAll(stageDir)
			return "", err
		}
	}

	return stageDir, nil
}

func copyGrenSources(projectRoot, stageDir string) error {
	return filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			base := filepath.Base(path)
			if base == "gren_packages" || base == ".gren" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".gren" {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(stageDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return copyFile(path, dest)
	})
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// reportEnvelope mirrors the two shapes the compiler's --report=json can
// emit, per §4.8: a compile-errors report (Errors) and a single error
// report (Title, Path, Message).
type reportEnvelope struct {
	Type string `json:"type"`

	// compile-errors shape
	Errors []reportFileErrors `json:"errors"`

	// error shape
	Title   string `json:"title"`
	Path    string `json:"path"`
	Message json.RawMessage `json:"message"`
}

type reportFileErrors struct {
	Path     string          `json:"path"`
	Name     string          `json:"name"`
	Problems []reportProblem `json:"problems"`
}

type reportProblem struct {
	Title  string `json:"title"`
	Region struct {
		Start reportPos `json:"start"`
		End   reportPos `json:"end"`
	} `json:"region"`
	Message json.RawMessage `json:"message"`
}

type reportPos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func parseReport(data []byte) ([]Diagnostic, error) {
	var env reportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	var out []Diagnostic
	switch env.Type {
	case "compile-errors":
		for _, fe := range env.Errors {
			for _, p := range fe.Problems {
				out = append(out, Diagnostic{
					Path:     fe.Path,
					Range:    toZeroBased(p.Region.Start, p.Region.End),
					Severity: protocol.DiagnosticSeverityError,
					Message:  fmt.Sprintf("%s: %s", p.Title, joinMessage(p.Message)),
				})
			}
		}
	case "error":
		out = append(out, Diagnostic{
			Path:     env.Path,
			Range:    protocol.Range{},
			Severity: protocol.DiagnosticSeverityError,
			Message:  fmt.Sprintf("%s: %s", env.Title, joinMessage(env.Message)),
		})
	default:
		return nil, fmt.Errorf("unrecognized compiler report type %q", env.Type)
	}
	return out, nil
}

func toZeroBased(start, end reportPos) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(start.Line - 1), Character: uint32(start.Col - 1)},
		End:   protocol.Position{Line: uint32(end.Line - 1), Character: uint32(end.Col - 1)},
	}
}

// joinMessage flattens the compiler's structured message (a mix of plain
// strings and {bold,underline,color,string} style spans) into plain text.
func joinMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var spans []json.RawMessage
	if err := json.Unmarshal(raw, &spans); err != nil {
		return string(raw)
	}
	out := ""
	for _, span := range spans {
		var s string
		if err := json.Unmarshal(span, &s); err == nil {
			out += s
			continue
		}
		var obj struct {
			String string `json:"string"`
		}
		if err := json.Unmarshal(span, &obj); err == nil {
			out += obj.String
		}
	}
	return out
}
