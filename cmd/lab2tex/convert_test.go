package main

// Notes:
// - run is tested end to end with LaTeX and client-side math, which need no
//   browser.
// - convertBatch is also tested with a fake Pool to cover acquisition
//   failures and cancellation without real converters.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/cli"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

func newTestEnv() (*cli.Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &cli.Environment{
		Stdout:  &stdout,
		Stderr:  &stderr,
		Environ: func() []string { return nil },
	}, &stdout, &stderr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

const calibrationNote = "# Calibration\n\nOffset `$\\delta = 0.3$` mm.\n"

// ---------------------------------------------------------------------------
// TestRun - Argument validation and exit codes
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := writeFile(t, dir, "note.md", calibrationNote)
	text := writeFile(t, dir, "note.txt", "plain")

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"version", []string{"--version"}, cli.ExitSuccess, "lab2tex dev", ""},
		{"help", []string{"--help"}, cli.ExitSuccess, "Usage: lab2tex", ""},
		{"no input", nil, cli.ExitIO, "", "no input specified"},
		{"unknown flag", []string{"--nope", note}, cli.ExitUsage, "", "invalid usage"},
		{"not markdown", []string{text}, cli.ExitUsage, "", ".md or .markdown"},
		{"invalid format", []string{note, "--format", "pdf"}, cli.ExitUsage, "", "invalid output format"},
		{"too many workers", []string{note, "--workers", "99"}, cli.ExitUsage, "", "latex.workers"},
		{"missing input", []string{filepath.Join(dir, "missing.md")}, cli.ExitIO, "", "failed to read markdown file"},
		{"same output twice", []string{note, note, "-o", filepath.Join(dir, "out")}, cli.ExitUsage, "", "both write"},
		{"output overwrites input", []string{note, "-o", note}, cli.ExitUsage, "", "would overwrite an input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv()
			code := run(t.Context(), tt.args, env)

			if code != tt.wantCode {
				t.Errorf("run(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRun_Outputs - Where documents are written
// ---------------------------------------------------------------------------

func TestRun_SingleToStdout(t *testing.T) {
	t.Parallel()

	note := writeFile(t, t.TempDir(), "note.md", calibrationNote)
	env, stdout, stderr := newTestEnv()

	if code := run(t.Context(), []string{note}, env); code != cli.ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	out := stdout.String()
	if !strings.HasPrefix(out, `\documentclass{article}`) {
		t.Errorf("stdout does not start with the preamble: %q", out)
	}
	if !strings.Contains(out, `\section*{Calibration}`) {
		t.Errorf("stdout missing section: %q", out)
	}
	if strings.Contains(out, "Created") {
		t.Error("stdout mixes status lines with the document")
	}
}

func TestRun_SingleToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := writeFile(t, dir, "note.md", calibrationNote)
	out := filepath.Join(dir, "build", "calibration.tex")
	env, stdout, stderr := newTestEnv()

	if code := run(t.Context(), []string{note, "-o", out}, env); code != cli.ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	if !strings.Contains(readFile(t, out), `Offset $\delta = 0.3$ mm.`) {
		t.Error("output file missing inline math")
	}
	if got := stdout.String(); got != "Created "+out+"\n" {
		t.Errorf("stdout = %q, want Created line", got)
	}
}

func TestRun_SingleIntoDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := writeFile(t, dir, "note.md", calibrationNote)
	outDir := filepath.Join(dir, "tex") + string(filepath.Separator)
	env, _, stderr := newTestEnv()

	if code := run(t.Context(), []string{note, "-o", outDir}, env); code != cli.ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	readFile(t, filepath.Join(dir, "tex", "note.tex"))
}

func TestRun_BatchIntoDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var inputs []string
	for _, name := range []string{"day-1.md", "day-2.md", "day-3.md"} {
		inputs = append(inputs, writeFile(t, dir, name, "# "+strings.TrimSuffix(name, ".md")+"\n\nMeasured.\n"))
	}
	outDir := filepath.Join(dir, "out")
	env, stdout, stderr := newTestEnv()

	args := append(inputs, "-o", outDir, "--workers", "2")
	if code := run(t.Context(), args, env); code != cli.ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	for _, name := range []string{"day-1.tex", "day-2.tex", "day-3.tex"} {
		if !strings.Contains(readFile(t, filepath.Join(outDir, name)), `\end{document}`) {
			t.Errorf("%s is not a complete document", name)
		}
	}
	if !strings.Contains(stdout.String(), "3 succeeded, 0 failed") {
		t.Errorf("stdout missing summary: %q", stdout.String())
	}
}

func TestRun_BatchNextToInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.md", "# A\n")
	b := writeFile(t, dir, "b.markdown", "# B\n")
	env, _, stderr := newTestEnv()

	if code := run(t.Context(), []string{a, b, "-q"}, env); code != cli.ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	readFile(t, filepath.Join(dir, "a.tex"))
	readFile(t, filepath.Join(dir, "b.tex"))
}

func TestRun_BatchPartialFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.md", "# Good\n")
	empty := writeFile(t, dir, "empty.md", "  \n")
	env, stdout, stderr := newTestEnv()

	code := run(t.Context(), []string{good, empty}, env)

	if code != cli.ExitGeneral {
		t.Errorf("run() = %d, want %d", code, cli.ExitGeneral)
	}
	if !strings.Contains(stderr.String(), "FAILED "+empty) {
		t.Errorf("stderr missing failure line: %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "1 succeeded, 1 failed") {
		t.Errorf("stdout missing summary: %q", stdout.String())
	}
	readFile(t, filepath.Join(dir, "good.tex"))
}

func TestRun_SingleEmptyNote(t *testing.T) {
	t.Parallel()

	empty := writeFile(t, t.TempDir(), "empty.md", "\n")
	env, _, stderr := newTestEnv()

	if code := run(t.Context(), []string{empty}, env); code != cli.ExitUsage {
		t.Errorf("run() = %d, want %d", code, cli.ExitUsage)
	}
	if strings.Contains(stderr.String(), "FAILED") {
		t.Error("single failure reported twice")
	}
}

func TestRun_HTMLFormat(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := writeFile(t, dir, "note.md", calibrationNote)
	env, _, stderr := newTestEnv()

	if code := run(t.Context(), []string{note, "--format", "html", "--light", "-o", dir + string(filepath.Separator)}, env); code != cli.ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}

	page := readFile(t, filepath.Join(dir, "note.html"))
	if !strings.Contains(page, "<title>Calibration</title>") {
		t.Errorf("page missing title")
	}
	if !strings.Contains(page, `\(\delta = 0.3\)`) {
		t.Errorf("page missing client-side math markup")
	}
}

func TestRun_DecodesUTF16(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// "# Été\n" in UTF-16LE with a byte order mark.
	utf16 := []byte{0xFF, 0xFE, '#', 0, ' ', 0, 0xC9, 0, 't', 0, 0xE9, 0, '\n', 0}
	path := filepath.Join(dir, "summer.md")
	if err := os.WriteFile(path, utf16, 0o600); err != nil {
		t.Fatal(err)
	}
	env, stdout, stderr := newTestEnv()

	if code := run(t.Context(), []string{path}, env); code != cli.ExitSuccess {
		t.Fatalf("run() = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `\section*{Été}`) {
		t.Errorf("stdout = %q, want decoded heading", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestPlanOutputs - Output path resolution
// ---------------------------------------------------------------------------

func TestPlanOutputs(t *testing.T) {
	t.Parallel()

	existingDir := t.TempDir()

	tests := []struct {
		name    string
		inputs  []string
		output  string
		outDir  string
		want    []string
		wantErr error
	}{
		{"single to stdout", []string{"a.md"}, "", "", []string{""}, nil},
		{"single to file", []string{"a.md"}, "x.tex", "", []string{"x.tex"}, nil},
		{"single to configured dir", []string{"notes/a.md"}, "", "tex", []string{filepath.Join("tex", "a.tex")}, nil},
		{"single to existing dir", []string{"a.md"}, existingDir, "", []string{filepath.Join(existingDir, "a.tex")}, nil},
		{"flag beats configured dir", []string{"a.md", "b.md"}, "out", "tex", []string{filepath.Join("out", "a.tex"), filepath.Join("out", "b.tex")}, nil},
		{"batch next to inputs", []string{"x/a.md", "y/b.markdown"}, "", "", []string{filepath.Join("x", "a.tex"), filepath.Join("y", "b.tex")}, nil},
		{"batch name clash", []string{"x/a.md", "y/a.md"}, "out", "", nil, cli.ErrDuplicateOutput},
		{"output is input", []string{"a.md"}, "a.md", "", nil, cli.ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			files, err := planOutputs(tt.inputs, tt.output, tt.outDir, ".tex")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("planOutputs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("planOutputs() error = %v", err)
			}
			if len(files) != len(tt.want) {
				t.Fatalf("got %d files, want %d", len(files), len(tt.want))
			}
			for i, f := range files {
				if f.InputPath != tt.inputs[i] {
					t.Errorf("files[%d].InputPath = %q, want %q", i, f.InputPath, tt.inputs[i])
				}
				if f.OutputPath != tt.want[i] {
					t.Errorf("files[%d].OutputPath = %q, want %q", i, f.OutputPath, tt.want[i])
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Pool failures and cancellation
// ---------------------------------------------------------------------------

type fakeConverter struct{}

func (fakeConverter) Convert(_ context.Context, in labnotes.Input) (*labnotes.ConvertResult, error) {
	return &labnotes.ConvertResult{LaTeX: []byte(in.Markdown)}, nil
}

type fakePool struct {
	size       int
	acquireErr error

	mu       sync.Mutex
	released int
}

func (p *fakePool) Acquire(context.Context) (Converter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return fakeConverter{}, nil
}

func (p *fakePool) Release(Converter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *fakePool) Size() int { return p.size }

func TestConvertBatch_AcquireFailure(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("no converter")
	pool := &fakePool{size: 2, acquireErr: errBoom}
	files := []FileToConvert{{InputPath: "a.md"}, {InputPath: "b.md"}, {InputPath: "c.md"}}

	results := convertBatch(t.Context(), pool, files, &conversionParams{format: labnotes.FormatLaTeX})

	for i, r := range results {
		if !errors.Is(r.Err, errBoom) {
			t.Errorf("results[%d].Err = %v, want %v", i, r.Err, errBoom)
		}
		if r.InputPath != files[i].InputPath {
			t.Errorf("results[%d].InputPath = %q, want %q", i, r.InputPath, files[i].InputPath)
		}
	}
}

func TestConvertBatch_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	pool := &fakePool{size: 1}
	files := []FileToConvert{{InputPath: "a.md"}, {InputPath: "b.md"}}

	results := convertBatch(ctx, pool, files, &conversionParams{format: labnotes.FormatLaTeX})

	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
	if pool.released != 1 {
		t.Errorf("released = %d, want 1", pool.released)
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	if got := convertBatch(t.Context(), &fakePool{size: 1}, nil, &conversionParams{}); got != nil {
		t.Errorf("convertBatch(nil) = %v, want nil", got)
	}
}

// ---------------------------------------------------------------------------
// TestPrintResults - Status lines and summary
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.tex"},
		{InputPath: "b.md", OutputPath: "b.tex", Err: errors.New("boom")},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		notStdout  []string
	}{
		{"default", false, false, []string{"Created a.tex", "1 succeeded, 1 failed"}, nil},
		{"verbose", false, true, []string{"a.md -> a.tex"}, []string{"Created"}},
		{"quiet", true, false, nil, []string{"Created", "succeeded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := newTestEnv()
			failed := printResults(results, tt.quiet, tt.verbose, env)

			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}
			if !strings.Contains(stderr.String(), "FAILED b.md: boom") {
				t.Errorf("stderr = %q, want failure line", stderr.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q: %q", want, stdout.String())
				}
			}
			for _, not := range tt.notStdout {
				if strings.Contains(stdout.String(), not) {
					t.Errorf("stdout contains %q: %q", not, stdout.String())
				}
			}
		})
	}
}
