package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alnah/labnotes"
	"github.com/alnah/labnotes/internal/cli"
	"github.com/alnah/labnotes/internal/fileutil"
	"github.com/alnah/labnotes/internal/notes"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ErrConversionFailed reports a batch in which some files failed.
var ErrConversionFailed = errors.New("conversion failed")

// FileToConvert represents a single file to process. An empty OutputPath
// writes the result to standard output.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// conversionParams groups parameters shared across the batch.
type conversionParams struct {
	format string
	stdout io.Writer
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, inputs []string, flags *convertFlags, env *cli.Environment) error {
	if len(inputs) == 0 {
		return cli.ErrNoInput
	}

	format := strings.ToLower(flags.format)
	if format != labnotes.FormatLaTeX && format != labnotes.FormatHTML {
		return fmt.Errorf("%w: %q (must be latex or html)", labnotes.ErrInvalidFormat, flags.format)
	}
	for _, in := range inputs {
		if !fileutil.IsMarkdown(in) {
			return fmt.Errorf("%w: %s", cli.ErrInvalidExtension, in)
		}
	}

	cfg, err := cli.LoadConfig(flags.common.Config, env, flags.common.Quiet)
	if err != nil {
		return err
	}
	applyConvertFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := planOutputs(inputs, flags.output, cfg.LaTeX.OutputDir, outputExt(format))
	if err != nil {
		return err
	}

	logger := log.New(env.Stderr, "", 0)
	if flags.common.Quiet {
		logger.SetOutput(io.Discard)
	}
	opts, err := cli.ConverterOptions(cfg, format == labnotes.FormatHTML, logger)
	if err != nil {
		return err
	}

	poolSize := min(labnotes.ResolvePoolSize(cfg.LaTeX.Workers), len(files))
	if flags.common.Verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}
	pool := labnotes.NewConverterPool(poolSize, opts...)
	defer func() { _ = pool.Close() }()

	results := convertBatch(ctx, &poolAdapter{pool: pool}, files, &conversionParams{
		format: format,
		stdout: env.Stdout,
	})

	failed := printResults(results, flags.common.Quiet, flags.common.Verbose, env)
	switch {
	case failed == 0:
		return nil
	case len(results) == 1:
		return results[0].Err
	default:
		return fmt.Errorf("%w: %d of %d files", ErrConversionFailed, failed, len(results))
	}
}

func outputExt(format string) string {
	if format == labnotes.FormatHTML {
		return ".html"
	}
	return ".tex"
}

// planOutputs decides where each input is written. With one input, output
// names a file unless it is an existing directory or ends with a path
// separator; with several, it names a directory. Without output, files go
// to outDir when set, then next to their input; a single input with
// neither goes to standard output.
func planOutputs(inputs []string, output, outDir, ext string) ([]FileToConvert, error) {
	if len(inputs) == 1 && output != "" && !isDirPath(output) {
		return checkOutputs([]FileToConvert{{InputPath: inputs[0], OutputPath: output}})
	}

	dir := output
	if dir == "" {
		dir = outDir
	}

	files := make([]FileToConvert, 0, len(inputs))
	for _, in := range inputs {
		f := FileToConvert{InputPath: in}
		switch {
		case dir != "":
			name, err := fileutil.ReplaceExt(filepath.Base(in), ext)
			if err != nil {
				return nil, err
			}
			f.OutputPath = filepath.Join(dir, name)
		case len(inputs) > 1:
			out, err := fileutil.ReplaceExt(in, ext)
			if err != nil {
				return nil, err
			}
			f.OutputPath = out
		}
		files = append(files, f)
	}
	return checkOutputs(files)
}

// checkOutputs rejects plans in which two inputs share an output file or
// an output would overwrite an input.
func checkOutputs(files []FileToConvert) ([]FileToConvert, error) {
	inputs := make(map[string]bool, len(files))
	for _, f := range files {
		inputs[filepath.Clean(f.InputPath)] = true
	}

	seen := make(map[string]string, len(files))
	for _, f := range files {
		if f.OutputPath == "" {
			continue
		}
		out := filepath.Clean(f.OutputPath)
		if inputs[out] {
			return nil, fmt.Errorf("%w: output %s would overwrite an input", cli.ErrUsage, f.OutputPath)
		}
		if prev, dup := seen[out]; dup {
			return nil, fmt.Errorf("%w: %s and %s both write %s", cli.ErrDuplicateOutput, prev, f.InputPath, f.OutputPath)
		}
		seen[out] = f.InputPath
	}
	return files, nil
}

func isDirPath(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire(ctx)
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath:  files[idx].InputPath,
						OutputPath: files[idx].OutputPath,
						Err:        err,
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath:  files[idx].InputPath,
						OutputPath: files[idx].OutputPath,
						Err:        ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv Converter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	raw, err := os.ReadFile(f.InputPath) // #nosec G304 -- user-provided input path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", cli.ErrReadMarkdown, err))
	}
	content, err := notes.Decode(raw)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", cli.ErrReadMarkdown, err))
	}

	res, err := conv.Convert(ctx, labnotes.Input{
		Markdown: content,
		Format:   params.format,
	})
	if err != nil {
		return fail(err)
	}
	data := res.LaTeX
	if params.format == labnotes.FormatHTML {
		data = res.HTML
	}

	if f.OutputPath == "" {
		if _, err := params.stdout.Write(data); err != nil {
			return fail(fmt.Errorf("%w: %v", cli.ErrWriteOutput, err))
		}
		result.Duration = time.Since(start)
		return result
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v", cli.ErrWriteOutput, err))
	}
	// #nosec G306 -- documents are meant to be readable
	if err := fileutil.WriteFileAtomic(f.OutputPath, data, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", cli.ErrWriteOutput, err))
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the number of
// failures. The failure of a lone file is left to the caller.
func printResults(results []ConversionResult, quiet, verbose bool, env *cli.Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}

		if quiet || r.OutputPath == "" {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
