package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"parsetrace/internal/driver"
	"parsetrace/internal/parser"
	"parsetrace/internal/render"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

var (
	passColor   = color.New(color.FgGreen, color.Bold)
	failColor   = color.New(color.FgRed, color.Bold)
	cachedColor = color.New(color.FgCyan)
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file|directory>...",
		Short: "Parse many inputs in parallel and summarize",
		Long: `Check runs the selected grammar over every file given and every file with
the input extension below the given directories. Inputs are parsed in
parallel, each with its own tracer, and reported in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args)
		},
	}
	addGrammarFlags(cmd)
	addRenderFlags(cmd)
	addTraceFlags(cmd)
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("ext", driver.DefaultExt, "input extension searched for in directories")
	cmd.Flags().Bool("cache", false, "reuse results of unchanged inputs")
	cmd.Flags().String("cache-dir", "", "result cache directory (implies --cache)")
	cmd.Flags().Bool("clear-cache", false, "drop cached results before checking")
	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	ext, err := cmd.Flags().GetString("ext")
	if err != nil {
		return fmt.Errorf("failed to get ext flag: %w", err)
	}
	paths, err := expandInputs(args, ext)
	if err != nil {
		return err
	}
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}

	// A single directory argument is the natural root for display paths
	baseDir := a.settings.BaseDir
	if baseDir == "" && len(args) == 1 {
		if st, err := os.Stat(args[0]); err == nil && st.IsDir() {
			baseDir = args[0]
		}
	}

	req := driver.Request{
		Grammar:  a.settings.Grammar,
		Strategy: a.settings.Strategy,
		Sink:     trace.SinkFromContext(cmd.Context()),
		Jobs:     a.settings.Jobs,
		Load:     source.LoadOptions{NFC: a.settings.NFC},
		BaseDir:  baseDir,
		Cache:    cache,
		Options:  parser.Options{},
	}
	a.log.Infof("checking %d inputs with %d jobs", len(paths), a.settings.Jobs)

	start := time.Now()
	phase := a.timer.Begin("check")
	fileSet, results, err := driver.CheckFiles(cmd.Context(), paths, req)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	a.timer.End(phase, fmt.Sprintf("%d inputs", len(results)))

	phase = a.timer.Begin("report")
	out := cmd.OutOrStdout()
	for i := range results {
		if err := a.reportResult(out, fileSet, &results[i]); err != nil {
			return err
		}
	}
	a.timer.End(phase, "")

	passed, failed, cached := driver.Counts(results)
	summary := fmt.Sprintf("%d passed, %d failed", passed, failed)
	if cached > 0 {
		summary += fmt.Sprintf(" (%d cached)", cached)
	}
	if failed > 0 {
		fmt.Fprintf(out, "%s %s in %s\n", failColor.Sprint("FAIL"), summary, elapsed.Round(time.Millisecond))
		return a.fail(cmd)
	}
	if !a.quiet {
		fmt.Fprintf(out, "%s %s in %s\n", passColor.Sprint("ok"), summary, elapsed.Round(time.Millisecond))
	}
	return nil
}

func (a *app) reportResult(out io.Writer, fileSet *source.FileSet, r *driver.FileResult) error {
	switch {
	case r.LoadErr != nil:
		fmt.Fprintf(out, "%s %s: %v\n", failColor.Sprint("FAIL"), r.Path, r.LoadErr)
	case r.Cached && !r.Summary.OK:
		fmt.Fprintf(out, "%s %s:%d:%d: %s %s\n", failColor.Sprint("FAIL"), fileSet.DisplayPath(r.FileID),
			r.Summary.Line, r.Summary.Column, r.Summary.Code, cachedColor.Sprint("(cached)"))
	case r.Cached:
		if !a.quiet {
			fmt.Fprintf(out, "%s %s %s\n", passColor.Sprint("ok"), fileSet.DisplayPath(r.FileID), cachedColor.Sprint("(cached)"))
		}
	case !r.Summary.OK:
		fmt.Fprintf(out, "%s ", failColor.Sprint("FAIL"))
		return render.Error(out, r.Result.Err, a.renderOptions(fileSet.DisplayPath(r.FileID)))
	default:
		if !a.quiet {
			fmt.Fprintf(out, "%s %s (%s)\n", passColor.Sprint("ok"), fileSet.DisplayPath(r.FileID), r.Elapsed.Round(time.Microsecond))
		}
	}
	return nil
}

// expandInputs replaces every directory in args by the files with extension
// ext below it. Files are kept even when their extension differs.
func expandInputs(args []string, ext string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path: %w", err)
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := driver.ListFiles(arg, ext)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no *%s inputs found", ext)
	}
	return paths, nil
}

func openCache(cmd *cobra.Command) (*driver.ResultCache, error) {
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}

	var cache *driver.ResultCache
	switch {
	case dir != "":
		cache, err = driver.NewResultCache(dir)
	case useCache || clearCache:
		cache, err = driver.OpenResultCache("parsetrace")
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open result cache: %w", err)
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to clear result cache: %w", err)
		}
	}
	return cache, nil
}
