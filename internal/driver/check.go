// Package driver runs a grammar over input files, one tracer per input, and
// collects the outcomes in input order.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"parsetrace/internal/demo"
	"parsetrace/internal/diag"
	"parsetrace/internal/parser"
	"parsetrace/internal/source"
	"parsetrace/internal/trace"
)

// Request describes one check run.
type Request struct {
	Grammar  demo.Grammar
	Strategy trace.Strategy
	// Sink receives the events of every full tracer. It is shared by all
	// inputs and must be safe for concurrent use; nil keeps logs in memory.
	// The caller closes it.
	Sink    trace.Sink
	Options parser.Options
	Jobs    int // 0 means GOMAXPROCS
	Load    source.LoadOptions
	BaseDir string
	Cache   *ResultCache // optional
}

// Summary is the outcome of one input reduced to what a report needs. It is
// also what the result cache stores.
type Summary struct {
	OK      bool
	Code    string
	Offset  int
	Line    uint32
	Column  int
	Message string
}

// FileResult is the outcome for one input.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Summary Summary
	// Result and Tracer are nil-valued for cached and unreadable inputs.
	Result  parser.Result[any]
	Tracer  trace.Tracer
	Elapsed time.Duration
	LoadErr error
	Cached  bool
}

// Failed reports whether the input did not parse or could not be read.
func (r *FileResult) Failed() bool {
	return r.LoadErr != nil || !r.Summary.OK
}

func summarize(res parser.Result[any]) Summary {
	if res.OK() {
		return Summary{OK: true}
	}
	err := res.Err
	return Summary{
		Code:    err.Code.String(),
		Offset:  err.Span.Offset(),
		Line:    err.Span.Line(),
		Column:  err.Span.GraphemeColumn(),
		Message: err.Error(),
	}
}

// ParseFile runs the grammar over one loaded file with a fresh tracer.
func ParseFile(fileSet *source.FileSet, id source.FileID, req Request) (FileResult, error) {
	file := fileSet.Get(id)
	tr, err := trace.New(trace.Config{Strategy: req.Strategy, Sink: req.Sink})
	if err != nil {
		return FileResult{}, err
	}

	start := time.Now()
	res := req.Grammar.Run(tr, file.Span(), req.Options)
	elapsed := time.Since(start)

	return FileResult{
		Path:    file.Path,
		FileID:  id,
		Summary: summarize(res),
		Result:  res,
		Tracer:  tr,
		Elapsed: elapsed,
	}, nil
}

// CheckFiles loads and parses paths in parallel. Results come back in the
// order of paths. A file that cannot be read yields a result with LoadErr
// set; the returned error is reserved for cancellation and tracer setup.
func CheckFiles(ctx context.Context, paths []string, req Request) (*source.FileSet, []FileResult, error) {
	fileSet := source.NewFileSetWithBase(req.BaseDir)
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	// Load up front so FileIDs follow the input order
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make(map[int]error)
	for i, path := range paths {
		id, err := fileSet.Load(path, req.Load)
		if err != nil {
			loadErrors[i] = err
			continue
		}
		fileIDs[i] = id
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes only its own index
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, failed := loadErrors[i]; failed {
				results[i] = FileResult{Path: path, LoadErr: loadErr}
				return nil
			}

			file := fileSet.Get(fileIDs[i])
			key := CacheKey(req.Grammar.Name, req.Strategy, file.Hash)
			if sum, ok, err := req.Cache.Get(key); err == nil && ok {
				results[i] = FileResult{Path: file.Path, FileID: file.ID, Summary: sum, Cached: true}
				return nil
			}

			res, err := ParseFile(fileSet, fileIDs[i], req)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := req.Cache.Put(key, res.Summary); err != nil {
				return fmt.Errorf("%s: cache: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// CheckDir checks every file with extension ext below dir.
func CheckDir(ctx context.Context, dir, ext string, req Request) (*source.FileSet, []FileResult, error) {
	files, err := ListFiles(dir, ext)
	if err != nil {
		return nil, nil, err
	}
	if req.BaseDir == "" {
		req.BaseDir = dir
	}
	return CheckFiles(ctx, files, req)
}

// Counts tallies passed, failed and cached results.
func Counts(results []FileResult) (passed, failed, cached int) {
	for i := range results {
		if results[i].Failed() {
			failed++
		} else {
			passed++
		}
		if results[i].Cached {
			cached++
		}
	}
	return passed, failed, cached
}

// FirstError returns the parser error of the first failed, freshly parsed
// result.
func FirstError(results []FileResult) (*FileResult, *diag.ParserError) {
	for i := range results {
		if results[i].Result.Err != nil {
			return &results[i], results[i].Result.Err
		}
	}
	return nil, nil
}
