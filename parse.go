package flatskema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/reoring/flatskema/i18n"
)

// ParserConfig describes one parse run: the resolved schema, the line source,
// and the concurrency degree. It is constructed once by the caller and
// consumed read-only by the engine, so it is safely shareable across workers.
type ParserConfig struct {
	Schema *Schema
	Source Source
	// Workers sizes the dispatcher pool. Values of 1 or less select purely
	// sequential execution with no pool at all.
	Workers int
}

// ParseAll is the all-lines entry point. It processes every line of the
// source, returning the parsed records on success or the full ordered Issues
// collection when any line failed. Output is identical for any worker count.
//
// Only schema-level and source-level problems abort the run; per-line
// problems are collected and processing continues.
func ParseAll(ctx context.Context, cfg ParserConfig) ([]ParsedLine, error) {
	if err := precheck(cfg); err != nil {
		return nil, err
	}
	defer cfg.Source.Close()

	lines, err := readAll(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}

	var results []LineResult
	if cfg.Workers > 1 {
		results = dispatchAll(ctx, cfg.Schema, lines, cfg.Workers)
	} else {
		results = make([]LineResult, len(lines))
		for i, ln := range lines {
			if ctx.Err() != nil {
				break
			}
			results[i] = safeProcess(cfg.Schema, ln)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs := make([]ParsedLine, 0, len(results))
	var iss Issues
	for _, r := range results {
		if r.Valid() {
			recs = append(recs, *r.Record)
		} else {
			iss = append(iss, r.Issues...)
		}
	}
	if len(iss) > 0 {
		sortByLine(iss)
		return nil, iss
	}
	return recs, nil
}

// Stream is the line-by-line entry point. It returns a lazy, finite,
// single-pass sequence of per-line outcomes in original line order; the
// caller decides per outcome whether to continue. Breaking out of the range
// cancels outstanding work, releases the worker pool, and closes the source.
//
// Schema errors surface eagerly, before the sequence exists. A source read
// error mid-stream is yielded as a final source_error outcome.
func Stream(ctx context.Context, cfg ParserConfig) (iter.Seq[LineResult], error) {
	if err := precheck(cfg); err != nil {
		return nil, err
	}
	if cfg.Workers > 1 {
		return streamOrdered(ctx, cfg.Schema, cfg.Source, cfg.Workers), nil
	}
	return streamSequential(ctx, cfg.Schema, cfg.Source), nil
}

func streamSequential(ctx context.Context, s *Schema, src Source) iter.Seq[LineResult] {
	return func(yield func(LineResult) bool) {
		defer src.Close()
		for {
			if ctx.Err() != nil {
				return
			}
			ln, err := src.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(sourceErrResult(err))
				return
			}
			if !yield(safeProcess(s, ln)) {
				return
			}
		}
	}
}

func precheck(cfg ParserConfig) error {
	if cfg.Schema == nil {
		return schemaErrf("", "", "nil schema")
	}
	if cfg.Source == nil {
		return errors.New("flatskema: nil source")
	}
	return cfg.Schema.Compile()
}

func readAll(ctx context.Context, src Source) ([]Line, error) {
	var lines []Line
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ln, err := src.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("flatskema: source: %w", err)
		}
		lines = append(lines, ln)
	}
}

// sourceErrResult wraps a mid-stream read failure as the final outcome of a
// streaming run. Line 0 means the failing line number is unknown.
func sourceErrResult(err error) LineResult {
	return LineResult{Issues: Issues{{
		Code: CodeSourceError, Message: i18n.T(CodeSourceError, nil), Cause: err,
	}}}
}
