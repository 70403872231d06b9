package flatskema

// dispatch.go fans lines out to a fixed pool of workers and reassembles
// outcomes in original line order. The primary contract is that output
// ordering is identical to sequential processing regardless of worker count
// or scheduling. Workers share the compiled Schema read-only and nothing
// else.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/reoring/flatskema/i18n"
)

// safeProcess runs one line through the engine. A panic while processing the
// line degrades to a panic issue for that line only; sibling workers keep
// running.
func safeProcess(s *Schema, ln Line) (res LineResult) {
	defer func() {
		if r := recover(); r != nil {
			res = LineResult{Line: ln.Number, Issues: Issues{{
				Line: ln.Number, Code: CodePanic, Message: i18n.T(CodePanic, nil),
				Params: map[string]any{"recovered": fmt.Sprint(r)},
			}}}
		}
	}()
	return s.process(ln.Number, ln.Text)
}

// dispatchAll processes a fully materialized input with a fixed pool.
// Results are addressed by index, so order is preserved by construction.
func dispatchAll(ctx context.Context, s *Schema, lines []Line, workers int) []LineResult {
	if workers > len(lines) {
		workers = len(lines)
	}
	results := make([]LineResult, len(lines))
	if workers <= 1 {
		for i, ln := range lines {
			if ctx.Err() != nil {
				break
			}
			results[i] = safeProcess(s, ln)
		}
		return results
	}

	idx := make(chan int, len(lines))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-idx:
					if !ok {
						return
					}
					results[i] = safeProcess(s, lines[i])
				}
			}
		}()
	}
	for i := range lines {
		idx <- i
	}
	close(idx)
	wg.Wait()
	return results
}

// streamOrdered is the streaming-mode dispatcher: a reader goroutine feeds a
// fixed pool, and a collector reassembles outcomes by line number before the
// consumer sees them. Abandoning the sequence cancels the run and drains the
// pool so nothing leaks.
func streamOrdered(ctx context.Context, s *Schema, src Source, workers int) iter.Seq[LineResult] {
	return func(yield func(LineResult) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		defer src.Close()

		jobs := make(chan Line, workers)
		out := make(chan LineResult, workers)
		ordered := make(chan LineResult, workers)
		errRes := make(chan LineResult, 1)

		go func() {
			defer close(jobs)
			defer close(errRes)
			for {
				ln, err := src.Next()
				if err != nil {
					if !errors.Is(err, io.EOF) {
						errRes <- sourceErrResult(err)
					}
					return
				}
				select {
				case jobs <- ln:
				case <-ctx.Done():
					return
				}
			}
		}()

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for ln := range jobs {
					select {
					case out <- safeProcess(s, ln):
					case <-ctx.Done():
						return
					}
				}
			}()
		}
		go func() {
			wg.Wait()
			close(out)
		}()

		go func() {
			defer close(ordered)
			emit := func(r LineResult) bool {
				select {
				case ordered <- r:
					return true
				case <-ctx.Done():
					return false
				}
			}
			// Line numbers are contiguous from the source, so they double as
			// reassembly sequence numbers.
			pending := make(map[int]LineResult)
			next := 1
			flush := func() bool {
				for {
					r, ok := pending[next]
					if !ok {
						return true
					}
					delete(pending, next)
					if !emit(r) {
						return false
					}
					next++
				}
			}
			for r := range out {
				pending[r.Line] = r
				if !flush() {
					return
				}
			}
			if !flush() {
				return
			}
			// A source failure surfaces after every line read before it.
			if r, ok := <-errRes; ok {
				emit(r)
			}
		}()

		for r := range ordered {
			if !yield(r) {
				cancel()
				for range ordered {
					// drain until the collector shuts down
				}
				return
			}
		}
	}
}
