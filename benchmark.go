package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"
)

// Benchmark runs one fixed query through an engine session: Warmup
// untimed executions followed by Runs timed ones, strictly sequential.
// Per-run "Run i:" lines are written to Out as they complete.
type Benchmark struct {
	Warmup  int
	Runs    int
	Timeout time.Duration
	Out     io.Writer
}

// Outcome is the product of a completed benchmark: one latency sample
// per timed run, in run order, plus the final run's result rows.
type Outcome struct {
	Samples []float64
	Rows    []ResultRow
}

func (b *Benchmark) Execute(ctx context.Context, engine Executor, query string) (*Outcome, error) {
	for i := 0; i < b.Warmup; i++ {
		Logger.Infof("running warmup #%v/%v", i+1, b.Warmup)
		PrintWarmup(b.Out)
		if _, err := b.run(ctx, engine, query); err != nil {
			return nil, fmt.Errorf("warmup #%v failed: %w", i+1, err)
		}
	}
	if b.Warmup > 0 {
		fmt.Fprintln(b.Out)
	}

	samples := make([]float64, 0, b.Runs)
	var first, last []ResultRow
	for i := 1; i <= b.Runs; i++ {
		start := time.Now()
		rows, err := b.run(ctx, engine, query)
		elapsed := time.Since(start)
		if err != nil {
			return nil, fmt.Errorf("run #%v failed: %w", i, err)
		}

		ms := elapsed.Seconds() * 1000
		samples = append(samples, ms)
		PrintRun(b.Out, i, ms)

		// The query is deterministic for fixed input, so every run must
		// produce the same rows; a mismatch means the measurement is
		// not trustworthy and the whole benchmark is aborted.
		if i == 1 {
			first = rows
		} else if !slices.Equal(first, rows) {
			return nil, fmt.Errorf("run #%v produced rows diverging from run #1", i)
		}
		last = rows
	}
	return &Outcome{Samples: samples, Rows: last}, nil
}

func (b *Benchmark) run(ctx context.Context, engine Executor, query string) ([]ResultRow, error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	return engine.Run(ctx, query)
}
