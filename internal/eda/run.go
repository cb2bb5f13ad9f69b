// Package eda runs the chart steps of the water quality and disease analysis
// against a loaded table and writes one figure file per step.
package eda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/waterborne-cli/internal/analysis"
	"github.com/KaramelBytes/waterborne-cli/internal/charts"
	"github.com/KaramelBytes/waterborne-cli/internal/logging"
	"github.com/KaramelBytes/waterborne-cli/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Options configures a run.
type Options struct {
	OutDir           string
	Format           charts.Format
	Width, Height    int
	SizeMin, SizeMax float64
	// Parallel bounds concurrent renders; values below 1 mean 1.
	Parallel int
	// Strict aborts on a missing column or an empty chart. Otherwise the step
	// is skipped with a warning.
	Strict bool
	// Only selects steps by number or name; empty runs all of them.
	Only []string
}

// Result reports what happened to one step.
type Result struct {
	Num      int           `json:"num"`
	Name     string        `json:"name"`
	Path     string        `json:"path,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Run renders the selected steps in order. Each step checks its columns
// before rendering. The first failure cancels steps that have not started;
// results of finished steps are returned alongside the error.
func Run(ctx context.Context, t *analysis.Table, opt Options) ([]Result, error) {
	steps, err := Select(opt.Only)
	if err != nil {
		return nil, err
	}
	if opt.Format == "" {
		opt.Format = charts.FormatPNG
	}
	if err := utils.EnsureDir(opt.OutDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	log := logging.WithContext(ctx, "eda")

	results := make([]Result, len(steps))
	done := make([]bool, len(steps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opt.Parallel, 1))
	for i, s := range steps {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := runStep(t, s, opt, log)
			results[i] = res
			done[i] = err == nil
			return err
		})
	}
	err = g.Wait()
	var finished []Result
	for i, r := range results {
		if done[i] {
			finished = append(finished, r)
		}
	}
	return finished, err
}

type logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

func runStep(t *analysis.Table, s Step, opt Options, log logger) (Result, error) {
	res := Result{Num: s.Num, Name: s.Name}
	if s.Gate != "" && !t.Has(s.Gate) {
		res.Skipped = true
		res.Reason = fmt.Sprintf("no %q column", s.Gate)
		log.Info("step skipped", "step", s.Name, "reason", res.Reason)
		return res, nil
	}
	if missing := t.Missing(s.Requires...); len(missing) > 0 {
		err := &analysis.MissingColumnError{Column: missing[0], Step: s.Name}
		return skipOrFail(res, err, opt, log)
	}

	start := time.Now()
	fig, err := s.build(t, s.Title, opt)
	if err != nil {
		return skipOrFail(res, fmt.Errorf("%s: %w", s.Name, err), opt, log)
	}
	path := filepath.Join(opt.OutDir, s.FileName(opt.Format))
	if err := utils.WriteFileWith(path, func(w io.Writer) error { return fig.Render(w, opt.Format) }); err != nil {
		return skipOrFail(res, fmt.Errorf("%s: %w", s.Name, err), opt, log)
	}
	res.Path = path
	res.Duration = time.Since(start)
	log.Info("chart written", "step", s.Name, "path", path, "took", res.Duration.Round(time.Millisecond))
	return res, nil
}

// skipOrFail turns data problems into skips when not strict. Other failures,
// such as I/O errors, always fail.
func skipOrFail(res Result, err error, opt Options, log logger) (Result, error) {
	var mc *analysis.MissingColumnError
	var ct *analysis.ColumnTypeError
	var eg *analysis.EmptyGroupError
	soft := errors.As(err, &mc) || errors.As(err, &ct) || errors.As(err, &eg) || errors.Is(err, charts.ErrNoData)
	if opt.Strict || !soft {
		return res, err
	}
	res.Skipped = true
	res.Reason = err.Error()
	log.Warn("step skipped", "step", res.Name, "error", err)
	return res, nil
}
