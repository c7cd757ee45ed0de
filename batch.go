package wordml

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tsawler/wordml/config"
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/pool"
)

// BatchResult is the outcome of converting one file with ConvertAll.
type BatchResult struct {
	Path     string
	Document *model.Document
	Output   []byte
	Warnings []Warning
	Err      error
}

// ConvertAll converts files concurrently on a worker pool sized by cfg and
// renders each in cfg's output format. Results are in input order. A file
// that fails has Err set; the others are unaffected. When the pool cannot
// start, files are converted one after another in the calling goroutine.
//
// Example:
//
//	results := wordml.ConvertAll(ctx, paths, config.Default(), logger)
//	for _, r := range results {
//	    if r.Err != nil {
//	        log.Printf("%s: %v", r.Path, r.Err)
//	    }
//	}
func ConvertAll(ctx context.Context, paths []string, cfg config.Config, logger *zap.Logger) []BatchResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := pool.NewDispatcher(cfg, pool.ConvertHandler(logger), logger)
	defer d.Close()

	opts := pool.Options{
		Format:       cfg.OutputFormat(),
		ShowHidden:   cfg.ShowHidden,
		NoLabels:     cfg.NoLabels,
		Fragment:     cfg.Fragment,
		InlineStyles: cfg.InlineStyles,
	}

	results := make([]BatchResult, len(paths))
	futures := make([]*pool.Future, len(paths))
	for i, path := range paths {
		results[i].Path = path

		data, err := os.ReadFile(path)
		if err != nil {
			results[i].Err = fmt.Errorf("failed to read %s: %w", path, err)
			continue
		}
		fut, err := d.Submit(ctx, pool.Request{
			Name:    path,
			Kind:    pool.KindConvert,
			Payload: data,
			Options: opts,
		})
		if err != nil {
			results[i].Err = fmt.Errorf("failed to submit %s: %w", path, err)
			continue
		}
		futures[i] = fut
	}

	for i, fut := range futures {
		if fut == nil {
			continue
		}
		res, err := fut.Wait(ctx)
		if err != nil {
			results[i].Err = fmt.Errorf("%s: %w", paths[i], err)
			continue
		}
		results[i].Document = res.Document
		results[i].Output = res.Output
		results[i].Warnings = res.Warnings
	}
	return results
}
