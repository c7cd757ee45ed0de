package pool

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/wordml/docx"
	"github.com/tsawler/wordml/render"
)

// ConvertHandler returns the handler that parses Payload as a .docx
// package and, for KindConvert, renders it per the request options.
func ConvertHandler(logger *zap.Logger) Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req Request, progress func(string)) (*Result, error) {
		progress("open")
		r, err := docx.OpenBytes(req.Payload,
			docx.WithLogger(logger.With(zap.Uint64("request", req.ID), zap.String("name", req.Name))))
		if err != nil {
			return nil, err
		}
		defer r.Close()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress("assemble")
		doc, warnings, err := r.Convert()
		if err != nil {
			return nil, err
		}
		res := &Result{Document: doc, Warnings: warnings}
		if req.Kind != KindConvert {
			return res, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress("render")
		var buf bytes.Buffer
		if err := Renderer(req.Options).Render(&buf, doc); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", req.Options.Format, err)
		}
		res.Output = buf.Bytes()
		return res, nil
	}
}

// Renderer returns the renderer the options describe.
func Renderer(opts Options) render.Renderer {
	switch opts.Format {
	case render.FormatHTML:
		return &render.HTMLRenderer{
			IncludeLabels: !opts.NoLabels,
			ShowHidden:    opts.ShowHidden,
			Fragment:      opts.Fragment,
			InlineStyles:  opts.InlineStyles,
		}
	default:
		return &render.TextRenderer{IncludeLabels: !opts.NoLabels, ShowHidden: opts.ShowHidden}
	}
}
