// Command wordml converts Word documents to text or HTML and inspects their
// packages.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/wordml"
	"github.com/tsawler/wordml/config"
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/render"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the settings every subcommand shares.
type app struct {
	out, errOut io.Writer

	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "wordml",
		Short: "Convert Word documents to text or HTML",
		Long: `wordml parses .docx packages into a resolved document model:
styles are cascaded, list labels are computed and tables keep their
merged cells. The model is written as plain text or HTML.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(convertCmd(a))
	rootCmd.AddCommand(inspectCmd(a))
	return rootCmd
}

// setup loads the config and builds the logger. Flags override the file.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func convertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file.docx>...",
		Short: "Convert documents to text or HTML",
		Long: `Convert one or more .docx files.

A single file is written to stdout unless --output names a file. Several
files are converted concurrently and written into the --output directory,
one file each, named after the input.

Example:
  wordml convert report.docx
  wordml convert report.docx --format html --output report.html
  wordml convert *.docx --format html --output out/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			showHidden, _ := cmd.Flags().GetBool("show-hidden")
			noLabels, _ := cmd.Flags().GetBool("no-labels")
			fragment, _ := cmd.Flags().GetBool("fragment")
			inlineStyles, _ := cmd.Flags().GetBool("inline-styles")
			strict, _ := cmd.Flags().GetBool("strict")

			cfg := a.cfg
			if cmd.Flags().Changed("format") {
				cfg.Format = formatName
			}
			f, err := render.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}
			cfg.ShowHidden = cfg.ShowHidden || showHidden
			cfg.NoLabels = cfg.NoLabels || noLabels
			cfg.Fragment = cfg.Fragment || fragment
			cfg.InlineStyles = cfg.InlineStyles || inlineStyles

			if len(args) > 1 {
				if output == "" {
					return fmt.Errorf("--output directory is required when converting several files")
				}
				return a.convertMany(cmd.Context(), args, output, cfg, f, strict)
			}

			conv := wordml.Open(args[0]).WithLogger(a.logger)
			if cfg.ShowHidden {
				conv = conv.ShowHidden()
			}
			if cfg.NoLabels {
				conv = conv.WithoutLabels()
			}
			if cfg.Fragment {
				conv = conv.Fragment()
			}
			if cfg.InlineStyles {
				conv = conv.InlineStyles()
			}

			w := a.out
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				w = file
			}

			warnings, err := conv.Render(w, f)
			if err != nil {
				return err
			}
			return a.reportWarnings(args[0], warnings, strict)
		},
	}

	cmd.Flags().StringP("format", "f", "", "Output format: text or html (default from config)")
	cmd.Flags().StringP("output", "o", "", "Output file, or directory for several inputs")
	cmd.Flags().Bool("show-hidden", false, "Include hidden text")
	cmd.Flags().Bool("no-labels", false, "Omit list labels")
	cmd.Flags().Bool("fragment", false, "HTML: write body content only")
	cmd.Flags().Bool("inline-styles", false, "HTML: write resolved formatting as CSS")
	cmd.Flags().Bool("strict", false, "Fail when a document produces warnings")
	return cmd
}

func (a *app) convertMany(ctx context.Context, paths []string, dir string, cfg config.Config, f render.Format, strict bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	var failed int
	for _, res := range wordml.ConvertAll(ctx, paths, cfg, a.logger) {
		if res.Err != nil {
			fmt.Fprintf(a.errOut, "%s: %v\n", res.Path, res.Err)
			failed++
			continue
		}
		base := strings.TrimSuffix(filepath.Base(res.Path), filepath.Ext(res.Path))
		target := filepath.Join(dir, base+f.Extension())
		if err := os.WriteFile(target, res.Output, 0o644); err != nil {
			fmt.Fprintf(a.errOut, "%s: failed to write %s: %v\n", res.Path, target, err)
			failed++
			continue
		}
		if err := a.reportWarnings(res.Path, res.Warnings, strict); err != nil {
			failed++
			continue
		}
		fmt.Fprintf(a.out, "%s -> %s\n", res.Path, target)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(paths))
	}
	return nil
}

func (a *app) reportWarnings(path string, warnings []wordml.Warning, strict bool) error {
	if len(warnings) == 0 {
		return nil
	}
	fmt.Fprintf(a.errOut, "%s: %d warnings\n", path, len(warnings))
	for _, w := range warnings {
		fmt.Fprintf(a.errOut, "  %s\n", w)
	}
	if strict {
		return fmt.Errorf("%s: %d warnings in strict mode", path, len(warnings))
	}
	return nil
}

func inspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file.docx>",
		Short: "Show package format, parts, metadata and warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			showParts, _ := cmd.Flags().GetBool("parts")

			conv := wordml.Open(args[0]).WithLogger(a.logger)
			defer conv.Close()

			f, err := conv.Format()
			if err != nil {
				return err
			}
			meta, err := conv.Metadata()
			if err != nil {
				return err
			}
			parts, err := conv.Parts()
			if err != nil {
				return err
			}
			doc, warnings, err := conv.Document()
			if err != nil {
				return err
			}

			out := a.out
			fmt.Fprintf(out, "File:       %s\n", args[0])
			fmt.Fprintf(out, "Format:     %s\n", f)
			printField(out, "Title", meta.Title)
			printField(out, "Author", meta.Author)
			printField(out, "Subject", meta.Subject)
			printField(out, "Keywords", strings.Join(meta.Keywords, ", "))
			printField(out, "Creator", meta.Creator)
			if !meta.CreationDate.IsZero() {
				printField(out, "Created", meta.CreationDate.Format("2006-01-02 15:04:05"))
			}
			if !meta.ModDate.IsZero() {
				printField(out, "Modified", meta.ModDate.Format("2006-01-02 15:04:05"))
			}

			var headings, numbered int
			doc.Walk(func(p *model.Paragraph) {
				if p.IsHeading() {
					headings++
				}
				if p.Numbering != nil {
					numbered++
				}
			})
			fmt.Fprintf(out, "Blocks:     %d (%d paragraphs, %d tables)\n",
				len(doc.Blocks), len(doc.Paragraphs()), len(doc.Tables()))
			fmt.Fprintf(out, "Headings:   %d\n", headings)
			fmt.Fprintf(out, "List items: %d\n", numbered)
			fmt.Fprintf(out, "Parts:      %d\n", len(parts))
			if showParts {
				for _, p := range parts {
					fmt.Fprintf(out, "  %s\n", p)
				}
			}
			fmt.Fprintf(out, "Warnings:   %d\n", len(warnings))
			for _, w := range warnings {
				fmt.Fprintf(out, "  %s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().Bool("parts", false, "List every part in the package")
	return cmd
}

func printField(w io.Writer, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-11s %s\n", name+":", value)
}
