package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-ideogram/internal/output"
)

// Output formats for the write command.
const (
	formatHTML = "html"
	formatJS   = "js"
	formatTSV  = "tsv"
	formatJSON = "json"
)

func newWriteCmd(opts *rootOptions) *cobra.Command {
	var (
		outputFile string
		format     string
		container  string
		title      string
	)

	cmd := &cobra.Command{
		Use:   "write [symbols...]",
		Short: "Write an Ideogram document for gene symbols",
		Long: `Resolve gene symbols and write an Ideogram.js document.

Formats:
  html  standalone HTML page (default)
  js    script for a notebook cell containing the container element
  tsv   name, chr, start, stop table
  json  the annotations array passed to Ideogram.js

Symbols without coordinates are skipped.`,
		Example: `  vibe-ideogram write TP53 KRAS BRCA1 > genes.html
  vibe-ideogram write TP53 KRAS -o genes.html --title "Driver genes"
  vibe-ideogram write TP53 --format js --container ideo-1`,
		Args: usageArgs(cobra.ArbitraryArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatHTML, formatJS, formatTSV, formatJSON:
			default:
				return &usageError{fmt.Errorf("unknown output format %q", format)}
			}

			if !cmd.Flags().Changed("container") {
				container = opts.cfg.Render.Container
				if format == formatJS {
					container = output.DefaultJSContainer
				}
			}
			if !cmd.Flags().Changed("title") {
				title = opts.cfg.Render.Title
			}

			a := newApp(opts.cfg, opts.logger, cmd.ErrOrStderr())
			src, release, err := a.source()
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			var buf bytes.Buffer
			switch format {
			case formatHTML:
				if outputFile != "" && outputFile != "-" {
					return output.WriteHTMLFile(ctx, outputFile, src, args, container, title)
				}
				if err := output.WriteHTML(ctx, &buf, src, args, container, title); err != nil {
					return err
				}
			case formatJS:
				doc, err := output.RenderJavaScript(ctx, src, args, container)
				if err != nil {
					return err
				}
				buf.WriteString(doc)
			case formatTSV, formatJSON:
				anns, err := src.Annotations(ctx, args)
				if err != nil {
					return err
				}
				if format == formatTSV {
					err = output.NewTabWriter(&buf).WriteAll(anns)
				} else {
					err = output.WriteJSON(&buf, anns)
				}
				if err != nil {
					return fmt.Errorf("format annotations: %w", err)
				}
			}

			return writeOutput(cmd.OutOrStdout(), outputFile, buf.Bytes())
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatHTML, "output format: html, js, tsv, json")
	cmd.Flags().StringVar(&container, "container", "", "element id to draw into (default: body for html, ideo-container for js)")
	cmd.Flags().StringVar(&title, "title", "", "page title for html output (default: Ideogram)")

	return cmd
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
// The document is rendered before the file is created so a failed lookup
// never leaves an empty file behind.
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
