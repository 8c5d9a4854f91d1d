package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jimezsa/clockedin/internal/export"
	"github.com/muesli/termenv"
)

// OutputOptions are the listing output flags shared by filter and watch.
type OutputOptions struct {
	Format string `help:"Output format: csv, json, md, tsv." enum:",csv,json,md,tsv" default:""`
	Links  string `help:"Table link display: short or full." enum:"short,full" default:"full"`
	Output string `name:"output" short:"o" help:"Write output to a file."`
}

// openOutput returns the writer listings go to. The func closes it.
func openOutput(ctx *Context, opts OutputOptions) (io.Writer, func(), error) {
	if strings.TrimSpace(opts.Output) == "" {
		return ctx.Out, func() {}, nil
	}
	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { _ = file.Close() }, nil
}

func writeOptions(ctx *Context, w io.Writer, opts OutputOptions) export.WriteOptions {
	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled && w == ctx.Out
	linkStyle := export.LinkStyleShort
	if strings.EqualFold(opts.Links, string(export.LinkStyleFull)) {
		linkStyle = export.LinkStyleFull
	}
	return export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   colorEnabled && isTTY(w),
		LinkStyle:    linkStyle,
	}
}

func resolveFormat(ctx *Context, opts OutputOptions) (export.Format, error) {
	if ctx.JSONOutput {
		return export.FormatJSON, nil
	}
	if ctx.PlainText {
		return export.FormatTSV, nil
	}
	if opts.Format != "" {
		return parseFormat(opts.Format)
	}
	if strings.TrimSpace(opts.Output) != "" {
		return export.FormatCSV, nil
	}
	if isTTY(ctx.Out) {
		return export.FormatTable, nil
	}
	return export.FormatCSV, nil
}

func parseFormat(value string) (export.Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "csv", "json", "md", "markdown", "tsv", "table", "":
		return export.ParseFormat(value), nil
	default:
		return "", fmt.Errorf("unknown format: %s", value)
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
