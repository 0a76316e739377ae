package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ironsheep/image-panel-mcp/internal/imaging"
)

// runSplit writes every page of IMAGE plus the requested whole-panel
// exports to DESTINATION.
func runSplit(ctx context.Context, cmd *cli.Command) (err error) {
	log := env.log.Named("split")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input image has been specified")
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("unable to create destination: %w", err)
	}

	spec := env.cfg.Panel.Grid()
	if cmd.IsSet("columns") {
		spec.Columns = cmd.Int("columns")
	}
	if cmd.IsSet("rows") {
		spec.Rows = cmd.Int("rows")
	}
	if cmd.IsSet("margin") {
		spec.Margin = cmd.Int("margin")
	}

	formats, err := parseFormats(cmd.StringSlice("format"))
	if err != nil {
		return err
	}

	source, err := imaging.LoadFile(src)
	if err != nil {
		return err
	}
	log.Info("Splitting image",
		zap.String("source", src),
		zap.Int("width", source.Width()),
		zap.Int("height", source.Height()),
		zap.Int("columns", spec.Columns),
		zap.Int("rows", spec.Rows),
		zap.Int("margin", spec.Margin))

	grid, pages, err := imaging.Split(ctx, source.Image, spec, imaging.SplitOptions{Workers: env.cfg.Panel.Workers})
	if err != nil {
		return err
	}

	base := imaging.BaseName(src)
	w := writer{dir: dst, overwrite: cmd.Bool("overwrite"), log: log}

	for i, page := range pages {
		data, err := imaging.EncodeSingle(page)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		if err := w.write(imaging.PageFileName(base, i+1), data); err != nil {
			return err
		}
	}

	opts := imaging.EncodeOptions{Resolution: env.cfg.Panel.Resolution, Title: base}
	for _, format := range formats {
		data, err := imaging.EncodeMulti(pages, format, opts)
		if err != nil {
			return err
		}
		if err := w.write(imaging.PanelFileName(base, format), data); err != nil {
			return err
		}
		if format == imaging.FormatPNG {
			log.Info("PNG export contains only the first page", zap.Int("pages", len(grid.Pages)))
		}
	}
	return nil
}

// parseFormats maps the --format values to whole-panel export formats,
// dropping duplicates.
func parseFormats(names []string) ([]imaging.Format, error) {
	formats := make([]imaging.Format, 0, len(names))
	seen := make(map[imaging.Format]bool)
	for _, name := range names {
		format, err := imaging.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[format] {
			seen[format] = true
			formats = append(formats, format)
		}
	}
	return formats, nil
}

type writer struct {
	dir       string
	overwrite bool
	log       *zap.Logger
}

func (w writer) write(name string, data []byte) error {
	path := filepath.Join(w.dir, name)
	if !w.overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("destination '%s' already exists, use --overwrite to replace it", path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write '%s': %w", path, err)
	}
	w.log.Debug("Written", zap.String("file", path), zap.Int("bytes", len(data)))
	return nil
}
