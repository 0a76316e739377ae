package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/ironsheep/image-panel-mcp/internal/config"
	"github.com/ironsheep/image-panel-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// env is the state shared by all commands, prepared in Before.
var env struct {
	cfg *config.Config
	log *zap.Logger
}

// initializeAppContext prepares configuration and logging after the command
// line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	configFile := cmd.String("config")
	if env.cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.IsSet("log-level") {
		env.cfg.Logging.Level = cmd.String("log-level")
	}
	if env.log, err = env.cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}

	env.log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", Version),
		zap.String("runtime", runtime.Version()),
		zap.String("built", BuildTime),
		zap.String("hash", GitCommit))
	if len(configFile) == 0 {
		env.log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(_ context.Context, _ *cli.Command) error {
	if env.log != nil {
		env.log.Debug("Program ended")
		// stderr sync fails on some terminals, nothing to report
		_ = env.log.Sync()
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(_ context.Context, _ *cli.Command, err error) {
	if env.log != nil {
		env.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

// runServer runs the MCP server on stdio until stdin closes or the program
// is interrupted.
func runServer(ctx context.Context, _ *cli.Command) error {
	env.log.Info("MCP server started", zap.String("ver", Version))

	err := server.New(env.cfg, env.log).Run(ctx)
	if errors.Is(err, context.Canceled) {
		env.log.Info("Interrupted, shutting down")
		return nil
	}
	return err
}

func outputConfiguration(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		env.log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		data []byte
		err  error
	)
	if cmd.Bool("default") {
		data = config.ConfigTmpl
	} else if data, err = config.Dump(env.cfg); err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(fname, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            config.AppName,
		Usage:           "MCP server that splits images into printable panels",
		Version:         Version + " (" + runtime.Version() + ") : " + GitCommit,
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Action:          runServer,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Sources: cli.EnvVars("IMAGE_PANEL_CONFIG"),
				Usage: "load configuration from `FILE` (YAML)"},
			&cli.StringFlag{Name: "log-level", Sources: cli.EnvVars("IMAGE_PANEL_LOG_LEVEL"),
				Usage: "logging `LEVEL` on stderr: none, normal or debug"},
		},
		Commands: []*cli.Command{
			{
				Name:         "serve",
				Usage:        "Runs the MCP server over stdin/stdout (default)",
				OnUsageError: usageErrorHandler,
				Action:       runServer,
				CustomHelpTemplate: fmt.Sprintf(`%s
The server communicates via MCP protocol over stdin/stdout; logs go to
stderr. Configure it in your MCP client.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "split",
				Usage:        "Splits an image into pages and writes them with the PDF and PNG exports",
				OnUsageError: usageErrorHandler,
				Action:       runSplit,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "columns", Usage: "number of pages across (default from configuration)"},
					&cli.IntFlag{Name: "rows", Usage: "number of pages down (default from configuration)"},
					&cli.IntFlag{Name: "margin", Usage: "`PIXELS` removed between adjacent pages (default from configuration)"},
					&cli.StringSliceFlag{Name: "format", Aliases: []string{"f"}, Value: []string{"pdf", "png"},
						Usage: "whole-panel export `FORMAT` (pdf, png; the PNG export contains only the first page), may be repeated"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "replace existing files in destination"},
				},
				ArgsUsage: "IMAGE [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
IMAGE:
    path to the source image (PNG, JPEG, GIF, BMP, TIFF or WebP)

DESTINATION:
    directory to write NAME_page_N.png and the NAME.pdf / NAME.png
    exports to, if absent - current working directory
`, cli.CommandHelpTemplate),
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
			},
		},
	}

	var err error
	// os.Exit skips deferred calls, it must stay last
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
