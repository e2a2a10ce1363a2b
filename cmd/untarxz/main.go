package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/infracollect/untarxz/pkg/untar"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes, one per decode failure kind.
const (
	exitOK            = 0
	exitFailure       = 1
	exitDecompression = 2
	exitFileRead      = 3
	exitArchiveFormat = 4
	exitLimitExceeded = 5
	exitInterrupted   = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := newApplication(os.Stdout, os.Stderr).run(ctx, os.Args)
	stop()
	os.Exit(code)
}

// application owns the command tree and the logger built from its root flags.
type application struct {
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

func newApplication(stdout, stderr io.Writer) *application {
	return &application{stdout: stdout, stderr: stderr}
}

func (a *application) command() *cli.Command {
	return &cli.Command{
		Name:      "untarxz",
		Usage:     "Decode XZ/LZMA compressed tar archives and report their entries",
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					if _, err := zapcore.ParseLevel(s); err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: fmt.Sprintf("Log encoding on stderr (%s), console when --debug is set and json otherwise", strings.Join(logFormats, ", ")),
			},
		},
		Commands: []*cli.Command{
			newInspectCommand(),
			newRunCommand(),
			newValidateCommand(),
			newVersionCommand(),
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			logger, _, err := newLogger(a.stderr, logOptions{
				debug:  command.Bool("debug"),
				level:  command.String("log-level"),
				format: command.String("log-format"),
			})
			if err != nil {
				return nil, err
			}
			a.logger = logger

			logger.Debug("logger created", zap.String("log_level", command.String("log-level")))

			ctx = withInteractive(ctx, isInteractiveEnvironment())
			return withLogger(ctx, logger), nil
		},
		// Errors are reported by run, which also picks the exit code.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// run executes args and returns the process exit code.
func (a *application) run(ctx context.Context, args []string) int {
	err := a.command().Run(ctx, args)
	if a.logger != nil {
		defer func() { _ = a.logger.Sync() }()
	}
	if err == nil {
		return exitOK
	}

	code := exitCode(err)
	if a.logger != nil {
		a.logger.Error("failed to run application", zap.Error(err), zap.Int("exit_code", code))
	} else {
		fmt.Fprintf(a.stderr, "untarxz: %v\n", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, untar.ErrDecompression):
		return exitDecompression
	case errors.Is(err, untar.ErrFileRead):
		return exitFileRead
	case errors.Is(err, untar.ErrArchiveFormat):
		return exitArchiveFormat
	case errors.Is(err, untar.ErrLimitExceeded):
		return exitLimitExceeded
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode()
	}
	return exitFailure
}
