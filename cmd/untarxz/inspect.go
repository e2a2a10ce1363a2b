package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	v1 "github.com/infracollect/untarxz/apis/v1"
	"github.com/infracollect/untarxz/internal/engine"
	"github.com/infracollect/untarxz/internal/engine/decompressors"
	"github.com/infracollect/untarxz/internal/engine/encoders"
	"github.com/infracollect/untarxz/internal/engine/sinks"
	"github.com/infracollect/untarxz/internal/engine/sources"
	"github.com/infracollect/untarxz/internal/runner"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newInspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode an archive and report the size and SHA3-384 digest of every entry",
		UsageText: "untarxz inspect [options] <path | http(s)://url | s3://bucket/key | ->",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "compression",
				Aliases: []string{"c"},
				Value:   string(decompressors.CompressionAuto),
				Usage:   fmt.Sprintf("Compression of the archive (%s)", strings.Join(decompressors.Kinds(), ", ")),
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					if !lo.Contains(decompressors.Kinds(), s) {
						return &decompressors.UnsupportedCompressionError{Compression: s}
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   encoders.JSONKind,
				Usage:   fmt.Sprintf("Report format (%s)", strings.Join(encoders.Formats, ", ")),
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					if !lo.Contains(encoders.Formats, s) {
						return fmt.Errorf("unsupported format %q (available: %v)", s, encoders.Formats)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:  "indent",
				Usage: "Indentation of JSON reports, compact when empty",
			},
			&cli.BoolFlag{
				Name:  "regular-only",
				Usage: "Only report regular files",
			},
			&cli.Int64Flag{
				Name:  "max-size",
				Usage: "Fail once more than this many bytes have been decompressed (0 = unlimited)",
			},
			&cli.IntFlag{
				Name:  "max-entries",
				Usage: "Fail when the archive holds more entries than this (0 = unlimited)",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file in this directory instead of stdout",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "archive",
				UsageText: "The archive to inspect, - for stdin",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := loggerFrom(ctx)

			uri := command.StringArg("archive")
			resolved, err := sources.ParseURI(uri)
			if err != nil {
				return err
			}

			if resolved.Kind == sources.StreamKind {
				stdin, err := stdinReader(ctx)
				if err != nil {
					return err
				}
				resolved.Config = sources.StreamConfig{Reader: stdin}
			}

			source, err := runner.BuildRegistry(logger.Named("sources")).CreateSource(ctx, resolved.Kind, resolved.Config)
			if err != nil {
				return fmt.Errorf("failed to create source for '%s': %w", uri, err)
			}

			opts := runner.DecodeOptions(&v1.DecodeSpec{
				Compression:         command.String("compression"),
				RegularFilesOnly:    command.Bool("regular-only"),
				MaxDecompressedSize: command.Int64("max-size"),
				MaxEntries:          command.Int("max-entries"),
			})

			report, err := engine.NewPipeline(logger.Named("pipeline"), source, opts...).Run(ctx)
			if err != nil {
				return fmt.Errorf("failed to inspect '%s': %w", uri, err)
			}

			encoder, err := encoders.New(command.String("format"), command.String("indent"))
			if err != nil {
				return err
			}

			var sink engine.Sink
			if outputDir := command.String("output-dir"); outputDir != "" {
				if sink, err = sinks.NewFilesystemSinkFromPath(outputDir); err != nil {
					return err
				}
			} else {
				sink = sinks.NewStreamSink(command.Root().Writer)
			}

			data, err := encoder.Encode(ctx, report)
			if err != nil {
				return err
			}

			filename := fmt.Sprintf("%s.%s", reportName(uri), encoder.FileExtension())
			if err := sink.Write(ctx, filename, data); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}

			logger.Debug("report written", zap.String("file", filename), zap.String("sink", sink.Name()))

			return sink.Close(ctx)
		},
	}
}

// reportName derives a report file name from an archive location:
// "dumps/nightly.tar.xz" gives "nightly".
func reportName(uri string) string {
	if uri == "-" {
		return "stdin"
	}

	base := path.Base(strings.TrimRight(uri, "/"))
	if i := strings.Index(base, ".tar"); i > 0 {
		base = base[:i]
	} else if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}

	if base == "" || base == "." || base == "/" {
		return "report"
	}
	return base
}
