package main

import (
	"context"
	"fmt"

	"github.com/infracollect/untarxz/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run a DecodeJob file",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "allowed-env",
				Usage: "Environment variables allowed in job configuration (can be repeated)",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "job",
				UsageText: "The job file to run",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := loggerFrom(ctx)

			jobFilename := command.StringArg("job")
			if jobFilename == "" {
				return fmt.Errorf("no job file provided")
			}

			jobFile, jobName, err := readJobFile(ctx, jobFilename)
			if err != nil {
				return fmt.Errorf("failed to read job file '%s': %w", jobFilename, err)
			}

			job, err := runner.ParseDecodeJob(jobFile)
			if err != nil {
				return fmt.Errorf("job file '%s' is invalid: %w", jobName, formatValidationError(err))
			}

			variables, err := runner.BuildVariables(job, command.StringSlice("allowed-env"))
			if err != nil {
				return fmt.Errorf("failed to build variables: %w", err)
			}

			if err := runner.ExpandTemplates(&job, variables); err != nil {
				return fmt.Errorf("failed to expand templates: %w", err)
			}

			opts := []runner.Option{runner.WithStdout(command.Root().Writer)}
			if job.Spec.Source.Stdin != nil {
				if jobFilename == "-" {
					return fmt.Errorf("job read from stdin cannot use a stdin source")
				}
				stdin, err := stdinReader(ctx)
				if err != nil {
					return err
				}
				opts = append(opts, runner.WithStdin(stdin))
			}

			r, err := runner.New(ctx, logger.Named("runner"), job, opts...)
			if err != nil {
				return fmt.Errorf("failed to create runner: %w", err)
			}

			report, err := r.Run(ctx)
			if err != nil {
				return fmt.Errorf("failed to run job '%s': %w", job.Metadata.Name, err)
			}

			logger.Info("job completed",
				zap.String("job_name", job.Metadata.Name),
				zap.Int("entries", len(report.Entries)),
				zap.Int64("total_size", report.TotalSize),
			)

			return nil
		},
	}
}
