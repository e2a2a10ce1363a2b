package main

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/infracollect/untarxz/internal/engine/decompressors"
	"github.com/urfave/cli/v3"
)

const unknown = "unknown"

// buildInfo is what the binary knows about how it was built.
type buildInfo struct {
	Version   string
	GoVersion string
	Commit    string
	Time      string
	Modified  bool
}

func readBuildInfo() buildInfo {
	b := buildInfo{Version: unknown, GoVersion: unknown, Commit: unknown, Time: unknown}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if info.Main.Version != "" {
		b.Version = info.Main.Version
	}
	b.GoVersion = info.GoVersion

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.Commit = setting.Value
		case "vcs.time":
			b.Time = setting.Value
		case "vcs.modified":
			b.Modified = setting.Value == "true"
		}
	}
	return b
}

// write prints the build details followed by the decoders compiled in.
func (b buildInfo) write(w io.Writer) {
	fmt.Fprintf(w, "untarxz %s\n", b.Version)
	fmt.Fprintf(w, "go: %s\n", b.GoVersion)
	if b.Commit != unknown {
		dirty := ""
		if b.Modified {
			dirty = " (dirty)"
		}
		fmt.Fprintf(w, "commit: %s%s\n", b.Commit, dirty)
	}
	if b.Time != unknown {
		fmt.Fprintf(w, "built: %s\n", b.Time)
	}
	fmt.Fprintf(w, "decompressors: %s\n", strings.Join(decompressors.Kinds(), ", "))
}

func newVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information and the supported decompressors",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "short",
				Usage: "Print the version only",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			info := readBuildInfo()
			if command.Bool("short") {
				fmt.Fprintln(command.Root().Writer, info.Version)
				return nil
			}
			info.write(command.Root().Writer)
			return nil
		},
	}
}
