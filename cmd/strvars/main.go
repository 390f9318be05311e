package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pressly/cli"
	"github.com/stefanvanburen/strvars/internal/config"
	"github.com/stefanvanburen/strvars/internal/flyout"
	"github.com/stefanvanburen/strvars/internal/server"
	"github.com/stefanvanburen/strvars/internal/strvar"
	"github.com/stefanvanburen/strvars/internal/workspace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cli.Command{
		Name:      "strvars",
		ShortHelp: "Manage the string identifiers of a block workspace",
		Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
			f.String("config", "", "path to strvars.yml (default: ./strvars.yml if present)")
		}),
		SubCommands: []*cli.Command{
			{
				Name:      "serve",
				ShortHelp: "Start the JSON-RPC server (communicates over stdin/stdout)",
				Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
					f.Bool("verbose", false, "log at debug level")
				}),
				Exec: serve,
			},
			{
				Name:      "list",
				Usage:     "strvars list FILE",
				ShortHelp: "Print the identifiers used in a workspace file, sorted",
				Exec:      list,
			},
			{
				Name:      "rename",
				Usage:     "strvars rename FILE OLD NEW",
				ShortHelp: "Rename an identifier and print the updated workspace",
				Exec:      rename,
			},
			{
				Name:      "suggest",
				Usage:     "strvars suggest FILE",
				ShortHelp: "Print an identifier name not yet used in a workspace file",
				Exec:      suggest,
			},
			{
				Name:      "check",
				Usage:     "strvars check FILE",
				ShortHelp: "Report expression blocks that do not parse",
				Exec:      check,
			},
			{
				Name:      "flyout",
				Usage:     "strvars flyout FILE",
				ShortHelp: "Print the toolbox XML for the string category",
				Flags: cli.FlagsFunc(func(f *flag.FlagSet) {
					f.Bool("text", false, "print one template per line instead of XML")
				}),
				Exec: flyoutXML,
			},
		},
	}
	if err := cli.ParseAndRun(context.Background(), root, os.Args[1:], nil); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(s *cli.State) (*config.Config, error) {
	return config.LoadOrDefault(cli.GetFlag[string](s, "config"))
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func serve(ctx context.Context, s *cli.State) error {
	cfg, err := loadConfig(s)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cli.GetFlag[bool](s, "verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return server.Serve(ctx, server.WithConfig(cfg), server.WithLogger(logger))
}

// openWorkspace loads the workspace file named by the first argument, checking
// that exactly want arguments were given.
func openWorkspace(s *cli.State, want int) (*workspace.Workspace, *config.Config, error) {
	if len(s.Args) != want {
		return nil, nil, fmt.Errorf("expected %d arguments, got %d", want, len(s.Args))
	}
	cfg, err := loadConfig(s)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(s.Args[0])
	if err != nil {
		return nil, nil, err
	}
	ws, err := workspace.Parse(data, cfg.WorkspaceOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", s.Args[0], err)
	}
	return ws, cfg, nil
}

func list(_ context.Context, s *cli.State) error {
	ws, _, err := openWorkspace(s, 1)
	if err != nil {
		return err
	}
	names, err := strvar.All(ws)
	if err != nil {
		return err
	}
	for _, name := range strvar.Sorted(names) {
		fmt.Fprintln(os.Stdout, name)
	}
	return nil
}

func rename(_ context.Context, s *cli.State) error {
	ws, _, err := openWorkspace(s, 3)
	if err != nil {
		return err
	}
	oldName, newName := s.Args[1], s.Args[2]
	if err := ws.CheckRename(oldName, newName); err != nil {
		return fmt.Errorf("cannot rename %q: %w", oldName, err)
	}
	existing, err := strvar.All(ws)
	if err != nil {
		return err
	}
	for _, name := range existing {
		if !strings.EqualFold(name, oldName) && strings.EqualFold(name, newName) {
			color.New(color.FgYellow).Fprintf(os.Stderr, "warning: %q is already in use, the identifiers will be merged\n", newName)
			break
		}
	}

	strvar.Rename(oldName, newName, ws)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(ws)
}

func suggest(_ context.Context, s *cli.State) error {
	ws, _, err := openWorkspace(s, 1)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(os.Stdout, strvar.GenerateUniqueName(ws))
	return nil
}

func check(_ context.Context, s *cli.State) error {
	ws, _, err := openWorkspace(s, 1)
	if err != nil {
		return err
	}
	var n int
	red := color.New(color.FgRed)
	for _, b := range ws.AllBlocks() {
		eb, ok := b.(*workspace.ExprBlock)
		if !ok {
			continue
		}
		for _, p := range eb.Problems() {
			red.Fprintf(os.Stdout, "%s:%d: %s\n", eb.ID(), p.Column, p.Message)
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("found %d syntax error(s)", n)
	}
	return nil
}

func flyoutXML(_ context.Context, s *cli.State) error {
	ws, cfg, err := openWorkspace(s, 1)
	if err != nil {
		return err
	}
	elems := flyout.Category(ws, cfg.Registry(), cfg.DefaultName)
	if cli.GetFlag[bool](s, "text") {
		for _, e := range elems {
			fmt.Fprintln(os.Stdout, e)
		}
		return nil
	}
	data, err := flyout.Marshal(elems)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
