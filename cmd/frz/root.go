package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Alb-O/frz/internal/config"
	"github.com/Alb-O/frz/internal/extension"
	"github.com/Alb-O/frz/internal/extension/builtin"
	"github.com/Alb-O/frz/internal/index"
	"github.com/Alb-O/frz/internal/logging"
	"github.com/Alb-O/frz/internal/stream"
	"github.com/Alb-O/frz/internal/ui"
	"github.com/Alb-O/frz/internal/watcher"
	"github.com/Alb-O/frz/internal/worker"
)

// abortExitCode is returned when the session ends without a selection.
const abortExitCode = 130

type rootFlags struct {
	query      string
	mode       string
	hidden     bool
	symlinks   bool
	noIgnore   bool
	extensions []string
	workers    int
	noWatch    bool
	noColor    bool
	configPath string
	logLevel   string
}

// Execute runs the command line interface and returns the process exit
// code.
func Execute() (int, error) {
	flags := rootFlags{}
	exitCode := 0

	cmd := &cobra.Command{
		Use:   "frz [root]",
		Short: "Interactive fuzzy finder over an indexed directory tree",
		Long: `frz indexes a directory tree in the background and lets you fuzzy-search
files and derived attributes while the index is still filling in. When
stdout is not a terminal it prints the final file listing instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			code, err := run(cmd.Context(), root, flags)
			exitCode = code
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "initial query")
	cmd.Flags().StringVarP(&flags.mode, "mode", "m", "", "initial mode tab")
	cmd.Flags().BoolVar(&flags.hidden, "hidden", false, "include hidden files and directories")
	cmd.Flags().BoolVar(&flags.symlinks, "follow-symlinks", false, "follow symlinked directories")
	cmd.Flags().BoolVar(&flags.noIgnore, "no-ignore", false, "do not honor .gitignore and .ignore files")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "restrict results to these extensions")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "concurrent index workers (0 = CPU count)")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not watch for filesystem changes")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colors")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "config file path")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	return exitCode, err
}

func run(ctx context.Context, root string, flags rootFlags) (int, error) {
	configPath := flags.configPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return 1, err
	}

	logCfg := logging.Config{Level: cfg.Log.Level, FilePath: cfg.Log.File}
	if logCfg.FilePath == "" {
		logCfg.FilePath = logging.DefaultLogPath()
	}
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	_, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return 1, err
	}
	defer cleanup()

	opts := indexOptions(cfg, flags)

	initial, indexStream, err := index.Spawn(ctx, root, opts)
	if err != nil {
		return 1, err
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		if err := ui.RunPlain(initial, indexStream, os.Stdout); err != nil {
			return 1, err
		}
		return 0, nil
	}

	catalog := extension.NewCatalog()
	builtin.RegisterDefaults(catalog)
	contributions := extension.NewContributions(catalog)

	w := worker.Spawn(initial, catalog)
	defer w.Shutdown()

	watchStream := watchReceiver(ctx, initial.Root, opts, cfg, flags)

	initialMode := flags.mode
	if initialMode == "" {
		initialMode = cfg.UI.InitialMode
	}

	model := ui.New(initial, w, indexStream, watchStream, catalog, contributions, ui.Options{
		InitialQuery: flags.query,
		InitialMode:  initialMode,
		NoColor:      flags.noColor,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return 1, fmt.Errorf("run interface: %w", err)
	}

	outcome := model.Outcome()
	if !outcome.Accepted {
		return abortExitCode, nil
	}
	printSelection(outcome.Selection)
	return 0, nil
}

func indexOptions(cfg config.Config, flags rootFlags) index.Options {
	opts := index.DefaultOptions()
	opts.IncludeHidden = cfg.Index.IncludeHidden || flags.hidden
	opts.FollowSymlinks = cfg.Index.FollowSymlinks || flags.symlinks
	opts.RespectIgnoreFiles = cfg.Index.RespectIgnoreFiles && !flags.noIgnore
	if len(cfg.Index.GlobalIgnores) > 0 {
		opts.GlobalIgnores = cfg.Index.GlobalIgnores
	}
	opts.AllowedExtensions = cfg.Index.Extensions
	if len(flags.extensions) > 0 {
		opts.AllowedExtensions = flags.extensions
	}
	opts.Workers = cfg.Index.Workers
	if flags.workers > 0 {
		opts.Workers = flags.workers
	}
	return opts
}

func watchReceiver(ctx context.Context, root string, opts index.Options, cfg config.Config, flags rootFlags) *stream.Receiver[index.View] {
	if flags.noWatch || !cfg.Index.Watch {
		return nil
	}
	receiver, err := watcher.Spawn(ctx, root, opts)
	if err != nil {
		// The session still works without live updates.
		slog.Warn("filesystem watching disabled", slog.String("error", err.Error()))
		return nil
	}
	return receiver
}

// printSelection writes the accepted row to stdout for the caller to
// consume.
func printSelection(sel extension.Selection) {
	switch {
	case sel.File != nil:
		fmt.Println(sel.File.Path)
	case sel.Attribute != nil:
		fmt.Println(sel.Attribute.Name)
	}
}
