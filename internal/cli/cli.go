package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/amirbrooks/tdr/internal/config"
	"github.com/amirbrooks/tdr/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitInternal = 10
)

var Version = "dev"

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

type app struct {
	out     io.Writer
	errOut  io.Writer
	dirFlag string
	verbose bool
}

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout, errOut: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "tdr:", err)
		return exitCode(err)
	}
	return ExitOK
}

func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, store.ErrNotFound):
		return ExitNotFound
	case errors.As(err, &ue), errors.Is(err, store.ErrInvalid):
		return ExitUsage
	default:
		return ExitInternal
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tdr",
		Short:         "tdr - a small personal task list",
		Long:          "tdr keeps tasks and their subtasks in a JSON file in your home directory.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unknown command %q", args[0])
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.out, "No command specified")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
	root.PersistentFlags().StringVar(&a.dirFlag, "dir", "", "Data directory (default: per-user tdr directory)")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Debug logging to stderr")

	for _, op := range operations {
		root.AddCommand(a.operationCmd(op))
	}
	root.AddCommand(a.subtaskCmd())
	return root
}

// open resolves configuration and opens the task store.
func (a *app) open() (*store.Store, error) {
	dir, err := config.ResolveDir(a.dirFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	level := cfg.Level
	if a.verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(a.errOut, log.Options{
		Level:  level,
		Prefix: "tdr",
	})
	if cfg.Source != "" {
		logger.Debug("loaded config", "path", cfg.Source)
	}
	st, err := store.Open(cfg.Dir, logger)
	if err != nil {
		return nil, err
	}
	st.Indent = cfg.Indent
	return st, nil
}

// withList loads the task list, applies fn and saves the result when fn
// reports a change.
func (a *app) withList(fn func(*store.TaskList) (bool, error)) error {
	st, err := a.open()
	if err != nil {
		return err
	}
	list, err := st.Load()
	if err != nil {
		return err
	}
	changed, err := fn(list)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return st.Save(list)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 1 {
		return 0, usageErrorf("invalid id %q", s)
	}
	return id, nil
}

func argRange(lo, hi int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < lo || (hi >= 0 && len(args) > hi) {
			return usageErrorf("usage: %s", cmd.UseLine())
		}
		return nil
	}
}
