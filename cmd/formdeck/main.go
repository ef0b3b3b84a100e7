package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"formdeck/internal/config"
	"formdeck/internal/debug"
	"formdeck/internal/docstore"
	"formdeck/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug     bool
	storePath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "formdeck",
		Short: "Modal forms and prompts for the terminal",
		Long: `formdeck renders declarative field lists as keyboard driven modal forms.

Run without arguments to open the host: press : or ctrl+p for the command
palette and pick one of the demo commands. The subcommands run a single
form or prompt and print the answer, or serve the user service proxy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup(cmd, opts)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			debug.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHost(cmd.Context(), func(m tea.Model) programRunner {
				return tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
			})
		},
	}
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Write a debug log to ~/.formdeck/debug.log")
	root.PersistentFlags().StringVar(&opts.storePath, "store", "", "SQLite database backing the document store (in-memory when empty)")

	root.AddCommand(newFormCmd(), newPromptCmd(), newServeCmd(), newVersionCmd())
	return root
}

// setup loads configuration, lets explicitly set flags win over it and
// starts debug logging.
func setup(cmd *cobra.Command, opts *rootOptions) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}
	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("debug") {
		overrides[config.KeyDebug] = opts.debug
	}
	if flags.Changed("store") {
		overrides[config.KeyStorePath] = strings.TrimSpace(opts.storePath)
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}
	if err := debug.Init(config.GetBool(config.KeyDebug)); err != nil {
		return fmt.Errorf("initialize debug log: %w", err)
	}
	return nil
}

// openStore returns the configured document store and a function that
// releases it.
func openStore(ctx context.Context) (docstore.Store, func(), error) {
	path := strings.TrimSpace(config.GetString(config.KeyStorePath))
	if path == "" {
		return docstore.NewMemory(), func() {}, nil
	}
	s, err := docstore.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			debug.Logf("close store %s: %v", path, err)
		}
	}, nil
}

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(tea.Model) programRunner

func runHost(ctx context.Context, factory programFactory) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	host := ui.NewHost(ctx, ui.HostOptions{
		Store: store,
		Extra: config.GetStringSlice(config.KeyExtraNames),
	})
	defer host.Shutdown()
	return runProgram(host, factory)
}

func runProgram(m tea.Model, factory programFactory) error {
	if factory == nil {
		return fmt.Errorf("program factory is nil")
	}
	prog := factory(m)
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}
