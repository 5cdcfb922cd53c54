package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/plycore/internal/paths"
	"github.com/mesh-intelligence/plycore/internal/sqlite"
)

// version is reported by the version command and --version.
const version = "0.1.0"

// app holds global flag values and state shared by subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonOut   bool
	verbose   bool

	cfg    *viper.Viper
	logger *slog.Logger
	stderr io.Writer
}

// newRootCmd builds the command tree. Each call returns independent state,
// so tests can run commands side by side.
func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:           "plystore",
		Short:         "Store and inspect PLY element records",
		Long:          "plystore keeps PLY element records (vertices, faces, ...) with their\ntyped properties and checks them against element schemas.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output as JSON")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newPutCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newClassesCmd(a),
		newSchemaCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	a.stderr = cmd.ErrOrStderr()

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.cfg, err = loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(a.cfg.GetString(cfgKeyLogLevel))); err != nil {
		return userError(fmt.Errorf("config %s: %w", cfgKeyLogLevel, err))
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.logger.Debug("config loaded", "config_dir", configDir)
	return nil
}

// attach opens the element store. The caller must Detach it.
func (a *app) attach() (*sqlite.Backend, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	b := sqlite.NewBackend(sqlite.WithLogger(a.logger))
	if err := b.Attach(storeConfig(a.cfg, dataDir)); err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	return b, nil
}

// withStore runs fn against an attached store and detaches afterwards.
func (a *app) withStore(fn func(b *sqlite.Backend) error) error {
	b, err := a.attach()
	if err != nil {
		return err
	}
	err = fn(b)
	if derr := b.Detach(); derr != nil && err == nil {
		err = sysError(fmt.Errorf("detach store: %w", derr))
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		// Overrides the root hook: version needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "plystore v"+version)
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and data directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(b *sqlite.Backend) error {
				fmt.Fprintln(cmd.OutOrStdout(), "plystore initialized")
				return nil
			})
		},
	}
}
