package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/menta2k/carbon-analyzer/internal/config"
	"github.com/menta2k/carbon-analyzer/internal/logging"
)

// app carries state resolved once in the root pre-run and shared by subcommands
type app struct {
	lookupEnv  func(string) (string, bool)
	configPath string
	debug      bool

	cfg    *config.Config
	logger zerolog.Logger
}

// NewRootCmd creates the root command for the carbon-analyzer CLI
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for tests
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	a := &app{lookupEnv: lookupEnv, logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:           "carbon-analyzer",
		Short:         "Estimate product carbon footprints from barcodes and packaging photos",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.GetConfigPath()+")")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newScanCmd(a),
		newClassifyCmd(a),
		newEstimateCmd(a),
		newConfigCmd(a),
	)

	return cmd
}

const rootCmdExample = `  # Scan a catalog product
  carbon-analyzer scan --barcode 7890123456789

  # Scan with a packaging photo and a purchase context
  carbon-analyzer scan --barcode 5449000000996 --image bottle.jpg --context retail_store

  # Detect packaging materials in a directory of photos
  carbon-analyzer classify ./photos --debug-dir out

  # Estimate a product described on the command line
  carbon-analyzer estimate --category electronics --materials aluminum,glass --weight-g 187 --origin China

  # Write a default configuration file
  carbon-analyzer config init`

// setup loads configuration (file, then environment, then flags) and
// installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.ApplyEnv(a.lookupEnv); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	if a.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: a.debug,
	}, cmd.ErrOrStderr())

	a.logger.Debug().
		Str("backend", cfg.Classifier.Backend).
		Bool("offline", cfg.Product.Offline).
		Msg("configuration loaded")
	return nil
}

// loadConfig reads an explicit --config file, or the default path when it
// exists, or falls back to built-in defaults.
func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFromFile(a.configPath)
	}

	path := config.GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("cannot access config path %s: %w", path, err)
	}
	return config.LoadFromFile(path)
}
