// Package cli provides the command-line interface for FileDrive.
package cli

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jodinathan/filedrive/internal/accounts"
	"github.com/jodinathan/filedrive/internal/config"
	"github.com/jodinathan/filedrive/internal/gui"
	"github.com/jodinathan/filedrive/internal/httpclient"
	"github.com/jodinathan/filedrive/internal/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	debug   bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information - set by the main package at startup.
var (
	Version   = "v0.1.0-dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command. Running it with no subcommand opens
// the picker window.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filedrive",
		Short: "FileDrive - cloud file picker for S3 and Azure storage",
		Long: `FileDrive ` + Version + ` - Built: ` + BuildTime + `
Browse, search, upload and download files across configured cloud accounts.

Run without arguments to open the picker window, or use the subcommands for
scripted access.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return gui.Launch(cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	AddCommands(rootCmd)
	return rootCmd
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newAccountsCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// Execute runs the CLI with signal-aware cancellation.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, cancelling...")
		cancelFunc()
	}()

	return NewRootCmd().Execute()
}

// GetContext returns the signal-aware root context.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// GetLogger returns the CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// loadConfig loads the configuration from --config or the default path.
func loadConfig() (*config.Config, string, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newAccountManager builds the account registry for CLI commands, preferring
// the OS keyring and falling back to an in-memory store on headless hosts.
// The returned HTTP client is the transfer-tuned one for storage providers;
// token refresh keeps the base client.
func newAccountManager(cfg *config.Config) (*accounts.Manager, *nethttp.Client, error) {
	httpClient, err := httpclient.NewClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	transferClient, err := httpclient.NewTransferClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create transfer HTTP client: %w", err)
	}

	var secrets accounts.SecretStore = accounts.NewKeyringStore()
	if !secrets.(*accounts.KeyringStore).Available() {
		GetLogger().Warnf("OS keyring unavailable, secrets will not persist")
		secrets = accounts.NewMemoryStore()
	}

	return accounts.NewManager(cfg, secrets, httpClient, nil), transferClient, nil
}
