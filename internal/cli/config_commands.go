package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the configuration file",
	}

	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigSetCmd())

	return configCmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Config file:        %s\n", path)
			fmt.Printf("Debounce window:    %s\n", cfg.DebounceWindow)
			fmt.Printf("Parallel transfers: %d\n", cfg.ParallelTransfers)
			fmt.Printf("Proxy mode:         %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Printf("Proxy host:         %s:%d\n", cfg.ProxyHost, cfg.ProxyPort)
			}
			fmt.Printf("Accounts:           %d\n", len(cfg.Accounts))
			return nil
		},
	}
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(path); statErr == nil {
				return fmt.Errorf("config already exists at %s", path)
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Wrote default config to %s\n", path)
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' command for the general settings.
func newConfigSetCmd() *cobra.Command {
	var debounceMs int
	var parallel int
	var proxyMode string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update general settings",
		Long: `Update the general section of the configuration.

Examples:
  filedrive config set --debounce-ms 250
  filedrive config set --parallel 5 --proxy-mode system`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("debounce-ms") {
				cfg.DebounceWindow = time.Duration(debounceMs) * time.Millisecond
			}
			if cmd.Flags().Changed("parallel") {
				cfg.ParallelTransfers = parallel
			}
			if cmd.Flags().Changed("proxy-mode") {
				cfg.ProxyMode = proxyMode
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&debounceMs, "debounce-ms", 400, "Search debounce window in milliseconds")
	cmd.Flags().IntVar(&parallel, "parallel", 3, "Concurrent transfer workers")
	cmd.Flags().StringVar(&proxyMode, "proxy-mode", "no-proxy", "Proxy mode: no-proxy, system, basic, ntlm")
	return cmd
}
