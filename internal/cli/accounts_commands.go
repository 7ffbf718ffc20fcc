package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jodinathan/filedrive/internal/models"
)

// newAccountsCmd creates the 'accounts' command group.
func newAccountsCmd() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage configured cloud accounts",
	}

	accountsCmd.AddCommand(newAccountsListCmd())
	accountsCmd.AddCommand(newAccountsAddCmd())
	accountsCmd.AddCommand(newAccountsRemoveCmd())

	return accountsCmd
}

// newAccountsListCmd creates the 'accounts list' command.
func newAccountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if len(cfg.Accounts) == 0 {
				fmt.Println("No accounts configured. Add one with: filedrive accounts add")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROVIDER\tDISPLAY NAME\tCONTAINER")
			for _, id := range cfg.AccountIDs() {
				acct := cfg.Accounts[id]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acct.ID, acct.Provider, acct.DisplayName, acct.Container)
			}
			return w.Flush()
		},
	}
}

// newAccountsAddCmd creates the 'accounts add' command.
func newAccountsAddCmd() *cobra.Command {
	var (
		provider       string
		displayName    string
		email          string
		rootPath       string
		region         string
		container      string
		storageAccount string
		endpoint       string
		tokenURL       string
		secret         string
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a cloud account",
		Long: `Add an account to the configuration and store its refresh secret in
the OS keyring.

Examples:
  # S3 bucket with short-lived credentials from a token endpoint
  filedrive accounts add work-s3 --provider s3 --region us-east-1 \
    --container acme-files --token-url https://sts.acme.example/creds \
    --secret "$API_KEY"

  # Azure container
  filedrive accounts add work-az --provider azure \
    --storage-account acmestore --container files \
    --token-url https://sts.acme.example/creds --secret "$API_KEY"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			acct := &models.Account{
				ID:             args[0],
				Provider:       models.ProviderKind(provider),
				DisplayName:    displayName,
				Email:          email,
				RootPath:       rootPath,
				Region:         region,
				Container:      container,
				StorageAccount: storageAccount,
				Endpoint:       endpoint,
				TokenURL:       tokenURL,
			}
			if acct.DisplayName == "" {
				acct.DisplayName = acct.ID
			}

			mgr, _, err := newAccountManager(cfg)
			if err != nil {
				return err
			}
			if err := mgr.Add(acct, secret); err != nil {
				return err
			}

			cfg.Accounts[acct.ID] = acct
			if err := cfg.Save(path); err != nil {
				return err
			}

			fmt.Printf("Added account %s (%s)\n", acct.ID, acct.Provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider kind: s3 or azure (required)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name (default: account ID)")
	cmd.Flags().StringVar(&email, "email", "", "Account email, for display only")
	cmd.Flags().StringVar(&rootPath, "root-path", "", "Folder the picker starts in")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (s3)")
	cmd.Flags().StringVar(&container, "container", "", "S3 bucket or Azure container (required)")
	cmd.Flags().StringVar(&storageAccount, "storage-account", "", "Azure storage account name (azure)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Custom endpoint (MinIO, Azurite)")
	cmd.Flags().StringVar(&tokenURL, "token-url", "", "Credential refresh endpoint")
	cmd.Flags().StringVar(&secret, "secret", "", "Refresh secret stored in the keyring")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("container")

	return cmd
}

// newAccountsRemoveCmd creates the 'accounts remove' command.
func newAccountsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an account and its stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			mgr, _, err := newAccountManager(cfg)
			if err != nil {
				return err
			}
			if err := mgr.Remove(args[0]); err != nil {
				return err
			}

			delete(cfg.Accounts, args[0])
			if err := cfg.Save(path); err != nil {
				return err
			}

			fmt.Printf("Removed account %s\n", args[0])
			return nil
		},
	}
}
