package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jodinathan/filedrive/internal/cloud"
	"github.com/jodinathan/filedrive/internal/models"
	"github.com/jodinathan/filedrive/internal/util/filter"
)

// newBrowseCmd creates the 'browse' command.
func newBrowseCmd() *cobra.Command {
	var allPages bool

	cmd := &cobra.Command{
		Use:   "browse <account> [folder]",
		Short: "List files in a cloud folder",
		Long: `List the entries of a folder on a configured account.

Examples:
  # List the account root
  filedrive browse work-s3

  # List a subfolder
  filedrive browse work-s3 projects/2026

  # Fetch every page, not just the first
  filedrive browse work-s3 --all`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) > 1 {
				folder = args[1]
			}
			items, err := listFolder(args[0], folder, allPages)
			if err != nil {
				return err
			}
			printItems(items)
			return nil
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "Fetch all listing pages")
	return cmd
}

// newSearchCmd creates the 'search' command.
func newSearchCmd() *cobra.Command {
	var allPages bool
	var folder string

	cmd := &cobra.Command{
		Use:   "search <account> <query>",
		Short: "Search files in a cloud folder",
		Long: `List folder entries matching a query. Words containing glob
metacharacters (* ? [) are treated as include patterns; plain words match
file names case-insensitively.

Examples:
  filedrive search work-s3 report
  filedrive search work-s3 "*.csv" --folder exports`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := listFolder(args[0], folder, allPages)
			if err != nil {
				return err
			}
			matched := filter.Apply(items, filter.FromQuery(args[1]))
			if len(matched) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			printItems(matched)
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder to search in (default: account root)")
	cmd.Flags().BoolVar(&allPages, "all", false, "Fetch all listing pages")
	return cmd
}

// listFolder connects to the account and fetches one or all listing pages.
func listFolder(accountID, folder string, allPages bool) ([]models.FileItem, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	mgr, httpClient, err := newAccountManager(cfg)
	if err != nil {
		return nil, err
	}

	ctx := GetContext()
	provider, err := cloud.NewProvider(ctx, mgr, accountID, httpClient)
	if err != nil {
		return nil, err
	}

	var items []models.FileItem
	pageToken := ""
	for {
		page, err := provider.List(ctx, folder, pageToken)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if page.NextToken == "" || !allPages {
			return items, nil
		}
		pageToken = page.NextToken
	}
}

// printItems renders entries as an aligned table.
func printItems(items []models.FileItem) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, item := range items {
		if item.IsFolder {
			fmt.Fprintf(w, "%s/\t\t\n", item.Name)
			continue
		}
		modified := ""
		if !item.Modified.IsZero() {
			modified = item.Modified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", item.Name, item.Size, modified)
	}
	w.Flush()
}
