package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jodinathan/filedrive/internal/cloud"
	"github.com/jodinathan/filedrive/internal/constants"
	"github.com/jodinathan/filedrive/internal/diskspace"
	"github.com/jodinathan/filedrive/internal/models"
	"github.com/jodinathan/filedrive/internal/progress"
)

// newUploadCmd creates the 'upload' command.
func newUploadCmd() *cobra.Command {
	var folder string
	var parallel int

	cmd := &cobra.Command{
		Use:   "upload <account> <file> [file...]",
		Short: "Upload files to a cloud folder",
		Long: `Upload one or more local files to a configured account.

Examples:
  # Upload a single file to the account root
  filedrive upload work-s3 data.tar.gz

  # Upload several files into a folder, three at a time
  filedrive upload work-s3 *.csv --folder exports --parallel 3`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 || parallel > constants.MaxParallelTransfers {
				return fmt.Errorf("--parallel must be between 1 and %d, got %d",
					constants.MaxParallelTransfers, parallel)
			}
			return runUpload(args[0], args[1:], folder, parallel)
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Destination folder (default: account root)")
	cmd.Flags().IntVar(&parallel, "parallel", constants.DefaultParallelTransfers, "Concurrent uploads")
	return cmd
}

// runUpload uploads the files with bounded concurrency and a multi-bar UI.
func runUpload(accountID string, paths []string, folder string, parallel int) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	mgr, httpClient, err := newAccountManager(cfg)
	if err != nil {
		return err
	}

	ctx := GetContext()
	provider, err := cloud.NewProvider(ctx, mgr, accountID, httpClient)
	if err != nil {
		return err
	}

	ui := progress.NewMultiUI(len(paths))
	GetLogger().SetOutput(ui.Writer())

	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []error

	for _, localPath := range paths {
		info, statErr := os.Stat(localPath)
		if statErr != nil {
			return fmt.Errorf("cannot read %s: %w", localPath, statErr)
		}

		wg.Add(1)
		go func(localPath string, size int64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bar := ui.AddFileBar(localPath, size)
			_, err := provider.Upload(ctx, localPath, folder, bar.UpdateProgress)
			bar.Complete(err)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", filepath.Base(localPath), err))
				mu.Unlock()
			}
		}(localPath, info.Size())
	}

	wg.Wait()
	ui.Wait()

	if len(failures) > 0 {
		for _, f := range failures {
			GetLogger().Errorf("upload failed: %v", f)
		}
		return fmt.Errorf("%d of %d uploads failed", len(failures), len(paths))
	}
	fmt.Printf("Uploaded %d file(s)\n", len(paths))
	return nil
}

// newDownloadCmd creates the 'download' command.
func newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <account> <remote-path>",
		Short: "Download a file from a cloud folder",
		Long: `Download a file from a configured account to the local disk.

Examples:
  filedrive download work-s3 exports/report.csv
  filedrive download work-s3 exports/report.csv -o /tmp/report.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Local destination path (default: basename in cwd)")
	return cmd
}

func runDownload(accountID, remotePath, output string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	mgr, httpClient, err := newAccountManager(cfg)
	if err != nil {
		return err
	}

	ctx := GetContext()
	provider, err := cloud.NewProvider(ctx, mgr, accountID, httpClient)
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Base(remotePath)
	}

	item := models.FileItem{
		ID:   remotePath,
		Name: filepath.Base(remotePath),
		Path: remotePath,
	}

	if err := diskspace.Check(output, item.Size, constants.DiskSpaceSafetyMargin); err != nil {
		return err
	}

	reporter := progress.NewCLIProgress()
	reporter.Start(100, "Downloading "+item.Name)
	err = provider.Download(ctx, item, output, func(fraction float64) {
		reporter.Update(int64(fraction * 100))
	})
	if err != nil {
		reporter.Error(err)
		return err
	}
	reporter.Finish()

	fmt.Printf("Downloaded %s to %s\n", remotePath, output)
	return nil
}
