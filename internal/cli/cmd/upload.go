package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/driveclone/backend/internal/cli/api"
	"github.com/driveclone/backend/internal/cli/output"
	"github.com/spf13/cobra"
)

var flagWorkers int

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload one or more files",
	Long: `Upload local files. Several paths are uploaded concurrently.

  driveclone upload report.pdf
  driveclone upload *.png --workers 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 4, "Number of concurrent upload workers")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireAuth(); err != nil {
		return err
	}

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}
	}

	if len(args) == 1 {
		file, err := uploadFile(args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			output.JSON(cmd.OutOrStdout(), file)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) as %s\n", file.Filename, output.FormatSize(file.Size), file.ID)
		return nil
	}

	return uploadMany(cmd, args)
}

func uploadFile(path string) (api.File, error) {
	var resp api.UploadResponse
	if err := apiClient.Upload("/files/upload", "file", path, &resp); err != nil {
		return api.File{}, fmt.Errorf("uploading %s: %w", filepath.Base(path), err)
	}
	return resp.File, nil
}

func uploadMany(cmd *cobra.Command, paths []string) error {
	jobs := make(chan string)

	var uploaded atomic.Int64
	var failed atomic.Int64

	var mu sync.Mutex
	var files []api.File

	workers := flagWorkers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				file, err := uploadFile(path)

				mu.Lock()
				if err != nil {
					failed.Add(1)
					fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %v\n", err)
				} else {
					uploaded.Add(1)
					files = append(files, file)
					if !flagJSON {
						fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s (%s)\n", file.Filename, output.FormatSize(file.Size))
					}
				}
				mu.Unlock()
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	if flagJSON {
		output.JSON(cmd.OutOrStdout(), files)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "\nUploaded %d file(s)", uploaded.Load())
		if failed.Load() > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), ", %d failed", failed.Load())
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	if failed.Load() > 0 {
		return fmt.Errorf("%d upload(s) failed", failed.Load())
	}
	return nil
}
