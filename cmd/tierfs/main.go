// Command tierfs manipulates tierfs disk images: a hierarchical
// sector-indexed filesystem with multi-level file headers and
// fixed-capacity nested directories.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/tierfs/tierfs/pkg/bitmap"
	"github.com/tierfs/tierfs/pkg/disk"
	"github.com/tierfs/tierfs/pkg/filesys"
)

// Images pin the root directory header to the first sector so a later
// invocation can find it without any superblock.
const rootSector = 0

var (
	imagePath string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "tierfs",
	Short: "manipulate tierfs disk images",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if imagePath == "" {
			imagePath = envDefaults.imagePath
		}
	},
	SilenceUsage: true,
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

// openImage loads the disk image and mounts the filesystem on it,
// rebuilding the free-sector map from a device sweep.
func openImage() (*disk.Disk, *filesys.FileSystem, error) {
	if imagePath == "" {
		return nil, nil, fmt.Errorf("no image path given (use --image or %s)", envImage)
	}

	dev, err := disk.LoadImage(imagePath, filesys.SectorSize)
	if err != nil {
		return nil, nil, err
	}

	fs, err := filesys.Mount(dev, bitmap.New(dev.NumSectors()), rootSector)
	if err != nil {
		return nil, nil, err
	}

	return dev, fs, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&imagePath, "image", "i", "", "disk image file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
