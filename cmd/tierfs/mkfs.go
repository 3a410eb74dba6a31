package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tierfs/tierfs/pkg/bitmap"
	"github.com/tierfs/tierfs/pkg/disk"
	"github.com/tierfs/tierfs/pkg/filesys"
)

var (
	mkfsSectors    int
	mkfsDirEntries int
)

var mkfsCmd = &cobra.Command{
	Use:   "mkfs",
	Short: "create and format a new disk image",
	RunE: func(cmd *cobra.Command, args []string) error {
		sectors := mkfsSectors
		if sectors <= 0 {
			sectors = envDefaults.sectors
		}
		dirEntries := mkfsDirEntries
		if dirEntries <= 0 {
			dirEntries = envDefaults.dirEntries
		}

		dev, err := disk.New(sectors, filesys.SectorSize)
		if err != nil {
			return err
		}

		fs, err := filesys.Format(dev, bitmap.New(sectors), filesys.FormatOptions{
			DirEntries: dirEntries,
			RootSector: rootSector,
		})
		if err != nil {
			return err
		}

		if err := dev.SaveImage(imagePath); err != nil {
			return err
		}
		slog.Info("image created", "path", imagePath,
			"sectors", sectors, "dirEntries", fs.DirEntries())

		return nil
	},
}

func init() {
	mkfsCmd.Flags().IntVar(&mkfsSectors, "sectors", 0, "number of sectors on the device")
	mkfsCmd.Flags().IntVar(&mkfsDirEntries, "dir-entries", 0, "capacity of every directory table")
	rootCmd.AddCommand(mkfsCmd)
}
