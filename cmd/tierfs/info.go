package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tierfs/tierfs/pkg/bitmap"
	"github.com/tierfs/tierfs/pkg/disk"
	"github.com/tierfs/tierfs/pkg/filesys"
)

var infoUse bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "show image capacity and usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, fs, err := openImage()
		if err != nil {
			return err
		}

		total := dev.NumSectors()
		free := fs.FreeSectors()
		fmt.Printf("Image:         %s\n", imagePath)
		fmt.Printf("Sector size:   %d bytes\n", filesys.SectorSize)
		fmt.Printf("Sectors:       %d (%s)\n", total,
			humanize.Bytes(uint64(total)*filesys.SectorSize))
		fmt.Printf("In use:        %d (%s)\n", total-free,
			humanize.Bytes(uint64(total-free)*filesys.SectorSize))
		fmt.Printf("Free:          %d (%s)\n", free,
			humanize.Bytes(uint64(free)*filesys.SectorSize))
		fmt.Printf("Dir entries:   %d per table\n", fs.DirEntries())
		fmt.Printf("Max file size: %s\n", humanize.Bytes(uint64(filesys.LevelThreeMax)))

		if infoUse {
			return fs.PrintUse(os.Stdout)
		}

		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "verify on-image structures are consistent",
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := disk.LoadImage(imagePath, filesys.SectorSize)
		if err != nil {
			return err
		}

		stats, err := filesys.Sweep(dev, bitmap.New(dev.NumSectors()), rootSector)
		if err != nil {
			return err
		}
		fmt.Printf("OK: %d files, %d directories, %d index nodes, %d data sectors, %d sectors in use\n",
			stats.Files, stats.Directories, stats.IndexNodes, stats.DataSectors, stats.SectorsMarked)

		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoUse, "use", false, "dump per-file sector usage")
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(checkCmd)
}
