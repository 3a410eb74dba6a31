package main

import (
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <hostfile> <path>",
	Short: "copy a host file into the image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hostPath, path := args[0], args[1]

		data, err := os.ReadFile(hostPath)
		if err != nil {
			return err
		}

		dev, fs, err := openImage()
		if err != nil {
			return err
		}

		if err := fs.CreateFile(path, int64(len(data))); err != nil {
			return err
		}
		f, err := fs.Open(path)
		if err != nil {
			return err
		}
		if _, err := f.WriteAt(data, 0); err != nil {
			return err
		}

		if err := dev.SaveImage(imagePath); err != nil {
			return err
		}
		slog.Info("file added", "path", path, "size", humanize.Bytes(uint64(len(data))))

		return nil
	},
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "create a subdirectory in the image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, fs, err := openImage()
		if err != nil {
			return err
		}

		if err := fs.CreateDirectory(args[0]); err != nil {
			return err
		}

		return dev.SaveImage(imagePath)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(mkdirCmd)
}
