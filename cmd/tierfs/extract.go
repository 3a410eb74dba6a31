package main

import (
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <path> <hostfile>",
	Short: "copy a file out of the image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, hostPath := args[0], args[1]

		_, fs, err := openImage()
		if err != nil {
			return err
		}

		f, err := fs.Open(path)
		if err != nil {
			return err
		}

		data := make([]byte, f.Length())
		if _, err := f.ReadAt(data, 0); err != nil {
			return err
		}
		if err := os.WriteFile(hostPath, data, 0o644); err != nil {
			return err
		}
		slog.Info("file extracted", "path", path,
			"size", humanize.Bytes(uint64(len(data))), "to", hostPath)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
