package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var removeRecursive bool

var removeCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "remove a file, or a directory tree with -r",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		dev, fs, err := openImage()
		if err != nil {
			return err
		}

		if removeRecursive {
			err = fs.RemoveRecursive(path)
		} else {
			err = fs.Remove(path)
		}
		if err != nil {
			return err
		}

		if err := dev.SaveImage(imagePath); err != nil {
			return err
		}
		slog.Info("removed", "path", path, "recursive", removeRecursive)

		return nil
	},
}

func init() {
	removeCmd.Flags().BoolVarP(&removeRecursive, "recursive", "r", false, "remove directories and their contents")
	rootCmd.AddCommand(removeCmd)
}
