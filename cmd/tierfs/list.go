package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	listRecursive bool
	listContents  bool
)

var listCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "list a directory in the image",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) == 1 {
			path = args[0]
		}

		_, fs, err := openImage()
		if err != nil {
			return err
		}

		if listContents {
			return fs.Print(os.Stdout)
		}

		return fs.List(os.Stdout, path, listRecursive)
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false, "descend into subdirectories")
	listCmd.Flags().BoolVar(&listContents, "contents", false, "dump headers and file contents")
	rootCmd.AddCommand(listCmd)
}
