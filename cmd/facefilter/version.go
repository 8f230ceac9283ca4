package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version indicates the current build version, set by -ldflags at compile time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("facefilter %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
