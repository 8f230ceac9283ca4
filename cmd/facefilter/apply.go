package main

import (
	"runtime"

	"github.com/esimov/facefilter"
	"github.com/spf13/cobra"
)

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a filter over still images",
	Long: `Applies the selected filter over an image file, an image URL, the standard input
or every image of a directory. Directories are processed concurrently.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("in", pipeName, "Source image, URL or directory")
	applyCmd.Flags().String("out", pipeName, "Destination image or directory")
	applyCmd.Flags().Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
}

func runApply(cmd *cobra.Command, args []string) error {
	proc, err := newProcessor(cfg)
	if err != nil {
		return err
	}
	return proc.Execute(&facefilter.Ops{
		Src:      mustGetString(cmd, "in"),
		Dst:      mustGetString(cmd, "out"),
		PipeName: pipeName,
		Workers:  mustGetInt(cmd, "conc"),
	})
}
