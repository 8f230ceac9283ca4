package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/esimov/facefilter"
	"github.com/esimov/facefilter/utils"
	"github.com/esimov/facefilter/webcam"
	"github.com/esimov/facefilter/webcam/opencv"
	"github.com/spf13/cobra"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Apply the filters over the webcam feed",
	Long: `Opens the webcam and shows the filtered video feed in a window.
Press 0-4 to switch between the filters and q to exit.`,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().Int("device", 0, "Video capture device index")
	liveCmd.Flags().String("window", "", "Window title")
}

func runLive(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("device") {
		cfg.Camera.Device = mustGetInt(cmd, "device")
	}
	if cmd.Flags().Changed("window") {
		cfg.Camera.Window = mustGetString(cmd, "window")
	}

	proc, err := newProcessor(cfg)
	if err != nil {
		return err
	}
	menu, err := facefilter.NewMenu()
	if err != nil {
		return err
	}

	cam, err := opencv.OpenCamera(cfg.Camera.Device)
	if err != nil {
		return err
	}
	defer cam.Close()

	win := opencv.NewWindow(cfg.Camera.Window)
	defer win.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println(utils.StatusLine("Press 0-4 to change the filter, q to exit.", utils.DefaultMessage))
	return webcam.Run(ctx, cam, win, proc, menu, webcam.Options{
		Delay: cfg.Camera.Delay,
		Mode:  proc.Mode,
	})
}
