package main

import (
	"fmt"
	"os"

	"github.com/esimov/facefilter"
	"github.com/esimov/facefilter/config"
	"github.com/esimov/facefilter/landmark"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const helpBanner = `
┌─┐┌─┐┌─┐┌─┐┌─┐┬┬ ┌┬┐┌─┐┬─┐
├┤ ├─┤│  ├┤ ├┤ ││  │ ├┤ ├┬┘
└  ┴ ┴└─┘└─┘└  ┴┴─┘┴ └─┘┴└─

Real-time face filters for webcam feeds and still images.
    Version: %s
`

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "facefilter",
	Short:        "Apply face filters over webcam feeds and images",
	Long:         fmt.Sprintf(helpBanner, Version),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		return cfg.Validate()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML configuration file")
	flags.String("filter", "", "Filter: none, landmarks, blur, sunglasses or mustache")
	flags.String("sunglasses", "", "Sunglasses overlay image")
	flags.String("mustache", "", "Mustache overlay image")
	flags.Int("kernel", 0, "Blur kernel size (odd number)")
	flags.String("blend", "", "Overlay blending: replace or src_over")
	flags.String("scheme", "", "Landmark scheme: pigo or the path of a YAML scheme")
	flags.String("cascades", "", "Directory holding the facefinder, puploc and lps cascades")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// applyFlags overrides the loaded configuration with the explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("filter") {
		cfg.Filters.Mode = mustGetString(cmd, "filter")
	}
	if flags.Changed("sunglasses") {
		cfg.Filters.Sunglasses = mustGetString(cmd, "sunglasses")
	}
	if flags.Changed("mustache") {
		cfg.Filters.Mustache = mustGetString(cmd, "mustache")
	}
	if flags.Changed("kernel") {
		cfg.Filters.BlurKernel = mustGetInt(cmd, "kernel")
	}
	if flags.Changed("blend") {
		cfg.Filters.Blend = mustGetString(cmd, "blend")
	}
	if flags.Changed("scheme") {
		cfg.Scheme = mustGetString(cmd, "scheme")
	}
	if flags.Changed("cascades") {
		cfg.Detector = cfg.Detector.WithDir(mustGetString(cmd, "cascades"))
	}
}

// newProcessor builds the filter processor described by the configuration.
func newProcessor(cfg *config.Config) (*facefilter.Processor, error) {
	scheme, err := landmark.SchemeByName(cfg.Scheme)
	if err != nil {
		return nil, err
	}
	if scheme.Size > landmark.PigoPoints {
		return nil, fmt.Errorf("the %q scheme requires %d landmarks, the pigo detector provides only %d",
			scheme.Name, scheme.Size, landmark.PigoPoints)
	}

	det, err := landmark.NewPigoDetector(cfg.Detector)
	if err != nil {
		return nil, err
	}
	mode, err := facefilter.ParseMode(cfg.Filters.Mode)
	if err != nil {
		return nil, err
	}

	proc := facefilter.NewProcessor(det, scheme)
	proc.SunglassesPath = cfg.Filters.Sunglasses
	proc.MustachePath = cfg.Filters.Mustache
	proc.BlurKernel = cfg.Filters.BlurKernel
	proc.Mode = mode
	if err := proc.Compositor.Set(cfg.Filters.Blend); err != nil {
		return nil, err
	}
	return proc, nil
}
