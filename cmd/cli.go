// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eq/internal/dsp"
	"eq/internal/params"
	"eq/pkg/build"
)

// Options is the parsed command line: which mode to run and the
// initial filter parameter values.
type Options struct {
	ConfigPath string
	Command    string // "", "list" or "render"
	TUIMode    bool
	Headless   bool

	// render command arguments.
	RenderIn  string
	RenderOut string

	// Initial filter parameters, applied to the store at startup.
	PeakFreq     float64
	PeakGain     float64
	PeakQuality  float64
	LowCutFreq   float64
	HighCutFreq  float64
	LowCutSlope  int
	HighCutSlope int
}

// ParseArgs builds the cobra command tree and executes it against
// os.Args.
func ParseArgs() (*Options, error) {
	buildInfo := build.GetBuildFlags()
	defaults := dsp.DefaultSettings()

	options := &Options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.TUIMode = !options.Headless
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	renderCmd := &cobra.Command{
		Use:   "render <input.wav> <output.wav>",
		Short: "Run a WAV file through the equalizer offline",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "render"
			options.RenderIn = args[0]
			options.RenderOut = args[1]
		},
	}
	rootCmd.AddCommand(renderCmd)

	rootCmd.PersistentFlags().StringVar(&options.ConfigPath, "config", "",
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&options.Headless, "headless", false,
		"Run without the terminal UI (frames go to the configured consumers)")

	// Filter parameters.
	rootCmd.PersistentFlags().Float64Var(&options.PeakFreq, "peak-freq", defaults.PeakFreq,
		"Peak band center frequency in Hz")
	rootCmd.PersistentFlags().Float64Var(&options.PeakGain, "peak-gain", defaults.PeakGainDB,
		"Peak band gain in dB")
	rootCmd.PersistentFlags().Float64Var(&options.PeakQuality, "peak-q", defaults.PeakQ,
		"Peak band quality factor")
	rootCmd.PersistentFlags().Float64Var(&options.LowCutFreq, "lowcut-freq", defaults.LowCutFreq,
		"Low-cut corner frequency in Hz")
	rootCmd.PersistentFlags().Float64Var(&options.HighCutFreq, "highcut-freq", defaults.HighCutFreq,
		"High-cut corner frequency in Hz")
	rootCmd.PersistentFlags().IntVar(&options.LowCutSlope, "lowcut-slope", int(defaults.LowCutSlope),
		"Low-cut slope: 0=12, 1=24, 2=36, 3=48 dB/Oct")
	rootCmd.PersistentFlags().IntVar(&options.HighCutSlope, "highcut-slope", int(defaults.HighCutSlope),
		"High-cut slope: 0=12, 1=24, 2=36, 3=48 dB/Oct")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// ApplyParams writes the parsed filter parameters into the store,
// validating each one.
func (o *Options) ApplyParams(store *params.Store) error {
	sets := []struct {
		name  string
		value float64
	}{
		{params.PeakFreq, o.PeakFreq},
		{params.PeakGain, o.PeakGain},
		{params.PeakQuality, o.PeakQuality},
		{params.LowCutFreq, o.LowCutFreq},
		{params.HighCutFreq, o.HighCutFreq},
		{params.LowCutSlope, float64(o.LowCutSlope)},
		{params.HighCutSlope, float64(o.HighCutSlope)},
	}
	for _, s := range sets {
		if err := store.Set(s.name, s.value); err != nil {
			return fmt.Errorf("invalid %s: %w", s.name, err)
		}
	}
	return nil
}
