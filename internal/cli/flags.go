package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/blendview/pkg/config"
)

// displayFlags override the configured display settings for one command.
// Only flags the user actually set are applied.
type displayFlags struct {
	cmd         *cobra.Command
	orientation string
	width       float64
	height      float64
	noLegend    bool
	noInspector bool
}

func bindDisplayFlags(cmd *cobra.Command) *displayFlags {
	f := &displayFlags{cmd: cmd}
	cmd.Flags().StringVar(&f.orientation, "orientation", "", "layout orientation: top-down, bottom-up, left-to-right, right-to-left")
	cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", 0, "canvas height in pixels")
	cmd.Flags().BoolVar(&f.noLegend, "no-legend", false, "hide the kind legend")
	cmd.Flags().BoolVar(&f.noInspector, "no-inspector", false, "hide the inspector panel")
	return f
}

// apply copies the set flags onto cfg and revalidates it.
func (f *displayFlags) apply(cfg *config.Config) error {
	fs := f.cmd.Flags()
	if fs.Changed("orientation") {
		cfg.Settings.Orientation = f.orientation
	}
	if fs.Changed("width") {
		cfg.Canvas.Width = f.width
	}
	if fs.Changed("height") {
		cfg.Canvas.Height = f.height
	}
	if fs.Changed("no-legend") {
		cfg.Settings.ShowLegend = !f.noLegend
	}
	if fs.Changed("no-inspector") {
		cfg.Settings.ShowInspector = !f.noInspector
	}
	return cfg.Validate()
}
