package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ps-bond/printerColourCalibration/pkg/chart"
	"github.com/ps-bond/printerColourCalibration/pkg/config"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

// NewChartCommand generates printable test charts.
func NewChartCommand() *cobra.Command {
	var (
		chartType string
		output    string
		title     string
		dpi       int
		template  string
	)

	cmd := &cobra.Command{
		Use:     "chart",
		Short:   "Generate a printable test chart",
		GroupID: gBasic,
		Long: `Generate a printable test chart.

Create a neutral (grayscale) or colour test chart. Print the generated chart
on the target printer and measure the printed patches with your
spectrophotometer to produce a CSV for analysis. Generating the colour chart
also writes an empty measurement template CSV.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			opts := chart.Options{DPI: dpi, Title: title}

			switch chartType {
			case "neutral":
				if output == "" {
					output = "neutral_chart.png"
				}
				if err := chart.Neutral(output, opts); err != nil {
					return err
				}
			case "colour", "color":
				if output == "" {
					output = "colour_test_A4.png"
				}
				if err := chart.Colour(output, config.ColourPatches, opts); err != nil {
					return err
				}
				if err := measure.WriteTemplate(config.ColourPatches, template); err != nil {
					return err
				}
				logrus.Infof("measurement template written to %s", template)
			default:
				return fmt.Errorf("unknown chart type %q (want neutral or colour)", chartType)
			}

			logrus.Infof("chart written to %s", output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&chartType, "type", "neutral", "chart type: neutral or colour")
	f.StringVarP(&output, "output", "o", "", "output filename (sensible default used if omitted)")
	f.StringVar(&title, "title", "", "optional title rendered on the chart")
	f.IntVar(&dpi, "dpi", chart.DefaultDPI, "render resolution")
	f.StringVar(&template, "template", "measurements_template.csv", "measurement template filename (colour chart only)")

	return cmd
}
