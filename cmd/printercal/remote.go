package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ps-bond/printerColourCalibration/pkg/calibration"
	"github.com/ps-bond/printerColourCalibration/pkg/client"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

// NewRemoteCommand talks to a running session daemon instead of the local
// session file.
func NewRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remote",
		Short:   "Control a running session daemon",
		GroupID: gAdvanced,
	}

	apiClient := func() *client.Client {
		return client.NewClient(socketPath)
	}

	printResult := func(res calibration.Result, err error) error {
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		fmt.Printf("Phase: %s\n", res.Phase)
		return nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the daemon's session status",
			RunE: func(_ *cobra.Command, _ []string) error {
				st, err := apiClient().GetStatus()
				if err != nil {
					return err
				}
				printStatus(st)
				return nil
			},
		},
		&cobra.Command{
			Use:   "process [measurements.csv]",
			Short: "Submit a measurement CSV to the daemon",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				batch, err := measure.LoadCSV(args[0])
				if err != nil {
					return err
				}
				return printResult(apiClient().Process(batch))
			},
		},
		&cobra.Command{
			Use:   "export [filename]",
			Short: "Ask the daemon to export the ICC profile",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return printResult(apiClient().Export(args[0]))
			},
		},
		&cobra.Command{
			Use:   "set-phase [phase]",
			Short: "Manually set the daemon's session phase",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				phase, ok := calibration.Parse(args[0])
				if !ok {
					return fmt.Errorf("unknown phase %q, see 'printercal phases'", args[0])
				}
				return printResult(apiClient().SetPhase(phase))
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Reset the daemon's session",
			RunE: func(_ *cobra.Command, _ []string) error {
				return printResult(apiClient().Reset())
			},
		},
	)

	return cmd
}
