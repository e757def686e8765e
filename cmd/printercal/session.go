package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ps-bond/printerColourCalibration/pkg/calibration"
	"github.com/ps-bond/printerColourCalibration/pkg/config"
	"github.com/ps-bond/printerColourCalibration/pkg/controller"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

// loadController restores the local session, or starts a fresh one when no
// session file exists yet.
func loadController() (*controller.Controller, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(sessionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return controller.New(cfg), nil
		}
		return nil, fmt.Errorf("failed to read session %s: %w", sessionPath, err)
	}

	var st calibration.State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", sessionPath, err)
	}
	return controller.NewFromState(cfg, st), nil
}

func saveController(c *controller.Controller) error {
	b, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(sessionPath, b, 0644); err != nil {
		return fmt.Errorf("failed to write session %s: %w", sessionPath, err)
	}
	return nil
}

func printStatus(st calibration.Status) {
	bold := color.New(color.Bold)
	fmt.Print("Phase: ")
	switch st.Phase {
	case calibration.PhaseError:
		color.New(color.Bold, color.FgRed).Println(string(st.Phase))
	case calibration.PhaseComplete:
		color.New(color.Bold, color.FgGreen).Println(string(st.Phase))
	default:
		bold.Println(string(st.Phase))
	}
	if st.LastError != "" {
		fmt.Print("Last error: ")
		color.New(color.FgRed).Println(st.LastError)
	}
	fmt.Printf("Steps this attempt: %d\n", st.Steps)
	fmt.Printf("Next action: %s\n", st.NextAction)
}

// NewProcessCommand submits a measurement CSV to the local session.
func NewProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "process [measurements.csv]",
		Aliases: []string{"analyse", "analyze"},
		Short:   "Process a measurement CSV in the current phase",
		GroupID: gBasic,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			batch, err := measure.LoadCSV(args[0])
			if err != nil {
				return err
			}
			if len(batch) == 0 {
				return fmt.Errorf("%s contains no usable measurement rows", args[0])
			}

			ctrl, err := loadController()
			if err != nil {
				return err
			}

			msg := ctrl.Process(batch)
			if err := saveController(ctrl); err != nil {
				return err
			}

			fmt.Println(msg)
			fmt.Println()
			printStatus(ctrl.Status())
			return nil
		},
	}
}

// NewStatusCommand shows the local session status.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the calibration session status",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctrl, err := loadController()
			if err != nil {
				return err
			}
			printStatus(ctrl.Status())
			if lab, ok := ctrl.AnchorReading(); ok {
				fmt.Printf("Last anchor reading: L=%.2f a=%.2f b=%.2f\n", lab.L, lab.A, lab.B)
			}
			return nil
		},
	}
}

// NewPhasesCommand lists the phases selectable via set-phase.
func NewPhasesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "phases",
		Short:   "List phases available for a manual skip",
		GroupID: gAdvanced,
		Run: func(_ *cobra.Command, _ []string) {
			for _, p := range calibration.Selectable() {
				fmt.Println(p)
			}
		},
	}
}

// NewSetPhaseCommand manually overrides the session phase.
func NewSetPhaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "set-phase [phase]",
		Short:   "Manually set the calibration phase (clears history)",
		GroupID: gAdvanced,
		Long: `Manually set the calibration phase.

This is an operator recovery tool, not part of the guided flow: it performs
no validation and clears the session history. Run 'printercal phases' for
the list of valid phases.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			phase, ok := calibration.Parse(args[0])
			if !ok {
				return fmt.Errorf("unknown phase %q, see 'printercal phases'", args[0])
			}

			ctrl, err := loadController()
			if err != nil {
				return err
			}
			ctrl.SetPhase(phase)
			if err := saveController(ctrl); err != nil {
				return err
			}

			logrus.Infof("phase set to %s", phase)
			return nil
		},
	}
}

// NewResetCommand restarts the calibration attempt.
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reset",
		Short:   "Reset the calibration session to the beginning",
		GroupID: gAdvanced,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctrl, err := loadController()
			if err != nil {
				return err
			}
			ctrl.Reset()
			if err := saveController(ctrl); err != nil {
				return err
			}

			logrus.Info("session reset")
			return nil
		},
	}
}

// NewExportCommand writes the ICC profile from the retained measurements.
func NewExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export the ICC profile",
		GroupID: gBasic,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctrl, err := loadController()
			if err != nil {
				return err
			}

			msg := ctrl.Export(output)
			if err := saveController(ctrl); err != nil {
				return err
			}

			fmt.Println(msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "printer-profile", "destination filename (.icc appended if missing)")

	return cmd
}

// NewVersionCommand prints the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
}

// version is overridden at build time via -ldflags.
var version = "dev"
