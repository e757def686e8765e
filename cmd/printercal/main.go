package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ps-bond/printerColourCalibration/pkg/client"
)

var (
	logLevel    = "info"
	configPath  = ""
	sessionPath = "calibration-session.json"
	socketPath  = "/tmp/printercal.sock"
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: printercal daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'printercal serve' before using remote commands")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "Check the permissions on the daemon socket")
	}
}

// NewCommand assembles the root printercal command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "printercal",
		Short: "printercal guides manual printer colour calibration",
		Long: `printercal guides you through manually calibrating a printer's colour output.

Print a test chart, measure the printed patches with a spectrophotometer,
and feed the measurement CSV back in. printercal suggests driver adjustments
until the output converges, validates the neutral slope and the full colour
chart, and finally exports an ICC profile.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "calibration config file path (defaults built in)")
	globalFlags.StringVar(&sessionPath, "session", sessionPath, "calibration session state file path")
	globalFlags.StringVar(&socketPath, "daemon-socket", socketPath, "session daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewChartCommand(),
		NewProcessCommand(),
		NewStatusCommand(),
		NewPhasesCommand(),
		NewSetPhaseCommand(),
		NewResetCommand(),
		NewExportCommand(),
		NewServeCommand(),
		NewRemoteCommand(),
		NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}
