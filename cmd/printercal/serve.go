package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ps-bond/printerColourCalibration/pkg/daemon"
)

// NewServeCommand runs the session daemon in the foreground.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Run the calibration session daemon in the foreground",
		GroupID: gAdvanced,
		Long: `Run the calibration session daemon in the foreground.

The daemon owns one calibration session and exposes it over a unix-socket
HTTP API for remote tooling (see 'printercal remote'). Session state is
persisted across restarts.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			logrus.WithField("version", version).Info("printercal daemon starting")
			return daemon.Run(configPath, socketPath, sessionPath)
		},
	}
}
