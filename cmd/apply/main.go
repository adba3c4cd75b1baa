package main

import (
	"errors"
	"fmt"
	"os"

	"kqs-apply/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// errNotSubmitted is returned after the reason has already been printed
var errNotSubmitted = errors.New("application not submitted")

// cli holds state shared by the subcommands
type cli struct {
	registry    *prometheus.Registry
	metricsFile string
}

func main() {
	root, app := newRootCmd()

	err := root.Execute()
	if ferr := app.flushMetrics(); ferr != nil {
		logger.Log.Error("Failed to write metrics file", "path", app.metricsFile, "error", ferr)
	}
	if err != nil {
		if !errors.Is(err, errNotSubmitted) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *cli) {
	app := &cli{registry: prometheus.NewRegistry()}

	rootCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply to an open position at the Kings Quant Society",
		Long: `apply drives the society's application form from the terminal.

List the open positions with 'apply positions', then send an application
with 'apply submit'. The submission transport (simulated, http or smtp) is
chosen through SUBMIT_TRANSPORT in the environment or a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&app.metricsFile, "metrics-file", "", "Write form metrics in Prometheus text format to this file on exit")

	rootCmd.AddCommand(newPositionsCmd())
	rootCmd.AddCommand(newSubmitCmd(app))
	return rootCmd, app
}

// flushMetrics writes the registry to --metrics-file, if set
func (a *cli) flushMetrics() error {
	if a.metricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(a.metricsFile, a.registry)
}
