package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/giantswarm/cfti/internal/config"
	"github.com/giantswarm/cfti/internal/controller"
	"github.com/giantswarm/cfti/internal/testset"
	"github.com/giantswarm/cfti/pkg/logging"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		noColor    bool
		scenario   string
	)

	cmd := &cobra.Command{
		Use:   "run <unit-directory>",
		Short: "Load a unit directory and run its test set",
		Long: `run loads every .jig, .logger, .interface, .test, .scenario, and
.trigger file in the given directory, starts its loggers and interfaces,
and then either waits for a StartScenario command from a connected
interface or, with --scenario, starts one immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(args[0], configPath, scenario, verbose, !noColor)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to an optional config.yaml")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colorized log output")
	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "start this scenario immediately instead of waiting for a command")

	return cmd
}

func runDaemon(dir, configPath, scenarioID string, verbose, colorize bool) error {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logging.Init(level, colorize)
	defer logging.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctl, err := controller.New()
	if err != nil {
		return fmt.Errorf("starting controller: %w", err)
	}

	ts, err := testset.Load(dir, ctl, cfg)
	if err != nil {
		return fmt.Errorf("loading unit directory %s: %w", dir, err)
	}
	logging.Info("cfti", "loaded %d jig(s), %d test(s), %d scenario(s) from %s",
		len(ts.Jigs), len(ts.Tests), len(ts.Scenarios), dir)

	engine := testset.NewEngine(ts, ctl)
	done := make(chan struct{})
	go func() {
		engine.Run()
		close(done)
	}()

	if scenarioID != "" {
		ctl.Control("cli", "interface", controller.StartScenarioControl{ScenarioID: &scenarioID})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-sig:
		logging.Info("cfti", "received %s, shutting down", s)
		ctl.Shutdown("signal: " + s.String())
	case <-done:
	}

	ctl.Close()
	<-done
	return nil
}
