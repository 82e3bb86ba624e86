// Package cli implements the panelroute command tree.
package cli

import (
	"fmt"
	"log"

	"panel-router/internal/config"
	"panel-router/internal/design"
	"panel-router/internal/placement"
	"panel-router/internal/version"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	verbose    bool
	workers    int
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "panelroute",
		Short:         "Route and smooth interconnects for every unit of a panel",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "router config TOML (default "+config.DefaultPath()+")")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log progress")
	root.PersistentFlags().IntVar(&g.workers, "workers", -1, "parallel workers (0 = all CPUs)")

	root.AddCommand(
		newRouteCommand(g),
		newSmoothCommand(g),
		newShiftsCommand(),
		newPreviewCommand(),
		newVersionCommand(),
	)
	return root
}

// loadConfig reads the config file, then applies command-line overrides.
func (g *globalFlags) loadConfig(jobConfig string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	switch {
	case g.configPath != "":
		cfg, err = config.Load(g.configPath)
	case jobConfig != "":
		cfg, err = config.Load(jobConfig)
	default:
		cfg, err = config.LoadOptional(config.DefaultPath())
	}
	if err != nil {
		return config.Config{}, err
	}
	if g.verbose {
		cfg.Verbose = true
	}
	if g.workers >= 0 {
		cfg.Workers = g.workers
	}
	return cfg, cfg.Validate()
}

func loadInputs(designPath, shiftsPath string) (*design.Design, *placement.Table, error) {
	d, err := design.Load(designPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load design: %w", err)
	}
	if shiftsPath == "" {
		return d, nil, nil
	}
	t, err := placement.Load(shiftsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load shifts: %w", err)
	}
	return d, t, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// Execute runs the root command and logs a failure.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		log.Printf("[CLI] %v", err)
	}
	return err
}
