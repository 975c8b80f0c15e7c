package main

import (
	"github.com/spf13/cobra"

	"inkwell/internal/daemon"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the inkwell daemon",
	Long: "Serve starts the daemon: it accepts submissions over a unix socket,\n" +
		"executes them asynchronously and keeps results until their TTL expires.\n" +
		"The config file is watched and gate enforcement is reloaded live.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := daemon.New(rootFlags.dir, cfg, configPath())
	if err != nil {
		return err
	}
	return d.Run()
}
