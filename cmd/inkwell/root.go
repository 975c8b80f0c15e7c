package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/model"
	"inkwell/internal/uds"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	dir    string
	config string
}

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Content production pipeline",
	Long: "Inkwell turns a topic into finished content through a staged pipeline:\n" +
		"research, brief, draft, voice check and final production, with quality\n" +
		"gates guarding the research, brief, voice and production stages.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.dir, "dir", ".", "Working directory for outputs, logs and the daemon socket")
	pf.StringVar(&rootFlags.config, "config", "", "Config file path (default <dir>/inkwell.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(workflowsCmd)
	rootCmd.Version = version
}

func configPath() string {
	if rootFlags.config != "" {
		return rootFlags.config
	}
	return filepath.Join(rootFlags.dir, "inkwell.yaml")
}

func loadConfig() (model.Config, error) {
	cfg, err := model.LoadConfig(configPath())
	if err != nil {
		return cfg, err
	}
	if !filepath.IsAbs(cfg.Pipeline.OutputDir) {
		cfg.Pipeline.OutputDir = filepath.Join(rootFlags.dir, cfg.Pipeline.OutputDir)
	}
	return cfg, nil
}

func daemonClient(cfg model.Config) *uds.Client {
	name := cfg.Daemon.SocketPath
	if name == "" {
		name = uds.DefaultSocketName
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(rootFlags.dir, name)
	}
	opts := []uds.ClientOption{uds.WithDialRetries(2)}
	if cfg.Daemon.ClientTimeoutSec > 0 {
		opts = append(opts, uds.WithTimeout(time.Duration(cfg.Daemon.ClientTimeoutSec)*time.Second))
	}
	return uds.NewClient(name, opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
