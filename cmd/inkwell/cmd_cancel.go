package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/daemon"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a planned or running job",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp, err := daemonClient(cfg).SendCommand("cancel", daemon.JobParams{JobID: args[0]})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cancel requested for %s\n", args[0])
	return nil
}
