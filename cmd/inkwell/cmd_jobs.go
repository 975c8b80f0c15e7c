package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List jobs known to the daemon",
	RunE:  runJobs,
}

func runJobs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp, err := daemonClient(cfg).SendCommand("jobs", nil)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}

	var data struct {
		Jobs []struct {
			ID        string `json:"id"`
			Topic     string `json:"topic"`
			Status    string `json:"status"`
			LastStep  string `json:"last_step"`
			StepsDone int    `json:"steps_done"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(data.Jobs) == 0 {
		fmt.Fprintln(out, "No jobs.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tSTATUS\tSTEPS\tLAST\tTOPIC")
	for _, job := range data.Jobs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", job.ID, job.Status, job.StepsDone, job.LastStep, job.Topic)
	}
	return w.Flush()
}
