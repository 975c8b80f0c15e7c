package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/daemon"
	"inkwell/internal/jobstore"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show one job's progress and result",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resp, err := daemonClient(cfg).SendCommand("status", daemon.JobParams{JobID: args[0]})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}

	var job jobstore.Job
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:      %s\n", job.ID)
	fmt.Fprintf(out, "Topic:    %s\n", job.Request.Topic)
	fmt.Fprintf(out, "Status:   %s\n", job.Status)
	if job.LastStep != "" {
		fmt.Fprintf(out, "Progress: %d step(s), last %s\n", job.StepsDone, job.LastStep)
	}
	if job.Result == nil {
		return nil
	}

	fmt.Fprintf(out, "Workflow: %s\n", job.Result.Shape)
	fmt.Fprintf(out, "Steps:\n")
	for _, step := range job.Result.Steps {
		mark := "ok  "
		if !step.Success {
			mark = "FAIL"
		}
		if step.ContentType != "" {
			fmt.Fprintf(out, "  %s %s (%s)\n", mark, step.Step, step.ContentType)
		} else {
			fmt.Fprintf(out, "  %s %s\n", mark, step.Step)
		}
	}
	for _, msg := range job.Result.Errors {
		fmt.Fprintf(out, "Error: %s\n", msg)
	}
	return nil
}
