package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"inkwell/internal/daemon"
	"inkwell/internal/model"
)

var submitFlags struct {
	topic    string
	types    []string
	tone     string
	audience string
	format   string
	priority string
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a request to the daemon",
	RunE:  runSubmit,
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitFlags.topic, "topic", "", "Content topic (required)")
	f.StringSliceVar(&submitFlags.types, "types", nil, "Content types, comma separated (required)")
	f.StringVar(&submitFlags.tone, "tone", "", "Tone override")
	f.StringVar(&submitFlags.audience, "audience", "", "Target audience override")
	f.StringVar(&submitFlags.format, "format", "", "Output format")
	f.StringVar(&submitFlags.priority, "priority", model.PriorityNormal, "Request priority")

	_ = submitCmd.MarkFlagRequired("topic")
	_ = submitCmd.MarkFlagRequired("types")
}

func runSubmit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Validate locally so obvious mistakes fail without a round trip.
	req, err := buildRequest(submitFlags.topic, submitFlags.types, submitFlags.priority,
		submitFlags.tone, submitFlags.audience, submitFlags.format)
	if err != nil {
		return err
	}

	params := daemon.SubmitParams{
		Topic:        req.Topic,
		ContentTypes: submitFlags.types,
		Priority:     req.Priority,
		Context:      req.Context,
	}
	resp, err := daemonClient(cfg).SendCommand("submit", params)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Message)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:      %s\n", data["job_id"])
	fmt.Fprintf(out, "Workflow: %s\n", data["workflow"])
	fmt.Fprintf(out, "Check progress with: inkwell status %s\n", data["job_id"])
	return nil
}
