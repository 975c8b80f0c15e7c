package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"inkwell/internal/model"
	"inkwell/internal/pipeline"
	"inkwell/internal/producer"
	yamlutil "inkwell/internal/yaml"
)

var runFlags struct {
	topic    string
	types    []string
	tone     string
	audience string
	format   string
	priority string
	strict   bool
	out      string
	verbose  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a content request synchronously",
	Long: "Run executes the full pipeline in the foreground and prints the step\n" +
		"ledger. Use submit to hand a request to a running daemon instead.",
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.topic, "topic", "", "Content topic (required)")
	f.StringSliceVar(&runFlags.types, "types", nil, "Content types, comma separated (required)")
	f.StringVar(&runFlags.tone, "tone", "", "Tone override (professional, conversational, technical, persuasive, educational, inspirational)")
	f.StringVar(&runFlags.audience, "audience", "", "Target audience override")
	f.StringVar(&runFlags.format, "format", "", "Output format (markdown, html, text)")
	f.StringVar(&runFlags.priority, "priority", model.PriorityNormal, "Request priority (low, normal, high)")
	f.BoolVar(&runFlags.strict, "strict", false, "Treat quality gate failures as run-ending errors")
	f.StringVar(&runFlags.out, "out", "", "Write the full run result to this YAML file")
	f.BoolVar(&runFlags.verbose, "verbose", false, "Log pipeline internals to stderr")

	_ = runCmd.MarkFlagRequired("topic")
	_ = runCmd.MarkFlagRequired("types")
}

func buildRequest(topic string, rawTypes []string, priority, tone, audience, format string) (model.Request, error) {
	kinds := make([]model.ContentType, 0, len(rawTypes))
	for _, raw := range rawTypes {
		kind, err := model.ParseContentType(raw)
		if err != nil {
			return model.Request{}, err
		}
		kinds = append(kinds, kind)
	}

	req := model.Request{
		Topic:        topic,
		ContentTypes: kinds,
		Priority:     priority,
	}
	ctxMap := map[string]any{}
	if tone != "" {
		if _, err := model.ParseToneType(tone); err != nil {
			return model.Request{}, err
		}
		ctxMap["tone"] = tone
	}
	if audience != "" {
		ctxMap["target_audience"] = audience
	}
	if format != "" {
		ctxMap["format"] = format
	}
	if len(ctxMap) > 0 {
		req.Context = ctxMap
	}
	return req, req.Validate()
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.strict {
		cfg.Pipeline.StrictGates = true
	}

	req, err := buildRequest(runFlags.topic, runFlags.types, runFlags.priority,
		runFlags.tone, runFlags.audience, runFlags.format)
	if err != nil {
		return err
	}

	logWriter := io.Discard
	if runFlags.verbose {
		logWriter = cmd.ErrOrStderr()
	}
	logger := log.New(logWriter, "", 0)

	registry := producer.DefaultRegistry(cfg, logger)
	exec := pipeline.NewExecutor(cfg, registry, nil, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := exec.Execute(ctx, req)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Workflow: %s\n", res.Shape)
	fmt.Fprintf(out, "Status:   %s\n", res.Status)
	fmt.Fprintf(out, "Duration: %s\n", res.Duration().Round(time.Millisecond))
	fmt.Fprintf(out, "Steps:\n")
	for _, step := range res.Steps {
		mark := "ok  "
		if !step.Success {
			mark = "FAIL"
		}
		if step.ContentType != "" {
			fmt.Fprintf(out, "  %s %s (%s)", mark, step.Step, step.ContentType)
		} else {
			fmt.Fprintf(out, "  %s %s", mark, step.Step)
		}
		if step.Error != "" {
			fmt.Fprintf(out, ": %s", step.Error)
		}
		fmt.Fprintln(out)
	}

	if outputs, ok := res.Outputs["production_outputs"].([]*model.ProductionOutput); ok {
		fmt.Fprintf(out, "Outputs:\n")
		for _, po := range outputs {
			fmt.Fprintf(out, "  %s (%s)\n", po.Path, po.Format)
		}
	}
	for _, msg := range res.Errors {
		fmt.Fprintf(out, "Error: %s\n", msg)
	}

	if runFlags.out != "" {
		if err := yamlutil.AtomicWrite(runFlags.out, res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(out, "Result written to %s\n", runFlags.out)
	}

	if res.Status != model.StatusCompleted {
		return fmt.Errorf("run %s", res.Status)
	}
	return nil
}
